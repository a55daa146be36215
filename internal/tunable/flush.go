package tunable

// Pure Go has no icache flush instruction, so the default disturbance walks a
// buffer comfortably larger than typical last-level caches. The stores keep
// the loop from being optimized away.
const disturbBytes = 32 << 20

var (
	disturbBuf  = make([]byte, disturbBytes)
	disturbSink byte
)

func disturbCaches() {
	acc := disturbSink
	for i := 0; i < len(disturbBuf); i += 64 {
		acc ^= disturbBuf[i]
		disturbBuf[i] = acc + 1
	}
	disturbSink = acc
}
