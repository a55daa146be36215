package tunable

import (
	"fmt"
	"time"
)

// The timing harness. Both loops cycle the buffer pool with modular indexing
// so iteration i touches copy i mod poolSize. A call failure here means a
// candidate slipped past the correctness gate, which is a contract violation
// and therefore fatal.

func warmUp(name string, c Candidate, pool *bufferPool, iters int, flush func()) {
	for i := 0; i < iters; i++ {
		if flush != nil {
			flush()
		}
		if err := c.Call(pool.get(i)); err != nil {
			panic(fmt.Sprintf("tunable: candidate %q failed during warmup after passing its gate: %v", name, err))
		}
	}
}

func profile(name string, c Candidate, pool *bufferPool, iters int, flush func()) time.Duration {
	start := time.Now()
	for i := 0; i < iters; i++ {
		if flush != nil {
			flush()
		}
		if err := c.Call(pool.get(i)); err != nil {
			panic(fmt.Sprintf("tunable: candidate %q failed during measurement after passing its gate: %v", name, err))
		}
	}
	return time.Since(start) / time.Duration(iters)
}
