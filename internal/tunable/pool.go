package tunable

// bufferPool owns the parameter copies a search cycles through while timing.
// With rotation requested it holds enough inflated copies to fill the byte
// budget; otherwise a single copy. releaseAll frees every copy exactly once
// regardless of which candidate branch the search took.
type bufferPool struct {
	bufs []Params
}

func newBufferPool(p Params, rotatingSize int) *bufferPool {
	rotate := rotatingSize > 0
	count := 1
	if rotate {
		if size := p.Size(true); size > 0 {
			count = rotatingSize/size + 1
		}
	}
	bufs := make([]Params, count)
	for i := range bufs {
		bufs[i] = p.DeepCopy(rotate)
	}
	return &bufferPool{bufs: bufs}
}

func (bp *bufferPool) size() int { return len(bp.bufs) }

// get borrows the copy for iteration i, cycling through the pool.
func (bp *bufferPool) get(i int) Params {
	return bp.bufs[i%len(bp.bufs)]
}

func (bp *bufferPool) releaseAll() {
	for _, b := range bp.bufs {
		b.Release()
	}
	bp.bufs = nil
}
