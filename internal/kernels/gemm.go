package kernels

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/samcharles93/kerntune/internal/tunable"
)

// Default tile sizes, tuned for mid-size square shapes.
const (
	defaultTileM = 32
	defaultTileN = 32
	defaultTileK = 16
)

// RegisterGemm wires the built-in GEMM variants into an op in reference-first
// order.
func RegisterGemm(op *tunable.Op) error {
	if err := op.Register("naive", NaiveGemm{}); err != nil {
		return err
	}
	if err := op.Register("tiled", NewTiledGemm()); err != nil {
		return err
	}
	if err := op.Register("parallel", ParallelGemm{}); err != nil {
		return err
	}
	return nil
}

// NaiveGemm is the reference implementation: a plain triple loop. Always
// correct, never fast.
type NaiveGemm struct{}

func (NaiveGemm) Call(p tunable.Params) error {
	gp, err := asGemm(p)
	if err != nil {
		return err
	}
	for i := 0; i < gp.M; i++ {
		aRow := gp.A[i*gp.K : (i+1)*gp.K]
		cRow := gp.C[i*gp.N : (i+1)*gp.N]
		for j := 0; j < gp.N; j++ {
			var sum float32
			for l := 0; l < gp.K; l++ {
				sum += aRow[l] * gp.B[l*gp.N+j]
			}
			cRow[j] = sum
		}
	}
	return nil
}

// TiledGemm blocks the loops over M/N/K tiles to keep the working set in
// cache.
type TiledGemm struct {
	TileM, TileN, TileK int
}

func NewTiledGemm() TiledGemm {
	return TiledGemm{TileM: defaultTileM, TileN: defaultTileN, TileK: defaultTileK}
}

func (t TiledGemm) Call(p tunable.Params) error {
	gp, err := asGemm(p)
	if err != nil {
		return err
	}
	tm, tn, tk := t.TileM, t.TileN, t.TileK
	if tm < 1 || tn < 1 || tk < 1 {
		return fmt.Errorf("kernels: invalid tile sizes %dx%dx%d", tm, tn, tk)
	}
	clear(gp.C)
	gemmRangeRows(gp, 0, gp.M, tm, tn, tk)
	return nil
}

// gemmRangeRows updates a contiguous row range of C with blocked accumulation.
// C must be zeroed for the range beforehand.
func gemmRangeRows(gp *GemmParams, rs, re, tm, tn, tk int) {
	k, n := gp.K, gp.N
	for i0 := rs; i0 < re; i0 += tm {
		iMax := min(i0+tm, re)
		for l0 := 0; l0 < k; l0 += tk {
			lMax := min(l0+tk, k)
			for j0 := 0; j0 < n; j0 += tn {
				jMax := min(j0+tn, n)
				for i := i0; i < iMax; i++ {
					aRow := gp.A[i*k : (i+1)*k]
					cRow := gp.C[i*n : (i+1)*n]
					for l := l0; l < lMax; l++ {
						a := aRow[l]
						if a == 0 {
							continue
						}
						bRow := gp.B[l*n : (l+1)*n]
						for j := j0; j < jMax; j++ {
							cRow[j] += a * bRow[j]
						}
					}
				}
			}
		}
	}
}

// ParallelGemm splits the output rows across goroutines, each running the
// tiled kernel on its range. Workers <= 0 uses GOMAXPROCS.
type ParallelGemm struct {
	Workers int
}

func (g ParallelGemm) Call(p tunable.Params) error {
	gp, err := asGemm(p)
	if err != nil {
		return err
	}
	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > gp.M {
		workers = gp.M
	}
	clear(gp.C)
	if workers <= 1 {
		gemmRangeRows(gp, 0, gp.M, defaultTileM, defaultTileN, defaultTileK)
		return nil
	}

	rowsPer := (gp.M + workers - 1) / workers
	var wg sync.WaitGroup
	for rs := 0; rs < gp.M; rs += rowsPer {
		re := min(rs+rowsPer, gp.M)
		wg.Add(1)
		go func(rs, re int) {
			defer wg.Done()
			gemmRangeRows(gp, rs, re, defaultTileM, defaultTileN, defaultTileK)
		}(rs, re)
	}
	wg.Wait()
	return nil
}

// IsSupported rejects shapes too small to amortize goroutine startup without
// running the kernel.
func (g ParallelGemm) IsSupported(p tunable.Params) error {
	gp, err := asGemm(p)
	if err != nil {
		return err
	}
	if gp.M < 2 {
		return fmt.Errorf("kernels: parallel gemm needs at least 2 rows, got %d", gp.M)
	}
	return nil
}
