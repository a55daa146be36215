// Package kernels ships the built-in compute kernels tuned by kerntune:
// float32 GEMM variants sharing one parameter type.
package kernels

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/samcharles93/kerntune/internal/tunable"
)

// inflatePad is the per-slice float padding applied to rotated copies so
// pooled buffers land in distinct memory regions instead of adjacent
// allocations.
const inflatePad = 1 << 14

// Mismatch tolerances for the numerics gate. Variants reorder float32
// accumulation, so exact equality is too strict.
const (
	checkAtol = 1e-4
	checkRtol = 1e-3
)

// GemmParams describes one C = A*B invocation: A is MxK, B is KxN, C is MxN,
// all row-major float32. It implements tunable.Params.
type GemmParams struct {
	M, K, N int
	A, B, C []float32

	padded   bool
	released bool
}

// NewGemmParams allocates zeroed buffers for the given shape.
func NewGemmParams(m, k, n int) (*GemmParams, error) {
	if m <= 0 || k <= 0 || n <= 0 {
		return nil, fmt.Errorf("kernels: invalid gemm shape %dx%dx%d", m, k, n)
	}
	return &GemmParams{
		M: m, K: k, N: n,
		A: make([]float32, m*k),
		B: make([]float32, k*n),
		C: make([]float32, m*n),
	}, nil
}

// Randomize fills A and B with deterministic pseudo-random values in (-1, 1).
func (p *GemmParams) Randomize(seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range p.A {
		p.A[i] = float32(rng.Float64()*2 - 1)
	}
	for i := range p.B {
		p.B[i] = float32(rng.Float64()*2 - 1)
	}
}

// Signature encodes shape and dtype for cache keying.
func (p *GemmParams) Signature() string {
	return fmt.Sprintf("gemm_f32_%dx%dx%d", p.M, p.K, p.N)
}

// DeepCopy returns an independent copy. Inflated copies pad each slice so
// rotated buffers do not share cache lines with their neighbors.
func (p *GemmParams) DeepCopy(inflate bool) tunable.Params {
	pad := 0
	if inflate {
		pad = inflatePad
	}
	cp := &GemmParams{
		M: p.M, K: p.K, N: p.N,
		A:      make([]float32, len(p.A), len(p.A)+pad),
		B:      make([]float32, len(p.B), len(p.B)+pad),
		C:      make([]float32, len(p.C), len(p.C)+pad),
		padded: inflate,
	}
	copy(cp.A, p.A)
	copy(cp.B, p.B)
	copy(cp.C, p.C)
	return cp
}

// Size returns the copy footprint in bytes.
func (p *GemmParams) Size(inflate bool) int {
	floats := len(p.A) + len(p.B) + len(p.C)
	if inflate {
		floats += 3 * inflatePad
	}
	return 4 * floats
}

// NumericalCheck compares the output matrix against other's within mixed
// absolute/relative tolerance.
func (p *GemmParams) NumericalCheck(other tunable.Params) error {
	o, ok := other.(*GemmParams)
	if !ok {
		return fmt.Errorf("kernels: numerics check against non-gemm params %T", other)
	}
	if o.M != p.M || o.K != p.K || o.N != p.N {
		return fmt.Errorf("kernels: numerics check shape mismatch: %s vs %s", p.Signature(), o.Signature())
	}
	for i := range p.C {
		want := float64(p.C[i])
		got := float64(o.C[i])
		if diff := math.Abs(want - got); diff > checkAtol+checkRtol*math.Abs(want) {
			return fmt.Errorf("kernels: output mismatch at %d: %g vs %g (diff %g)", i, want, got, diff)
		}
	}
	return nil
}

// Release frees the buffers. Releasing twice is a lifecycle bug.
func (p *GemmParams) Release() {
	if p.released {
		panic("kernels: gemm params released twice")
	}
	p.released = true
	p.A, p.B, p.C = nil, nil, nil
}

func asGemm(p tunable.Params) (*GemmParams, error) {
	gp, ok := p.(*GemmParams)
	if !ok {
		return nil, fmt.Errorf("kernels: expected gemm params, got %T", p)
	}
	if gp.released {
		return nil, fmt.Errorf("kernels: gemm params already released")
	}
	return gp, nil
}
