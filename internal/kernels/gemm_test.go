package kernels

import (
	"strings"
	"testing"

	"github.com/samcharles93/kerntune/internal/logger"
	"github.com/samcharles93/kerntune/internal/results"
	"github.com/samcharles93/kerntune/internal/tunable"
)

func newParams(t *testing.T, m, k, n int) *GemmParams {
	t.Helper()
	p, err := NewGemmParams(m, k, n)
	if err != nil {
		t.Fatalf("new gemm params: %v", err)
	}
	p.Randomize(7)
	return p
}

func TestVariantsAgreeWithNaive(t *testing.T) {
	t.Parallel()

	shapes := [][3]int{{8, 8, 8}, {17, 33, 9}, {64, 48, 32}, {1, 16, 16}}
	variants := map[string]tunable.Candidate{
		"tiled":    NewTiledGemm(),
		"parallel": ParallelGemm{Workers: 4},
	}

	for _, shape := range shapes {
		p := newParams(t, shape[0], shape[1], shape[2])

		reference := p.DeepCopy(false)
		if err := (NaiveGemm{}).Call(reference); err != nil {
			t.Fatalf("naive %v: %v", shape, err)
		}

		for name, candidate := range variants {
			out := p.DeepCopy(false)
			if err := candidate.Call(out); err != nil {
				t.Fatalf("%s %v: %v", name, shape, err)
			}
			if err := reference.NumericalCheck(out); err != nil {
				t.Fatalf("%s disagrees with naive for %v: %v", name, shape, err)
			}
			out.Release()
		}
		reference.Release()
		p.Release()
	}
}

func TestSignature(t *testing.T) {
	t.Parallel()

	p := newParams(t, 64, 128, 32)
	defer p.Release()
	if got := p.Signature(); got != "gemm_f32_64x128x32" {
		t.Fatalf("signature: got %q", got)
	}
}

func TestDeepCopyIndependence(t *testing.T) {
	t.Parallel()

	p := newParams(t, 8, 8, 8)
	defer p.Release()

	cp := p.DeepCopy(false).(*GemmParams)
	cp.A[0] = 123
	cp.C[0] = 456
	if p.A[0] == 123 || p.C[0] == 456 {
		t.Fatalf("deep copy shares buffers with the original")
	}
	cp.Release()
}

func TestSizeInflation(t *testing.T) {
	t.Parallel()

	p := newParams(t, 8, 8, 8)
	defer p.Release()

	plain := p.Size(false)
	inflated := p.Size(true)
	if plain != 4*(8*8*3) {
		t.Fatalf("plain size: got %d", plain)
	}
	if inflated <= plain {
		t.Fatalf("inflated size %d should exceed plain size %d", inflated, plain)
	}
}

func TestNumericalCheckDetectsMismatch(t *testing.T) {
	t.Parallel()

	p := newParams(t, 4, 4, 4)
	defer p.Release()
	if err := (NaiveGemm{}).Call(p); err != nil {
		t.Fatalf("naive: %v", err)
	}

	other := p.DeepCopy(false).(*GemmParams)
	defer other.Release()
	other.C[3] += 1
	if err := p.NumericalCheck(other); err == nil {
		t.Fatalf("expected mismatch error")
	}

	wrongShape := newParams(t, 5, 4, 4)
	defer wrongShape.Release()
	if err := p.NumericalCheck(wrongShape); err == nil {
		t.Fatalf("expected shape mismatch error")
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	t.Parallel()

	p := newParams(t, 2, 2, 2)
	p.Release()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on second release")
		}
	}()
	p.Release()
}

func TestParallelGemmIsSupported(t *testing.T) {
	t.Parallel()

	single := newParams(t, 1, 8, 8)
	defer single.Release()
	if err := tunable.IsSupported(ParallelGemm{}, single); err == nil {
		t.Fatalf("expected single-row shape to be unsupported")
	}

	multi := newParams(t, 8, 8, 8)
	defer multi.Release()
	if err := tunable.IsSupported(ParallelGemm{}, multi); err != nil {
		t.Fatalf("expected multi-row shape to be supported: %v", err)
	}
}

func TestTunedGemmEndToEnd(t *testing.T) {
	t.Parallel()

	cfg := tunable.DefaultConfig()
	cfg.MaxWarmupIters = 0
	cfg.MaxTuningIters = 1

	manager := results.NewManager(logger.Discard())
	ctx := tunable.NewContext(cfg, manager, logger.Discard())
	op := tunable.NewOp(ctx, "gemm_f32")
	if err := RegisterGemm(op); err != nil {
		t.Fatalf("register: %v", err)
	}

	p := newParams(t, 32, 32, 32)
	defer p.Release()
	if err := op.Invoke(p); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	entry := manager.Lookup(op.Signature(), p.Signature())
	if entry.IsNull() {
		t.Fatalf("expected a cached tuning decision")
	}
	if entry.Kind == tunable.ResultMeasured {
		found := false
		for _, name := range op.Candidates() {
			if name == entry.Name {
				found = true
			}
		}
		if !found {
			t.Fatalf("selected candidate %q is not registered", entry.Name)
		}
	}

	// Output must match the reference regardless of which variant won.
	check := p.DeepCopy(false)
	defer check.Release()
	if err := (NaiveGemm{}).Call(check); err != nil {
		t.Fatalf("naive: %v", err)
	}
	if err := check.NumericalCheck(p); err != nil {
		t.Fatalf("tuned output disagrees with reference: %v", err)
	}
	if !strings.Contains(op.Signature(), "gemm_f32") {
		t.Fatalf("op signature: got %q", op.Signature())
	}
}
