package results

import (
	"testing"
	"time"

	"github.com/samcharles93/kerntune/internal/logger"
	"github.com/samcharles93/kerntune/internal/tunable"
)

func TestLookupMiss(t *testing.T) {
	t.Parallel()

	m := NewManager(logger.Discard())
	if e := m.Lookup("gemm_f32", "gemm_f32_8x8x8"); !e.IsNull() {
		t.Fatalf("expected Null on miss, got %s", e)
	}
}

func TestAddAndLookup(t *testing.T) {
	t.Parallel()

	m := NewManager(logger.Discard())
	entry := tunable.Measured("tiled", 100*time.Microsecond)
	m.Add("gemm_f32", "gemm_f32_8x8x8", entry)

	got := m.Lookup("gemm_f32", "gemm_f32_8x8x8")
	if !got.Equal(entry) {
		t.Fatalf("lookup: got %s want %s", got, entry)
	}
	if m.NumEntries() != 1 {
		t.Fatalf("entries: got %d want 1", m.NumEntries())
	}
}

func TestAddKeepsExistingEntry(t *testing.T) {
	t.Parallel()

	m := NewManager(logger.Discard())
	first := tunable.Measured("tiled", 100*time.Microsecond)
	second := tunable.Measured("parallel", 50*time.Microsecond)
	m.Add("gemm_f32", "gemm_f32_8x8x8", first)
	m.Add("gemm_f32", "gemm_f32_8x8x8", second)

	got := m.Lookup("gemm_f32", "gemm_f32_8x8x8")
	if !got.Equal(first) {
		t.Fatalf("existing entry was overwritten: got %s want %s", got, first)
	}
	if m.NumEntries() != 1 {
		t.Fatalf("entries: got %d want 1", m.NumEntries())
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	m := NewManager(logger.Discard())
	m.Add("gemm_f32", "gemm_f32_8x8x8", tunable.Measured("tiled", time.Microsecond))
	m.Delete("gemm_f32", "gemm_f32_8x8x8")

	if e := m.Lookup("gemm_f32", "gemm_f32_8x8x8"); !e.IsNull() {
		t.Fatalf("expected Null after delete, got %s", e)
	}
	if m.NumEntries() != 0 {
		t.Fatalf("entries after delete: got %d want 0", m.NumEntries())
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	m := NewManager(logger.Discard())
	m.Add("gemm_f32", "gemm_f32_8x8x8", tunable.Measured("tiled", time.Microsecond))

	snap := m.Snapshot()
	snap["gemm_f32"]["gemm_f32_8x8x8"] = tunable.Default()
	delete(snap, "gemm_f32")

	got := m.Lookup("gemm_f32", "gemm_f32_8x8x8")
	if got.Kind != tunable.ResultMeasured {
		t.Fatalf("snapshot mutation leaked into manager: %s", got)
	}
}

func TestOpSnapshot(t *testing.T) {
	t.Parallel()

	m := NewManager(logger.Discard())
	m.Add("gemm_f32", "gemm_f32_8x8x8", tunable.Measured("tiled", time.Microsecond))

	byParams, ok := m.OpSnapshot("gemm_f32")
	if !ok || len(byParams) != 1 {
		t.Fatalf("expected one entry for op, got ok=%v n=%d", ok, len(byParams))
	}
	if _, ok := m.OpSnapshot("missing"); ok {
		t.Fatalf("expected miss for unknown op")
	}
}
