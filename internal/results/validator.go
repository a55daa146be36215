package results

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/samcharles93/kerntune/internal/version"
)

// Validator records the environment a results file was tuned under. Timings
// measured on one machine or build are meaningless on another, so a loaded
// file must match on every key.
type Validator struct {
	keys map[string]string
}

// NewValidator captures the current environment.
func NewValidator() *Validator {
	return &Validator{keys: map[string]string{
		"kerntune_version": version.String(),
		"go_version":       runtime.Version(),
		"go_os":            runtime.GOOS,
		"go_arch":          runtime.GOARCH,
		"cpu_features":     cpuFeatures(),
	}}
}

// Keys returns a copy of the validation keys.
func (v *Validator) Keys() map[string]string {
	out := make(map[string]string, len(v.keys))
	for k, val := range v.keys {
		out[k] = val
	}
	return out
}

// Validate checks a loaded key set against the current environment.
func (v *Validator) Validate(got map[string]string) error {
	for key, want := range v.keys {
		loaded, ok := got[key]
		if !ok {
			return fmt.Errorf("results: validator key %q missing from file", key)
		}
		if loaded != want {
			return fmt.Errorf("results: validator mismatch for %q: file has %q, environment has %q", key, loaded, want)
		}
	}
	return nil
}

// cpuFeatures summarizes the SIMD capabilities relevant to kernel timing.
// Fields are false on architectures where they do not apply, which keeps the
// string stable per machine.
func cpuFeatures() string {
	features := map[string]bool{
		"avx":    cpu.X86.HasAVX,
		"avx2":   cpu.X86.HasAVX2,
		"avx512": cpu.X86.HasAVX512F,
		"fma":    cpu.X86.HasFMA,
		"sse42":  cpu.X86.HasSSE42,
		"neon":   cpu.ARM64.HasASIMD,
		"sve":    cpu.ARM64.HasSVE,
	}
	enabled := make([]string, 0, len(features))
	for name, has := range features {
		if has {
			enabled = append(enabled, name)
		}
	}
	if len(enabled) == 0 {
		return "none"
	}
	sort.Strings(enabled)
	return strings.Join(enabled, ",")
}
