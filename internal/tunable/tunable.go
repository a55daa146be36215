// Package tunable selects the fastest of several equivalent kernel
// implementations by measuring them against a live problem instance and
// caching the winner per shape.
package tunable

// Candidate is a single runnable implementation of an operation. Call runs
// the kernel against the given parameters; a nil error means the call
// succeeded. Candidates must be safely callable repeatedly with the same or
// different parameter copies.
type Candidate interface {
	Call(p Params) error
}

// SupportChecker is optionally implemented by candidates that can report
// support for a shape without running the kernel.
type SupportChecker interface {
	IsSupported(p Params) error
}

// IsSupported reports whether a candidate supports the given parameters.
// Candidates without a cheap static check are probed empirically by
// attempting a call.
func IsSupported(c Candidate, p Params) error {
	if sc, ok := c.(SupportChecker); ok {
		return sc.IsSupported(p)
	}
	return c.Call(p)
}

// Params describes one concrete invocation: its shape and its data buffers.
// Each copy produced by DeepCopy is owned by whoever created it and must be
// released exactly once.
type Params interface {
	// Signature returns a stable string encoding shape and dtype, used as
	// part of the results cache key.
	Signature() string

	// DeepCopy returns an independent copy. When inflate is true the copy is
	// padded out to the rotation footprint so pooled copies occupy distinct
	// memory regions.
	DeepCopy(inflate bool) Params

	// Size returns the copy's memory footprint in bytes.
	Size(inflate bool) int

	// NumericalCheck compares this instance's output against other's and
	// returns a non-nil error on mismatch.
	NumericalCheck(other Params) error

	// Release frees the copy's buffers. Must be called exactly once.
	Release()
}

// ResultsCache is the persistent signature-keyed result store consumed by the
// engine. Lookup returns the Null entry on a miss.
type ResultsCache interface {
	Lookup(opSig, paramsSig string) ResultEntry
	Add(opSig, paramsSig string, entry ResultEntry)
}
