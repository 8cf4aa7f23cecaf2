package bench

import (
	"runtime"
	"time"

	"golang.org/x/sys/cpu"
)

// Clock times individual operations for a Histogram (SPEC_FULL.md §4.6). spec.md's harness
// calls for a cycle-counter timer, but Go has no portable access to a hardware cycle counter
// without cgo or per-arch assembly; this Clock instead wraps time.Now with nanosecond
// resolution and annotates every report with the CPU feature set the run measured on, so two
// reports from different machines are never silently compared as if timed identically.
type Clock struct {
	features CPUFeatures
}

// CPUFeatures is a snapshot of the feature bits golang.org/x/sys/cpu detected on this host,
// recorded alongside every Report (SPEC_FULL.md §4.6) since search-strategy performance is
// sensitive to them (branch prediction, SIMD-assisted memcmp, cache line size).
type CPUFeatures struct {
	Arch     string
	HasAVX2  bool
	HasSSE42 bool
	HasASIMD bool
}

// NewClock probes the current host's CPU features once and returns a ready-to-use Clock.
func NewClock() *Clock {
	return &Clock{features: detectCPUFeatures()}
}

// detectCPUFeatures reads the package-level cpu.X86/cpu.ARM64 feature structs. Both are
// always valid zero-value structs on every GOARCH (x/sys/cpu's whole design is that
// irrelevant fields simply read false), so no build-tag branching is needed here.
func detectCPUFeatures() CPUFeatures {
	return CPUFeatures{
		Arch:     runtime.GOARCH,
		HasAVX2:  cpu.X86.HasAVX2,
		HasSSE42: cpu.X86.HasSSE42,
		HasASIMD: cpu.ARM64.HasASIMD,
	}
}

// Features returns the CPU feature snapshot this Clock was constructed with.
func (c *Clock) Features() CPUFeatures {
	return c.features
}

// Now returns the current instant. Operation latency is measured as the delta between two
// calls to Now.
func (c *Clock) Now() time.Time {
	return time.Now()
}

// Since is a convenience wrapper matching time.Since, kept as a method so callers go through
// the same Clock value consistently rather than mixing it with the bare time package.
func (c *Clock) Since(start time.Time) time.Duration {
	return time.Since(start)
}
