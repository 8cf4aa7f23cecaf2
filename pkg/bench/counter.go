package bench

import "sync/atomic"

// opCounter is a lock-free counter used by Runner to tally completed operations across
// worker goroutines without a mutex, adapted from the teacher's pkg/concurrent.Counter (same
// atomic-add idiom) and narrowed from a general-purpose utility down to the harness's own
// operation tally.
type opCounter struct {
	value uint64
}

// Inc increments the counter by 1 and returns the new value.
func (c *opCounter) Inc() uint64 {
	return atomic.AddUint64(&c.value, 1)
}

// Load returns the current value.
func (c *opCounter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}
