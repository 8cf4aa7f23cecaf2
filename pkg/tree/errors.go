package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory is returned when the configured Allocator rejects a node allocation.
	ErrOutOfMemory = errors.New("tree: out of memory")

	// ErrInvalidCapacity is returned when a node capacity below 2 is configured.
	ErrInvalidCapacity = errors.New("tree: capacity must be >= 2")
)

// InvariantError is returned by Validate when a structural invariant (SPEC_FULL.md §3) is
// violated. It is never returned by Put or Get.
type InvariantError struct {
	Where string // which invariant / location failed, for diagnostics only
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("tree: invariant violated: %s", e.Where)
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Where: fmt.Sprintf(format, args...)}
}
