package tree

import "io"

// OrderedMap is the common contract the benchmark harness drives both tree variants
// through (SPEC_FULL.md §6).
type OrderedMap[K, V any] interface {
	Put(key K, value V) (PutResult, error)
	Get(key K) (V, bool)
	Count() int
	Depth() int
	Validate() error
	Dump(w io.Writer) error
}

var (
	_ OrderedMap[int, int] = (*BTree[int, int])(nil)
	_ OrderedMap[int, int] = (*BPTree[int, int])(nil)
)
