package tree

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

// failingAllocator fails every Nth call, used to exercise the allocation-failure atomicity
// guarantee described in SPEC_FULL.md §5: a reservation failure must be returned before any
// existing node is mutated, leaving the tree exactly as it was before the failed Put.
type failingAllocator[K, V any] struct {
	inner  Allocator[K, V]
	calls  int
	failOn int
}

func (a *failingAllocator[K, V]) NewLeaf(capacity int) (*leafNode[K, V], error) {
	a.calls++
	if a.calls == a.failOn {
		return nil, errors.New("injected failure")
	}
	return a.inner.NewLeaf(capacity)
}

func (a *failingAllocator[K, V]) NewBranch(capacity int, withValues bool) (*branchNode[K, V], error) {
	a.calls++
	if a.calls == a.failOn {
		return nil, errors.New("injected failure")
	}
	return a.inner.NewBranch(capacity, withValues)
}

func TestAllocationFailureLeavesTreeUnchanged(t *testing.T) {
	cfg, err := NewConfig(2, OrderedComparator[int](), SearchLinear)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	bt := NewBTree[int, int](cfg)
	bt.Put(1, 1)
	bt.Put(2, 2) // leaf now full at C=2

	before := bt.Count()
	bt.SetAllocator(&failingAllocator[int, int]{inner: defaultAllocator[int, int]{}, failOn: 1})

	if _, err := bt.Put(3, 3); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("Put with failing allocator = %v, want ErrOutOfMemory", err)
	}
	if bt.Count() != before {
		t.Fatalf("Count() changed after failed Put: %d -> %d", before, bt.Count())
	}
	if _, ok := bt.Get(3); ok {
		t.Fatalf("Get(3) found after a failed Put that should not have inserted it")
	}
	if err := bt.Validate(); err != nil {
		t.Fatalf("Validate() after failed Put = %v", err)
	}
}

// Property: bounded depth — a tree of n keys under capacity C should never need more than
// roughly log_{C/2}(n) branch levels.
func TestBTreeDepthStaysBounded(t *testing.T) {
	cfg, _ := NewConfig(8, OrderedComparator[int](), SearchLinear)
	bt := NewBTree[int, int](cfg)
	const n = 10000
	for k := 0; k < n; k++ {
		bt.Put(k, k)
	}

	maxDepth := 0
	for cap, d := 4, 0; cap < n; cap, d = cap*4, d+1 {
		maxDepth = d + 1
	}
	if bt.Depth() > maxDepth+2 {
		t.Fatalf("Depth() = %d, want <= %d for n=%d at C=8", bt.Depth(), maxDepth+2, n)
	}
}

// Property: a random workload round-trips through Put/Get regardless of insertion order,
// matching a brute-force map[int]int reference, and Validate holds throughout.
func TestBTreeRandomWorkloadMatchesReferenceMap(t *testing.T) {
	cfg, _ := NewConfig(5, OrderedComparator[int](), SearchDynamic)
	bt := NewBTree[int, int](cfg)
	reference := make(map[int]int)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		k := r.Intn(1000)
		v := r.Int()
		bt.Put(k, v)
		reference[k] = v
	}

	if bt.Count() != len(reference) {
		t.Fatalf("Count() = %d, want %d", bt.Count(), len(reference))
	}
	for k, want := range reference {
		got, ok := bt.Get(k)
		if !ok || got != want {
			t.Fatalf("Get(%d) = %d,%v want %d,true", k, got, ok, want)
		}
	}
	if err := bt.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestBPTreeRandomWorkloadMatchesReferenceMap(t *testing.T) {
	cfg, _ := NewBConfig(5, 6, OrderedComparator[int](), SearchBinaryBranchless, SearchLinearLazy)
	bp := NewBPTree[int, int](cfg)
	reference := make(map[int]int)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		k := r.Intn(1000)
		v := r.Int()
		bp.Put(k, v)
		reference[k] = v
	}

	if bp.Count() != len(reference) {
		t.Fatalf("Count() = %d, want %d", bp.Count(), len(reference))
	}
	for k, want := range reference {
		got, ok := bp.Get(k)
		if !ok || got != want {
			t.Fatalf("Get(%d) = %d,%v want %d,true", k, got, ok, want)
		}
	}
	if err := bp.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestDumpProducesNonEmptyOutput(t *testing.T) {
	cfg, _ := NewConfig(4, OrderedComparator[int](), SearchLinear)
	bt := NewBTree[int, int](cfg)
	for k := 0; k < 20; k++ {
		bt.Put(k, k*k)
	}

	var buf bytes.Buffer
	if err := bt.Dump(&buf); err != nil {
		t.Fatalf("Dump() = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("Dump() wrote no output")
	}
}

// Compile-time assertions live in ordered_map.go; this exercises the interface at runtime
// through a generic helper, matching the way the benchmark harness drives either tree.
func countThroughInterface[K, V any](m OrderedMap[K, V]) int {
	return m.Count()
}

func TestOrderedMapInterfaceDrivesEitherTree(t *testing.T) {
	bCfg, _ := NewConfig(4, OrderedComparator[int](), SearchLinear)
	bt := NewBTree[int, int](bCfg)
	bt.Put(1, 1)

	bpCfg, _ := NewBConfig(4, 4, OrderedComparator[int](), SearchLinear, SearchLinear)
	bp := NewBPTree[int, int](bpCfg)
	bp.Put(1, 1)
	bp.Put(2, 2)

	if got := countThroughInterface[int, int](bt); got != 1 {
		t.Fatalf("countThroughInterface(bt) = %d, want 1", got)
	}
	if got := countThroughInterface[int, int](bp); got != 2 {
		t.Fatalf("countThroughInterface(bp) = %d, want 2", got)
	}
}
