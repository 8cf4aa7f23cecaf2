package bench

// OperationKind names one of the two operations a Workload exercises against an
// OrderedMap (SPEC_FULL.md §4.6). Range scans and deletes are out of scope, matching
// spec.md's own Non-goals for the core map types.
type OperationKind int

const (
	OpPut OperationKind = iota
	OpGet
)

func (k OperationKind) String() string {
	if k == OpGet {
		return "get"
	}
	return "put"
}

// OpWeight gives one operation kind's share of a Workload's mix, generalized from the
// teacher's BenchmarkBTreeMixedOperations (pkg/index/btree_bench_test.go), which hardcodes
// an even four-way Insert/Search/RangeScan/Delete round-robin (op := i % 4) inline, into a
// reusable, caller-specified weighting over the two operations this package supports.
type OpWeight struct {
	Kind   OperationKind
	Weight int
}

// Workload describes one benchmark run: how many operations, what mix of Put/Get, and where
// the keys come from.
type Workload struct {
	// Name identifies this workload in a Report, e.g. "sequential-insert" or "mixed-70-30".
	Name string

	// NumOps is the total number of operations to perform.
	NumOps int

	// Mix selects which operation kind to perform at each step, by weight. A Put with a key
	// that already exists in the map exercises the Replaced path rather than failing.
	Mix []OpWeight

	// Source supplies the key for every operation. When Concurrency > 1, every worker
	// goroutine calls Next on this same instance, so Source must be safe for concurrent use
	// (none of XorshiftRNG, CryptoRNG, SequentialSource, or DescendingSource are; wrap one in
	// a mutex or hand each worker its own instance for a concurrent run).
	Source KeySource

	// Concurrency is the number of worker goroutines sharing NumOps between them. A value
	// <= 1 runs the workload on the calling goroutine.
	Concurrency int
}

// pick deterministically walks the weighted mix using step as a rotating counter, avoiding
// any extra randomness beyond what the KeySource itself already contributes.
func (w Workload) pick(step int) OperationKind {
	total := 0
	for _, m := range w.Mix {
		total += m.Weight
	}
	if total <= 0 {
		return OpPut
	}
	r := step % total
	for _, m := range w.Mix {
		if r < m.Weight {
			return m.Kind
		}
		r -= m.Weight
	}
	return w.Mix[len(w.Mix)-1].Kind
}
