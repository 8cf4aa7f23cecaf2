package bench

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/mnohosten/treebench/pkg/tree"
)

// Report summarizes one Workload run against one tree.OrderedMap (SPEC_FULL.md §4.6),
// generalized from the teacher's raw testing.BenchmarkResult (pkg/index/btree_bench_test.go)
// into a structure a dashboard or CLI can print or serialize independently of `go test`.
type Report struct {
	WorkloadName string
	TreeKind     string
	Completed    uint64
	Duration     time.Duration
	FinalCount   int
	FinalDepth   int
	CPU          CPUFeatures
	ByOperation  map[string]*Histogram
}

// Runner drives a Workload against a tree.OrderedMap, timing every operation with a Clock
// and recording latencies into per-operation Histograms.
type Runner struct {
	clock *Clock
}

// NewRunner builds a Runner using a freshly probed Clock.
func NewRunner() *Runner {
	return &Runner{clock: NewClock()}
}

// Run executes w against m and returns the resulting Report. Put values are always the key
// itself (int keys, int values) since the harness benchmarks tree shape and search strategy,
// not a caller's value encoding.
func (r *Runner) Run(treeKind string, m tree.OrderedMap[int, int], w Workload) (*Report, error) {
	if w.NumOps <= 0 {
		return nil, fmt.Errorf("bench: workload %q has NumOps <= 0", w.Name)
	}

	concurrency := w.Concurrency
	if concurrency <= 1 {
		return r.runSequential(treeKind, m, w)
	}
	return r.runConcurrent(treeKind, m, w, concurrency)
}

func (r *Runner) runSequential(treeKind string, m tree.OrderedMap[int, int], w Workload) (*Report, error) {
	puts := NewHistogram()
	gets := NewHistogram()
	var completed uint64

	start := r.clock.Now()
	for i := 0; i < w.NumOps; i++ {
		key := w.Source.Next()
		opStart := r.clock.Now()

		switch w.pick(i) {
		case OpPut:
			if _, err := m.Put(key, key); err != nil {
				return nil, fmt.Errorf("bench: workload %q Put(%d): %w", w.Name, key, err)
			}
			puts.Observe(r.clock.Since(opStart))
		case OpGet:
			m.Get(key)
			gets.Observe(r.clock.Since(opStart))
		}
		completed++
	}
	duration := r.clock.Since(start)

	return &Report{
		WorkloadName: w.Name,
		TreeKind:     treeKind,
		Completed:    completed,
		Duration:     duration,
		FinalCount:   m.Count(),
		FinalDepth:   m.Depth(),
		CPU:          r.clock.Features(),
		ByOperation:  map[string]*Histogram{"put": puts, "get": gets},
	}, nil
}

// runConcurrent splits w.NumOps evenly across concurrency worker goroutines, each driving m
// with keys drawn from the shared w.Source, its own range of pick steps, and its own
// Histograms, merged at the end. m and w.Source must be safe for concurrent use; the harness
// itself places no locking around either.
func (r *Runner) runConcurrent(treeKind string, m tree.OrderedMap[int, int], w Workload, concurrency int) (*Report, error) {
	var (
		mu       sync.Mutex
		firstErr error
		counter  opCounter
		puts     = NewHistogram()
		gets     = NewHistogram()
	)

	perWorker := w.NumOps / concurrency
	start := r.clock.Now()

	var wg sync.WaitGroup
	for wk := 0; wk < concurrency; wk++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			localPuts := NewHistogram()
			localGets := NewHistogram()

			for i := 0; i < perWorker; i++ {
				key := w.Source.Next()
				opStart := r.clock.Now()

				switch w.pick(base + i) {
				case OpPut:
					if _, err := m.Put(key, key); err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = fmt.Errorf("bench: workload %q Put(%d): %w", w.Name, key, err)
						}
						mu.Unlock()
						return
					}
					localPuts.Observe(r.clock.Since(opStart))
				case OpGet:
					m.Get(key)
					localGets.Observe(r.clock.Since(opStart))
				}
				counter.Inc()
			}

			mu.Lock()
			puts.merge(localPuts)
			gets.merge(localGets)
			mu.Unlock()
		}(wk * perWorker)
	}
	wg.Wait()
	duration := r.clock.Since(start)

	if firstErr != nil {
		return nil, firstErr
	}

	return &Report{
		WorkloadName: w.Name,
		TreeKind:     treeKind,
		Completed:    counter.Load(),
		Duration:     duration,
		FinalCount:   m.Count(),
		FinalDepth:   m.Depth(),
		CPU:          r.clock.Features(),
		ByOperation:  map[string]*Histogram{"put": puts, "get": gets},
	}, nil
}

// SnapshotDump writes a zstd-compressed structural dump of m to w, for persisting a large
// tree's shape between workload runs without the uncompressed Dump output dominating disk
// usage (SPEC_FULL.md §4.5's klauspost/compress/zstd wiring).
func SnapshotDump(w io.Writer, m tree.OrderedMap[int, int]) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("bench: constructing zstd writer: %w", err)
	}
	if err := m.Dump(enc); err != nil {
		enc.Close()
		return fmt.Errorf("bench: dumping tree structure: %w", err)
	}
	return enc.Close()
}
