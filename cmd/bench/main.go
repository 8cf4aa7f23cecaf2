package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mnohosten/treebench/pkg/bench"
	"github.com/mnohosten/treebench/pkg/tree"
)

func main() {
	kind := flag.String("tree", "btree", "tree variant to benchmark: btree or bptree")
	capacity := flag.Int("c", 32, "node capacity (btree: branch+leaf; bptree: leaf, see -branch-c)")
	branchCapacity := flag.Int("branch-c", 32, "branch node capacity (bptree only)")
	strategy := flag.String("search", "dynamic", "search strategy: linear, linear-branchless, binary-branchless, dynamic, linear-lazy (bptree leaf only)")
	numOps := flag.Int("n", 100000, "number of operations to run")
	concurrency := flag.Int("concurrency", 1, "number of concurrent worker goroutines")
	seed := flag.Uint64("seed", 0x2545f4914f6cdd1d, "xorshift64 seed for reproducible key generation")
	keyMod := flag.Int("key-mod", 1000000, "keys are drawn from [0, key-mod)")
	putWeight := flag.Int("put-weight", 50, "relative weight of Put operations in the mix")
	getWeight := flag.Int("get-weight", 50, "relative weight of Get operations in the mix")
	serve := flag.String("serve", "", "if set, start the results dashboard on this address (e.g. :8090) after the run")
	flag.Parse()

	strat, err := parseStrategy(*strategy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bench: %v\n", err)
		os.Exit(1)
	}

	m, err := buildTree(*kind, *capacity, *branchCapacity, strat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bench: %v\n", err)
		os.Exit(1)
	}

	w := bench.Workload{
		Name:        fmt.Sprintf("%s-%s-n%d", *kind, *strategy, *numOps),
		NumOps:      *numOps,
		Mix:         []bench.OpWeight{{Kind: bench.OpPut, Weight: *putWeight}, {Kind: bench.OpGet, Weight: *getWeight}},
		Source:      bench.NewXorshiftRNG(*seed, *keyMod),
		Concurrency: *concurrency,
	}

	runner := bench.NewRunner()
	report, err := runner.Run(*kind, m, w)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bench: run failed: %v\n", err)
		os.Exit(1)
	}

	printReport(report)

	if *serve == "" {
		return
	}

	srv, err := bench.NewServer(*serve)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bench: failed to create dashboard server: %v\n", err)
		os.Exit(1)
	}
	srv.RecordReport(report)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("dashboard listening on %s (routes: /healthz /results /results/{run} /stream /graphql)\n", *serve)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "bench: dashboard server error: %v\n", err)
		os.Exit(1)
	}
}

func parseStrategy(name string) (tree.SearchStrategy, error) {
	switch name {
	case "linear":
		return tree.SearchLinear, nil
	case "linear-branchless":
		return tree.SearchLinearBranchless, nil
	case "binary-branchless":
		return tree.SearchBinaryBranchless, nil
	case "dynamic":
		return tree.SearchDynamic, nil
	case "linear-lazy":
		return tree.SearchLinearLazy, nil
	default:
		return 0, fmt.Errorf("unknown -search strategy %q", name)
	}
}

func buildTree(kind string, capacity, branchCapacity int, strat tree.SearchStrategy) (tree.OrderedMap[int, int], error) {
	cmp := tree.OrderedComparator[int]()

	switch kind {
	case "btree":
		if strat == tree.SearchLinearLazy {
			return nil, fmt.Errorf("-search linear-lazy is only valid for bptree")
		}
		cfg, err := tree.NewConfig(capacity, cmp, strat)
		if err != nil {
			return nil, err
		}
		return tree.NewBTree[int, int](cfg), nil

	case "bptree":
		branchStrat := strat
		if branchStrat == tree.SearchLinearLazy {
			branchStrat = tree.SearchDynamic
		}
		cfg, err := tree.NewBConfig(branchCapacity, capacity, cmp, branchStrat, strat)
		if err != nil {
			return nil, err
		}
		return tree.NewBPTree[int, int](cfg), nil

	default:
		return nil, fmt.Errorf("unknown -tree kind %q (want btree or bptree)", kind)
	}
}

func printReport(r *bench.Report) {
	fmt.Printf("workload:    %s\n", r.WorkloadName)
	fmt.Printf("tree:        %s\n", r.TreeKind)
	fmt.Printf("cpu:         arch=%s avx2=%v sse4.2=%v asimd=%v\n", r.CPU.Arch, r.CPU.HasAVX2, r.CPU.HasSSE42, r.CPU.HasASIMD)
	fmt.Printf("completed:   %d ops in %s\n", r.Completed, r.Duration)
	fmt.Printf("final state: count=%d depth=%d\n", r.FinalCount, r.FinalDepth)
	for _, op := range []string{"put", "get"} {
		h := r.ByOperation[op]
		if h == nil || h.Count() == 0 {
			continue
		}
		fmt.Printf("%-4s: n=%-8d mean=%-10s p50=%-10s p99=%-10s max=%s\n",
			op, h.Count(), h.Mean(), h.Percentile(50), h.Percentile(99), h.Max())
	}
}
