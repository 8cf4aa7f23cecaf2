package bench

import (
	"sort"
	"time"
)

// HistogramBucket is one bucket of a latency Histogram, generalized from the teacher's
// value-distribution HistogramBucket (pkg/index/stats.go) to an operation-latency range.
type HistogramBucket struct {
	LowerBound time.Duration // inclusive
	UpperBound time.Duration // exclusive
	Count      int
	Frequency  float64 // Count / total observations
}

// Histogram accumulates operation latencies for a single workload run and exposes
// percentile/bucket views for a Report (SPEC_FULL.md §4.6).
type Histogram struct {
	samples []time.Duration // kept sorted lazily, only at Percentile/Buckets time
	sorted  bool
	min     time.Duration
	max     time.Duration
	total   time.Duration
}

// NewHistogram returns an empty Histogram ready to Observe into.
func NewHistogram() *Histogram {
	return &Histogram{sorted: true}
}

// Observe records one operation's latency.
func (h *Histogram) Observe(d time.Duration) {
	if len(h.samples) == 0 || d < h.min {
		h.min = d
	}
	if len(h.samples) == 0 || d > h.max {
		h.max = d
	}
	h.total += d
	h.samples = append(h.samples, d)
	h.sorted = false
}

// merge folds another Histogram's samples into h, used by Runner to combine per-worker
// histograms from a concurrent Workload run into one Report-level Histogram.
func (h *Histogram) merge(other *Histogram) {
	for _, s := range other.samples {
		h.Observe(s)
	}
}

// Count returns the number of observations recorded.
func (h *Histogram) Count() int {
	return len(h.samples)
}

// Mean returns the arithmetic mean latency, or 0 if no observations were recorded.
func (h *Histogram) Mean() time.Duration {
	if len(h.samples) == 0 {
		return 0
	}
	return h.total / time.Duration(len(h.samples))
}

// Min returns the smallest recorded latency.
func (h *Histogram) Min() time.Duration {
	return h.min
}

// Max returns the largest recorded latency.
func (h *Histogram) Max() time.Duration {
	return h.max
}

func (h *Histogram) ensureSorted() {
	if h.sorted {
		return
	}
	sort.Slice(h.samples, func(i, j int) bool { return h.samples[i] < h.samples[j] })
	h.sorted = true
}

// Percentile returns the latency at the given percentile in [0, 100]. Returns 0 for an empty
// histogram.
func (h *Histogram) Percentile(p float64) time.Duration {
	if len(h.samples) == 0 {
		return 0
	}
	h.ensureSorted()
	if p <= 0 {
		return h.samples[0]
	}
	if p >= 100 {
		return h.samples[len(h.samples)-1]
	}
	ix := int(p / 100 * float64(len(h.samples)-1))
	return h.samples[ix]
}

// Buckets partitions the observed range [Min, Max] into numBuckets equal-width buckets and
// returns their counts and frequencies, matching the shape of the teacher's
// IndexStats.Histogram (pkg/index/stats.go) generalized from value-ranges to latency-ranges.
func (h *Histogram) Buckets(numBuckets int) []HistogramBucket {
	if numBuckets <= 0 || len(h.samples) == 0 {
		return nil
	}
	h.ensureSorted()

	width := (h.max - h.min) / time.Duration(numBuckets)
	if width <= 0 {
		width = 1
	}

	buckets := make([]HistogramBucket, numBuckets)
	for i := range buckets {
		buckets[i].LowerBound = h.min + time.Duration(i)*width
		buckets[i].UpperBound = h.min + time.Duration(i+1)*width
	}
	buckets[numBuckets-1].UpperBound = h.max + 1

	for _, s := range h.samples {
		ix := int((s - h.min) / width)
		if ix >= numBuckets {
			ix = numBuckets - 1
		}
		buckets[ix].Count++
	}
	for i := range buckets {
		buckets[i].Frequency = float64(buckets[i].Count) / float64(len(h.samples))
	}
	return buckets
}
