package tree

// searchFunc returns, for a packed key slice keys[0:count], an index i such that under
// strict ordering keys[0:i] all compare strictly less than target and keys[i:count] all
// compare >= target (SPEC_FULL.md §4.1). The SearchLinearLazy variant is the one exception:
// it returns the index of the first equal key, or count if none is present, and is only
// meaningful over an unordered (lazy) leaf.
type searchFunc[K any] func(keys []K, count int, target K) int

func resolveSearch[K any](strategy SearchStrategy, cmp Comparator[K], cutoff int) searchFunc[K] {
	switch strategy {
	case SearchLinear:
		return linearSearch(cmp)
	case SearchLinearBranchless:
		return linearBranchlessSearch(cmp)
	case SearchBinaryBranchless:
		return binaryBranchlessSearch(cmp)
	case SearchDynamic:
		return dynamicSearch(cmp, cutoff)
	case SearchLinearLazy:
		return linearLazySearch(cmp)
	default:
		return linearSearch(cmp)
	}
}

// linearSearch scans from index 0, returning the first index whose key is not less than
// target, else count. Predictable for small node sizes.
func linearSearch[K any](cmp Comparator[K]) searchFunc[K] {
	return func(keys []K, count int, target K) int {
		i := 0
		for i < count && cmp.Less(keys[i], target) {
			i++
		}
		return i
	}
}

// linearBranchlessSearch scans from the high end: every key >= target steps the result
// down by one. The step itself is folded through a two-element table indexed by the
// comparison's boolean result, rather than branching on it directly, so every one of the
// count keys is compared.
func linearBranchlessSearch[K any](cmp Comparator[K]) searchFunc[K] {
	step := [2]int{0, 1}
	return func(keys []K, count int, target K) int {
		i := count
		for j := count - 1; j >= 0; j-- {
			i -= step[boolIndex(!cmp.Less(keys[j], target))]
		}
		return i
	}
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// binaryBranchlessSearch is classic lower-bound bisection: each step halves the interval
// and folds the comparison into the base-pointer update, finishing with one boolean
// correction step. (The well-known "base += (base[half-1] < x) * half" formulation.)
func binaryBranchlessSearch[K any](cmp Comparator[K]) searchFunc[K] {
	return func(keys []K, count int, target K) int {
		if count == 0 {
			return 0
		}
		base, length := 0, count
		for length > 1 {
			half := length / 2
			base += half * boolIndex(cmp.Less(keys[base+half-1], target))
			length -= half
		}
		base += boolIndex(cmp.Less(keys[base], target))
		return base
	}
}

// dynamicSearch bisects while the remaining interval length exceeds cutoff, then finishes
// with a linear scan over the narrowed range.
func dynamicSearch[K any](cmp Comparator[K], cutoff int) searchFunc[K] {
	linear := linearSearch(cmp)
	return func(keys []K, count int, target K) int {
		lo, hi := 0, count
		for hi-lo > cutoff {
			mid := lo + (hi-lo)/2
			if cmp.Less(keys[mid], target) {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		return lo + linear(keys[lo:hi], hi-lo, target)
	}
}

// linearLazySearch scans for an exact match against an unordered leaf and returns its
// index, or count if absent. It does not compute a lower bound.
func linearLazySearch[K any](cmp Comparator[K]) searchFunc[K] {
	return func(keys []K, count int, target K) int {
		for i := 0; i < count; i++ {
			if cmp.Equal(keys[i], target) {
				return i
			}
		}
		return count
	}
}
