package tree

import "cmp"

// OrderedComparator builds a Comparator for any cmp.Ordered key type (ints, floats,
// strings) using plain operators — the common case where a caller has no custom order.
func OrderedComparator[K cmp.Ordered]() Comparator[K] {
	return Comparator[K]{
		Less:  func(a, b K) bool { return a < b },
		Equal: func(a, b K) bool { return a == b },
	}
}
