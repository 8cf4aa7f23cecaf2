package tree

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented structural dump of the tree to w (SPEC_FULL.md §4.4). The
// format is diagnostic only and is not meant to be parsed back.
func (t *BTree[K, V]) Dump(w io.Writer) error {
	return dumpNode[K, V](w, t.root, 0, true)
}

// Dump writes an indented structural dump of the B+-tree to w. Branches print only their
// separator keys (they carry no values); leaves print keys and values.
func (t *BPTree[K, V]) Dump(w io.Writer) error {
	return dumpNode[K, V](w, t.root, 0, false)
}

// dumpNode recursively prints a node and its children. branchHasValues distinguishes
// B-tree branches (which print values alongside keys) from B+-tree branches (keys only).
func dumpNode[K, V any](w io.Writer, n node[K, V], level int, branchHasValues bool) error {
	indent := strings.Repeat("  ", level)

	switch cur := n.(type) {
	case *leafNode[K, V]:
		if _, err := fmt.Fprintf(w, "%sleaf keys=%v values=%v\n", indent, cur.keys[:cur.count], cur.values[:cur.count]); err != nil {
			return err
		}
		return nil

	case *branchNode[K, V]:
		if branchHasValues {
			if _, err := fmt.Fprintf(w, "%sbranch keys=%v values=%v\n", indent, cur.keys[:cur.count], cur.values[:cur.count]); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(w, "%sbranch keys=%v\n", indent, cur.keys[:cur.count]); err != nil {
				return err
			}
		}
		for i := 0; i <= cur.count; i++ {
			if err := dumpNode[K, V](w, cur.children[i], level+1, branchHasValues); err != nil {
				return err
			}
		}
		return nil

	default:
		return invariantf("unknown node type during dump")
	}
}
