package tree

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Printable returns a canonical textual rendering of the subtree
// rooted at n. Two trees with equal Printable output are considered
// structurally identical for the purposes of the generator's final
// verification and the testable fidelity property.
//
// The format is defined by this package. Besides tests and
// diagnostics, runtimecompare.New hands it to its Tracer as the code
// to run.
func Printable(n *Node) []byte {
	var sb strings.Builder
	writeDebug(&sb, n, "")
	return []byte(sb.String())
}

func writeDebug(w io.Writer, n *Node, indent string) {
	key := n.KeyInParent()
	if key != "" {
		key = " key=" + key
	}
	if len(n.children) == 0 {
		fmt.Fprintf(w, "%s%s(%q)%s\n", indent, n.Kind, n.Name, key)
		return
	}
	fmt.Fprintf(w, "%s%s(%q)%s {\n", indent, n.Kind, n.Name, key)
	children := n.children
	if !n.IsList {
		// A keyed parent's child slots are unordered; canonicalize by
		// key so that two structurally identical trees print alike
		// regardless of the order children happened to be inserted in.
		children = append([]*Node(nil), n.children...)
		sort.Slice(children, func(i, j int) bool {
			return children[i].KeyInParent() < children[j].KeyInParent()
		})
	}
	for _, c := range children {
		writeDebug(w, c, indent+"  ")
	}
	fmt.Fprintf(w, "%s}\n", indent)
}
