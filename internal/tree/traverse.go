package tree

// DepthFirst returns every node of the subtree rooted at n, in
// pre-order (a node before its children, children left to right).
// The edit generator's combined UPDATE/ALIGN_KEYS/ALIGN walk requires
// this specific order, since it determines which renames are
// considered "first store wins".
func DepthFirst(n *Node) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(x *Node) {
		out = append(out, x)
		for _, c := range x.children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// BreadthFirst returns every node of the subtree rooted at n, level by
// level. The INSERT and MOVE phases rely on this order so that a
// node's parent is always visited (and, for INSERT, materialized)
// before the node itself.
func BreadthFirst(n *Node) []*Node {
	out := []*Node{n}
	queue := []*Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range cur.children {
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

// PostOrder returns every node of the subtree rooted at n, with every
// node's children listed before the node itself. The DELETE phase
// materializes this list before mutating the tree, since deleting
// nodes while iterating a live post-order walk would skip or
// re-visit nodes as the tree shrinks.
func PostOrder(n *Node) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(x *Node) {
		for _, c := range x.children {
			walk(c)
		}
		out = append(out, x)
	}
	walk(n)
	return out
}

// IndexByID returns a map from node id to node, for every node in the
// subtree rooted at n.
func IndexByID(n *Node) map[string]*Node {
	out := map[string]*Node{}
	for _, x := range BreadthFirst(n) {
		out[x.ID] = x
	}
	return out
}
