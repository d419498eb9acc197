package store

// node is a location in the tree. A node holds either a scalar value or a
// set of named children, never both. Containers created implicitly while
// writing a deeper path hold neither until something is written to them.
type node struct {
	value    any
	children map[string]*node

	// rev is the store revision of the last mutation that touched this
	// node or anything below it.
	rev uint64
}

// locate walks segs from n, returning nil when any hop is missing.
func (n *node) locate(segs []string) *node {
	cur := n
	for _, seg := range segs {
		next, ok := cur.children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// ensure walks segs from n, creating empty containers as needed. It returns
// the target node and the depth (relative to n) of the first node it had to
// create, or -1 if the whole chain already existed.
func (n *node) ensure(segs []string) (target *node, firstNew int) {
	cur := n
	firstNew = -1
	for i, seg := range segs {
		next, ok := cur.children[seg]
		if !ok {
			next = &node{}
			if cur.children == nil {
				cur.children = make(map[string]*node)
			}
			// A scalar leaf gaining a child stops being a scalar.
			cur.value = nil
			cur.children[seg] = next
			if firstNew < 0 {
				firstNew = i
			}
		}
		cur = next
	}
	return cur, firstNew
}

// firstAbsent walks segs from n and returns the depth of the first hop that
// reads as absent, or -1 when data is present along the whole chain. A node
// that exists structurally but materializes to nil counts as absent, the
// same way the read path treats it.
func (n *node) firstAbsent(segs []string) int {
	cur := n
	for i, seg := range segs {
		next, ok := cur.children[seg]
		if !ok || next.materialize() == nil {
			return i
		}
		cur = next
	}
	return -1
}

// set replaces the node's content with a normalized value. Maps decompose
// into child nodes so that every field is itself path-addressable.
func (n *node) set(v any, rev uint64) {
	n.rev = rev
	if m, ok := v.(map[string]any); ok {
		n.value = nil
		n.children = make(map[string]*node, len(m))
		for k, child := range m {
			c := &node{}
			c.set(child, rev)
			n.children[k] = c
		}
		return
	}
	n.value = v
	n.children = nil
}

// materialize rebuilds the value rooted at n. Empty containers materialize
// to nil: structurally present but holding no data reads as absent.
func (n *node) materialize() any {
	if n == nil {
		return nil
	}
	if n.children == nil {
		return n.value
	}
	m := make(map[string]any, len(n.children))
	for k, child := range n.children {
		if v := child.materialize(); v != nil {
			m[k] = v
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// touch restamps the revision of every node on the path from n through segs.
func (n *node) touch(segs []string, rev uint64) {
	cur := n
	cur.rev = rev
	for _, seg := range segs {
		next, ok := cur.children[seg]
		if !ok {
			return
		}
		cur = next
		cur.rev = rev
	}
}
