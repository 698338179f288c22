package traversal

// MoveNext advances to the next node in innermost-first order: every child is
// yielded before its parent, and a node's deeper descendants before its later
// siblings. The root is never yielded; MoveNext returns false on reaching it.
func (e *Engine) MoveNext() bool {
	if e.state != Initialized || e.done {
		return false
	}
	if !e.walking {
		e.walk = append(e.walk[:0], cursor{h: Root})
		e.walking = true
	}
	for len(e.walk) > 0 {
		top := &e.walk[len(e.walk)-1]
		n := &e.nodes[top.h]
		if top.next < n.childCount {
			c := n.firstChild + Handle(top.next)
			top.next++
			e.walk = append(e.walk, cursor{h: c})
			continue
		}
		h := top.h
		e.walk = e.walk[:len(e.walk)-1]
		if h == Root {
			e.done = true
			e.current = NoHandle
			return false
		}
		e.current = h
		return true
	}
	return false
}

// Current returns the node MoveNext last stopped at, or NoHandle.
func (e *Engine) Current() Handle {
	return e.current
}

// Rewind restarts enumeration of the already built tree.
func (e *Engine) Rewind() {
	e.walk = e.walk[:0]
	e.walking = false
	e.done = false
	e.current = NoHandle
}

// Len returns the number of nodes, root included.
func (e *Engine) Len() int {
	return len(e.nodes)
}

// Valid reports whether h addresses a node of the current tree.
func (e *Engine) Valid(h Handle) bool {
	return h >= 0 && int(h) < len(e.nodes)
}

// View returns a snapshot of node h.
func (e *Engine) View(h Handle) View {
	return e.nodes[h].view(h)
}

// ChildCount returns the number of children of h.
func (e *Engine) ChildCount(h Handle) int {
	return int(e.nodes[h].childCount)
}

// Child returns the i-th child of h.
func (e *Engine) Child(h Handle, i int) Handle {
	n := &e.nodes[h]
	if i < 0 || int32(i) >= n.childCount {
		return NoHandle
	}
	return n.firstChild + Handle(i)
}

// Children returns the children of h.
func (e *Engine) Children(h Handle) []Handle {
	n := &e.nodes[h]
	out := make([]Handle, 0, n.childCount)
	for i := int32(0); i < n.childCount; i++ {
		out = append(out, n.firstChild+Handle(i))
	}
	return out
}

// Walk visits every node parent first. Returning false from fn prunes the
// subtree below that node.
func (e *Engine) Walk(fn func(v View) bool) {
	stack := []Handle{Root}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &e.nodes[h]
		if !fn(n.view(h)) {
			continue
		}
		for i := n.childCount - 1; i >= 0; i-- {
			stack = append(stack, n.firstChild+Handle(i))
		}
	}
}

// Capacity returns how many nodes the arena can hold without growing.
func (e *Engine) Capacity() int {
	return cap(e.nodes)
}
