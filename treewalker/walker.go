// Package treewalker moves a navigation cursor between "interesting" nodes
// of an accessibility tree in depth-first pre-order, wrapping inside an
// optional root. It is stateless and never mutates the tree.
package treewalker

import "github.com/hazyhaar/axlive/axtree"

// MoveToNode returns the next (forward) or previous interesting node
// relative to start. When the scan from start runs off the end of the tree
// and root is set, the scan restarts inside root. It returns axtree.None
// when no interesting node exists.
func MoveToNode(t *axtree.Tree, start, root axtree.NodeID, forward bool) axtree.NodeID {
	step := Previous
	if forward {
		step = Next
	}

	if start != axtree.None {
		for n := step(t, start); n != axtree.None; n = step(t, n) {
			if IsInteresting(t, n) {
				return n
			}
		}
	}

	if root == axtree.None {
		return axtree.None
	}

	var n axtree.NodeID
	if forward {
		n = t.FirstChild(root)
	} else {
		n = DeepestLastDescendant(t, root)
	}
	for ; n != axtree.None; n = step(t, n) {
		if IsInteresting(t, n) {
			return n
		}
	}
	return axtree.None
}

// Next is the pre-order successor of n: first child, else next sibling,
// else the next sibling of the nearest ancestor that has one.
func Next(t *axtree.Tree, n axtree.NodeID) axtree.NodeID {
	if c := t.FirstChild(n); c != axtree.None {
		return c
	}
	for cur := n; cur != axtree.None; cur = t.Parent(cur) {
		if s := t.NextSibling(cur); s != axtree.None {
			return s
		}
	}
	return axtree.None
}

// Previous is the pre-order predecessor of n: the deepest last descendant
// of the previous sibling, else the previous sibling, else the parent.
func Previous(t *axtree.Tree, n axtree.NodeID) axtree.NodeID {
	if s := t.PreviousSibling(n); s != axtree.None {
		if d := DeepestLastDescendant(t, s); d != axtree.None {
			return d
		}
		return s
	}
	return t.Parent(n)
}

// DeepestLastDescendant follows last-child links from n. It returns
// axtree.None when n has no children, never n itself.
func DeepestLastDescendant(t *axtree.Tree, n axtree.NodeID) axtree.NodeID {
	last := t.LastChild(n)
	if last == axtree.None {
		return axtree.None
	}
	for c := t.LastChild(last); c != axtree.None; c = t.LastChild(c) {
		last = c
	}
	return last
}

// IsInteresting reports whether n is a stop for sequential navigation:
// on screen and focusable, except that browser tabs in the desktop tab
// strip always qualify.
func IsInteresting(t *axtree.Tree, n axtree.NodeID) bool {
	node := t.Node(n)
	if node == nil {
		return false
	}
	loc := node.Location
	if node.State.Has(axtree.StateOffscreen) || loc.Top < 0 || loc.Left < 0 {
		return false
	}
	if node.Role == axtree.RoleTab &&
		t.Role(t.Parent(n)) == axtree.RoleTabList &&
		t.Role(t.RootOf(n)) == axtree.RoleDesktop {
		return true
	}
	return node.State.Has(axtree.StateFocusable)
}
