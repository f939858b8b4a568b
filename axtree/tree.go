package axtree

import "strings"

// NodeID indexes a node in its Tree. IDs are never reused within a Tree, so
// an ID held past a removal simply stops resolving.
type NodeID int32

// None is the null node.
const None NodeID = -1

// Rect is a screen-coordinate rectangle.
type Rect struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Attrs is the host-supplied content of a node. Live-region fields are only
// meaningful on nodes inside a live region subtree.
type Attrs struct {
	ExternalID string // host identifier (CDP AXNodeId, page ID, ...)
	Role       Role
	Name       string
	Value      string
	Location   Rect
	State      State

	ContainerLiveStatus   string // "polite", "assertive", "off"; empty outside live regions
	ContainerLiveRelevant Relevant
	ContainerLiveBusy     bool
	ContainerLiveAtomic   bool
	LiveAtomic            bool
}

// Node is one arena slot.
type Node struct {
	Attrs

	id         NodeID
	parent     NodeID
	firstChild NodeID
	lastChild  NodeID
	next       NodeID
	prev       NodeID
	removed    bool
}

// ID returns the node's arena index.
func (n *Node) ID() NodeID { return n.id }

// Tree is an arena of accessibility nodes with a single root. The host that
// builds it is the only writer; readers never retain *Node values across a
// mutation.
type Tree struct {
	nodes []Node
	root  NodeID
	byExt map[string]NodeID
	live  int
}

// New creates a tree containing only a root node.
func New(root Attrs) *Tree {
	t := &Tree{byExt: make(map[string]NodeID)}
	t.root = t.alloc(None, root)
	return t
}

func (t *Tree) alloc(parent NodeID, a Attrs) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Attrs:      a,
		id:         id,
		parent:     parent,
		firstChild: None,
		lastChild:  None,
		next:       None,
		prev:       None,
	})
	if a.ExternalID != "" {
		t.byExt[a.ExternalID] = id
	}
	t.live++
	return id
}

// Root returns the tree root.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of live nodes.
func (t *Tree) Len() int { return t.live }

// Valid reports whether id resolves to a live node.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes) && !t.nodes[id].removed
}

// Node returns the node for id, or nil. The pointer is only valid until the
// next mutation of the tree.
func (t *Tree) Node(id NodeID) *Node {
	if !t.Valid(id) {
		return nil
	}
	return &t.nodes[id]
}

// Role returns the role of id, RoleUnknown for an invalid id.
func (t *Tree) Role(id NodeID) Role {
	if n := t.Node(id); n != nil {
		return n.Role
	}
	return RoleUnknown
}

func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.parent
	}
	return None
}

func (t *Tree) FirstChild(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.firstChild
	}
	return None
}

func (t *Tree) LastChild(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.lastChild
	}
	return None
}

func (t *Tree) NextSibling(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.next
	}
	return None
}

func (t *Tree) PreviousSibling(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.prev
	}
	return None
}

// RootOf follows parent links from id to the parentless node.
func (t *Tree) RootOf(id NodeID) NodeID {
	if !t.Valid(id) {
		return None
	}
	for {
		p := t.nodes[id].parent
		if p == None {
			return id
		}
		id = p
	}
}

// Children returns the child IDs of id in order.
func (t *Tree) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := t.FirstChild(id); c != None; c = t.nodes[c].next {
		out = append(out, c)
	}
	return out
}

// Lookup resolves a host identifier.
func (t *Tree) Lookup(externalID string) NodeID {
	if id, ok := t.byExt[externalID]; ok && t.Valid(id) {
		return id
	}
	return None
}

// AppendChild adds a node as the last child of parent. It returns None if
// parent is not a live node.
func (t *Tree) AppendChild(parent NodeID, a Attrs) NodeID {
	return t.InsertBefore(parent, None, a)
}

// InsertBefore adds a node under parent, before the sibling before. A None
// sibling appends.
func (t *Tree) InsertBefore(parent, before NodeID, a Attrs) NodeID {
	if !t.Valid(parent) {
		return None
	}
	if before != None && (!t.Valid(before) || t.nodes[before].parent != parent) {
		return None
	}
	id := t.alloc(parent, a)
	n := &t.nodes[id]
	p := &t.nodes[parent]

	if before == None {
		n.prev = p.lastChild
		if p.lastChild != None {
			t.nodes[p.lastChild].next = id
		} else {
			p.firstChild = id
		}
		p.lastChild = id
		return id
	}

	b := &t.nodes[before]
	n.next = before
	n.prev = b.prev
	if b.prev != None {
		t.nodes[b.prev].next = id
	} else {
		p.firstChild = id
	}
	b.prev = id
	return id
}

// Update applies fn to the attributes of id. The external ID index follows
// changes to ExternalID.
func (t *Tree) Update(id NodeID, fn func(a *Attrs)) bool {
	n := t.Node(id)
	if n == nil {
		return false
	}
	oldExt := n.ExternalID
	fn(&n.Attrs)
	if n.ExternalID != oldExt {
		if oldExt != "" && t.byExt[oldExt] == id {
			delete(t.byExt, oldExt)
		}
		if n.ExternalID != "" {
			t.byExt[n.ExternalID] = id
		}
	}
	return true
}

// Remove detaches id from its parent and tombstones its whole subtree. The
// root cannot be removed.
func (t *Tree) Remove(id NodeID) bool {
	if !t.Valid(id) || id == t.root {
		return false
	}
	n := &t.nodes[id]
	if n.prev != None {
		t.nodes[n.prev].next = n.next
	} else if n.parent != None {
		t.nodes[n.parent].firstChild = n.next
	}
	if n.next != None {
		t.nodes[n.next].prev = n.prev
	} else if n.parent != None {
		t.nodes[n.parent].lastChild = n.prev
	}
	n.next, n.prev = None, None

	t.Walk(id, func(d NodeID) bool {
		dn := &t.nodes[d]
		if dn.ExternalID != "" && t.byExt[dn.ExternalID] == d {
			delete(t.byExt, dn.ExternalID)
		}
		return true
	})
	t.tombstone(id)
	return true
}

func (t *Tree) tombstone(id NodeID) {
	for c := t.nodes[id].firstChild; c != None; {
		next := t.nodes[c].next
		t.tombstone(c)
		c = next
	}
	t.nodes[id].removed = true
	t.live--
}

// Walk visits id and its descendants in pre-order until fn returns false.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	t.walk(id, fn)
}

func (t *Tree) walk(id NodeID, fn func(NodeID) bool) bool {
	if !t.Valid(id) {
		return true
	}
	if !fn(id) {
		return false
	}
	for c := t.nodes[id].firstChild; c != None; c = t.nodes[c].next {
		if !t.walk(c, fn) {
			return false
		}
	}
	return true
}

// JoinedDescendants joins the text of every descendant of id (not id
// itself) in pre-order, separated by spaces.
func (t *Tree) JoinedDescendants(id NodeID) string {
	var parts []string
	t.Walk(id, func(d NodeID) bool {
		if d == id {
			return true
		}
		n := &t.nodes[d]
		if s := strings.TrimSpace(n.Name); s != "" {
			parts = append(parts, s)
		} else if s := strings.TrimSpace(n.Value); s != "" {
			parts = append(parts, s)
		}
		return true
	})
	return strings.Join(parts, " ")
}
