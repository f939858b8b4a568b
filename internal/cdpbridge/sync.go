package cdpbridge

import (
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/axlive/axtree"
)

// inlineTextBox nodes repeat their StaticText parent's name glyph run by
// glyph run; they never reach the arena.
const inlineTextBox = "InlineTextBox"

// Sync reconciles the subtree under view with a full CDP snapshot of one
// page and reports every mutation through emit, in detection order:
//
//   - a new node is reported once, at the top of its subtree, as
//     SubtreeCreated (NodeCreated for a leaf), after the subtree is built;
//   - a kept node whose name or value changed is reported as TextChanged
//     after the update;
//   - a vanished node is reported as NodeRemoved before it is tombstoned,
//     so listeners can still read it.
//
// Ignored CDP nodes are transparent: their children are attached to the
// nearest kept ancestor. Sync returns the number of changes emitted.
func Sync(t *axtree.Tree, view axtree.NodeID, pageID string, nodes []*proto.AccessibilityAXNode, emit func(axtree.TreeChange)) int {
	s := &syncer{
		t:    t,
		page: pageID,
		byID: make(map[proto.AccessibilityAXNodeID]*proto.AccessibilityAXNode, len(nodes)),
		emit: emit,
	}
	for _, n := range nodes {
		if n != nil {
			s.byID[n.NodeID] = n
		}
	}
	var roots []proto.AccessibilityAXNodeID
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, ok := s.byID[n.ParentID]; n.ParentID == "" || !ok {
			roots = append(roots, n.NodeID)
		}
	}
	s.reconcile(view, roots)
	return s.changes
}

type syncer struct {
	t       *axtree.Tree
	page    string
	byID    map[proto.AccessibilityAXNodeID]*proto.AccessibilityAXNode
	emit    func(axtree.TreeChange)
	changes int
}

func (s *syncer) fire(id axtree.NodeID, typ axtree.ChangeType) {
	s.changes++
	if s.emit != nil {
		s.emit(axtree.TreeChange{Target: id, Type: typ})
	}
}

// kept flattens ids into the nodes that belong in the arena.
func (s *syncer) kept(ids []proto.AccessibilityAXNodeID, out []proto.AccessibilityAXNodeID) []proto.AccessibilityAXNodeID {
	for _, id := range ids {
		n := s.byID[id]
		if n == nil || str(n.Role) == inlineTextBox {
			continue
		}
		if n.Ignored {
			out = s.kept(n.ChildIDs, out)
			continue
		}
		out = append(out, id)
	}
	return out
}

func (s *syncer) reconcile(parent axtree.NodeID, childIDs []proto.AccessibilityAXNodeID) {
	want := s.kept(childIDs, nil)
	wanted := make(map[string]bool, len(want))
	for _, id := range want {
		wanted[ExternalID(s.page, id)] = true
	}

	for _, c := range s.t.Children(parent) {
		if !wanted[s.t.Node(c).ExternalID] {
			s.remove(c)
		}
	}

	prev := axtree.None
	for _, id := range want {
		cur := s.t.Lookup(ExternalID(s.page, id))
		if cur != axtree.None && s.t.Parent(cur) != parent {
			// Reparented: CDP reports it as a fresh node in its new place.
			s.remove(cur)
			cur = axtree.None
		}
		if cur == axtree.None {
			cur = s.create(parent, s.slotAfter(parent, prev), id)
		} else {
			s.update(cur, id)
			s.reconcile(cur, s.byID[id].ChildIDs)
		}
		prev = cur
	}
}

// slotAfter is the sibling a new node goes before to follow prev.
func (s *syncer) slotAfter(parent, prev axtree.NodeID) axtree.NodeID {
	if prev == axtree.None {
		return s.t.FirstChild(parent)
	}
	return s.t.NextSibling(prev)
}

func (s *syncer) create(parent, before axtree.NodeID, id proto.AccessibilityAXNodeID) axtree.NodeID {
	nid := s.build(parent, before, id)
	if s.t.FirstChild(nid) != axtree.None {
		s.fire(nid, axtree.SubtreeCreated)
	} else {
		s.fire(nid, axtree.NodeCreated)
	}
	return nid
}

func (s *syncer) build(parent, before axtree.NodeID, id proto.AccessibilityAXNodeID) axtree.NodeID {
	n := s.byID[id]
	nid := s.t.InsertBefore(parent, before, Convert(s.page, n))
	for _, c := range s.kept(n.ChildIDs, nil) {
		s.build(nid, axtree.None, c)
	}
	return nid
}

func (s *syncer) update(cur axtree.NodeID, id proto.AccessibilityAXNodeID) {
	next := Convert(s.page, s.byID[id])
	var textChanged bool
	s.t.Update(cur, func(a *axtree.Attrs) {
		textChanged = a.Name != next.Name || a.Value != next.Value
		*a = next
	})
	if textChanged {
		s.fire(cur, axtree.TextChanged)
	}
}

func (s *syncer) remove(id axtree.NodeID) {
	s.fire(id, axtree.NodeRemoved)
	s.t.Remove(id)
}
