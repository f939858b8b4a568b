package treewalker

import (
	"testing"

	"github.com/hazyhaar/axlive/axtree"
)

var focusable = axtree.Attrs{Role: axtree.RoleButton, State: axtree.StateFocusable}

// sampleTree:
//
//	root(generic)
//	├── a (button, focusable)
//	│   ├── a1 (staticText)
//	│   └── a2 (button, focusable)
//	├── b (generic)
//	│   └── b1 (button, focusable)
//	│       └── b11 (link, focusable)
//	└── c (button, focusable)
func sampleTree() (*axtree.Tree, map[string]axtree.NodeID) {
	t := axtree.New(axtree.Attrs{Role: axtree.RoleGeneric})
	ids := map[string]axtree.NodeID{"root": t.Root()}
	add := func(parent, name string, a axtree.Attrs) {
		a.Name = name
		ids[name] = t.AppendChild(ids[parent], a)
	}
	add("root", "a", focusable)
	add("a", "a1", axtree.Attrs{Role: axtree.RoleStaticText})
	add("a", "a2", focusable)
	add("root", "b", axtree.Attrs{Role: axtree.RoleGeneric})
	add("b", "b1", focusable)
	add("b1", "b11", axtree.Attrs{Role: axtree.RoleLink, State: axtree.StateFocusable})
	add("root", "c", focusable)
	return t, ids
}

func names(t *axtree.Tree, seq []axtree.NodeID) []string {
	out := make([]string, len(seq))
	for i, id := range seq {
		out[i] = t.Node(id).Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNextPrevious_PreOrder(t *testing.T) {
	tr, ids := sampleTree()
	want := []string{"root", "a", "a1", "a2", "b", "b1", "b11", "c"}

	var fwd []axtree.NodeID
	for n := ids["root"]; n != axtree.None; n = Next(tr, n) {
		fwd = append(fwd, n)
	}
	if got := names(tr, fwd); !equal(got, want) {
		t.Fatalf("Next order: got %v, want %v", got, want)
	}

	var bwd []axtree.NodeID
	for n := ids["c"]; n != axtree.None; n = Previous(tr, n) {
		bwd = append(bwd, n)
	}
	for i, j := 0, len(bwd)-1; i < j; i, j = i+1, j-1 {
		bwd[i], bwd[j] = bwd[j], bwd[i]
	}
	if got := names(tr, bwd); !equal(got, want) {
		t.Fatalf("Previous order reversed: got %v, want %v", got, want)
	}
}

func TestDeepestLastDescendant(t *testing.T) {
	tr, ids := sampleTree()
	if got := DeepestLastDescendant(tr, ids["b"]); got != ids["b11"] {
		t.Errorf("DeepestLastDescendant(b): got %d, want %d", got, ids["b11"])
	}
	if got := DeepestLastDescendant(tr, ids["root"]); got != ids["c"] {
		t.Errorf("DeepestLastDescendant(root): got %d, want %d", got, ids["c"])
	}
	if got := DeepestLastDescendant(tr, ids["c"]); got != axtree.None {
		t.Errorf("DeepestLastDescendant(leaf): got %d, want None", got)
	}
}

func TestMoveToNode_Totality(t *testing.T) {
	tr, ids := sampleTree()
	want := []string{"a", "a2", "b1", "b11", "c"}

	var fwd []axtree.NodeID
	for n := ids["a"]; n != axtree.None; n = MoveToNode(tr, n, axtree.None, true) {
		fwd = append(fwd, n)
	}
	if got := names(tr, fwd); !equal(got, want) {
		t.Fatalf("forward sequence: got %v, want %v", got, want)
	}

	var bwd []string
	for n := ids["c"]; n != axtree.None; n = MoveToNode(tr, n, axtree.None, false) {
		bwd = append(bwd, tr.Node(n).Name)
	}
	reversed := make([]string, len(want))
	for i := range want {
		reversed[i] = want[len(want)-1-i]
	}
	if !equal(bwd, reversed) {
		t.Fatalf("backward sequence: got %v, want %v", bwd, reversed)
	}
}

func TestMoveToNode_Wraparound(t *testing.T) {
	tr, ids := sampleTree()
	if got := MoveToNode(tr, ids["c"], ids["root"], true); got != ids["a"] {
		t.Errorf("forward wrap: got %v, want a", tr.Node(got).Name)
	}
	if got := MoveToNode(tr, ids["a"], ids["root"], false); got != ids["c"] {
		t.Errorf("backward wrap: got %v, want c", tr.Node(got).Name)
	}
	if got := MoveToNode(tr, ids["c"], axtree.None, true); got != axtree.None {
		t.Errorf("forward without root at end: got %d, want None", got)
	}
}

func TestMoveToNode_ShortCircuitsBeforeRoot(t *testing.T) {
	tr, ids := sampleTree()
	// root bounds the wrap only; a hit from start is returned even when it
	// lies outside root.
	if got := MoveToNode(tr, ids["a2"], ids["a"], true); got != ids["b1"] {
		t.Errorf("got %d, want b1 (%d)", got, ids["b1"])
	}
}

func TestMoveToNode_NullStart(t *testing.T) {
	tr, ids := sampleTree()
	if got := MoveToNode(tr, axtree.None, ids["root"], true); got != ids["a"] {
		t.Errorf("forward from None: got %d, want a", got)
	}
	if got := MoveToNode(tr, axtree.None, ids["root"], false); got != ids["c"] {
		t.Errorf("backward from None: got %d, want c", got)
	}
	if got := MoveToNode(tr, axtree.None, axtree.None, true); got != axtree.None {
		t.Errorf("no start, no root: got %d, want None", got)
	}
	if got := MoveToNode(tr, axtree.None, ids["c"], false); got != axtree.None {
		t.Errorf("childless root: got %d, want None", got)
	}
}

func TestMoveToNode_NoInterestingNode(t *testing.T) {
	tr := axtree.New(axtree.Attrs{Role: axtree.RoleGeneric})
	a := tr.AppendChild(tr.Root(), axtree.Attrs{Role: axtree.RoleStaticText})
	tr.AppendChild(a, axtree.Attrs{Role: axtree.RoleStaticText})
	tr.AppendChild(tr.Root(), axtree.Attrs{Role: axtree.RoleGeneric})

	for _, forward := range []bool{true, false} {
		for _, root := range []axtree.NodeID{axtree.None, tr.Root()} {
			for _, start := range []axtree.NodeID{axtree.None, a} {
				if got := MoveToNode(tr, start, root, forward); got != axtree.None {
					t.Errorf("MoveToNode(%d, %d, %v): got %d, want None", start, root, forward, got)
				}
			}
		}
	}
}

func TestIsInteresting_TabSpecialCase(t *testing.T) {
	build := func(rootRole axtree.Role) (*axtree.Tree, axtree.NodeID) {
		tr := axtree.New(axtree.Attrs{Role: rootRole})
		list := tr.AppendChild(tr.Root(), axtree.Attrs{Role: axtree.RoleTabList})
		tab := tr.AppendChild(list, axtree.Attrs{Role: axtree.RoleTab})
		return tr, tab
	}

	tr, tab := build(axtree.RoleDesktop)
	if !IsInteresting(tr, tab) {
		t.Error("tab under tabList under desktop: want interesting")
	}
	tr, tab = build(axtree.RoleRootWebArea)
	if IsInteresting(tr, tab) {
		t.Error("tab under non-desktop root: want not interesting")
	}
}

func TestIsInteresting_Offscreen(t *testing.T) {
	tr := axtree.New(axtree.Attrs{Role: axtree.RoleDesktop})
	tests := []struct {
		name string
		a    axtree.Attrs
		want bool
	}{
		{"focusable", axtree.Attrs{State: axtree.StateFocusable}, true},
		{"offscreen", axtree.Attrs{State: axtree.StateFocusable | axtree.StateOffscreen}, false},
		{"negative top", axtree.Attrs{State: axtree.StateFocusable, Location: axtree.Rect{Top: -1}}, false},
		{"negative left", axtree.Attrs{State: axtree.StateFocusable, Location: axtree.Rect{Left: -1}}, false},
		{"not focusable", axtree.Attrs{}, false},
	}
	for _, tt := range tests {
		id := tr.AppendChild(tr.Root(), tt.a)
		if got := IsInteresting(tr, id); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}

	// Offscreen wins over the tab special case.
	list := tr.AppendChild(tr.Root(), axtree.Attrs{Role: axtree.RoleTabList})
	tab := tr.AppendChild(list, axtree.Attrs{Role: axtree.RoleTab, State: axtree.StateOffscreen})
	if IsInteresting(tr, tab) {
		t.Error("offscreen tab: want not interesting")
	}
}

func TestMoveToNode_TabStripScenario(t *testing.T) {
	tr := axtree.New(axtree.Attrs{Role: axtree.RoleDesktop})
	list := tr.AppendChild(tr.Root(), axtree.Attrs{Role: axtree.RoleTabList})
	tab1 := tr.AppendChild(list, axtree.Attrs{Role: axtree.RoleTab, Name: "tab1"})
	tab2 := tr.AppendChild(list, axtree.Attrs{Role: axtree.RoleTab, Name: "tab2"})

	got := MoveToNode(tr, axtree.None, tr.Root(), true)
	if got != tab1 {
		t.Fatalf("first: got %d, want tab1 (%d)", got, tab1)
	}
	got = MoveToNode(tr, got, tr.Root(), true)
	if got != tab2 {
		t.Fatalf("second: got %d, want tab2 (%d)", got, tab2)
	}
	got = MoveToNode(tr, got, tr.Root(), true)
	if got != tab1 {
		t.Fatalf("wrap: got %d, want tab1 (%d)", got, tab1)
	}
}
