package axtree

import "testing"

func buildSample(t *testing.T) (*Tree, map[string]NodeID) {
	t.Helper()
	tr := New(Attrs{ExternalID: "root", Role: RoleDesktop})
	ids := map[string]NodeID{"root": tr.Root()}
	add := func(parent, name string, role Role) {
		id := tr.AppendChild(ids[parent], Attrs{ExternalID: name, Role: role, Name: name})
		if id == None {
			t.Fatalf("AppendChild(%s, %s): got None", parent, name)
		}
		ids[name] = id
	}
	add("root", "a", RoleGeneric)
	add("a", "a1", RoleButton)
	add("a", "a2", RoleButton)
	add("root", "b", RoleGeneric)
	add("b", "b1", RoleStaticText)
	return tr, ids
}

func TestTree_Topology(t *testing.T) {
	tr, ids := buildSample(t)

	if got := tr.FirstChild(ids["root"]); got != ids["a"] {
		t.Errorf("FirstChild(root): got %d, want %d", got, ids["a"])
	}
	if got := tr.LastChild(ids["root"]); got != ids["b"] {
		t.Errorf("LastChild(root): got %d, want %d", got, ids["b"])
	}
	if got := tr.NextSibling(ids["a1"]); got != ids["a2"] {
		t.Errorf("NextSibling(a1): got %d, want %d", got, ids["a2"])
	}
	if got := tr.PreviousSibling(ids["a2"]); got != ids["a1"] {
		t.Errorf("PreviousSibling(a2): got %d, want %d", got, ids["a1"])
	}
	if got := tr.Parent(ids["b1"]); got != ids["b"] {
		t.Errorf("Parent(b1): got %d, want %d", got, ids["b"])
	}
	if got := tr.RootOf(ids["b1"]); got != tr.Root() {
		t.Errorf("RootOf(b1): got %d, want %d", got, tr.Root())
	}
	if got := tr.Parent(tr.Root()); got != None {
		t.Errorf("Parent(root): got %d, want None", got)
	}
	if tr.Len() != 6 {
		t.Errorf("Len: got %d, want 6", tr.Len())
	}
}

func TestTree_InsertBefore(t *testing.T) {
	tr, ids := buildSample(t)
	mid := tr.InsertBefore(ids["a"], ids["a2"], Attrs{Name: "mid"})
	if mid == None {
		t.Fatal("InsertBefore: got None")
	}
	got := tr.Children(ids["a"])
	want := []NodeID{ids["a1"], mid, ids["a2"]}
	if len(got) != len(want) {
		t.Fatalf("Children: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Children[%d]: got %d, want %d", i, got[i], want[i])
		}
	}

	first := tr.InsertBefore(ids["a"], ids["a1"], Attrs{Name: "first"})
	if tr.FirstChild(ids["a"]) != first {
		t.Errorf("FirstChild after InsertBefore(first): got %d, want %d", tr.FirstChild(ids["a"]), first)
	}
	if tr.InsertBefore(ids["a"], ids["b1"], Attrs{}) != None {
		t.Error("InsertBefore with foreign sibling: want None")
	}
}

func TestTree_Remove(t *testing.T) {
	tr, ids := buildSample(t)

	if !tr.Remove(ids["a"]) {
		t.Fatal("Remove(a): got false")
	}
	if tr.Valid(ids["a"]) || tr.Valid(ids["a1"]) || tr.Valid(ids["a2"]) {
		t.Error("Remove(a): subtree still valid")
	}
	if got := tr.FirstChild(tr.Root()); got != ids["b"] {
		t.Errorf("FirstChild(root) after remove: got %d, want %d", got, ids["b"])
	}
	if got := tr.PreviousSibling(ids["b"]); got != None {
		t.Errorf("PreviousSibling(b) after remove: got %d, want None", got)
	}
	if got := tr.Lookup("a1"); got != None {
		t.Errorf("Lookup(a1) after remove: got %d, want None", got)
	}
	if tr.Len() != 3 {
		t.Errorf("Len after remove: got %d, want 3", tr.Len())
	}
	if tr.Remove(tr.Root()) {
		t.Error("Remove(root): got true")
	}

	// IDs are not reused.
	n := tr.AppendChild(tr.Root(), Attrs{ExternalID: "c"})
	if n == ids["a"] || n == ids["a1"] || n == ids["a2"] {
		t.Errorf("AppendChild reused removed id %d", n)
	}
}

func TestTree_Update(t *testing.T) {
	tr, ids := buildSample(t)
	ok := tr.Update(ids["b1"], func(a *Attrs) {
		a.Name = "changed"
		a.ExternalID = "b1-renamed"
	})
	if !ok {
		t.Fatal("Update: got false")
	}
	if tr.Node(ids["b1"]).Name != "changed" {
		t.Errorf("Name: got %q, want %q", tr.Node(ids["b1"]).Name, "changed")
	}
	if tr.Lookup("b1") != None {
		t.Error("Lookup(old external id): want None")
	}
	if tr.Lookup("b1-renamed") != ids["b1"] {
		t.Error("Lookup(new external id): not found")
	}
}

func TestTree_JoinedDescendants(t *testing.T) {
	tr, ids := buildSample(t)
	if got := tr.JoinedDescendants(ids["a"]); got != "a1 a2" {
		t.Errorf("JoinedDescendants(a): got %q, want %q", got, "a1 a2")
	}
	if got := tr.JoinedDescendants(ids["b1"]); got != "" {
		t.Errorf("JoinedDescendants(leaf): got %q, want empty", got)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"tab-list", RoleTabList},
		{"tablist", RoleTabList},
		{"tabList", RoleTabList},
		{"desktop", RoleDesktop},
		{"RootWebArea", RoleRootWebArea},
		{"StaticText", RoleStaticText},
		{"nonsense", RoleUnknown},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRelevant(t *testing.T) {
	r := ParseRelevant("additions  text")
	if !r.Contains(RelevantAdditions) || !r.Contains(RelevantText) {
		t.Errorf("ParseRelevant: got %v, want additions text", r)
	}
	if r.Contains(RelevantRemovals) || r.Contains(RelevantAll) {
		t.Errorf("ParseRelevant: unexpected flags in %v", r)
	}
	if got := ParseRelevant("all").String(); got != "all" {
		t.Errorf("ParseRelevant(all).String(): got %q", got)
	}
	if ParseRelevant("") != 0 {
		t.Error("ParseRelevant(\"\"): want empty set")
	}
}

func TestIsLiveRegionChange(t *testing.T) {
	tr, ids := buildSample(t)
	tr.Update(ids["b1"], func(a *Attrs) { a.ContainerLiveStatus = "polite" })

	if !IsLiveRegionChange(tr, TreeChange{Target: ids["b1"], Type: TextChanged}) {
		t.Error("live node: want true")
	}
	if IsLiveRegionChange(tr, TreeChange{Target: ids["a1"], Type: TextChanged}) {
		t.Error("non-live node: want false")
	}
	if IsLiveRegionChange(tr, TreeChange{Target: None, Type: TextChanged}) {
		t.Error("None target: want false")
	}
}
