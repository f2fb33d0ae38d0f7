package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUpdateRetainsIdentity(t *testing.T) {
	a := New("n1", "Name", "x", false)
	b := New("n1", "Name", "y", false)
	a.Update(b)
	if a.ID != "n1" || a.Name != "y" {
		t.Fatalf("Update changed identity or didn't adopt name: %+v", a)
	}
}

func TestAddChildAtKeyDisplaces(t *testing.T) {
	root := New("root", "BinOp", "/", false, "left", "right")
	a := New("a", "Name", "a", false)
	b := New("b", "Name", "b", false)
	root.AddChildAtKey(a, "left")
	root.AddChildAtKey(b, "right")

	// Swap: move a to "right", displacing b.
	root.RemoveChild(a)
	root.AddChildAtKey(a, "right")

	if a.KeyInParent() != "right" {
		t.Fatalf("a.KeyInParent() = %q, want right", a.KeyInParent())
	}
	if !b.slot.IsSentinel() {
		t.Fatalf("b should have been displaced")
	}
	if got := b.KeyInParent(); got != "old_right" {
		t.Fatalf("b.KeyInParent() = %q, want old_right", got)
	}
	orig, ok := b.OrigKey()
	if !ok || orig != "right" {
		t.Fatalf("b.OrigKey() = %q, %v, want right, true", orig, ok)
	}
	by, ok := b.DisplacedByID()
	if !ok || by != "a" {
		t.Fatalf("b.DisplacedByID() = %q, %v, want a, true", by, ok)
	}

	// Resolve: move b from the sentinel slot into the now-empty "left".
	root.RemoveChild(b)
	root.AddChildAtKey(b, "left")
	if b.KeyInParent() != "left" || b.slot.IsSentinel() {
		t.Fatalf("b should have resolved to left: %+v", b)
	}
}

func TestAddChildBetweenFallbacks(t *testing.T) {
	root := New("root", "List-of-statements", "", true)
	x := New("x", "Pass", "pass", false)
	root.AddChildBetween(nil, nil, x)
	if got := root.Children(); len(got) != 1 || got[0] != x {
		t.Fatalf("head fallback failed: %v", got)
	}

	y := New("y", "Pass", "pass", false)
	// before is non-nil but not actually a child: falls back to tail.
	stray := New("stray", "Pass", "pass", false)
	root.AddChildBetween(stray, nil, y)
	if got := root.Children(); len(got) != 2 || got[1] != y {
		t.Fatalf("tail fallback failed: %v", got)
	}
}

func TestGetChildNeighbors(t *testing.T) {
	root := New("root", "List", "", true)
	a, b, c := New("a", "K", "a", false), New("b", "K", "b", false), New("c", "K", "c", false)
	root.AddChildBetween(nil, nil, a)
	root.AddChildBetween(a, nil, b)
	root.AddChildBetween(b, nil, c)
	// order should be a, b, c
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids(root.Children())); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}

	before, after := root.GetChildNeighbors(b)
	if before != a || after != c {
		t.Fatalf("neighbors of b = %v, %v, want a, c", before, after)
	}
}

func TestCloneIsDeepAndPreservesIDs(t *testing.T) {
	root := New("root", "List", "", true)
	a := New("a", "K", "a", false)
	root.AddChildBetween(nil, nil, a)

	clone := root.Clone()
	if clone == root || clone.children[0] == a {
		t.Fatal("Clone must produce fresh nodes")
	}
	if clone.ID != root.ID || clone.children[0].ID != a.ID {
		t.Fatal("Clone must preserve ids")
	}

	// Mutating the clone must not affect the original.
	clone.RemoveChild(clone.children[0])
	if len(root.Children()) != 1 {
		t.Fatal("mutating a clone mutated the original")
	}
}

func ids(ns []*Node) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}
