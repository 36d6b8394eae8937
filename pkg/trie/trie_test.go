package trie

import (
	"reflect"
	"testing"
)

func lit(segments ...string) []Key {
	path := make([]Key, len(segments))
	for i, s := range segments {
		path[i] = Lit(s)
	}
	return path
}

func strp(s string) *string { return &s }

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Lit("hello"), "hello"},
		{Param("name"), ":name"},
		{Lit(""), ""},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKeyKindsAreDistinct(t *testing.T) {
	root := New[string]().
		Insert([]Key{Lit("x")}, strp("literal")).
		Insert([]Key{Param("x")}, strp("param"))

	if got := root.Search([]Key{Lit("x")}); got == nil || *got.Value() != "literal" {
		t.Errorf("literal x lookup = %v", got.Value())
	}
	if got := root.Search([]Key{Param("x")}); got == nil || *got.Value() != "param" {
		t.Errorf("param x lookup = %v", got.Value())
	}
}

func TestInsertSearchRoundTrip(t *testing.T) {
	paths := [][]Key{
		lit("hello"),
		lit("hello", "world"),
		{Lit("calc"), Param("x"), Param("y")},
	}
	for _, path := range paths {
		root := New[string]().Insert(path, strp("v"))
		got := root.Search(path)
		if !reflect.DeepEqual(got, NewValue("v")) {
			t.Errorf("Search(%v) = %#v, want value node", path, got)
		}
	}
}

func TestInsertNilValueIsNoOp(t *testing.T) {
	root := New[string]()
	if got := root.Insert(lit("a", "b"), nil); got != root {
		t.Error("Insert(nil) should return the node unchanged")
	}
}

func TestInsertEmptyPathReplacesValue(t *testing.T) {
	root := NewValue("old").Insert(nil, strp("new"))
	if v := root.Value(); v == nil || *v != "new" {
		t.Errorf("value = %v, want new", v)
	}
}

func TestInsertOverwritesExistingPath(t *testing.T) {
	root := New[string]().
		Insert(lit("a", "b"), strp("first")).
		Insert(lit("a", "b"), strp("second"))
	if v := root.Search(lit("a", "b")).Value(); *v != "second" {
		t.Errorf("value = %q, want second", *v)
	}
}

func TestInsertIsCopyOnWrite(t *testing.T) {
	base := New[string]().Insert(lit("a"), strp("v"))
	updated := base.Insert(lit("a", "b"), strp("w"))

	if base.Search(lit("a", "b")) != nil {
		t.Error("insert mutated the original tree")
	}
	if updated.Search(lit("a", "b")) == nil {
		t.Error("insert missing from the updated tree")
	}
}

func TestDeleteRestoresEmptyNode(t *testing.T) {
	root := New[string]().Insert(lit("hello", "world"), strp("v")).Delete(lit("hello", "world"))
	if !reflect.DeepEqual(root, New[string]()) {
		t.Errorf("delete did not prune back to an empty tree: %#v", root)
	}
}

func TestDeleteLeavesSiblingSubtree(t *testing.T) {
	got := New[string]().
		Insert(lit("hello", "world"), strp("v")).
		Insert(lit("hello", "back"), strp("v")).
		Delete(lit("hello", "world"))

	want := New[string]().Insert(lit("hello", "back"), strp("v"))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tree after delete = %#v, want %#v", got, want)
	}
}

func TestDeleteClearsValueOnly(t *testing.T) {
	root := New[string]().
		Insert(lit("a"), strp("shallow")).
		Insert(lit("a", "b"), strp("deep")).
		Delete(lit("a"))

	if root.Search(lit("a")).Value() != nil {
		t.Error("value at a should be cleared")
	}
	if got := root.Search(lit("a", "b")); got == nil || *got.Value() != "deep" {
		t.Error("nested route should survive deleting its ancestor's value")
	}
}

func TestDeleteMissingPathIsNoOp(t *testing.T) {
	root := New[string]().Insert(lit("a"), strp("v"))
	if got := root.Delete(lit("b", "c")); got != root {
		t.Error("Delete of an absent path should return the node unchanged")
	}
}

func TestDeleteAllRemovesSubtree(t *testing.T) {
	root := New[string]().
		Insert(lit("a"), strp("keep")).
		Insert(lit("a", "b"), strp("v")).
		Insert(lit("a", "b", "c"), strp("v")).
		DeleteAll(lit("a", "b"))

	want := New[string]().Insert(lit("a"), strp("keep"))
	if !reflect.DeepEqual(root, want) {
		t.Errorf("tree after DeleteAll = %#v, want %#v", root, want)
	}
}

func TestDeleteAllPrunesUpToSurvivingAncestor(t *testing.T) {
	root := New[string]().
		Insert(lit("a", "x"), strp("sibling")).
		Insert(lit("a", "b", "c", "d"), strp("v")).
		DeleteAll(lit("a", "b", "c", "d"))

	want := New[string]().Insert(lit("a", "x"), strp("sibling"))
	if !reflect.DeepEqual(root, want) {
		t.Errorf("tree after DeleteAll = %#v, want %#v", root, want)
	}
}

func TestSearchFromNilNode(t *testing.T) {
	var root *Node[string]
	if root.Search(lit("a")) != nil {
		t.Error("search from nil node should be nil")
	}
	if root.SearchNext(Lit("a")) != nil {
		t.Error("SearchNext from nil node should be nil")
	}
}

func TestActivePathsIndependentOfInsertionOrder(t *testing.T) {
	paths := [][]Key{
		lit("a"),
		lit("a", "b"),
		{Lit("calc"), Param("x")},
	}

	forward := New[string]()
	for _, p := range paths {
		forward = forward.Insert(p, strp("v"))
	}
	backward := New[string]()
	for i := len(paths) - 1; i >= 0; i-- {
		backward = backward.Insert(paths[i], strp("v"))
	}

	got := forward.ActivePaths()
	if !reflect.DeepEqual(got, backward.ActivePaths()) {
		t.Error("ActivePaths should not depend on insertion order")
	}
	if len(got) != len(paths) {
		t.Fatalf("len(ActivePaths) = %d, want %d", len(got), len(paths))
	}
	want := map[string]bool{"a": true, "a/b": true, "calc/:x": true}
	for _, p := range got {
		if !want[FormatPath(p)] {
			t.Errorf("unexpected path %q", FormatPath(p))
		}
	}
}

func TestValues(t *testing.T) {
	root := New[string]().
		Insert(lit("a"), strp("1")).
		Insert(lit("a", "b"), strp("2")).
		Insert(lit("c"), strp("3"))

	got := root.Values()
	if !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("Values() = %v", got)
	}
}

func TestParamChildrenSorted(t *testing.T) {
	root := New[string]().
		Insert([]Key{Param("zebra")}, strp("z")).
		Insert([]Key{Param("alpha")}, strp("a")).
		Insert([]Key{Lit("static")}, strp("s"))

	params := root.ParamChildren()
	if len(params) != 2 {
		t.Fatalf("len(ParamChildren) = %d, want 2", len(params))
	}
	if params[0].Name != "alpha" || params[1].Name != "zebra" {
		t.Errorf("param order = %s, %s; want alpha, zebra", params[0].Name, params[1].Name)
	}
}

// BenchmarkSearch benchmarks a lookup through a populated trie.
func BenchmarkSearch(b *testing.B) {
	root := New[string]()
	for i := 0; i < 26; i++ {
		seg := string(rune('a' + i))
		root = root.Insert(lit(seg, "mid", "leaf"), strp(seg))
	}

	path := lit("m", "mid", "leaf")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		root.Search(path)
	}
}
