package message

import (
	"context"
	"testing"
)

func TestTextSource(t *testing.T) {
	src := Text("hello world")
	if src.Content() != "hello world" {
		t.Errorf("Content() = %q", src.Content())
	}
	if src.Assigns() != nil || src.Params() != nil {
		t.Error("Text should have empty assigns and params")
	}
}

func TestFromSourceCopiesMaps(t *testing.T) {
	src := sourceStub{
		content: "hi",
		assigns: map[string]any{"user": "ada"},
		params:  map[string]string{"id": "1"},
	}
	m := FromSource(src)

	m.Assign("user", "grace")
	m.Params()["id"] = "2"

	if src.assigns["user"] != "ada" {
		t.Error("mutating the message leaked into the source assigns")
	}
	if src.params["id"] != "1" {
		t.Error("mutating the message leaked into the source params")
	}
}

type sourceStub struct {
	content string
	assigns map[string]any
	params  map[string]string
}

func (s sourceStub) Content() string           { return s.content }
func (s sourceStub) Assigns() map[string]any   { return s.assigns }
func (s sourceStub) Params() map[string]string { return s.params }

func TestHaltIsMonotonic(t *testing.T) {
	m := New("x")
	if m.Halted() {
		t.Fatal("fresh message should not be halted")
	}
	m.Halt()
	if !m.Halted() {
		t.Fatal("Halt did not set the flag")
	}
}

func TestMergeAssignsAndParams(t *testing.T) {
	m := New("x")
	m.Assign("a", 1)
	m.MergeAssigns(map[string]any{"a": 2, "b": 3})
	if v, _ := m.Get("a"); v != 2 {
		t.Errorf("assigns[a] = %v, want 2 (merge overwrites)", v)
	}
	if v, _ := m.Get("b"); v != 3 {
		t.Errorf("assigns[b] = %v, want 3", v)
	}

	m.MergeParams(map[string]string{"x": "10"})
	if v, ok := m.Param("x"); !ok || v != "10" {
		t.Errorf("params[x] = %q, %v", v, ok)
	}
	if _, ok := m.Param("missing"); ok {
		t.Error("absent param reported present")
	}
}

func TestContextDefaultsToBackground(t *testing.T) {
	m := New("x")
	if m.Context() != context.Background() {
		t.Error("zero message context should be Background")
	}

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	if m.WithContext(ctx).Context() != ctx {
		t.Error("WithContext did not attach the context")
	}
}
