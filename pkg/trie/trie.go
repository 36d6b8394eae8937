// Package trie implements the segment-keyed prefix tree backing route
// storage. Keys are whole path segments, either literal or parameter, and
// every mutating operation is copy-on-write: the node being changed and its
// ancestors are replaced, untouched sibling subtrees are shared.
package trie

import (
	"maps"
	"slices"
	"strings"
)

// ParamMarker prefixes parameter segments in rendered paths (":name").
const ParamMarker = ":"

// Key identifies one edge in the tree: either a literal segment matched
// verbatim, or a parameter segment that binds the matched token to a name.
// The two kinds are distinct even when their names collide, so a literal
// segment "x" and a parameter ":x" can coexist under one node.
type Key struct {
	name  string
	param bool
}

// Lit returns a literal segment key.
func Lit(segment string) Key {
	return Key{name: segment}
}

// Param returns a parameter segment key with the given binding name.
func Param(name string) Key {
	return Key{name: name, param: true}
}

// IsParam reports whether the key is a parameter segment.
func (k Key) IsParam() bool {
	return k.param
}

// Name returns the literal text or the parameter binding name.
func (k Key) Name() string {
	return k.name
}

// String renders the key for inspection, marking parameters with ":".
func (k Key) String() string {
	if k.param {
		return ParamMarker + k.name
	}
	return k.name
}

// FormatPath renders a path for inspection, one segment per slash.
func FormatPath(path []Key) string {
	parts := make([]string, len(path))
	for i, k := range path {
		parts[i] = k.String()
	}
	return strings.Join(parts, "/")
}

// Node is one node of the tree: an optional payload plus a children map
// keyed by segment. The zero value and a nil pointer are both valid empty
// trees for read operations; mutating operations return the replacement
// node.
//
// Invariant: a node that carries no value and has no children never
// persists inside a parent's children map. Delete and DeleteAll prune such
// nodes bottom-up along the path they touched.
type Node[T any] struct {
	value    *T
	children map[Key]*Node[T]
}

// New returns an empty node.
func New[T any]() *Node[T] {
	return &Node[T]{}
}

// NewValue returns a node holding the given payload.
func NewValue[T any](value T) *Node[T] {
	return &Node[T]{value: &value}
}

// Value returns the payload at this node, or nil.
func (n *Node[T]) Value() *T {
	if n == nil {
		return nil
	}
	return n.value
}

// Empty reports whether the node holds no value and has no children.
func (n *Node[T]) Empty() bool {
	return n == nil || (n.value == nil && len(n.children) == 0)
}

// HasChildren reports whether the node has any child at all.
func (n *Node[T]) HasChildren() bool {
	return n != nil && len(n.children) > 0
}

// clone returns a shallow copy whose children map is safe to modify.
func (n *Node[T]) clone() *Node[T] {
	c := &Node[T]{value: n.value}
	if len(n.children) > 0 {
		c.children = maps.Clone(n.children)
	}
	return c
}

// Insert returns a tree with value stored at path. A nil value is a no-op;
// inserting at an empty path replaces the node's own payload. Nodes along
// the path are created as needed.
func (n *Node[T]) Insert(path []Key, value *T) *Node[T] {
	if value == nil {
		return n
	}
	if n == nil {
		n = New[T]()
	}
	if len(path) == 0 {
		c := n.clone()
		c.value = value
		return c
	}

	child := n.children[path[0]]
	if child == nil {
		child = New[T]()
	}
	child = child.Insert(path[1:], value)

	c := n.clone()
	if c.children == nil {
		c.children = make(map[Key]*Node[T], 1)
	}
	c.children[path[0]] = child
	return c
}

// Delete returns a tree with the value at path cleared. Children of the
// terminal node survive; emptied nodes are pruned bottom-up along the path
// only. A path that does not exist leaves the tree unchanged.
func (n *Node[T]) Delete(path []Key) *Node[T] {
	if n == nil {
		return nil
	}
	if len(path) == 0 {
		if n.value == nil {
			return n
		}
		c := n.clone()
		c.value = nil
		return c
	}

	child, ok := n.children[path[0]]
	if !ok {
		return n
	}
	updated := child.Delete(path[1:])
	if updated == child {
		return n
	}
	return n.replaceChild(path[0], updated)
}

// DeleteAll returns a tree with the entire subtree at path removed,
// then prunes emptied ancestors the same way Delete does. Calling it with
// an empty path clears the whole tree.
func (n *Node[T]) DeleteAll(path []Key) *Node[T] {
	if n == nil {
		return nil
	}
	if len(path) == 0 {
		return New[T]()
	}

	child, ok := n.children[path[0]]
	if !ok {
		return n
	}
	if len(path) == 1 {
		c := n.clone()
		delete(c.children, path[0])
		if len(c.children) == 0 {
			c.children = nil
		}
		return c
	}
	updated := child.DeleteAll(path[1:])
	if updated == child {
		return n
	}
	return n.replaceChild(path[0], updated)
}

// replaceChild swaps in an updated child, dropping it instead if it became
// empty.
func (n *Node[T]) replaceChild(key Key, updated *Node[T]) *Node[T] {
	c := n.clone()
	if updated.Empty() {
		delete(c.children, key)
		if len(c.children) == 0 {
			c.children = nil
		}
	} else {
		c.children[key] = updated
	}
	return c
}

// SearchNext returns the child under the exact key, or nil.
func (n *Node[T]) SearchNext(key Key) *Node[T] {
	if n == nil {
		return nil
	}
	return n.children[key]
}

// Search walks the whole path with SearchNext, returning nil on the first
// miss. Searching from a nil node is nil.
func (n *Node[T]) Search(path []Key) *Node[T] {
	cur := n
	for _, k := range path {
		cur = cur.SearchNext(k)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Literal returns the child under the literal key for segment, or nil.
func (n *Node[T]) Literal(segment string) *Node[T] {
	return n.SearchNext(Lit(segment))
}

// ParamChild pairs a parameter child with its binding name.
type ParamChild[T any] struct {
	Name string
	Node *Node[T]
}

// ParamChildren returns the parameter children of the node sorted by
// binding name, so callers that must pick among several are deterministic.
func (n *Node[T]) ParamChildren() []ParamChild[T] {
	if n == nil {
		return nil
	}
	var out []ParamChild[T]
	for k, child := range n.children {
		if k.param {
			out = append(out, ParamChild[T]{Name: k.name, Node: child})
		}
	}
	slices.SortFunc(out, func(a, b ParamChild[T]) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// ActivePaths collects every path whose terminal node holds a value, each
// listed exactly once. Output is sorted (literals before parameters, then
// by name) so listings are stable.
func (n *Node[T]) ActivePaths() [][]Key {
	var paths [][]Key
	n.walk(nil, func(path []Key, _ *T) {
		paths = append(paths, slices.Clone(path))
	})
	return paths
}

// Values flattens every payload reachable from the node, in ActivePaths
// order.
func (n *Node[T]) Values() []T {
	var values []T
	n.walk(nil, func(_ []Key, v *T) {
		values = append(values, *v)
	})
	return values
}

// walk traverses depth-first, invoking fn for every value-bearing node.
func (n *Node[T]) walk(prefix []Key, fn func(path []Key, value *T)) {
	if n == nil {
		return
	}
	if n.value != nil {
		fn(prefix, n.value)
	}
	keys := make([]Key, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	for _, k := range keys {
		n.children[k].walk(append(prefix, k), fn)
	}
}

func compareKeys(a, b Key) int {
	if a.param != b.param {
		if b.param {
			return -1
		}
		return 1
	}
	return strings.Compare(a.name, b.name)
}
