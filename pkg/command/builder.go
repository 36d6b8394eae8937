package command

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/vango-dev/textmux/pkg/trie"
)

// ErrAmbiguousParam is returned when a command list places two parameter
// segments with different names under the same tree node. Matching among
// them would otherwise be a route-design accident, so it is rejected when
// the list is built or loaded.
var ErrAmbiguousParam = errors.New("textmux: ambiguous parameter segments at one level")

// ErrNilHandler is returned when a command is declared without a terminal
// handler.
var ErrNilHandler = errors.New("textmux: command declared with nil handler")

// Builder assembles an immutable command list from ordered declarative
// statements: push an interceptor, open a scope, declare a command. It is
// the plain-data replacement for a compile-time route DSL.
//
//	cmds, err := command.NewBuilder().
//		Use(auth).
//		Scope("calc", func(b *command.Builder) {
//			b.Use(parseNumbers)
//			b.Handle("add/:x/:y", addHandler, command.WithName("calc.add"))
//		}).
//		Build()
type Builder struct {
	scope frame
	cmds  []Command
	errs  []error
}

// frame is the accumulated state of one scope level.
type frame struct {
	path    []trie.Key
	steps   []Step
	assigns map[string]any
}

func (f frame) child(path []trie.Key) frame {
	return frame{
		path:    append(slices.Clone(f.path), path...),
		steps:   slices.Clone(f.steps),
		assigns: maps.Clone(f.assigns),
	}
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Use appends interceptor steps to the current scope. Commands declared
// after the call inherit them; commands already declared are unaffected.
func (b *Builder) Use(steps ...Step) *Builder {
	b.scope.steps = append(b.scope.steps, steps...)
	return b
}

// Assign adds a static assign to the current scope, merged into every
// command declared after the call.
func (b *Builder) Assign(key string, value any) *Builder {
	if b.scope.assigns == nil {
		b.scope.assigns = make(map[string]any)
	}
	b.scope.assigns[key] = value
	return b
}

// Scope declares commands under a path prefix. Interceptors and assigns
// added inside fn stay inside the scope.
func (b *Builder) Scope(path string, fn func(b *Builder)) *Builder {
	inner := &Builder{scope: b.scope.child(ParsePath(path))}
	fn(inner)
	b.cmds = append(b.cmds, inner.cmds...)
	b.errs = append(b.errs, inner.errs...)
	return b
}

// Handle declares a command at path, relative to the current scope.
func (b *Builder) Handle(path string, handler Handler, opts ...Option) *Builder {
	if handler == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrNilHandler, path))
		return b
	}

	c := Command{
		path:    append(slices.Clone(b.scope.path), ParsePath(path)...),
		steps:   slices.Clone(b.scope.steps),
		handler: handler,
		assigns: maps.Clone(b.scope.assigns),
	}
	for _, opt := range opts {
		opt(&c)
	}
	b.cmds = append(b.cmds, c)
	return b
}

// Build returns the accumulated command list. It fails if any declaration
// was invalid or if the list would be ambiguous to match.
func (b *Builder) Build() ([]Command, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if err := ValidatePaths(b.cmds); err != nil {
		return nil, err
	}
	return slices.Clone(b.cmds), nil
}

// ValidatePaths rejects a command list that places two differently-named
// parameter segments under the same node, so matching never depends on an
// arbitrary order among them.
func ValidatePaths(cmds []Command) error {
	// param name seen per node, keyed by the encoded path prefix
	seen := make(map[string]string)
	for _, c := range cmds {
		prefix := ""
		for i, k := range c.path {
			if k.IsParam() {
				if name, ok := seen[prefix]; ok && name != k.Name() {
					return fmt.Errorf("%w: %q and %q under %q",
						ErrAmbiguousParam, name, k.Name(), trie.FormatPath(c.path[:i]))
				}
				seen[prefix] = k.Name()
			}
			prefix += encodeKey(k)
		}
	}
	return nil
}

// encodeKey renders a key so literal and parameter segments can never
// collide in a prefix string.
func encodeKey(k trie.Key) string {
	if k.IsParam() {
		return "\x00p" + k.Name() + "\x00"
	}
	return "\x00l" + k.Name() + "\x00"
}
