// Package command defines the immutable route descriptors consumed by the
// route store: the command itself (path, interceptor chain, handler, static
// assigns), the two interceptor contracts, and the builder that assembles
// command lists from declarative statements.
package command

import (
	"maps"
	"strings"

	"github.com/vango-dev/textmux/pkg/message"
	"github.com/vango-dev/textmux/pkg/trie"
)

// Handler is the terminal step of a route. It receives the assembled
// message and, for convenience, the extracted path parameters.
type Handler func(msg *message.Message, params map[string]string) (any, error)

// Module is the two-phase interceptor contract: Init runs once when the
// command list is built and its result is carried as the step config; Call
// runs per invocation.
type Module interface {
	Init(options any) (config any)
	Call(msg *message.Message, config any) *message.Message
}

// Func is the single-phase interceptor contract: no init step, the raw
// config is passed straight through on every call.
type Func func(msg *message.Message, config any) *message.Message

// Step is one bound interceptor step of a pipeline. Both interceptor kinds
// are unified behind Intercept, so the pipeline runner never distinguishes
// them.
type Step struct {
	name string
	call func(*message.Message) *message.Message
}

// Bind initializes a module-style interceptor with its options and returns
// the bound step. Init runs exactly once, here.
func Bind(name string, m Module, options any) Step {
	config := m.Init(options)
	return Step{
		name: name,
		call: func(msg *message.Message) *message.Message {
			return m.Call(msg, config)
		},
	}
}

// BindFunc binds a function-style interceptor with its raw config.
func BindFunc(name string, f Func, config any) Step {
	return Step{
		name: name,
		call: func(msg *message.Message) *message.Message {
			return f(msg, config)
		},
	}
}

// Intercept runs the step on msg.
func (s Step) Intercept(msg *message.Message) *message.Message {
	return s.call(msg)
}

// Name returns the step's registration name, for listings and logs.
func (s Step) Name() string { return s.name }

// Command is an immutable route descriptor. It is produced once at
// definition time and treated as read-only data everywhere in the core.
type Command struct {
	path    []trie.Key
	steps   []Step
	handler Handler
	name    string
	doc     string
	assigns map[string]any
}

// Option configures a command at construction time.
type Option func(*Command)

// WithName sets the handler reference name used in listings and docs.
func WithName(name string) Option {
	return func(c *Command) { c.name = name }
}

// WithDoc attaches a documentation string to the command.
func WithDoc(doc string) Option {
	return func(c *Command) { c.doc = doc }
}

// WithAssign adds one static assign merged into every matching message.
func WithAssign(key string, value any) Option {
	return func(c *Command) {
		if c.assigns == nil {
			c.assigns = make(map[string]any)
		}
		c.assigns[key] = value
	}
}

// Intercept appends steps to the command's interceptor chain.
func Intercept(steps ...Step) Option {
	return func(c *Command) { c.steps = append(c.steps, steps...) }
}

// New builds a command from a path pattern and terminal handler. The path
// is resolved here, once; the core never re-parses it.
func New(path string, handler Handler, opts ...Option) Command {
	c := Command{
		path:    ParsePath(path),
		handler: handler,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Path returns the resolved path. The returned slice must not be modified.
func (c Command) Path() []trie.Key { return c.path }

// PathString renders the path with parameter markers (for example
// "calc/add/:x/:y").
func (c Command) PathString() string { return trie.FormatPath(c.path) }

// Steps returns the ordered interceptor chain. The returned slice must not
// be modified.
func (c Command) Steps() []Step { return c.steps }

// Handler returns the terminal handler.
func (c Command) Handler() Handler { return c.handler }

// Name returns the handler reference name, or the rendered path when no
// name was set.
func (c Command) Name() string {
	if c.name == "" {
		return c.PathString()
	}
	return c.name
}

// Doc returns the command's documentation string, if any.
func (c Command) Doc() string { return c.doc }

// Assigns returns a copy of the command's static assigns.
func (c Command) Assigns() map[string]any {
	if len(c.assigns) == 0 {
		return nil
	}
	return maps.Clone(c.assigns)
}

// ParsePath resolves a slash-delimited pattern into path segments.
// Segments starting with ":" become parameters; empty segments are
// dropped, so "a//b" and "/a/b/" both resolve to [a b].
func ParsePath(pattern string) []trie.Key {
	var path []trie.Key
	for _, seg := range strings.Split(pattern, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, trie.ParamMarker) {
			path = append(path, trie.Param(seg[len(trie.ParamMarker):]))
			continue
		}
		path = append(path, trie.Lit(seg))
	}
	return path
}
