// Package message defines the value threaded through the dispatch pipeline
// and the capability interface that adapts arbitrary inputs into it.
package message

import (
	"context"
	"maps"
)

// Source is the capability a value must expose to be dispatched. Anything
// satisfying it is accepted; raw text is trivially adapted by Text.
type Source interface {
	// Content returns the raw text to tokenize and match.
	Content() string

	// Assigns returns initial assigns carried into the pipeline. May be nil.
	Assigns() map[string]any

	// Params returns initial params carried into the pipeline. May be nil.
	Params() map[string]string
}

// Text adapts a plain string into a Source with empty assigns and params.
type Text string

// Content implements Source.
func (t Text) Content() string { return string(t) }

// Assigns implements Source.
func (t Text) Assigns() map[string]any { return nil }

// Params implements Source.
func (t Text) Params() map[string]string { return nil }

// Message is the mutable value one invocation threads through the
// interceptor chain and into the terminal handler. It is created per
// invocation and never shared across invocations.
type Message struct {
	content string
	assigns map[string]any
	params  map[string]string

	// rest holds tokens beyond the matched path, for handlers that consume
	// free-form trailing text.
	rest []string

	// halted is monotonic: once set it is never cleared within an
	// invocation.
	halted bool

	routerID string
	route    string

	ctx context.Context
}

// New returns a message wrapping the given raw content.
func New(content string) *Message {
	return &Message{content: content}
}

// FromSource builds a message from any Source, copying its assigns and
// params so later pipeline mutations cannot leak back into the input.
func FromSource(src Source) *Message {
	m := New(src.Content())
	if a := src.Assigns(); len(a) > 0 {
		m.assigns = maps.Clone(a)
	}
	if p := src.Params(); len(p) > 0 {
		m.params = maps.Clone(p)
	}
	return m
}

// Content returns the original raw text of the invocation.
func (m *Message) Content() string { return m.content }

// Assigns returns the live assigns map, allocating it on first use.
func (m *Message) Assigns() map[string]any {
	if m.assigns == nil {
		m.assigns = make(map[string]any)
	}
	return m.assigns
}

// Assign stores one assign and returns the message for chaining.
func (m *Message) Assign(key string, value any) *Message {
	m.Assigns()[key] = value
	return m
}

// Get returns the assign under key, with ok reporting presence.
func (m *Message) Get(key string) (any, bool) {
	v, ok := m.assigns[key]
	return v, ok
}

// MergeAssigns copies every entry of in into the message assigns.
func (m *Message) MergeAssigns(in map[string]any) {
	if len(in) == 0 {
		return
	}
	maps.Copy(m.Assigns(), in)
}

// Params returns the live params map, allocating it on first use.
func (m *Message) Params() map[string]string {
	if m.params == nil {
		m.params = make(map[string]string)
	}
	return m.params
}

// Param returns the parameter bound under name, with ok reporting presence.
func (m *Message) Param(name string) (string, bool) {
	v, ok := m.params[name]
	return v, ok
}

// MergeParams copies every entry of in into the message params.
func (m *Message) MergeParams(in map[string]string) {
	if len(in) == 0 {
		return
	}
	maps.Copy(m.Params(), in)
}

// Rest returns the tokens left unconsumed after the matched path.
func (m *Message) Rest() []string { return m.rest }

// SetRest attaches the leftover tokens.
func (m *Message) SetRest(rest []string) { m.rest = rest }

// Halt marks the message halted, stopping the interceptor chain after the
// current step. There is no way to clear the flag.
func (m *Message) Halt() *Message {
	m.halted = true
	return m
}

// Halted reports whether the message has been halted.
func (m *Message) Halted() bool { return m.halted }

// RouterID returns the router the message was dispatched against. Empty
// until the dispatcher has matched a route.
func (m *Message) RouterID() string { return m.routerID }

// Route returns the rendered path of the matched route. Empty until the
// dispatcher has matched a route.
func (m *Message) Route() string { return m.route }

// SetRoute records the matched router and route on the message.
func (m *Message) SetRoute(routerID, route string) {
	m.routerID = routerID
	m.route = route
}

// Context returns the invocation context, defaulting to
// context.Background().
func (m *Message) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// WithContext attaches a context to the message and returns it.
func (m *Message) WithContext(ctx context.Context) *Message {
	m.ctx = ctx
	return m
}
