// Package dispatch implements the invoker: it tokenizes raw input, matches
// it against the route store, assembles the working message, runs the
// interceptor chain with halt semantics, and calls the terminal handler.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/vango-dev/textmux/pkg/command"
	"github.com/vango-dev/textmux/pkg/message"
	"github.com/vango-dev/textmux/pkg/router"
)

// Dispatcher runs invocations against a route store. All of its methods
// are safe for concurrent use; each invocation works on its own message.
type Dispatcher struct {
	store     *router.Store
	prefix    string
	logger    *slog.Logger
	observers []Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPrefix requires content to start with prefix. The prefix and any
// whitespace immediately following it are stripped before tokenizing. An
// empty prefix (the default) accepts everything.
func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) { d.prefix = prefix }
}

// WithLogger sets the logger for contract violations.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithObservers registers dispatch observers, notified in order.
func WithObservers(observers ...Observer) Option {
	return func(d *Dispatcher) { d.observers = append(d.observers, observers...) }
}

// New returns a dispatcher over the given store.
func New(store *router.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{store: store}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Store returns the dispatcher's route store.
func (d *Dispatcher) Store() *router.Store { return d.store }

// Invoke dispatches src against the named router and returns the terminal
// handler's result.
func (d *Dispatcher) Invoke(src message.Source, routerID string) (any, error) {
	return d.InvokeContext(context.Background(), src, routerID)
}

// InvokeText is shorthand for dispatching a raw string.
func (d *Dispatcher) InvokeText(text, routerID string) (any, error) {
	return d.Invoke(message.Text(text), routerID)
}

// InvokeContext dispatches src with an explicit context, which is attached
// to the message for interceptors and handlers that need it. There is no
// internal timeout or retry: a failed match or halted pipeline is a
// terminal, reported outcome.
func (d *Dispatcher) InvokeContext(ctx context.Context, src message.Source, routerID string) (any, error) {
	msg := message.FromSource(src)
	start := time.Now()

	for _, o := range d.observers {
		ctx = o.Begin(ctx, routerID, msg.Content())
	}

	result, err := d.invoke(ctx, msg, routerID)

	if len(d.observers) > 0 {
		var halted *HaltedError
		obs := Observation{
			Router:   routerID,
			Route:    msg.Route(),
			Duration: time.Since(start),
			Err:      err,
			Halted:   errors.As(err, &halted),
		}
		for _, o := range d.observers {
			o.End(ctx, obs)
		}
	}
	return result, err
}

func (d *Dispatcher) invoke(ctx context.Context, msg *message.Message, routerID string) (any, error) {
	content, ok := d.stripPrefix(msg.Content())
	if !ok {
		return nil, ErrWrongPrefix
	}

	m, err := d.store.MatchRoute(routerID, Tokenize(content))
	if err != nil {
		return nil, err
	}
	cmd := m.Command

	msg.MergeAssigns(cmd.Assigns())
	msg.MergeParams(m.Params)
	msg.SetRest(m.Rest)
	msg.SetRoute(routerID, cmd.PathString())
	msg.WithContext(ctx)

	for _, step := range cmd.Steps() {
		next, err := d.runStep(step, msg)
		if err != nil {
			return nil, err
		}
		msg = next
		if msg.Halted() {
			return nil, &HaltedError{Message: msg}
		}
	}

	return d.runHandler(cmd, msg)
}

// stripPrefix checks and removes the configured prefix along with any
// whitespace immediately following it.
func (d *Dispatcher) stripPrefix(content string) (string, bool) {
	if d.prefix == "" {
		return content, true
	}
	rest, ok := strings.CutPrefix(content, d.prefix)
	if !ok {
		return "", false
	}
	return strings.TrimLeftFunc(rest, unicode.IsSpace), true
}

// runStep executes one interceptor, converting panics and malformed
// results into contract violations.
func (d *Dispatcher) runStep(step command.Step, msg *message.Message) (out *message.Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ContractError{Step: step.Name(), Reason: "interceptor panicked", Recovered: r}
			d.logger.Error("interceptor panicked", "step", step.Name(), "panic", r)
		}
	}()

	out = step.Intercept(msg)
	if out == nil {
		return nil, &ContractError{Step: step.Name(), Reason: "interceptor returned nil message"}
	}
	return out, nil
}

// runHandler calls the terminal handler, converting panics into contract
// violations.
func (d *Dispatcher) runHandler(cmd *command.Command, msg *message.Message) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ContractError{Step: "handler " + cmd.Name(), Reason: "handler panicked", Recovered: r}
			d.logger.Error("handler panicked", "handler", cmd.Name(), "panic", r)
		}
	}()

	return cmd.Handler()(msg, msg.Params())
}
