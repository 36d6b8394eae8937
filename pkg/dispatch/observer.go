package dispatch

import (
	"context"
	"time"
)

// Observation summarizes one finished invocation for observers.
type Observation struct {
	// Router is the router ID the invocation was dispatched against.
	Router string

	// Route is the rendered path of the matched route, empty when matching
	// failed.
	Route string

	// Duration is the wall time of the whole invocation.
	Duration time.Duration

	// Err is the invocation outcome, nil on success. Halts are reported
	// both here (as *HaltedError) and through Halted.
	Err error

	// Halted reports that an interceptor stopped the pipeline.
	Halted bool
}

// Observer receives dispatch lifecycle notifications. Begin runs before
// tokenizing and may derive a new context (for example to open a trace
// span); the returned context is threaded through the invocation. End runs
// exactly once per invocation, after the handler or the failure.
type Observer interface {
	Begin(ctx context.Context, routerID, content string) context.Context
	End(ctx context.Context, obs Observation)
}
