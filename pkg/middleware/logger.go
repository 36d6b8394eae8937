package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vango-dev/textmux/pkg/dispatch"
)

// Logger creates a dispatch observer that logs every invocation outcome
// with its router, route, outcome label and latency.
func Logger(logger *slog.Logger) dispatch.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &logObserver{logger: logger}
}

type logObserver struct {
	logger *slog.Logger
}

func (o *logObserver) Begin(ctx context.Context, routerID, content string) context.Context {
	return ctx
}

func (o *logObserver) End(ctx context.Context, obs dispatch.Observation) {
	attrs := []any{
		"router", obs.Router,
		"route", obs.Route,
		"outcome", dispatch.Outcome(obs.Err),
		"duration", obs.Duration,
	}

	var contract *dispatch.ContractError
	switch {
	case errors.As(obs.Err, &contract):
		o.logger.Error("dispatch contract violation", append(attrs, "error", obs.Err)...)
	case obs.Err != nil && !obs.Halted:
		o.logger.Info("dispatch failed", append(attrs, "error", obs.Err)...)
	default:
		o.logger.Info("dispatched", attrs...)
	}
}
