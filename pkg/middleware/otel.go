package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/textmux/pkg/dispatch"
)

// Default tracer name for textmux dispatchers.
const defaultTracerName = "textmux"

// OTelConfig configures the OpenTelemetry dispatch observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "textmux").
	TracerName string

	// IncludeContent includes the raw message content in spans.
	// May contain sensitive information - disabled by default.
	IncludeContent bool

	// Filter determines which invocations to trace.
	// Return true to trace, false to skip. If nil, everything is traced.
	Filter func(routerID, content string) bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry dispatch observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) { c.TracerName = name }
}

// WithIncludeContent enables including raw content in spans.
func WithIncludeContent(include bool) OTelOption {
	return func(c *OTelConfig) { c.IncludeContent = include }
}

// WithFilter sets a filter function for invocations.
func WithFilter(filter func(routerID, content string) bool) OTelOption {
	return func(c *OTelConfig) { c.Filter = filter }
}

// OpenTelemetry creates a dispatch observer that opens one span per
// invocation, records the matched route and duration, and sets span status
// on failure. The tracer comes from the global OpenTelemetry tracer
// provider; configure that in main() before dispatching.
func OpenTelemetry(opts ...OTelOption) dispatch.Observer {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &otelObserver{config: config}
}

type otelObserver struct {
	config OTelConfig
}

func (o *otelObserver) Begin(ctx context.Context, routerID, content string) context.Context {
	if o.config.Filter != nil && !o.config.Filter(routerID, content) {
		return ctx
	}

	attrs := []attribute.KeyValue{
		attribute.String("textmux.router", routerID),
	}
	if o.config.IncludeContent {
		attrs = append(attrs, attribute.String("textmux.content", content))
	}

	ctx, _ = o.config.tracer.Start(ctx, "textmux.dispatch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx
}

func (o *otelObserver) End(ctx context.Context, obs dispatch.Observation) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	defer span.End()

	if obs.Route != "" {
		span.SetAttributes(attribute.String("textmux.route", obs.Route))
	}
	span.SetAttributes(attribute.Bool("textmux.halted", obs.Halted))

	if obs.Err != nil && !obs.Halted {
		span.RecordError(obs.Err)
		span.SetStatus(codes.Error, obs.Err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
