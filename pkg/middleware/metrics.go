// Package middleware provides ready-made dispatch observers (Prometheus
// metrics, OpenTelemetry tracing, slog logging) and stock interceptor
// steps for command pipelines.
package middleware

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/textmux/pkg/dispatch"
)

// MetricsConfig configures the Prometheus dispatch observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "textmux").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for invocation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus dispatch observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "textmux",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus collectors.
type metrics struct {
	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	haltsTotal         *prometheus.CounterVec
}

// globalMetrics is the singleton collector set; collectors can only be
// registered once per process, so repeated Prometheus() calls share it.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		invocationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "invocations_total",
			Help:        "Total number of dispatched invocations by router, route and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"router", "route", "outcome"}),

		invocationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "invocation_duration_seconds",
			Help:        "Invocation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"router", "route"}),

		haltsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "halts_total",
			Help:        "Total number of invocations halted by an interceptor",
			ConstLabels: config.ConstLabels,
		}, []string{"router", "route"}),
	}
}

// Prometheus creates a dispatch observer that records invocation metrics.
//
// Metrics collected:
//   - textmux_invocations_total: counter by router, route and outcome
//   - textmux_invocation_duration_seconds: histogram by router and route
//   - textmux_halts_total: counter of halted invocations by router and route
//
// Example:
//
//	d := dispatch.New(store, dispatch.WithObservers(
//	    middleware.Prometheus(middleware.WithNamespace("mybot")),
//	))
func Prometheus(opts ...MetricsOption) dispatch.Observer {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return &promObserver{metrics: m}
}

type promObserver struct {
	metrics *metrics
}

func (o *promObserver) Begin(ctx context.Context, routerID, content string) context.Context {
	return ctx
}

func (o *promObserver) End(ctx context.Context, obs dispatch.Observation) {
	route := obs.Route
	if route == "" {
		route = "none"
	}

	o.metrics.invocationsTotal.WithLabelValues(obs.Router, route, dispatch.Outcome(obs.Err)).Inc()
	o.metrics.invocationDuration.WithLabelValues(obs.Router, route).Observe(obs.Duration.Seconds())
	if obs.Halted {
		o.metrics.haltsTotal.WithLabelValues(obs.Router, route).Inc()
	}
}
