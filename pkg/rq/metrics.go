package rq

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures engine metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "requery").
	Namespace string

	// Subsystem is the metrics subsystem (default: "engine").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	Buckets []float64

	// Registerer receives the collectors. nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// MetricsOption configures engine metrics.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegisterer sets the Prometheus registerer.
func WithRegisterer(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registerer = reg
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "requery",
		Subsystem: "engine",
		Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
	}
}

// Metrics holds the engine collectors.
type Metrics struct {
	passes          *prometheus.CounterVec
	passDuration    *prometheus.HistogramVec
	passErrors      *prometheus.CounterVec
	clonesCreated   prometheus.Counter
	clonesMoved     prometheus.Counter
	clonesDisposed  prometheus.Counter
	setupRuns       prometheus.Counter
	cleanupFailures prometheus.Counter
	missingNodes    prometheus.Counter
}

// NewMetrics creates the engine collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registerer)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "list_passes_total",
			Help:        "List reconciliation passes by strategy",
			ConstLabels: config.ConstLabels,
		}, []string{"strategy"}),

		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "list_pass_duration_seconds",
			Help:        "List reconciliation pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"strategy"}),

		passErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "list_pass_errors_total",
			Help:        "Rejected or skipped list passes by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		clonesCreated:   counter("clones_created_total", "List item clones created"),
		clonesMoved:     counter("clones_moved_total", "List item clones moved in the document"),
		clonesDisposed:  counter("clones_disposed_total", "List item clones disposed"),
		setupRuns:       counter("setup_runs_total", "List item setup invocations"),
		cleanupFailures: counter("cleanup_failures_total", "Recovered failures in cleanups and mounted callbacks"),
		missingNodes:    counter("missing_nodes_total", "Bindings whose node was not found"),
	}
}
