package render

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the render collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "slate").
	Namespace string

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the render collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the render collectors. A nil *Metrics records nothing.
//
// Metrics collected:
//   - slate_render_total: Counter of renders by status
//   - slate_render_duration_seconds: Histogram of render duration
//   - slate_injections_dropped_total: Counter of head/body injections made
//     after the document resolved
//   - slate_component_activations_total: Counter of component activations
type Metrics struct {
	renders     *prometheus.CounterVec
	duration    prometheus.Histogram
	dropped     prometheus.Counter
	activations prometheus.Counter
}

// NewMetrics registers the render collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "slate",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "render_total",
			Help:      "Total number of renders",
		}, []string{"status"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "render_duration_seconds",
			Help:      "Render duration in seconds",
			Buckets:   config.Buckets,
		}),

		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "injections_dropped_total",
			Help:      "Head and body injections dropped because the document had resolved",
		}),

		activations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "component_activations_total",
			Help:      "Total number of component activations",
		}),
	}
}

func (m *Metrics) observeRender(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(status).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) injectionDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *Metrics) componentActivated() {
	if m == nil {
		return
	}
	m.activations.Inc()
}
