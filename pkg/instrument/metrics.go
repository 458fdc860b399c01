package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/pulse/pkg/reactive"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "pulse").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: 1µs to about 0.26s, exponential.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
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

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "pulse",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a reactive.Observer that counts cell events in Prometheus.
// Every metric carries a "cell" label with the cell's name, so cells
// observed by one Metrics should have stable, low-cardinality names.
type Metrics struct {
	changes          *prometheus.CounterVec
	suppressed       *prometheus.CounterVec
	scheduled        *prometheus.CounterVec
	coalesced        *prometheus.CounterVec
	listenerCalls    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

var _ reactive.Observer = (*Metrics)(nil)

// NewMetrics registers the cell metrics and returns an observer that
// records into them. Registering twice on the same registry panics, as
// with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, []string{"cell"})
	}

	return &Metrics{
		changes:       counter("changes_total", "Total number of committed cell value changes"),
		suppressed:    counter("suppressed_total", "Total number of candidate values judged equal to the current value"),
		scheduled:     counter("flushes_scheduled_total", "Total number of deferred batched flushes"),
		coalesced:     counter("changes_coalesced_total", "Total number of changes absorbed by a pending flush"),
		listenerCalls: counter("listener_calls_total", "Total number of listener invocations from dispatch passes"),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Duration of one dispatch pass over a cell's listeners",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"cell"}),
	}
}

func (m *Metrics) Changed(cell string) {
	m.changes.WithLabelValues(cell).Inc()
}

func (m *Metrics) Suppressed(cell string) {
	m.suppressed.WithLabelValues(cell).Inc()
}

func (m *Metrics) Scheduled(cell string) {
	m.scheduled.WithLabelValues(cell).Inc()
}

func (m *Metrics) Coalesced(cell string) {
	m.coalesced.WithLabelValues(cell).Inc()
}

// Delivered counts the listeners in the pass and observes its duration.
func (m *Metrics) Delivered(cell string, listeners int, start time.Time) {
	m.listenerCalls.WithLabelValues(cell).Add(float64(listeners))
	m.dispatchDuration.WithLabelValues(cell).Observe(time.Since(start).Seconds())
}
