package instrument

import (
	"context"
	"time"

	"github.com/vango-dev/pulse/pkg/reactive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for pulse cells.
const defaultTracerName = "pulse"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "pulse").
	TracerName string

	// Provider supplies the tracer. Default: otel.GetTracerProvider().
	Provider trace.TracerProvider

	// Filter determines which cells are traced.
	// If nil, all cells are traced.
	Filter func(cell string) bool

	// Attributes are added to every span.
	Attributes []attribute.KeyValue
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the provider the tracer is taken from.
func WithTracerProvider(provider trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = provider
	}
}

// WithCellFilter sets a filter function for cells.
func WithCellFilter(filter func(cell string) bool) TracerOption {
	return func(c *TracerConfig) {
		c.Filter = filter
	}
}

// WithAttributes adds attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) TracerOption {
	return func(c *TracerConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Tracer is a reactive.Observer that records a span for every dispatch
// pass. The span starts when the pass started and ends when Delivered is
// called. Other events are not traced.
type Tracer struct {
	config TracerConfig
	tracer trace.Tracer
}

var _ reactive.Observer = (*Tracer)(nil)

// NewTracer creates a tracing observer.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before creating
// cells:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}

	return &Tracer{
		config: config,
		tracer: config.Provider.Tracer(config.TracerName),
	}
}

func (t *Tracer) Changed(string)    {}
func (t *Tracer) Suppressed(string) {}
func (t *Tracer) Scheduled(string)  {}
func (t *Tracer) Coalesced(string)  {}

// Delivered records the finished dispatch pass as a span named
// "pulse.dispatch".
func (t *Tracer) Delivered(cell string, listeners int, start time.Time) {
	if t.config.Filter != nil && !t.config.Filter(cell) {
		return
	}

	attrs := make([]attribute.KeyValue, 0, 2+len(t.config.Attributes))
	attrs = append(attrs,
		attribute.String("pulse.cell", cell),
		attribute.Int("pulse.listeners", listeners),
	)
	attrs = append(attrs, t.config.Attributes...)

	_, span := t.tracer.Start(
		context.Background(),
		"pulse.dispatch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(start),
	)
	span.End(trace.WithTimestamp(time.Now()))
}
