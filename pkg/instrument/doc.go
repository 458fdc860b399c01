// Package instrument provides reactive.Observer implementations that export
// cell activity to Prometheus and OpenTelemetry.
//
// Observers are attached per cell with reactive.WithObserver:
//
//	metrics := instrument.NewMetrics(instrument.WithRegistry(reg))
//	tracer := instrument.NewTracer(instrument.WithTracerName("counter"))
//
//	count := reactive.NewSignal(0,
//	    reactive.WithName("count"),
//	    reactive.WithObserver(instrument.Combine(metrics, tracer)),
//	)
//
// Metrics collected:
//   - pulse_changes_total: committed value changes by cell
//   - pulse_suppressed_total: candidate values judged equal by cell
//   - pulse_flushes_scheduled_total: deferred batched flushes by cell
//   - pulse_changes_coalesced_total: changes absorbed by a pending flush
//   - pulse_listener_calls_total: listener invocations by cell
//   - pulse_dispatch_duration_seconds: time spent in one dispatch pass
//
// The tracer records one span per dispatch pass. Observers run inline on
// the goroutine that owns the cells.
package instrument
