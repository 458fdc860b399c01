package reactive

import (
	"github.com/vango-dev/pulse/pkg/microtask"
	"go.uber.org/zap"
)

// Option is a functional option for configuring signals and computed
// values.
type Option func(*options)

// options holds configuration shared by both cell kinds.
type options struct {
	// asyncEffect defers the initial delivery made by Effect.
	asyncEffect bool

	// asyncUpdates batches change notifications into one deferred flush.
	asyncUpdates bool

	// scheduler receives deferred deliveries.
	scheduler microtask.Scheduler

	// name labels the cell in logs, metrics and the binding registry.
	// If empty, one is generated from the cell kind and ID.
	name string

	observer Observer
	logger   *zap.Logger
}

// AsyncEffect defers the immediate delivery made by Effect to the
// scheduler instead of calling the listener before Effect returns.
//
// Example:
//
//	count := reactive.NewSignal(1, reactive.AsyncEffect())
//	count.Effect(render) // render(1) runs on the next drain
func AsyncEffect() Option {
	return func(o *options) {
		o.asyncEffect = true
	}
}

// AsyncUpdates batches change notifications. The first change schedules a
// flush; later changes before it runs are coalesced, and the flush delivers
// the latest value once.
func AsyncUpdates() Option {
	return func(o *options) {
		o.asyncUpdates = true
	}
}

// WithScheduler sets where deferred deliveries go. The default is
// microtask.Default().
func WithScheduler(s microtask.Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithName names the cell.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver reports the cell's change and delivery events to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithLogger sets the logger for debug output about scheduling.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// applyOptions applies the given options and fills in defaults.
func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.scheduler == nil {
		o.scheduler = microtask.Default()
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
