package reactive

import (
	"fmt"
	"time"

	"github.com/vango-dev/pulse/pkg/microtask"
	"go.uber.org/zap"
)

// notifier owns a cell's listeners and decides when they run: inline, or
// in one deferred flush per scheduler turn.
type notifier[T any] struct {
	name         string
	asyncEffect  bool
	asyncUpdates bool
	scheduler    microtask.Scheduler
	observer     Observer
	logger       *zap.Logger

	listeners listenerSet[T]

	// pending is set while a batched flush is deferred and not yet run.
	pending bool
}

func newNotifier[T any](o options, kind string, id uint64) notifier[T] {
	name := o.name
	if name == "" {
		name = fmt.Sprintf("%s-%d", kind, id)
	}
	return notifier[T]{
		name:         name,
		asyncEffect:  o.asyncEffect,
		asyncUpdates: o.asyncUpdates,
		scheduler:    o.scheduler,
		observer:     o.observer,
		logger:       o.logger.With(zap.String("cell", name)),
	}
}

// register adds listener and delivers value, the value at registration
// time, now or on the scheduler. A deferred delivery is dropped if the
// listener is disposed first.
func (n *notifier[T]) register(listener Listener[T], value T) Disposer {
	if listener == nil {
		return func() bool { return false }
	}

	r := n.listeners.add(listener)
	if n.asyncEffect {
		n.scheduler.Defer(func() {
			if r.active {
				listener(value)
			}
		})
	} else {
		listener(value)
	}

	return func() bool {
		return n.listeners.remove(r)
	}
}

// suppressed records a candidate value that matched the current one.
func (n *notifier[T]) suppressed() {
	n.observer.Suppressed(n.name)
	n.logger.Debug("change suppressed")
}

// changed delivers after a new value was committed. current is read at
// delivery time, so a batched flush sees the latest value.
func (n *notifier[T]) changed(current func() T) {
	n.observer.Changed(n.name)

	if !n.asyncUpdates {
		n.dispatch(current())
		return
	}

	if n.pending {
		n.observer.Coalesced(n.name)
		return
	}

	n.pending = true
	n.observer.Scheduled(n.name)
	n.logger.Debug("flush scheduled")

	n.scheduler.Defer(func() {
		n.pending = false
		called := n.dispatch(current())
		n.logger.Debug("flush delivered", zap.Int("listeners", called))
	})
}

// dispatch calls every listener registered when the pass starts, in
// registration order, skipping any disposed during the pass. It returns
// how many listeners were called.
func (n *notifier[T]) dispatch(value T) int {
	start := time.Now()
	called := 0
	for _, r := range n.listeners.snapshot() {
		if r.active {
			r.fn(value)
			called++
		}
	}
	n.observer.Delivered(n.name, called, start)
	return called
}
