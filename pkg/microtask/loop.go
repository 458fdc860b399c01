package microtask

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Loop runs tasks one at a time on the goroutine that calls Run. After
// each task it drains the microtasks that task deferred.
type Loop struct {
	mu     sync.Mutex
	inbox  []func()
	closed bool

	// wake has capacity 1 so Submit never blocks.
	wake chan struct{}
	done chan struct{}

	running atomic.Bool
	micro   *Queue

	logger  *zap.Logger
	onFault func(err error)
}

var _ Scheduler = (*Loop)(nil)

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLogger sets the loop's logger. The default discards everything.
func WithLogger(logger *zap.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFaultHandler keeps the loop running after a task submitted with
// Submit panics; fn receives the *PanicError. Without a handler such a
// panic stops Run, which returns the *PanicError.
func WithFaultHandler(fn func(err error)) LoopOption {
	return func(l *Loop) {
		l.onFault = fn
	}
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		micro:  NewQueue(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Defer queues a microtask. It must only be called from the loop
// goroutine, which is where cells attached to the loop run.
func (l *Loop) Defer(task func()) {
	l.micro.Defer(task)
}

// Submit queues task to run on the loop. It is safe to call from any
// goroutine and never blocks.
func (l *Loop) Submit(task func()) error {
	if task == nil {
		return nil
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.inbox = append(l.inbox, task)
	l.mu.Unlock()

	l.signal()
	return nil
}

// Do runs fn on the loop and waits until fn and the microtasks it deferred
// have finished. A panic inside either is returned as a *PanicError and the
// loop keeps running.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	result := make(chan error, 1)
	err := l.Submit(func() {
		result <- l.guard(func() {
			fn()
			l.micro.Drain()
		})
	})
	if err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The task may have finished just before the loop stopped.
		select {
		case err := <-result:
			return err
		default:
			return ErrLoopClosed
		}
	}
}

// Run executes submitted tasks until ctx is cancelled or the loop is closed
// and its inbox is empty. Cancellation abandons queued tasks.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer close(l.done)

	l.logger.Debug("loop started")
	defer l.logger.Debug("loop stopped")

	for {
		if err := ctx.Err(); err != nil {
			l.Close()
			return err
		}

		task, ok, closed := l.next()
		if !ok {
			if closed {
				return nil
			}
			select {
			case <-ctx.Done():
				l.Close()
				return ctx.Err()
			case <-l.wake:
			}
			continue
		}

		err := l.guard(func() {
			task()
			l.micro.Drain()
		})
		if err == nil {
			continue
		}

		l.logger.Error("task panicked", zap.Error(err), zap.ByteString("stack", err.(*PanicError).Stack))
		if l.onFault == nil {
			l.Close()
			return err
		}
		l.onFault(err)
	}
}

// Close stops the loop from accepting tasks. Tasks already submitted still
// run. Close is idempotent.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.signal()
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) next() (task func(), ok, closed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.inbox) == 0 {
		l.inbox = nil
		return nil, false, l.closed
	}
	task = l.inbox[0]
	l.inbox[0] = nil
	l.inbox = l.inbox[1:]
	return task, true, l.closed
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// guard runs fn and converts a panic into a *PanicError.
func (l *Loop) guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	fn()
	return nil
}
