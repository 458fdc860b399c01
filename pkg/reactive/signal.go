package reactive

import "reflect"

// Signal is a mutable reactive value. Set stores a new value and notifies
// listeners, unless the new value equals the current one.
type Signal[T any] struct {
	id    uint64
	value T

	// equal decides whether a new value is a change. If nil, defaultEquals.
	equal func(T, T) bool

	n notifier[T]
}

// NewSignal creates a signal holding initial.
func NewSignal[T any](initial T, opts ...Option) *Signal[T] {
	o := applyOptions(opts)
	s := &Signal[T]{
		id:    nextID(),
		value: initial,
	}
	s.n = newNotifier[T](o, "signal", s.id)
	return s
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	return s.value
}

// Set stores value and notifies listeners if it differs from the current
// value. Without AsyncUpdates, listeners have run by the time Set returns.
func (s *Signal[T]) Set(value T) {
	if s.equals(s.value, value) {
		s.n.suppressed()
		return
	}
	s.value = value
	s.n.changed(s.Get)
}

// Update sets the value to fn applied to the current value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// Effect registers listener and delivers the current value to it, at once
// or, with AsyncEffect, on the scheduler. The delivered value is the one
// current when Effect was called.
func (s *Signal[T]) Effect(listener Listener[T]) Disposer {
	return s.n.register(listener, s.value)
}

// Watch registers fn as a listener that ignores the value.
func (s *Signal[T]) Watch(fn func()) Disposer {
	if fn == nil {
		return s.Effect(nil)
	}
	return s.Effect(func(T) { fn() })
}

// WithEquals sets the function that decides whether a new value is a
// change. This is useful for types where structural comparison is too
// expensive or has the wrong semantics.
func (s *Signal[T]) WithEquals(fn func(a, b T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the signal's unique identifier.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Name returns the signal's name.
func (s *Signal[T]) Name() string {
	return s.n.name
}

// Type returns T.
func (s *Signal[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// ReadOnly reports false; signals accept SetAny.
func (s *Signal[T]) ReadOnly() bool {
	return false
}

// GetAny returns the current value as an any.
func (s *Signal[T]) GetAny() any {
	return s.value
}

// SetAny sets the value from an any. It returns an error matching
// ErrTypeMismatch if value is not a T.
func (s *Signal[T]) SetAny(value any) error {
	v, err := assign[T](s.n.name, value)
	if err != nil {
		return err
	}
	s.Set(v)
	return nil
}

// EffectAny is Effect for an untyped listener.
func (s *Signal[T]) EffectAny(listener func(value any)) Disposer {
	if listener == nil {
		return s.Effect(nil)
	}
	return s.Effect(func(v T) { listener(v) })
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}
