package reactive

import "reflect"

// Computed is a read-only value derived from other cells. It recomputes
// whenever one of the dependencies given to NewComputed notifies, and
// notifies its own listeners only when the result changes.
//
// Computed deliberately has no Set method.
type Computed[T any] struct {
	id      uint64
	compute func() T
	value   T
	equal   func(T, T) bool

	n notifier[T]
}

// NewComputed creates a computed value. compute runs once immediately to
// seed the cached value, and again each time a dependency notifies.
//
// Each dependency is subscribed through Watch, which delivers at once, so
// construction recomputes once per dependency. Those results equal the
// seed and produce no notification.
func NewComputed[T any](compute func() T, deps []Source, opts ...Option) *Computed[T] {
	o := applyOptions(opts)
	c := &Computed[T]{
		id:      nextID(),
		compute: compute,
	}
	c.n = newNotifier[T](o, "computed", c.id)
	c.value = compute()

	for _, dep := range deps {
		if dep != nil {
			dep.Watch(c.recompute)
		}
	}
	return c
}

// Get returns the cached value without recomputing.
func (c *Computed[T]) Get() T {
	return c.value
}

// Effect registers listener and delivers the current value to it, at once
// or, with AsyncEffect, on the scheduler.
func (c *Computed[T]) Effect(listener Listener[T]) Disposer {
	return c.n.register(listener, c.value)
}

// Watch registers fn as a listener that ignores the value.
func (c *Computed[T]) Watch(fn func()) Disposer {
	if fn == nil {
		return c.Effect(nil)
	}
	return c.Effect(func(T) { fn() })
}

// WithEquals sets the function that decides whether a recomputed value is
// a change. It applies from the next recompute on.
func (c *Computed[T]) WithEquals(fn func(a, b T) bool) *Computed[T] {
	c.equal = fn
	return c
}

// ID returns the computed value's unique identifier.
func (c *Computed[T]) ID() uint64 {
	return c.id
}

// Name returns the computed value's name.
func (c *Computed[T]) Name() string {
	return c.n.name
}

// Type returns T.
func (c *Computed[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// ReadOnly reports true.
func (c *Computed[T]) ReadOnly() bool {
	return true
}

// GetAny returns the cached value as an any.
func (c *Computed[T]) GetAny() any {
	return c.value
}

// SetAny always fails with an error matching ErrReadOnly.
func (c *Computed[T]) SetAny(any) error {
	return readOnly(c.n.name)
}

// EffectAny is Effect for an untyped listener.
func (c *Computed[T]) EffectAny(listener func(value any)) Disposer {
	if listener == nil {
		return c.Effect(nil)
	}
	return c.Effect(func(v T) { listener(v) })
}

// recompute runs compute and propagates the result if it changed.
func (c *Computed[T]) recompute() {
	next := c.compute()
	if c.equals(c.value, next) {
		c.n.suppressed()
		return
	}
	c.value = next
	c.n.changed(c.Get)
}

func (c *Computed[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}
