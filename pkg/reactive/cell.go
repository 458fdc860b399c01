package reactive

import "reflect"

// Listener receives a cell's value.
type Listener[T any] func(value T)

// Disposer removes a listener. It reports whether the listener was still
// registered, so the first call returns true and later calls false.
type Disposer func() bool

// Cell is the read capability shared by signals and computed values.
type Cell[T any] interface {
	// Get returns the current value.
	Get() T

	// Effect registers listener and delivers the current value to it.
	Effect(listener Listener[T]) Disposer
}

// Writable is a Cell that can be set directly.
type Writable[T any] interface {
	Cell[T]
	Set(value T)
}

// Source is anything a computed value can depend on. Watch registers fn
// the same way Effect does, ignoring the value.
type Source interface {
	Watch(fn func()) Disposer
}

// Dynamic is the type-erased view of a cell, for callers that address
// cells by name and exchange values as any.
type Dynamic interface {
	Source

	// Name returns the cell's name.
	Name() string

	// Type returns the cell's value type.
	Type() reflect.Type

	// ReadOnly reports whether SetAny always fails.
	ReadOnly() bool

	// GetAny returns the current value.
	GetAny() any

	// SetAny sets the value. It fails with ErrTypeMismatch when value is
	// not of the cell's type and with ErrReadOnly on computed values.
	SetAny(value any) error

	// EffectAny is Effect for untyped listeners.
	EffectAny(listener func(value any)) Disposer
}

var (
	_ Writable[int] = (*Signal[int])(nil)
	_ Dynamic       = (*Signal[int])(nil)
	_ Cell[int]     = (*Computed[int])(nil)
	_ Dynamic       = (*Computed[int])(nil)
)
