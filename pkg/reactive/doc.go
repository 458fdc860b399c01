// Package reactive provides signals and computed values that notify
// listeners when their value changes.
//
// # Core Types
//
// Signal[T] is a mutable reactive value:
//
//	count := reactive.NewSignal(2)
//	count.Get()     // 2
//	count.Set(5)    // notifies listeners
//	count.Set(5)    // equal value, nothing happens
//
// Computed[T] derives a value from an explicit list of dependencies and
// recomputes whenever one of them notifies:
//
//	double := reactive.NewComputed(func() int {
//	    return count.Get() * 2
//	}, []reactive.Source{count})
//
// Computed has no Set method. Dependencies are never inferred from reads;
// only the cells passed at construction trigger a recompute.
//
// # Effects
//
// Effect registers a listener and immediately delivers the current value.
// The returned Disposer removes it:
//
//	dispose := double.Effect(func(v int) { fmt.Println("double is", v) })
//	defer dispose()
//
// # Change Detection
//
// A new value only propagates when it differs structurally from the
// current one, as decided by equal.Equal, or by the function passed to
// WithEquals.
//
// # Batching
//
// With AsyncUpdates, a change schedules one flush on the cell's
// microtask.Scheduler. Further changes before the flush are coalesced and
// listeners see only the value current when the flush runs:
//
//	count := reactive.NewSignal(0, reactive.AsyncUpdates())
//	count.Set(1)
//	count.Set(2)
//	microtask.Drain() // listeners receive 2, once
//
// AsyncEffect defers the initial delivery of Effect the same way. Cells
// without WithScheduler use microtask.Default().
//
// # Concurrency
//
// Cells take no locks. A graph of cells belongs to one goroutine at a time;
// share it across goroutines by running every access on a microtask.Loop.
// Panics raised by listeners are not recovered and reach the caller of
// Set, or whoever drains the scheduler.
package reactive
