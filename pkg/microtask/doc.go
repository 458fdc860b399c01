// Package microtask provides the deferral primitives behind batched cell
// notifications.
//
// A Scheduler accepts tasks that must run after the current unit of work
// and before the next one, the way a JavaScript microtask runs at the end
// of the current turn. Two schedulers are provided:
//
//   - Queue is a FIFO drained explicitly with Drain. It suits tests and
//     programs that mark their own turn boundaries. Any goroutine may use
//     it; drains never overlap.
//   - Loop owns a goroutine. Other goroutines hand it work with Submit or
//     Do; after every task the loop drains the microtasks that task
//     deferred, so each task is one turn.
//
// Neither type runs tasks in parallel. A reactive graph attached to a Loop
// must only be touched from inside tasks running on that loop.
//
//	loop := microtask.NewLoop(microtask.WithLogger(logger))
//	go loop.Run(ctx)
//
//	count := reactive.NewSignal(0, reactive.AsyncUpdates(), reactive.WithScheduler(loop))
//	err := loop.Do(ctx, func() {
//	    count.Set(1)
//	    count.Set(2) // listeners see 2 once, after this task
//	})
package microtask
