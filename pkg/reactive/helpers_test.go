package reactive

import (
	"fmt"
	"time"

	"github.com/vango-dev/pulse/pkg/microtask"
)

// recorder collects every value delivered to its listener.
type recorder[T any] struct {
	values []T
}

func (r *recorder[T]) listen(v T) {
	r.values = append(r.values, v)
}

func (r *recorder[T]) count() int {
	return len(r.values)
}

func (r *recorder[T]) last() T {
	var zero T
	if len(r.values) == 0 {
		return zero
	}
	return r.values[len(r.values)-1]
}

// eventLog is an Observer that records events as "kind:cell" strings.
type eventLog struct {
	events []string
}

func (l *eventLog) Changed(cell string)    { l.add("changed", cell) }
func (l *eventLog) Suppressed(cell string) { l.add("suppressed", cell) }
func (l *eventLog) Scheduled(cell string)  { l.add("scheduled", cell) }
func (l *eventLog) Coalesced(cell string)  { l.add("coalesced", cell) }
func (l *eventLog) Delivered(cell string, listeners int, _ time.Time) {
	l.add(fmt.Sprintf("delivered(%d)", listeners), cell)
}

func (l *eventLog) add(kind, cell string) {
	l.events = append(l.events, kind+":"+cell)
}

func (l *eventLog) count(event string) int {
	n := 0
	for _, e := range l.events {
		if e == event {
			n++
		}
	}
	return n
}

func newQueue() *microtask.Queue {
	return microtask.NewQueue()
}

func drainDefault() {
	microtask.Drain()
}
