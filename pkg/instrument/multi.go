package instrument

import (
	"time"

	"github.com/vango-dev/pulse/pkg/reactive"
)

// Multi fans every event out to each observer in order.
type Multi []reactive.Observer

var _ reactive.Observer = Multi(nil)

// Combine returns an observer reporting to every non-nil observer given.
// With none it returns reactive.NopObserver, and with one, that observer.
func Combine(observers ...reactive.Observer) reactive.Observer {
	var m Multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return reactive.NopObserver{}
	case 1:
		return m[0]
	default:
		return m
	}
}

func (m Multi) Changed(cell string) {
	for _, o := range m {
		o.Changed(cell)
	}
}

func (m Multi) Suppressed(cell string) {
	for _, o := range m {
		o.Suppressed(cell)
	}
}

func (m Multi) Scheduled(cell string) {
	for _, o := range m {
		o.Scheduled(cell)
	}
}

func (m Multi) Coalesced(cell string) {
	for _, o := range m {
		o.Coalesced(cell)
	}
}

func (m Multi) Delivered(cell string, listeners int, start time.Time) {
	for _, o := range m {
		o.Delivered(cell, listeners, start)
	}
}
