package reactive

import "time"

// Observer receives a cell's change and delivery events. Implementations
// run inline on the cell's goroutine and must not touch the cell.
type Observer interface {
	// Changed is called when a new value is committed.
	Changed(cell string)

	// Suppressed is called when a candidate value equals the current one.
	Suppressed(cell string)

	// Scheduled is called when a batched flush is deferred.
	Scheduled(cell string)

	// Coalesced is called when a change joins an already pending flush.
	Coalesced(cell string)

	// Delivered is called after a dispatch pass. listeners counts the
	// listeners actually called, not those disposed during the pass.
	Delivered(cell string, listeners int, start time.Time)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Changed(string)                  {}
func (NopObserver) Suppressed(string)               {}
func (NopObserver) Scheduled(string)                {}
func (NopObserver) Coalesced(string)                {}
func (NopObserver) Delivered(string, int, time.Time) {}
