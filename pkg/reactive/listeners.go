package reactive

// registration is one listener in a listenerSet.
type registration[T any] struct {
	id     uint64
	fn     Listener[T]
	active bool
}

// listenerSet is a cell's own insertion-ordered listener collection.
type listenerSet[T any] struct {
	entries []*registration[T]
}

func (s *listenerSet[T]) add(fn Listener[T]) *registration[T] {
	r := &registration[T]{id: nextID(), fn: fn, active: true}
	s.entries = append(s.entries, r)
	return r
}

// remove deactivates r and drops it, keeping the order of the rest.
func (s *listenerSet[T]) remove(r *registration[T]) bool {
	if !r.active {
		return false
	}
	r.active = false

	for i, existing := range s.entries {
		if existing == r {
			last := len(s.entries) - 1
			copy(s.entries[i:], s.entries[i+1:])
			s.entries[last] = nil
			s.entries = s.entries[:last]
			break
		}
	}
	return true
}

// snapshot copies the current registrations so a dispatch pass is not
// affected by listeners added or removed while it runs.
func (s *listenerSet[T]) snapshot() []*registration[T] {
	out := make([]*registration[T], len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *listenerSet[T]) len() int {
	return len(s.entries)
}
