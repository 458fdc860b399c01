package equal

// Set is an insertion-ordered collection of distinct values. Membership is
// decided by Same, so two structurally equal slices can both be members,
// the way two equal objects can both sit in a reference-identity set.
//
// Set is not safe for concurrent use.
type Set struct {
	items []any
}

var _ Collection = (*Set)(nil)

// NewSet returns a set holding values, skipping repeats.
func NewSet(values ...any) *Set {
	s := &Set{items: make([]any, 0, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was not already present.
func (s *Set) Add(v any) bool {
	if s.indexOf(v) >= 0 {
		return false
	}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is a member.
func (s *Set) Has(v any) bool {
	return s.indexOf(v) >= 0
}

// Delete removes v, keeping the order of the remaining members.
func (s *Set) Delete(v any) bool {
	i := s.indexOf(v)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.items)
}

// Each calls fn for every member in insertion order until fn returns false.
func (s *Set) Each(fn func(v any) bool) {
	for _, v := range s.items {
		if !fn(v) {
			return
		}
	}
}

// Values returns a copy of the members in insertion order.
func (s *Set) Values() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) indexOf(v any) int {
	for i, item := range s.items {
		if Same(item, v) {
			return i
		}
	}
	return -1
}
