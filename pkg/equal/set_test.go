package equal

import "testing"

func TestSetAddDedupsByIdentity(t *testing.T) {
	shared := []int{1}
	s := NewSet(1, 1, "a", shared, shared, []int{1})

	if s.Len() != 4 {
		t.Fatalf("expected 4 members, got %d", s.Len())
	}
	if s.Add(1) {
		t.Error("Add should report false for an existing member")
	}
	if !s.Has(shared) {
		t.Error("Has should find the shared slice")
	}
	if s.Has([]int{2}) {
		t.Error("Has should not find an absent slice")
	}
}

func TestSetDeleteKeepsOrder(t *testing.T) {
	s := NewSet("a", "b", "c")

	if !s.Delete("b") {
		t.Fatal("Delete should report true for a member")
	}
	if s.Delete("b") {
		t.Error("Delete should report false once removed")
	}

	got := s.Values()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("expected [a c], got %v", got)
	}
}

func TestSetEachStopsEarly(t *testing.T) {
	s := NewSet(1, 2, 3)
	var seen []any
	s.Each(func(v any) bool {
		seen = append(seen, v)
		return v != 2
	})
	if len(seen) != 2 {
		t.Errorf("expected Each to stop after 2 members, saw %v", seen)
	}
}
