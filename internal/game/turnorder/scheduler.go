// Package turnorder keeps the ordered queue of combatants waiting to act.
package turnorder

import "slices"

// Scheduler is an ordered sequence of combatants; the head acts next.
//
// Duplicates are allowed. Remove deletes the first entry equal to its argument,
// so with pointer element types identity is what matters.
// It is not safe for concurrent use.
type Scheduler[T comparable] struct {
	order []T
}

// New returns an empty Scheduler.
func New[T comparable]() *Scheduler[T] {
	return &Scheduler[T]{}
}

// Add appends t to the tail.
func (s *Scheduler[T]) Add(t T) {
	s.order = append(s.order, t)
}

// InsertAt inserts t at index, shifting later entries back.
// An index past the tail appends; a negative index inserts at the head.
func (s *Scheduler[T]) InsertAt(t T, index int) {
	switch {
	case index >= len(s.order):
		s.order = append(s.order, t)
	case index < 0:
		s.order = slices.Insert(s.order, 0, t)
	default:
		s.order = slices.Insert(s.order, index, t)
	}
}

// Remove deletes the first entry equal to t. Removing an absent entry is a no-op.
func (s *Scheduler[T]) Remove(t T) {
	if i := s.IndexOf(t); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// PeekNext returns the head without removing it. ok is false when empty.
func (s *Scheduler[T]) PeekNext() (head T, ok bool) {
	if len(s.order) == 0 {
		return head, false
	}
	return s.order[0], true
}

// FinishTurn removes t and reinserts it at index; -1 means the tail.
func (s *Scheduler[T]) FinishTurn(t T, index int) {
	s.Remove(t)
	if index < 0 {
		s.Add(t)
		return
	}
	s.InsertAt(t, index)
}

// Count returns the number of queued entries.
func (s *Scheduler[T]) Count() int { return len(s.order) }

// All returns a copy of the current order.
func (s *Scheduler[T]) All() []T {
	return slices.Clone(s.order)
}

// IndexOf returns the position of the first entry equal to t, or -1.
func (s *Scheduler[T]) IndexOf(t T) int {
	return slices.Index(s.order, t)
}

// Contains reports whether t is queued.
func (s *Scheduler[T]) Contains(t T) bool {
	return s.IndexOf(t) >= 0
}

// Sort orders the queue with less, keeping the relative order of equal entries.
func (s *Scheduler[T]) Sort(less func(a, b T) bool) {
	slices.SortStableFunc(s.order, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})
}

// Clear empties the queue.
func (s *Scheduler[T]) Clear() {
	s.order = s.order[:0]
}
