package fsm

import (
	"errors"
	"fmt"
)

// ErrOutsideLifecycle is returned when a subscription is attempted while the
// owner is not inside its own Enter or Exit.
var ErrOutsideLifecycle = errors.New("fsm: subscribe outside owner lifecycle")

// ID identifies one subscription.
type ID uint64

type subscription[K comparable, T comparable, E any] struct {
	id       ID
	owner    K
	topic    T
	handler  func(E)
	released bool
}

// Listeners is an observer registry keyed by owner and topic.
//
// Invariant: after an owner's Exit returns it holds no subscriptions; any it
// still held were dropped and counted in Leaks.
// It is not safe for concurrent use.
type Listeners[K comparable, T comparable, E any] struct {
	life   Lifecycle[K]
	subs   []*subscription[K, T, E]
	nextID ID
	leaks  int
}

// NewListeners creates a registry bound to life and installs its exit sweep.
//
// Precondition: life must be non-nil.
func NewListeners[K comparable, T comparable, E any](life Lifecycle[K]) *Listeners[K, T, E] {
	l := &Listeners[K, T, E]{life: life}
	life.OnExit(l.sweep)
	return l
}

// Subscribe registers handler for topic on behalf of owner.
//
// Precondition: handler must be non-nil.
// Postcondition: returns ErrOutsideLifecycle unless owner is inside Enter or Exit.
func (l *Listeners[K, T, E]) Subscribe(owner K, topic T, handler func(E)) (ID, error) {
	if handler == nil {
		return 0, fmt.Errorf("fsm: nil handler for topic %v", topic)
	}
	if !l.life.Active(owner) {
		return 0, fmt.Errorf("%w: owner %v topic %v", ErrOutsideLifecycle, owner, topic)
	}
	l.nextID++
	l.subs = append(l.subs, &subscription[K, T, E]{id: l.nextID, owner: owner, topic: topic, handler: handler})
	return l.nextID, nil
}

// Unsubscribe removes one subscription. It reports whether id was registered.
func (l *Listeners[K, T, E]) Unsubscribe(id ID) bool {
	for i, s := range l.subs {
		if s.id == id {
			s.released = true
			l.subs = append(l.subs[:i], l.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Release removes every subscription held by owner and returns how many there were.
func (l *Listeners[K, T, E]) Release(owner K) int {
	kept := l.subs[:0]
	n := 0
	for _, s := range l.subs {
		if s.owner == owner {
			s.released = true
			n++
			continue
		}
		kept = append(kept, s)
	}
	clear(l.subs[len(kept):])
	l.subs = kept
	return n
}

// Count returns the number of subscriptions held by owner.
func (l *Listeners[K, T, E]) Count(owner K) int {
	n := 0
	for _, s := range l.subs {
		if s.owner == owner {
			n++
		}
	}
	return n
}

// Total returns the number of live subscriptions.
func (l *Listeners[K, T, E]) Total() int { return len(l.subs) }

// Leaks returns how many subscriptions were still held when their owner finished exiting.
func (l *Listeners[K, T, E]) Leaks() int { return l.leaks }

// Dispatch delivers event to every handler subscribed to topic and returns how
// many ran. Handlers released by an earlier handler in the same dispatch are skipped.
func (l *Listeners[K, T, E]) Dispatch(topic T, event E) int {
	var matched []*subscription[K, T, E]
	for _, s := range l.subs {
		if s.topic == topic {
			matched = append(matched, s)
		}
	}
	n := 0
	for _, s := range matched {
		if s.released {
			continue
		}
		s.handler(event)
		n++
	}
	return n
}

func (l *Listeners[K, T, E]) sweep(owner K) {
	l.leaks += l.Release(owner)
}
