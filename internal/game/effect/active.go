package effect

import (
	"fmt"
	"slices"
)

// Target is anything whose attributes an effect can change.
type Target interface {
	Adjust(attr Attribute, delta int)
}

// Active tracks one applied effect on a combatant.
type Active struct {
	Def       *Def
	Remaining int
}

// Delta is one attribute change due this turn.
type Delta struct {
	EffectID  string
	Attribute Attribute
	Value     int
}

// Set tracks the effects currently applied to one combatant, in application order.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	effects map[string]*Active
	order   []string
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{effects: make(map[string]*Active)}
}

// Apply starts tracking def. Instant effects are not tracked.
// Re-applying a tracked effect refreshes its remaining turns to the larger value.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.ID) is true unless def.Mode is Instant.
func (s *Set) Apply(def *Def) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if def.Mode == Instant || def.Turns <= 0 {
		return nil
	}
	if existing, ok := s.effects[def.ID]; ok {
		if def.Turns > existing.Remaining {
			existing.Remaining = def.Turns
		}
		return nil
	}
	s.effects[def.ID] = &Active{Def: def, Remaining: def.Turns}
	s.order = append(s.order, def.ID)
	return nil
}

// Remove stops tracking id. Removing an absent effect is a no-op.
//
// Postcondition: Has(id) is false.
func (s *Set) Remove(id string) {
	if _, ok := s.effects[id]; !ok {
		return
	}
	delete(s.effects, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
}

// Has reports whether id is tracked.
func (s *Set) Has(id string) bool {
	_, ok := s.effects[id]
	return ok
}

// Len returns the number of tracked effects.
func (s *Set) Len() int { return len(s.order) }

// All returns the tracked effects in application order.
// The slice is a new allocation; the pointed-to values are shared.
func (s *Set) All() []*Active {
	out := make([]*Active, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.effects[id])
	}
	return out
}

// PerTurn returns the over-time deltas due at the start of the holder's turn.
func (s *Set) PerTurn() []Delta {
	var out []Delta
	for _, id := range s.order {
		a := s.effects[id]
		if a.Def.Mode != OverTime || a.Def.PerTurn == 0 {
			continue
		}
		out = append(out, Delta{EffectID: id, Attribute: a.Def.Attribute, Value: a.Def.PerTurn})
	}
	return out
}

// Tick decrements every tracked effect by one turn and removes those that reach zero.
//
// Postcondition: for every returned effect, Has(effect.Def.ID) is false.
func (s *Set) Tick() []*Active {
	var expired []*Active
	kept := s.order[:0]
	for _, id := range s.order {
		a := s.effects[id]
		a.Remaining--
		if a.Remaining <= 0 {
			expired = append(expired, a)
			delete(s.effects, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return expired
}

// Clear drops every tracked effect without reverting anything.
func (s *Set) Clear() {
	clear(s.effects)
	s.order = s.order[:0]
}

// Land applies def's immediate value to t and starts tracking it in s.
// Landing a Temporary effect that s already tracks only refreshes its turns.
//
// Precondition: def must not be nil.
func Land(t Target, s *Set, def *Def) error {
	if def == nil {
		return fmt.Errorf("Land: def must not be nil")
	}
	if def.Mode == Temporary && s.Has(def.ID) {
		return s.Apply(def)
	}
	if def.Value != 0 {
		t.Adjust(def.Attribute, def.Value)
	}
	return s.Apply(def)
}

// Revert undoes the immediate value of every expired Temporary effect on t.
func Revert(t Target, expired []*Active) {
	for _, a := range expired {
		if a.Def.Mode == Temporary && a.Def.Value != 0 {
			t.Adjust(a.Def.Attribute, -a.Def.Value)
		}
	}
}
