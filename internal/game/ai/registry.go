package ai

import (
	"fmt"
	"sort"
)

// Registry indexes strategies by name.
//
// Invariant: each name is registered at most once; the default name is registered.
type Registry struct {
	strategies  map[string]Strategy
	defaultName string
}

// NewRegistry returns a Registry holding Seek and Zone, with Seek as default.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Strategy), defaultName: SeekName}
	r.strategies[SeekName] = Seek{}
	r.strategies[ZoneName] = Zone{}
	return r
}

// Register stores s under s.Name().
//
// Precondition: s must not be nil.
// Postcondition: returns error on name collision.
func (r *Registry) Register(s Strategy) error {
	if _, exists := r.strategies[s.Name()]; exists {
		return fmt.Errorf("ai.Registry: strategy %q already registered", s.Name())
	}
	r.strategies[s.Name()] = s
	return nil
}

// SetDefault selects the fallback strategy.
//
// Postcondition: returns error when name is not registered; the default is unchanged.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.strategies[name]; !ok {
		return fmt.Errorf("ai.Registry: unknown default strategy %q", name)
	}
	r.defaultName = name
	return nil
}

// Lookup returns the strategy registered as name.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// For returns the strategy registered as name, or the default when name is
// empty or unknown.
func (r *Registry) For(name string) Strategy {
	if s, ok := r.strategies[name]; ok {
		return s
	}
	return r.strategies[r.defaultName]
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
