// Package effect tracks timed attribute effects applied to combatants.
package effect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode says how an effect plays out over time.
type Mode string

const (
	// Instant effects change the attribute once and are not tracked.
	Instant Mode = "instant"
	// OverTime effects change the attribute once, then by PerTurn at the start of each of the holder's turns.
	OverTime Mode = "over_time"
	// Temporary effects change the attribute once and revert it when they expire.
	Temporary Mode = "temporary"
)

// Attribute names a combatant statistic an effect can modify.
type Attribute string

const (
	HitPoints Attribute = "hp"
	Speed     Attribute = "speed"
	Movement  Attribute = "movement"
	Accuracy  Attribute = "accuracy"
	Dodge     Attribute = "dodge"
	Magic     Attribute = "magic"
)

// Def is the static definition of an effect, loaded from YAML or built in code.
type Def struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Mode      Mode      `yaml:"mode"`
	Attribute Attribute `yaml:"attribute"`
	// Value is applied once when the effect lands.
	Value int `yaml:"value"`
	// PerTurn is applied at the start of each holder turn for OverTime effects.
	PerTurn int `yaml:"per_turn"`
	// Turns is how many holder turns the effect lasts; 0 for Instant.
	Turns int    `yaml:"turns"`
	VFX   string `yaml:"vfx"`
}

// Validate reports every problem with d in one error.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	switch d.Mode {
	case Instant:
	case OverTime, Temporary:
		if d.Turns <= 0 {
			errs = append(errs, fmt.Errorf("turns must be > 0 for %s effects", d.Mode))
		}
	default:
		errs = append(errs, fmt.Errorf("mode must be one of instant, over_time, temporary, got %q", d.Mode))
	}
	switch d.Attribute {
	case HitPoints, Speed, Movement, Accuracy, Dodge, Magic:
	default:
		errs = append(errs, fmt.Errorf("unknown attribute %q", d.Attribute))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("effect %q: %w", d.ID, errors.Join(errs...))
}

// Registry holds known effect definitions keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def, overwriting any entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false).
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot of the registered definitions.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadDirectory parses every *.yaml file in dir as a Def.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first bad file.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
