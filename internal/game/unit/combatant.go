package unit

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Stats are the numeric attributes of a combatant.
type Stats struct {
	Level        int
	HP           int
	MaxHP        int
	Experience   int
	Movement     int
	WeaponRange  int
	WeaponDamage int
	Magic        int
	Speed        int
	Accuracy     int
	Dodge        int
	// Crit is the critical-hit chance in percent.
	Crit int
}

// Combatant is one participant in an encounter.
//
// Invariant: while placed on a map, the tile at Position() names this combatant as occupant.
type Combatant struct {
	ID         uuid.UUID
	Name       string
	Controller ControllerKind
	// Strategy names the CPU strategy; empty selects the default.
	Strategy string
	Facing   Direction
	Stats    Stats

	Abilities []*Ability
	Items     []*Item
	Action    *Action
	Effects   *effect.Set

	// Deferred is set while a multi-turn ability is waiting to resolve.
	Deferred bool
	// ExecutedDeferred is set for the turn in which a deferred ability resolved.
	ExecutedDeferred bool
	Dead             bool

	pos grid.Point
}

// New creates a combatant with a fresh ID and an empty effect set.
//
// Postcondition: Stats.HP == stats.MaxHP when stats.HP is 0.
func New(name string, controller ControllerKind, stats Stats) *Combatant {
	if stats.HP == 0 {
		stats.HP = stats.MaxHP
	}
	return &Combatant{
		ID:         uuid.New(),
		Name:       name,
		Controller: controller,
		Stats:      stats,
		Effects:    effect.NewSet(),
	}
}

// UID returns the combatant's identifier.
func (c *Combatant) UID() uuid.UUID { return c.ID }

// Position returns the tile the combatant stands on.
func (c *Combatant) Position() grid.Point { return c.pos }

// SetPosition records the combatant's tile. Map mutators call this.
func (c *Combatant) SetPosition(p grid.Point) { c.pos = p }

// MovementRange returns the movement attribute.
func (c *Combatant) MovementRange() int { return c.Stats.Movement }

// WeaponRange returns the equipped weapon's reach.
func (c *Combatant) WeaponRange() int { return c.Stats.WeaponRange }

// IsPlayerControlled reports whether a human drives this combatant.
func (c *Combatant) IsPlayerControlled() bool { return c.Controller == Player }

// IsFriendlyTo reports whether c and other are on the same side.
func (c *Combatant) IsFriendlyTo(other Controllable) bool {
	return c.IsPlayerControlled() == other.IsPlayerControlled()
}

// Alive reports whether the combatant can still act.
func (c *Combatant) Alive() bool {
	return !c.Dead && c.Stats.HP > 0
}

// Adjust changes an attribute by delta. HP is clamped to [0, MaxHP].
func (c *Combatant) Adjust(attr effect.Attribute, delta int) {
	switch attr {
	case effect.HitPoints:
		c.Stats.HP += delta
		if c.Stats.HP < 0 {
			c.Stats.HP = 0
		}
		if c.Stats.HP > c.Stats.MaxHP {
			c.Stats.HP = c.Stats.MaxHP
		}
	case effect.Speed:
		c.Stats.Speed += delta
	case effect.Movement:
		c.Stats.Movement += delta
	case effect.Accuracy:
		c.Stats.Accuracy += delta
	case effect.Dodge:
		c.Stats.Dodge += delta
	case effect.Magic:
		c.Stats.Magic += delta
	}
}

// RangeOf returns how far the action reaches for this combatant.
// Abilities with no range of their own use the weapon range.
func (c *Combatant) RangeOf(a *Action) int {
	if a == nil {
		return 0
	}
	if a.Kind == UseItem {
		if a.Item == nil {
			return 0
		}
		return a.Item.Range
	}
	if a.Ability == nil || a.Ability.Range == 0 {
		return c.WeaponRange()
	}
	return a.Ability.Range
}

// DefaultAction returns an action using the first ability, or nil when the
// combatant has none.
func (c *Combatant) DefaultAction() *Action {
	if len(c.Abilities) == 0 {
		return nil
	}
	return NewAbilityAction(c.Abilities[0])
}

// UsableItems returns the items with quantity left.
func (c *Combatant) UsableItems() []*Item {
	var out []*Item
	for _, it := range c.Items {
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}
