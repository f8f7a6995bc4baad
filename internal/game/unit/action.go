package unit

import (
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// AbilityKind selects the damage formula of an ability.
type AbilityKind string

const (
	Physical AbilityKind = "physical"
	Magical  AbilityKind = "magical"
)

// Ability is a talent or spell a combatant can use.
type Ability struct {
	ID   string
	Name string
	Kind AbilityKind
	// Range 0 means the user's weapon range.
	Range int
	AOE   int
	// Turns is the cast time; > 0 defers resolution to a later turn.
	Turns int
	// Multiplier scales physical damage; 0 is treated as 1.
	Multiplier float64
	// LevelDivisor divides magic × level for magical damage; 0 is treated as 1.
	LevelDivisor int
	Effects      []*effect.Def
	VFX          string
}

// Item is a consumable.
type Item struct {
	ID       string
	Name     string
	Range    int
	AOE      int
	Heal     int
	Quantity int
	// Friendly items target allies instead of enemies.
	Friendly bool
	Effects  []*effect.Def
}

// ActionKind discriminates an Action.
type ActionKind int

const (
	UseAbility ActionKind = iota
	UseItem
)

// Result is the outcome of an action against one target.
type Result struct {
	Target     *Combatant
	Damage     int
	Heal       int
	Hit        bool
	Crit       bool
	Killed     bool
	Experience int
}

// Action is a combatant's pending choice: an ability or item, where it is aimed,
// who it hits and what happened to each of them.
type Action struct {
	Kind       ActionKind
	Ability    *Ability
	Item       *Item
	TargetTile grid.Point
	Targets    []*Combatant
	Results    []Result
}

// NewAbilityAction starts an action using a.
func NewAbilityAction(a *Ability) *Action {
	return &Action{Kind: UseAbility, Ability: a}
}

// NewItemAction starts an action using it.
func NewItemAction(it *Item) *Action {
	return &Action{Kind: UseItem, Item: it}
}

// ClearTargets forgets the target list and any computed results.
func (a *Action) ClearTargets() {
	a.Targets = nil
	a.Results = nil
}

// Name returns the display name of the ability or item.
func (a *Action) Name() string {
	switch {
	case a.Kind == UseAbility && a.Ability != nil:
		return a.Ability.Name
	case a.Kind == UseItem && a.Item != nil:
		return a.Item.Name
	default:
		return ""
	}
}

// AOE returns the area-of-effect radius; 0 means single target.
func (a *Action) AOE() int {
	if a.Kind == UseItem {
		if a.Item == nil {
			return 0
		}
		return a.Item.AOE
	}
	if a.Ability == nil {
		return 0
	}
	return a.Ability.AOE
}

// Friendly reports whether the action targets allies.
func (a *Action) Friendly() bool {
	return a.Kind == UseItem && a.Item != nil && a.Item.Friendly
}

// CastTurns returns the number of turns resolution is deferred by.
func (a *Action) CastTurns() int {
	if a.Kind != UseAbility || a.Ability == nil {
		return 0
	}
	return a.Ability.Turns
}

// HasTarget reports whether c is already in the target list.
func (a *Action) HasTarget(c *Combatant) bool {
	for _, t := range a.Targets {
		if t == c {
			return true
		}
	}
	return false
}
