// Package unit models the combatants that take part in an encounter.
package unit

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// ControllerKind says who decides a combatant's actions.
type ControllerKind int

const (
	Player ControllerKind = iota
	CPU
)

// String returns "player" or "cpu".
func (k ControllerKind) String() string {
	if k == Player {
		return "player"
	}
	return "cpu"
}

// Schedulable is anything the turn scheduler can queue.
type Schedulable interface {
	UID() uuid.UUID
}

// Controllable answers side-affiliation questions.
type Controllable interface {
	IsPlayerControlled() bool
	IsFriendlyTo(other Controllable) bool
}

// PathAware exposes what movement and targeting need.
type PathAware interface {
	Position() grid.Point
	MovementRange() int
	WeaponRange() int
}
