package unit

import "github.com/cory-johannsen/skirmish/internal/game/grid"

// Direction is a compass facing on the board. North is +Z, East is +X.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// DirectionTo returns the facing from one point toward another, preferring the
// Z axis unless the X offset is strictly larger. from == to faces North.
func DirectionTo(from, to grid.Point) Direction {
	dx := to.X - from.X
	dz := to.Z - from.Z
	adx, adz := dx, dz
	if adx < 0 {
		adx = -adx
	}
	if adz < 0 {
		adz = -adz
	}
	if adx > adz {
		if dx > 0 {
			return East
		}
		return West
	}
	if dz < 0 {
		return South
	}
	return North
}
