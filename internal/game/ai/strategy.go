// Package ai implements pluggable target-selection and approach strategies for
// CPU-controlled combatants.
package ai

import (
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/tilemap"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Situation is everything a strategy may consult for one decision.
//
// Invariant: Self is alive and placed on Map.
type Situation struct {
	Self       *unit.Combatant
	Roster     []*unit.Combatant
	Map        *tilemap.Map
	Discoverer *movement.Discoverer
	Pathfinder *movement.Pathfinder
}

// Decision is a strategy's answer.
//
// Path starts at Self's tile; a Path shorter than 2 means stay put.
type Decision struct {
	Target *unit.Combatant
	Path   []grid.Point
}

// Strategy decides whom a CPU combatant goes after and where it moves.
type Strategy interface {
	Name() string
	Decide(s *Situation) Decision
}

// Enemies returns the living combatants hostile to self, in roster order.
func (s *Situation) Enemies() []*unit.Combatant {
	var out []*unit.Combatant
	for _, c := range s.Roster {
		if c != s.Self && c.Alive() && !s.Self.IsFriendlyTo(c) {
			out = append(out, c)
		}
	}
	return out
}

// NearestEnemy returns the living enemy at the smallest Euclidean distance, or
// nil. Ties go to the earlier roster entry.
func (s *Situation) NearestEnemy() *unit.Combatant {
	var nearest *unit.Combatant
	best := math.Inf(1)
	from := s.Self.Position()
	for _, e := range s.Enemies() {
		to := e.Position()
		dx, dz := float64(to.X-from.X), float64(to.Z-from.Z)
		if d := math.Sqrt(dx*dx + dz*dz); d < best {
			best, nearest = d, e
		}
	}
	return nearest
}

// InReach reports whether target's tile lies within rng (Manhattan) of from.
func InReach(from grid.Point, target *unit.Combatant, rng int) bool {
	d := from.ManhattanTo(target.Position())
	return d >= 1 && d <= rng
}

// TrimPath plans a route from Self to target and trims its tail back to the
// farthest cell that is inside Self's movement diamond and unoccupied.
// When the trimmed route stops out of weapon range (a diagonal approach on an
// eight-way grid) and a free cell in the diamond is within range, the route
// goes there instead.
//
// Postcondition: the result is empty when the target is unreachable, otherwise
// it begins at Self's tile, which is never trimmed.
func TrimPath(s *Situation, target *unit.Combatant) []grid.Point {
	origin := s.Self.Position()
	s.Pathfinder.FindPathBetween(origin, target.Position())
	reach := movement.Copy(s.Discoverer.DiscoverAround(origin, s.Self.MovementRange()))
	path := append([]grid.Point(nil), s.Pathfinder.Trim(func(p grid.Point) bool {
		return reach.Has(p) && !s.Map.IsOccupied(p)
	})...)
	if n := len(path); n > 0 && !InReach(path[n-1], target, s.Self.WeaponRange()) {
		if alt := strikePath(s, reach, target, path[n-1]); alt != nil {
			return alt
		}
	}
	return path
}

// strikePath routes to the free cell of reach nearest end from which target is
// within weapon range, or returns nil when there is none within movement.
func strikePath(s *Situation, reach mapset.Set[grid.Point], target *unit.Combatant, end grid.Point) []grid.Point {
	origin := s.Self.Position()
	limit := s.Self.MovementRange() + 1
	var best []grid.Point
	bestDist := math.MaxInt
	for _, p := range movement.Points(reach) {
		if s.Map.IsOccupied(p) || !s.Map.Walkable(p.X, p.Z) || !InReach(p, target, s.Self.WeaponRange()) {
			continue
		}
		d := end.ManhattanTo(p)
		if d >= bestDist {
			continue
		}
		route := s.Pathfinder.FindPathBetween(origin, p)
		if len(route) < 2 || len(route) > limit {
			continue
		}
		best, bestDist = append([]grid.Point(nil), route...), d
	}
	return best
}

func stay(s *Situation, target *unit.Combatant) Decision {
	return Decision{Target: target, Path: []grid.Point{s.Self.Position()}}
}
