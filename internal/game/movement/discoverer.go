// Package movement computes movement and targeting ranges and shortest paths on the grid.
package movement

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Bounds is the board extent the discoverer clips against.
type Bounds interface {
	Width() int
	Height() int
}

// Discoverer enumerates the diamond (Manhattan) range around a cell.
//
// The returned set is owned by the Discoverer and is cleared and refilled on
// every call; callers must copy it (see Points) to keep it past the next call.
type Discoverer struct {
	bounds Bounds
	found  mapset.Set[grid.Point]
}

// NewDiscoverer creates a Discoverer clipping against bounds.
//
// Precondition: bounds must be non-nil.
func NewDiscoverer(bounds Bounds) *Discoverer {
	return &Discoverer{bounds: bounds, found: mapset.New[grid.Point]()}
}

// DiscoverInRange returns every in-bounds cell whose Manhattan distance from
// (originX, originZ) is in 1..rng. The origin itself is never included.
//
// Postcondition: result == diamond(origin, rng) ∩ [0,w)×[0,h) \ {origin}.
func (d *Discoverer) DiscoverInRange(originX, originZ, rng int) mapset.Set[grid.Point] {
	d.found.Clear()
	for i := 1; i <= rng; i++ {
		d.discover(originX, originZ+i)
		d.discover(originX+i, originZ)
		d.discover(originX, originZ-i)
		d.discover(originX-i, originZ)
		for j := 1; j <= rng-i; j++ {
			d.discover(originX+i, originZ+j)
			d.discover(originX+i, originZ-j)
			d.discover(originX-i, originZ+j)
			d.discover(originX-i, originZ-j)
		}
	}
	return d.found
}

// DiscoverAround is DiscoverInRange for a Point.
func (d *Discoverer) DiscoverAround(origin grid.Point, rng int) mapset.Set[grid.Point] {
	return d.DiscoverInRange(origin.X, origin.Z, rng)
}

func (d *Discoverer) discover(x, z int) {
	if x < 0 || z < 0 || x >= d.bounds.Width() || z >= d.bounds.Height() {
		return
	}
	d.found.Put(grid.Point{X: x, Z: z})
}

// Points copies a set into a slice ordered by X then Z.
func Points(set mapset.Set[grid.Point]) []grid.Point {
	out := make([]grid.Point, 0, set.Size())
	set.Each(func(p grid.Point) {
		out = append(out, p)
	})
	slices.SortFunc(out, func(a, b grid.Point) int {
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Z - b.Z
	})
	return out
}

// Copy returns an independent set holding the same points.
func Copy(set mapset.Set[grid.Point]) mapset.Set[grid.Point] {
	out := mapset.New[grid.Point]()
	set.Each(func(p grid.Point) {
		out.Put(p)
	})
	return out
}
