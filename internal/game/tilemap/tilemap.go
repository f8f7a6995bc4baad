// Package tilemap holds the terrain board of one combat encounter and its occupancy grid.
package tilemap

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

var (
	// ErrOutOfBounds is returned when a coordinate is not on the board.
	ErrOutOfBounds = errors.New("tilemap: position out of bounds")
	// ErrOccupied is returned when placing onto a tile that already has an occupant.
	ErrOccupied = errors.New("tilemap: tile already occupied")
	// ErrNotWalkable is returned when placing onto blocked terrain.
	ErrNotWalkable = errors.New("tilemap: tile is not walkable")
)

// Occupant is anything that can stand on a tile.
//
// Invariant: for every occupied tile t, t.Occupant.Position() == t.Position.
type Occupant interface {
	Position() grid.Point
	SetPosition(grid.Point)
}

// Map is a width×height array of tiles. It is created once per encounter.
// It is not safe for concurrent use; the combat controller serialises access.
type Map struct {
	width    int
	height   int
	tileSize float64
	tiles    [][]*TerrainTile
}

// New creates a map where every tile is a copy of fill positioned at its coordinate.
//
// Precondition: width > 0 and height > 0.
// Postcondition: Returns a map with no occupants, or an error.
func New(width, height int, tileSize float64, fill TerrainTile) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("tilemap: width and height must be > 0 (got %dx%d)", width, height)
	}
	if tileSize <= 0 {
		tileSize = 1
	}
	tiles := make([][]*TerrainTile, width)
	for x := 0; x < width; x++ {
		tiles[x] = make([]*TerrainTile, height)
		for z := 0; z < height; z++ {
			t := fill
			t.Position = grid.Point{X: x, Z: z}
			t.Occupant = nil
			tiles[x][z] = &t
		}
	}
	return &Map{width: width, height: height, tileSize: tileSize, tiles: tiles}, nil
}

// Width returns the number of columns.
func (m *Map) Width() int { return m.width }

// Height returns the number of rows.
func (m *Map) Height() int { return m.height }

// TileSize returns the world-space edge length of a tile.
func (m *Map) TileSize() float64 { return m.tileSize }

// Contains reports whether p is on the board.
func (m *Map) Contains(p grid.Point) bool {
	return p.X >= 0 && p.X < m.width && p.Z >= 0 && p.Z < m.height
}

// TileAt returns the tile at (x, z) or nil when out of bounds.
func (m *Map) TileAt(x, z int) *TerrainTile {
	if !m.Contains(grid.Point{X: x, Z: z}) {
		return nil
	}
	return m.tiles[x][z]
}

// Tile is TileAt for a Point.
func (m *Map) Tile(p grid.Point) *TerrainTile {
	return m.TileAt(p.X, p.Z)
}

// SetTile replaces the terrain at p, keeping any current occupant.
func (m *Map) SetTile(p grid.Point, t TerrainTile) error {
	cur := m.Tile(p)
	if cur == nil {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	occ := cur.Occupant
	*cur = t
	cur.Position = p
	cur.Occupant = occ
	return nil
}

// Walkable reports whether (x, z) is on the board and not blocked terrain.
func (m *Map) Walkable(x, z int) bool {
	t := m.TileAt(x, z)
	return t != nil && t.Walkable
}

// MovementModifier returns the tile's movement modifier, or 0 when out of bounds.
func (m *Map) MovementModifier(x, z int) int {
	t := m.TileAt(x, z)
	if t == nil {
		return 0
	}
	return t.Movement
}

// OccupantAt returns whoever stands at p, or nil.
func (m *Map) OccupantAt(p grid.Point) Occupant {
	t := m.Tile(p)
	if t == nil {
		return nil
	}
	return t.Occupant
}

// IsOccupied reports whether p has an occupant.
func (m *Map) IsOccupied(p grid.Point) bool {
	return m.OccupantAt(p) != nil
}

// Place puts o on p and updates o's position.
//
// Postcondition: On success Tile(p).Occupant == o and o.Position() == p.
func (m *Map) Place(o Occupant, p grid.Point) error {
	t := m.Tile(p)
	if t == nil {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	if !t.Walkable {
		return fmt.Errorf("%w: %v", ErrNotWalkable, p)
	}
	if t.Occupant != nil && t.Occupant != o {
		return fmt.Errorf("%w: %v", ErrOccupied, p)
	}
	t.Occupant = o
	o.SetPosition(p)
	return nil
}

// Vacate clears the occupant at p. Vacating an empty or off-board tile is a no-op.
func (m *Map) Vacate(p grid.Point) {
	if t := m.Tile(p); t != nil {
		t.Occupant = nil
	}
}

// Move swaps o from its tile at from onto to, keeping both sides of the
// occupancy relation in agreement.
//
// Precondition: Tile(from).Occupant == o.
// Postcondition: On success Tile(from).Occupant is nil (unless from == to) and
// Tile(to).Occupant == o with o.Position() == to.
func (m *Map) Move(o Occupant, from, to grid.Point) error {
	if from == to {
		return m.Place(o, to)
	}
	src := m.Tile(from)
	if src == nil {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, from)
	}
	if src.Occupant != o {
		return fmt.Errorf("tilemap: occupant is not at %v", from)
	}
	if err := m.Place(o, to); err != nil {
		return err
	}
	src.Occupant = nil
	return nil
}

// Occupants returns every occupant on the board in column-major order.
func (m *Map) Occupants() []Occupant {
	var out []Occupant
	for x := 0; x < m.width; x++ {
		for z := 0; z < m.height; z++ {
			if o := m.tiles[x][z].Occupant; o != nil {
				out = append(out, o)
			}
		}
	}
	return out
}

// Clear removes every occupant. Used when combat is torn down.
func (m *Map) Clear() {
	for x := 0; x < m.width; x++ {
		for z := 0; z < m.height; z++ {
			m.tiles[x][z].Occupant = nil
		}
	}
}
