package tilemap

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Terrain is the category of a tile.
type Terrain int

const (
	Grass Terrain = iota
	Water
	Desert
	Mountains
	Forest
)

// String returns the lower-case terrain name.
func (t Terrain) String() string {
	switch t {
	case Grass:
		return "grass"
	case Water:
		return "water"
	case Desert:
		return "desert"
	case Mountains:
		return "mountains"
	case Forest:
		return "forest"
	default:
		return "unknown"
	}
}

// ParseTerrain maps a terrain name to a Terrain.
func ParseTerrain(s string) (Terrain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grass", "plains":
		return Grass, nil
	case "water":
		return Water, nil
	case "desert":
		return Desert, nil
	case "mountains", "mountain":
		return Mountains, nil
	case "forest":
		return Forest, nil
	default:
		return Grass, fmt.Errorf("tilemap: unknown terrain %q", s)
	}
}

// TerrainTile is one board square.
//
// Invariant: at most one Occupant; Occupant.Position() == Position when set.
type TerrainTile struct {
	Terrain  Terrain
	Walkable bool
	Name     string
	Defense  int
	Dodge    int
	Accuracy int
	// Movement feeds the pathfinder entry cost as |Movement|.
	Movement int
	Position grid.Point
	Occupant Occupant
}

// Preset returns the default tile for a terrain category.
func Preset(t Terrain) TerrainTile {
	switch t {
	case Water:
		return TerrainTile{Terrain: Water, Name: "Water", Walkable: false}
	case Desert:
		return TerrainTile{Terrain: Desert, Name: "Desert", Walkable: true, Movement: -1, Dodge: -5}
	case Mountains:
		return TerrainTile{Terrain: Mountains, Name: "Mountains", Walkable: true, Movement: -2, Defense: 2, Accuracy: 5}
	case Forest:
		return TerrainTile{Terrain: Forest, Name: "Forest", Walkable: true, Movement: -1, Dodge: 10}
	default:
		return TerrainTile{Terrain: Grass, Name: "Grass", Walkable: true}
	}
}
