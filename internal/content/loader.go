// Package content loads encounters (board, combatants, abilities and items)
// from YAML files.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/tilemap"
	"github.com/cory-johannsen/skirmish/internal/game/turnorder"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// rowLegend maps the characters of a map row to terrain.
var rowLegend = map[rune]tilemap.Terrain{
	'.': tilemap.Grass,
	'~': tilemap.Water,
	'd': tilemap.Desert,
	'^': tilemap.Mountains,
	'f': tilemap.Forest,
}

type yamlEncounterFile struct {
	Encounter yamlEncounter `yaml:"encounter"`
}

type yamlEncounter struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Objectives []string      `yaml:"objectives"`
	Map        yamlMap       `yaml:"map"`
	Abilities  []yamlAbility `yaml:"abilities"`
	Items      []yamlItem    `yaml:"items"`
	Units      []yamlUnit    `yaml:"units"`
}

type yamlMap struct {
	Width    int      `yaml:"width"`
	Height   int      `yaml:"height"`
	TileSize float64  `yaml:"tile_size"`
	Fill     string   `yaml:"fill"`
	Rows     []string `yaml:"rows"`
}

type yamlAbility struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Kind         string   `yaml:"kind"`
	Range        int      `yaml:"range"`
	AOE          int      `yaml:"aoe"`
	Turns        int      `yaml:"turns"`
	Multiplier   float64  `yaml:"multiplier"`
	LevelDivisor int      `yaml:"level_divisor"`
	Effects      []string `yaml:"effects"`
	VFX          string   `yaml:"vfx"`
}

type yamlItem struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Range    int      `yaml:"range"`
	AOE      int      `yaml:"aoe"`
	Heal     int      `yaml:"heal"`
	Friendly bool     `yaml:"friendly"`
	Effects  []string `yaml:"effects"`
}

type yamlUnit struct {
	Name      string          `yaml:"name"`
	Side      string          `yaml:"side"`
	Strategy  string          `yaml:"strategy"`
	At        yamlPoint       `yaml:"at"`
	Stats     yamlStats       `yaml:"stats"`
	Abilities []string        `yaml:"abilities"`
	Items     []yamlItemStack `yaml:"items"`
}

type yamlPoint struct {
	X int `yaml:"x"`
	Z int `yaml:"z"`
}

type yamlStats struct {
	Level        int `yaml:"level"`
	HP           int `yaml:"hp"`
	MaxHP        int `yaml:"max_hp"`
	Experience   int `yaml:"experience"`
	Movement     int `yaml:"movement"`
	WeaponRange  int `yaml:"weapon_range"`
	WeaponDamage int `yaml:"weapon_damage"`
	Magic        int `yaml:"magic"`
	Speed        int `yaml:"speed"`
	Accuracy     int `yaml:"accuracy"`
	Dodge        int `yaml:"dodge"`
	Crit         int `yaml:"crit"`
}

type yamlItemStack struct {
	ID       string `yaml:"id"`
	Quantity int    `yaml:"quantity"`
}

// Placement is a combatant and the tile it starts on.
type Placement struct {
	Combatant *unit.Combatant
	At        grid.Point
}

// Encounter is a loaded, validated battle ready to be deployed.
type Encounter struct {
	ID         string
	Name       string
	Objectives []string
	Map        *tilemap.Map
	Units      []Placement
}

// LoadEncounterFromFile reads and validates an encounter YAML file, resolving
// effect references against effects.
//
// Precondition: effects must not be nil.
// Postcondition: Returns a validated Encounter or a non-nil error.
func LoadEncounterFromFile(path string, effects *effect.Registry) (*Encounter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading encounter file %s: %w", path, err)
	}
	enc, err := LoadEncounterFromBytes(data, effects)
	if err != nil {
		return nil, fmt.Errorf("loading encounter %s: %w", path, err)
	}
	return enc, nil
}

// LoadEncounterFromBytes parses and validates an encounter from YAML bytes.
//
// Precondition: effects must not be nil.
// Postcondition: Returns a validated Encounter or a non-nil error listing every problem.
func LoadEncounterFromBytes(data []byte, effects *effect.Registry) (*Encounter, error) {
	var file yamlEncounterFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing encounter YAML: %w", err)
	}
	enc, err := convertYAMLEncounter(file.Encounter, effects)
	if err != nil {
		return nil, fmt.Errorf("validating encounter: %w", err)
	}
	return enc, nil
}

// Deploy places every unit on the map and queues it in file order.
//
// Postcondition: on success each combatant's Position equals its Placement.At.
func (e *Encounter) Deploy() (*turnorder.Scheduler[*unit.Combatant], error) {
	sched := turnorder.New[*unit.Combatant]()
	for _, p := range e.Units {
		if err := e.Map.Place(p.Combatant, p.At); err != nil {
			return nil, fmt.Errorf("deploying %s at %s: %w", p.Combatant.Name, p.At, err)
		}
		sched.Add(p.Combatant)
	}
	return sched, nil
}

// convertYAMLEncounter builds domain types and collects every validation error.
func convertYAMLEncounter(ye yamlEncounter, effects *effect.Registry) (*Encounter, error) {
	var errs []error
	if ye.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}

	board, err := buildMap(ye.Map)
	if err != nil {
		return nil, errors.Join(append(errs, err)...)
	}

	resolve := func(owner string, ids []string) []*effect.Def {
		var out []*effect.Def
		for _, id := range ids {
			def, ok := effects.Get(id)
			if !ok {
				errs = append(errs, fmt.Errorf("%s: unknown effect %q", owner, id))
				continue
			}
			out = append(out, def)
		}
		return out
	}

	abilities := make(map[string]unit.Ability, len(ye.Abilities))
	for _, ya := range ye.Abilities {
		if _, dup := abilities[ya.ID]; dup || ya.ID == "" {
			errs = append(errs, fmt.Errorf("ability id %q is empty or duplicated", ya.ID))
			continue
		}
		kind := unit.AbilityKind(ya.Kind)
		if kind != unit.Physical && kind != unit.Magical {
			errs = append(errs, fmt.Errorf("ability %s: kind must be physical or magical, got %q", ya.ID, ya.Kind))
		}
		if ya.Range < 0 || ya.AOE < 0 || ya.Turns < 0 {
			errs = append(errs, fmt.Errorf("ability %s: range, aoe and turns must be >= 0", ya.ID))
		}
		abilities[ya.ID] = unit.Ability{
			ID:           ya.ID,
			Name:         nameOr(ya.Name, ya.ID),
			Kind:         kind,
			Range:        ya.Range,
			AOE:          ya.AOE,
			Turns:        ya.Turns,
			Multiplier:   ya.Multiplier,
			LevelDivisor: ya.LevelDivisor,
			Effects:      resolve("ability "+ya.ID, ya.Effects),
			VFX:          ya.VFX,
		}
	}

	items := make(map[string]unit.Item, len(ye.Items))
	for _, yi := range ye.Items {
		if _, dup := items[yi.ID]; dup || yi.ID == "" {
			errs = append(errs, fmt.Errorf("item id %q is empty or duplicated", yi.ID))
			continue
		}
		if yi.Range < 0 || yi.AOE < 0 || yi.Heal < 0 {
			errs = append(errs, fmt.Errorf("item %s: range, aoe and heal must be >= 0", yi.ID))
		}
		items[yi.ID] = unit.Item{
			ID:       yi.ID,
			Name:     nameOr(yi.Name, yi.ID),
			Range:    yi.Range,
			AOE:      yi.AOE,
			Heal:     yi.Heal,
			Friendly: yi.Friendly,
			Effects:  resolve("item "+yi.ID, yi.Effects),
		}
	}

	enc := &Encounter{
		ID:         ye.ID,
		Name:       nameOr(ye.Name, ye.ID),
		Objectives: ye.Objectives,
		Map:        board,
	}
	taken := make(map[grid.Point]string, len(ye.Units))
	for i, yu := range ye.Units {
		label := fmt.Sprintf("unit %d (%s)", i, yu.Name)
		if yu.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name must not be empty", label))
		}
		side, err := parseSide(yu.Side)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
		if yu.Stats.MaxHP <= 0 {
			errs = append(errs, fmt.Errorf("%s: max_hp must be > 0", label))
		}
		if yu.Stats.HP < 0 || yu.Stats.HP > yu.Stats.MaxHP {
			errs = append(errs, fmt.Errorf("%s: hp must be in [0, max_hp]", label))
		}
		if yu.Stats.Movement < 0 || yu.Stats.WeaponRange < 0 {
			errs = append(errs, fmt.Errorf("%s: movement and weapon_range must be >= 0", label))
		}

		at := grid.Point{X: yu.At.X, Z: yu.At.Z}
		switch tile := board.Tile(at); {
		case tile == nil:
			errs = append(errs, fmt.Errorf("%s: position %s is off the map", label, at))
		case !tile.Walkable:
			errs = append(errs, fmt.Errorf("%s: position %s is not walkable", label, at))
		}
		if other, ok := taken[at]; ok {
			errs = append(errs, fmt.Errorf("%s: position %s already taken by %s", label, at, other))
		}
		taken[at] = yu.Name

		c := unit.New(yu.Name, side, unit.Stats{
			Level:        yu.Stats.Level,
			HP:           yu.Stats.HP,
			MaxHP:        yu.Stats.MaxHP,
			Experience:   yu.Stats.Experience,
			Movement:     yu.Stats.Movement,
			WeaponRange:  yu.Stats.WeaponRange,
			WeaponDamage: yu.Stats.WeaponDamage,
			Magic:        yu.Stats.Magic,
			Speed:        yu.Stats.Speed,
			Accuracy:     yu.Stats.Accuracy,
			Dodge:        yu.Stats.Dodge,
			Crit:         yu.Stats.Crit,
		})
		c.Strategy = yu.Strategy
		for _, id := range yu.Abilities {
			ab, ok := abilities[id]
			if !ok {
				errs = append(errs, fmt.Errorf("%s: unknown ability %q", label, id))
				continue
			}
			c.Abilities = append(c.Abilities, &ab)
		}
		for _, stack := range yu.Items {
			it, ok := items[stack.ID]
			if !ok {
				errs = append(errs, fmt.Errorf("%s: unknown item %q", label, stack.ID))
				continue
			}
			if stack.Quantity <= 0 {
				errs = append(errs, fmt.Errorf("%s: item %s quantity must be > 0", label, stack.ID))
			}
			it.Quantity = stack.Quantity
			c.Items = append(c.Items, &it)
		}
		enc.Units = append(enc.Units, Placement{Combatant: c, At: at})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return enc, nil
}

// buildMap fills the board with the fill terrain, then applies rows.
// Row z is the z-th string; column x is its x-th character.
func buildMap(ym yamlMap) (*tilemap.Map, error) {
	fill := tilemap.Grass
	if ym.Fill != "" {
		t, err := tilemap.ParseTerrain(ym.Fill)
		if err != nil {
			return nil, fmt.Errorf("map fill: %w", err)
		}
		fill = t
	}
	size := ym.TileSize
	if size == 0 {
		size = 1
	}
	board, err := tilemap.New(ym.Width, ym.Height, size, tilemap.Preset(fill))
	if err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	if len(ym.Rows) == 0 {
		return board, nil
	}
	if len(ym.Rows) != ym.Height {
		return nil, fmt.Errorf("map: %d rows for height %d", len(ym.Rows), ym.Height)
	}
	var errs []error
	for z, row := range ym.Rows {
		cells := []rune(row)
		if len(cells) != ym.Width {
			errs = append(errs, fmt.Errorf("map row %d: %d cells for width %d", z, len(cells), ym.Width))
			continue
		}
		for x, ch := range cells {
			t, ok := rowLegend[ch]
			if !ok {
				errs = append(errs, fmt.Errorf("map row %d: unknown terrain %q at column %d", z, ch, x))
				continue
			}
			if err := board.SetTile(grid.Point{X: x, Z: z}, tilemap.Preset(t)); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return board, nil
}

func parseSide(s string) (unit.ControllerKind, error) {
	switch s {
	case "player":
		return unit.Player, nil
	case "cpu":
		return unit.CPU, nil
	default:
		return unit.CPU, fmt.Errorf("side must be player or cpu, got %q", s)
	}
}

func nameOr(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
