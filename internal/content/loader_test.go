package content_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/content"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/tilemap"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

func effects() *effect.Registry {
	reg := effect.NewRegistry()
	reg.Register(&effect.Def{ID: "flame", Mode: effect.OverTime, Attribute: effect.HitPoints, PerTurn: -3, Turns: 3})
	return reg
}

const skirmishYAML = `
encounter:
  id: ford
  name: River Ford
  objectives: [Hold the ford]
  map:
    width: 4
    height: 3
    fill: grass
    rows:
      - "..~."
      - ".f~^"
      - "..d."
  abilities:
    - id: strike
      name: Strike
      kind: physical
    - id: fireball
      kind: magical
      range: 3
      aoe: 1
      effects: [flame]
  items:
    - id: potion
      name: Potion
      heal: 10
      range: 1
      friendly: true
  units:
    - name: Hero
      side: player
      at: {x: 0, z: 0}
      stats: {level: 2, max_hp: 20, movement: 3, weapon_range: 1, weapon_damage: 4, speed: 6}
      abilities: [strike, fireball]
      items:
        - {id: potion, quantity: 2}
    - name: Raider
      side: cpu
      strategy: zone
      at: {x: 3, z: 2}
      stats: {level: 1, hp: 5, max_hp: 10, movement: 2, weapon_range: 1, speed: 3}
      abilities: [strike]
      items:
        - {id: potion, quantity: 1}
`

func TestLoadEncounterFromBytes(t *testing.T) {
	enc, err := content.LoadEncounterFromBytes([]byte(skirmishYAML), effects())
	require.NoError(t, err)

	assert.Equal(t, "ford", enc.ID)
	assert.Equal(t, "River Ford", enc.Name)
	assert.Equal(t, []string{"Hold the ford"}, enc.Objectives)
	assert.Equal(t, 4, enc.Map.Width())
	assert.Equal(t, 3, enc.Map.Height())
	assert.Equal(t, tilemap.Water, enc.Map.TileAt(2, 0).Terrain)
	assert.False(t, enc.Map.Walkable(2, 1))
	assert.Equal(t, tilemap.Forest, enc.Map.TileAt(1, 1).Terrain)
	assert.Equal(t, tilemap.Mountains, enc.Map.TileAt(3, 1).Terrain)
	assert.Equal(t, tilemap.Desert, enc.Map.TileAt(2, 2).Terrain)

	require.Len(t, enc.Units, 2)
	hero, raider := enc.Units[0].Combatant, enc.Units[1].Combatant
	assert.Equal(t, unit.Player, hero.Controller)
	assert.Equal(t, 20, hero.Stats.HP, "hp defaults to max_hp")
	require.Len(t, hero.Abilities, 2)
	assert.Equal(t, "fireball", hero.Abilities[1].Name, "name defaults to id")
	require.Len(t, hero.Abilities[1].Effects, 1)
	assert.Equal(t, "flame", hero.Abilities[1].Effects[0].ID)

	assert.Equal(t, unit.CPU, raider.Controller)
	assert.Equal(t, "zone", raider.Strategy)
	assert.Equal(t, 5, raider.Stats.HP)
	assert.Equal(t, grid.Point{X: 3, Z: 2}, enc.Units[1].At)

	require.Len(t, hero.Items, 1)
	require.Len(t, raider.Items, 1)
	assert.Equal(t, 2, hero.Items[0].Quantity)
	assert.Equal(t, 1, raider.Items[0].Quantity)
	hero.Items[0].Quantity--
	assert.Equal(t, 1, raider.Items[0].Quantity, "item stacks are per combatant")
}

func TestDeploy_PlacesAndQueuesInFileOrder(t *testing.T) {
	enc, err := content.LoadEncounterFromBytes([]byte(skirmishYAML), effects())
	require.NoError(t, err)

	sched, err := enc.Deploy()
	require.NoError(t, err)
	require.Equal(t, 2, sched.Count())
	head, _ := sched.PeekNext()
	assert.Same(t, enc.Units[0].Combatant, head)
	for _, p := range enc.Units {
		assert.Equal(t, p.At, p.Combatant.Position())
		assert.Same(t, p.Combatant, enc.Map.OccupantAt(p.At))
	}
}

func TestLoadEncounter_CollectsEveryProblem(t *testing.T) {
	src := `
encounter:
  map: {width: 3, height: 1, rows: [".~."]}
  abilities:
    - {id: zap, kind: electric, effects: [shock]}
  units:
    - {name: A, side: player, at: {x: 1, z: 0}, stats: {max_hp: 5}}
    - {name: B, side: ally, at: {x: 7, z: 0}, stats: {max_hp: 0}, abilities: [kick]}
    - {name: C, side: cpu, at: {x: 0, z: 0}, stats: {max_hp: 5}, items: [{id: bomb, quantity: 1}]}
    - {name: D, side: cpu, at: {x: 0, z: 0}, stats: {max_hp: 5, hp: 9}}
`
	_, err := content.LoadEncounterFromBytes([]byte(src), effects())
	require.Error(t, err)
	for _, want := range []string{
		"id must not be empty",
		`unknown effect "shock"`,
		"kind must be physical or magical",
		"not walkable",
		`side must be player or cpu, got "ally"`,
		"off the map",
		"max_hp must be > 0",
		`unknown ability "kick"`,
		`unknown item "bomb"`,
		"already taken by C",
		"hp must be in [0, max_hp]",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadEncounter_MapErrors(t *testing.T) {
	cases := map[string]string{
		"bad fill":     "encounter: {id: x, map: {width: 2, height: 1, fill: lava}}",
		"bad size":     "encounter: {id: x, map: {width: 0, height: 1}}",
		"row count":    `encounter: {id: x, map: {width: 2, height: 2, rows: [".."]}}`,
		"row width":    `encounter: {id: x, map: {width: 2, height: 1, rows: ["..."]}}`,
		"legend":       `encounter: {id: x, map: {width: 2, height: 1, rows: [".X"]}}`,
		"unknown key":  "encounter: {id: x, colour: red, map: {width: 2, height: 1}}",
		"invalid yaml": "encounter: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := content.LoadEncounterFromBytes([]byte(src), effects())
			assert.Error(t, err)
		})
	}
}

func TestLoadEncounterFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ford.yaml")
	require.NoError(t, os.WriteFile(path, []byte(skirmishYAML), 0o644))

	enc, err := content.LoadEncounterFromFile(path, effects())
	require.NoError(t, err)
	assert.Equal(t, "ford", enc.ID)

	_, err = content.LoadEncounterFromFile(filepath.Join(t.TempDir(), "missing.yaml"), effects())
	assert.Error(t, err)
}

func TestShippedContentLoads(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	root := filepath.Join(filepath.Dir(file), "..", "..", "content")

	reg, err := effect.LoadDirectory(filepath.Join(root, "effects"))
	require.NoError(t, err)
	enc, err := content.LoadEncounterFromFile(filepath.Join(root, "encounters", "meadow.yaml"), reg)
	require.NoError(t, err)

	_, err = enc.Deploy()
	require.NoError(t, err)
	players, cpus := 0, 0
	for _, p := range enc.Units {
		if p.Combatant.IsPlayerControlled() {
			players++
		} else {
			cpus++
		}
	}
	assert.Positive(t, players)
	assert.Positive(t, cpus)
}

func TestPropertyRowsRoundTripTerrain(t *testing.T) {
	legend := []struct {
		ch      byte
		terrain tilemap.Terrain
	}{
		{'.', tilemap.Grass}, {'~', tilemap.Water}, {'d', tilemap.Desert}, {'^', tilemap.Mountains}, {'f', tilemap.Forest},
	}
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 6).Draw(t, "w")
		h := rapid.IntRange(1, 6).Draw(t, "h")
		want := make([][]tilemap.Terrain, h)
		src := "encounter:\n  id: gen\n  map:\n    width: " + strconv.Itoa(w) + "\n    height: " + strconv.Itoa(h) + "\n    rows:\n"
		for z := 0; z < h; z++ {
			row := make([]byte, w)
			want[z] = make([]tilemap.Terrain, w)
			for x := 0; x < w; x++ {
				l := legend[rapid.IntRange(0, len(legend)-1).Draw(t, "cell")]
				row[x] = l.ch
				want[z][x] = l.terrain
			}
			src += "      - \"" + string(row) + "\"\n"
		}
		enc, err := content.LoadEncounterFromBytes([]byte(src), effects())
		if err != nil {
			t.Fatalf("load: %v\n%s", err, src)
		}
		for z := 0; z < h; z++ {
			for x := 0; x < w; x++ {
				if got := enc.Map.TileAt(x, z).Terrain; got != want[z][x] {
					t.Fatalf("(%d,%d) = %s, want %s", x, z, got, want[z][x])
				}
			}
		}
	})
}
