package combat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

func TestAutopilot_PlaysToVictory(t *testing.T) {
	hero := player("hero", unit.Stats{Level: 2, MaxHP: 40, Speed: 8, Movement: 3, WeaponRange: 1, WeaponDamage: 5}, strike())
	grunt := cpu("grunt", unit.Stats{Level: 1, MaxHP: 8, Speed: 4, Movement: 2, WeaponRange: 1, WeaponDamage: 2}, strike())
	brute := cpu("brute", unit.Stats{Level: 1, MaxHP: 8, Speed: 2, Movement: 2, WeaponRange: 1, WeaponDamage: 2}, strike())
	b := newBattle(t, testConfig(), 3, place(hero, 0, 0), place(grunt, 6, 2), place(brute, 7, 7))

	stats, err := combat.NewAutopilot(b.c, ai.Seek{}).Play(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, b.c.Done())
	assert.Equal(t, combat.Victory, stats.Outcome)
	assert.Equal(t, 2, stats.PlayerKills)
	assert.ElementsMatch(t, []string{"grunt", "brute"}, stats.Casualties)
	assert.Positive(t, stats.Experience[hero.ID])
	assert.Zero(t, b.c.Leaks())
	require.NotNil(t, b.host.returned)
}

func TestAutopilot_EndsTurnWithoutAbilities(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTurns = 6
	pacifist := player("pacifist", unit.Stats{MaxHP: 10, Speed: 5, Movement: 2})
	idler := cpu("idler", unit.Stats{MaxHP: 10, Speed: 1, Movement: 2})
	b := newBattle(t, cfg, 1, place(pacifist, 0, 0), place(idler, 9, 9))

	stats, err := combat.NewAutopilot(b.c, ai.Seek{}).Play(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, combat.Stalemate, stats.Outcome)
	assert.Equal(t, 6, stats.Turns)
	assert.Empty(t, stats.Casualties)
}

func TestAutopilot_HonoursBudgetAndContext(t *testing.T) {
	hero := player("hero", unit.Stats{MaxHP: 10, Speed: 5})
	foe := cpu("foe", unit.Stats{MaxHP: 10, Speed: 1})

	b := newBattle(t, testConfig(), 1, place(hero, 0, 0), place(foe, 9, 9))
	_, err := combat.NewAutopilot(b.c, ai.Seek{}).Play(context.Background(), 2)
	assert.ErrorContains(t, err, "budget")

	b = newBattle(t, testConfig(), 1, place(hero, 0, 0), place(foe, 9, 9))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = combat.NewAutopilot(b.c, ai.Seek{}).Play(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAutopilot_NextOutsideInputPhases(t *testing.T) {
	hero := player("hero", unit.Stats{MaxHP: 10, Speed: 5})
	foe := cpu("foe", unit.Stats{MaxHP: 10, Speed: 1})
	b := newBattle(t, testConfig(), 1, place(hero, 0, 0), place(foe, 9, 9))
	p := combat.NewAutopilot(b.c, ai.Seek{})

	_, ok := p.Next()
	assert.False(t, ok, "not started")

	b.c.Start()
	_, ok = p.Next()
	assert.False(t, ok, "fading in")

	b.c.Settle()
	sig, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, combat.Confirm, sig.Kind)

	assert.Panics(t, func() { combat.NewAutopilot(nil, ai.Seek{}) })
}

func TestPropertyAutopilot_KeepsBoardAndQueueConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := testConfig()
		cfg.MaxTurns = 200
		hero := player("hero", unit.Stats{Level: 2, MaxHP: 30, Speed: 6, Movement: 3, WeaponRange: 1, WeaponDamage: 4}, strike())
		members := []member{place(hero, 0, 0)}
		taken := map[grid.Point]bool{{X: 0, Z: 0}: true}
		n := rapid.IntRange(1, 3).Draw(t, "enemies")
		for i := 0; i < n; i++ {
			at := grid.Point{X: rapid.IntRange(2, 9).Draw(t, "x"), Z: rapid.IntRange(0, 9).Draw(t, "z")}
			if taken[at] {
				continue
			}
			taken[at] = true
			foe := cpu("foe", unit.Stats{
				Level:        1,
				MaxHP:        rapid.IntRange(1, 12).Draw(t, "hp"),
				Speed:        rapid.IntRange(1, 10).Draw(t, "speed"),
				Movement:     rapid.IntRange(0, 3).Draw(t, "movement"),
				WeaponRange:  1,
				WeaponDamage: 1,
			}, strike())
			members = append(members, member{c: foe, at: at})
		}
		b := newBattle(t, cfg, rapid.Uint64().Draw(t, "seed"), members...)

		b.c.OnTransition(func(_, to combat.PhaseID) {
			if to != combat.InitTurn {
				return
			}
			queued := b.sched.All()
			seen := make(map[*unit.Combatant]bool, len(queued))
			for _, c := range queued {
				if seen[c] {
					t.Fatalf("%s queued twice", c.Name)
				}
				seen[c] = true
			}
			for _, c := range b.c.Roster() {
				if c.Alive() != seen[c] {
					t.Fatalf("%s alive=%v queued=%v", c.Name, c.Alive(), seen[c])
				}
				if c.Alive() && b.board.OccupantAt(c.Position()) != c {
					t.Fatalf("%s not on its tile %s", c.Name, c.Position())
				}
			}
		})

		stats, err := combat.NewAutopilot(b.c, ai.Seek{}).Play(context.Background(), 0)
		if err != nil {
			t.Fatalf("play: %v", err)
		}
		if !b.c.Done() || stats.Outcome == combat.Undecided {
			t.Fatalf("encounter did not finish: %+v", stats)
		}
		if b.c.Leaks() != 0 {
			t.Fatalf("leaked %d handlers", b.c.Leaks())
		}
	})
}
