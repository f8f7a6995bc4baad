package combat_test

import (
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/tilemap"
	"github.com/cory-johannsen/skirmish/internal/game/turnorder"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

func testConfig() config.CombatConfig {
	return config.CombatConfig{
		FadeIn:       2 * time.Second,
		StepDuration: 250 * time.Millisecond,
		ActionBanner: 500 * time.Millisecond,
		EffectPause:  time.Second,
		CPUPreview:   2 * time.Second,
		Connectivity: "four",
		Tick:         10 * time.Millisecond,
	}
}

// recorder is a Host that remembers what it was asked to show.
type recorder struct {
	combat.NopHost
	walks      []grid.Point
	attacks    int
	previews   []combat.Preview
	menus      [][]combat.MenuOption
	tileInfo   int
	highlights map[combat.HighlightKind][]grid.Point
	highlightN map[combat.HighlightKind]int
	stats      []combat.Stats
	returned   *combat.Stats
}

func newRecorder() *recorder {
	return &recorder{
		highlights: make(map[combat.HighlightKind][]grid.Point),
		highlightN: make(map[combat.HighlightKind]int),
	}
}

func (r *recorder) PlayWalk(c *unit.Combatant, _ unit.Direction) {
	r.walks = append(r.walks, c.Position())
}

func (r *recorder) PlayAttack(*unit.Combatant, unit.Direction) { r.attacks++ }

func (r *recorder) ShowPreview(p combat.Preview) { r.previews = append(r.previews, p) }

func (r *recorder) ShowMenu(options []combat.MenuOption) { r.menus = append(r.menus, options) }

func (r *recorder) ShowTileInfo(*tilemap.TerrainTile) { r.tileInfo++ }

func (r *recorder) Highlight(kind combat.HighlightKind, cells []grid.Point) {
	r.highlights[kind] = cells
	r.highlightN[kind]++
}

func (r *recorder) ClearHighlights(kind combat.HighlightKind) { delete(r.highlights, kind) }

func (r *recorder) ShowStats(s combat.Stats) { r.stats = append(r.stats, s) }

func (r *recorder) ReturnToOverworld(s combat.Stats) { r.returned = &s }

type member struct {
	c  *unit.Combatant
	at grid.Point
}

func place(c *unit.Combatant, x, z int) member {
	return member{c: c, at: grid.Point{X: x, Z: z}}
}

func player(name string, stats unit.Stats, abilities ...*unit.Ability) *unit.Combatant {
	c := unit.New(name, unit.Player, stats)
	c.Abilities = abilities
	return c
}

func cpu(name string, stats unit.Stats, abilities ...*unit.Ability) *unit.Combatant {
	c := unit.New(name, unit.CPU, stats)
	c.Abilities = abilities
	return c
}

func strike() *unit.Ability {
	return &unit.Ability{ID: "strike", Name: "Strike", Kind: unit.Physical}
}

type battle struct {
	board       *tilemap.Map
	sched       *turnorder.Scheduler[*unit.Combatant]
	host        *recorder
	c           *combat.Controller
	transitions [][2]combat.PhaseID
}

func newBattle(t require.TestingT, cfg config.CombatConfig, seed uint64, members ...member) *battle {
	const size = 10
	g, err := grid.Build(size, size)
	require.NoError(t, err)
	g.ConnectFourWay()
	board, err := tilemap.New(size, size, 1, tilemap.Preset(tilemap.Grass))
	require.NoError(t, err)

	sched := turnorder.New[*unit.Combatant]()
	for _, m := range members {
		require.NoError(t, board.Place(m.c, m.at))
		sched.Add(m.c)
	}
	logger := zap.NewNop()
	host := newRecorder()
	c, err := combat.NewController(combat.Deps{
		Map:        board,
		Scheduler:  sched,
		Pathfinder: movement.NewPathfinder(g, board),
		Discoverer: movement.NewDiscoverer(board),
		Strategies: ai.NewRegistry(),
		Roller:     dice.NewLoggedRoller(dice.NewSeededSource(seed), logger),
		Host:       host,
		Logger:     logger,
		Config:     cfg,
	}, []string{"Defeat every enemy"})
	require.NoError(t, err)

	b := &battle{board: board, sched: sched, host: host, c: c}
	c.OnTransition(func(from, to combat.PhaseID) {
		b.transitions = append(b.transitions, [2]combat.PhaseID{from, to})
	})
	return b
}

func (b *battle) phase() combat.PhaseID {
	p, _ := b.c.Phase()
	return p
}

// begin starts combat and confirms the objectives screen.
func (b *battle) begin() {
	b.c.Start()
	b.c.Settle()
	b.c.Signal(combat.Signal{Kind: combat.Confirm})
	b.c.Settle()
}

func (b *battle) visited(from, to combat.PhaseID) bool {
	for _, tr := range b.transitions {
		if tr[0] == from && tr[1] == to {
			return true
		}
	}
	return false
}

func (b *battle) subscriptions() map[combat.PhaseID]int {
	out := make(map[combat.PhaseID]int, len(combat.Phases))
	for _, p := range combat.Phases {
		out[p] = b.c.Subscriptions(p)
	}
	return out
}
