package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/tilemap"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

type arena struct {
	m      *tilemap.Map
	d      *movement.Discoverer
	pf     *movement.Pathfinder
	roster []*unit.Combatant
}

func newArena(t require.TestingT, w, h int) *arena {
	return newArenaWith(t, w, h, grid.FourWay)
}

func newArenaWith(t require.TestingT, w, h int, conn grid.Connectivity) *arena {
	g, err := grid.Build(w, h)
	require.NoError(t, err)
	g.Connect(conn)
	m, err := tilemap.New(w, h, 1, tilemap.Preset(tilemap.Grass))
	require.NoError(t, err)
	return &arena{m: m, d: movement.NewDiscoverer(m), pf: movement.NewPathfinder(g, m)}
}

func (a *arena) spawn(t require.TestingT, name string, k unit.ControllerKind, at grid.Point, move, reach int) *unit.Combatant {
	c := unit.New(name, k, unit.Stats{Level: 1, MaxHP: 10, Movement: move, WeaponRange: reach})
	require.NoError(t, a.m.Place(c, at))
	a.roster = append(a.roster, c)
	return c
}

func (a *arena) situation(self *unit.Combatant) *ai.Situation {
	return &ai.Situation{Self: self, Roster: a.roster, Map: a.m, Discoverer: a.d, Pathfinder: a.pf}
}

func TestNearestEnemy_IgnoresAlliesAndDead(t *testing.T) {
	a := newArena(t, 10, 10)
	self := a.spawn(t, "cpu", unit.CPU, grid.Point{X: 5, Z: 5}, 4, 1)
	a.spawn(t, "friend", unit.CPU, grid.Point{X: 5, Z: 6}, 4, 1)
	dead := a.spawn(t, "dead", unit.Player, grid.Point{X: 4, Z: 5}, 4, 1)
	dead.Dead = true
	far := a.spawn(t, "far", unit.Player, grid.Point{X: 9, Z: 9}, 4, 1)
	near := a.spawn(t, "near", unit.Player, grid.Point{X: 2, Z: 5}, 4, 1)

	s := a.situation(self)
	assert.Equal(t, []*unit.Combatant{far, near}, s.Enemies())
	assert.Same(t, near, s.NearestEnemy())
}

func TestSeek_TrimsToMovementRange(t *testing.T) {
	a := newArena(t, 10, 10)
	a.spawn(t, "ally", unit.Player, grid.Point{X: 0, Z: 0}, 4, 1)
	enemy := a.spawn(t, "enemy", unit.CPU, grid.Point{X: 9, Z: 9}, 4, 1)

	d := ai.Seek{}.Decide(a.situation(enemy))
	require.NotNil(t, d.Target)
	require.Len(t, d.Path, 5)
	assert.Equal(t, enemy.Position(), d.Path[0])
	last := d.Path[len(d.Path)-1]
	assert.Equal(t, 4, enemy.Position().ManhattanTo(last))
	assert.False(t, a.m.IsOccupied(last))
}

func TestSeek_EightWayEndsInWeaponRange(t *testing.T) {
	a := newArenaWith(t, 10, 10, grid.EightWay)
	ally := a.spawn(t, "ally", unit.Player, grid.Point{X: 3, Z: 3}, 4, 1)
	enemy := a.spawn(t, "enemy", unit.CPU, grid.Point{X: 2, Z: 2}, 3, 1)

	d := ai.Seek{}.Decide(a.situation(enemy))
	require.Same(t, ally, d.Target)
	assert.Equal(t, []grid.Point{{X: 2, Z: 2}, {X: 2, Z: 3}}, d.Path)
	assert.True(t, ai.InReach(d.Path[len(d.Path)-1], ally, 1))
}

func TestSeek_EightWayOutOfReachKeepsTrimmedRoute(t *testing.T) {
	a := newArenaWith(t, 10, 10, grid.EightWay)
	a.spawn(t, "ally", unit.Player, grid.Point{X: 6, Z: 6}, 4, 1)
	enemy := a.spawn(t, "enemy", unit.CPU, grid.Point{X: 0, Z: 0}, 3, 1)

	d := ai.Seek{}.Decide(a.situation(enemy))
	assert.Equal(t, []grid.Point{{X: 0, Z: 0}, {X: 1, Z: 1}}, d.Path)
}

func TestSeek_AdjacentTargetStaysPut(t *testing.T) {
	a := newArena(t, 10, 10)
	a.spawn(t, "ally", unit.Player, grid.Point{X: 3, Z: 3}, 4, 1)
	enemy := a.spawn(t, "enemy", unit.CPU, grid.Point{X: 4, Z: 3}, 4, 1)
	d := ai.Seek{}.Decide(a.situation(enemy))
	assert.Equal(t, []grid.Point{{X: 4, Z: 3}}, d.Path)
}

func TestSeek_NoEnemies(t *testing.T) {
	a := newArena(t, 5, 5)
	self := a.spawn(t, "lonely", unit.CPU, grid.Point{X: 1, Z: 1}, 4, 1)
	d := ai.Seek{}.Decide(a.situation(self))
	assert.Nil(t, d.Target)
	assert.Len(t, d.Path, 1)
}

func TestZone_HoldsUntilThreatened(t *testing.T) {
	a := newArena(t, 10, 10)
	ally := a.spawn(t, "ally", unit.Player, grid.Point{X: 0, Z: 0}, 4, 1)
	enemy := a.spawn(t, "enemy", unit.CPU, grid.Point{X: 9, Z: 9}, 4, 1)

	d := ai.Zone{}.Decide(a.situation(enemy))
	assert.Same(t, ally, d.Target)
	assert.Len(t, d.Path, 1)

	require.NoError(t, a.m.Move(ally, ally.Position(), grid.Point{X: 9, Z: 4}))
	d = ai.Zone{}.Decide(a.situation(enemy))
	require.Len(t, d.Path, 5)
	last := d.Path[len(d.Path)-1]
	assert.True(t, ai.InReach(last, ally, enemy.WeaponRange()))
}

type fakeCaller struct {
	answers map[string]lua.LValue
	calls   []string
}

func (f *fakeCaller) CallWith(name, hook string, build func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	f.calls = append(f.calls, hook)
	L := lua.NewState()
	defer L.Close()
	build(L)
	if v, ok := f.answers[hook]; ok {
		return v, nil
	}
	return lua.LNil, nil
}

func TestScript_UsesHookAnswers(t *testing.T) {
	a := newArena(t, 10, 10)
	a.spawn(t, "near", unit.Player, grid.Point{X: 1, Z: 0}, 4, 1)
	far := a.spawn(t, "far", unit.Player, grid.Point{X: 9, Z: 0}, 4, 1)
	self := a.spawn(t, "cpu", unit.CPU, grid.Point{X: 0, Z: 0}, 4, 1)

	caller := &fakeCaller{answers: map[string]lua.LValue{
		"choose_target":   lua.LNumber(2),
		"should_approach": lua.LFalse,
	}}
	s := ai.NewScript("picky", caller)
	d := s.Decide(a.situation(self))
	assert.Same(t, far, d.Target)
	assert.Len(t, d.Path, 1)
	assert.Equal(t, []string{"choose_target", "should_approach"}, caller.calls)
	assert.Equal(t, "picky", s.Name())
}

func TestScript_FallsBackOnNilAndBadIndex(t *testing.T) {
	a := newArena(t, 10, 10)
	near := a.spawn(t, "near", unit.Player, grid.Point{X: 3, Z: 0}, 4, 1)
	self := a.spawn(t, "cpu", unit.CPU, grid.Point{X: 0, Z: 0}, 4, 1)

	caller := &fakeCaller{answers: map[string]lua.LValue{"choose_target": lua.LNumber(7)}}
	d := ai.NewScript("x", caller).Decide(a.situation(self))
	assert.Same(t, near, d.Target)
	assert.Equal(t, []grid.Point{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 2, Z: 0}}, d.Path)
}

func TestScript_WithLuaVM(t *testing.T) {
	logger := zap.NewNop()
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(1), logger), logger, 0)
	defer mgr.Close()
	require.NoError(t, mgr.LoadSource("weakest", `
		function choose_target(self, candidates)
			local best, idx = nil, nil
			for i, c in ipairs(candidates) do
				if best == nil or c.hp < best then
					best, idx = c.hp, i
				end
			end
			return idx
		end
		function should_approach(self, target, distance)
			return distance <= self.movement + self.weapon_range + 2
		end
	`))

	a := newArena(t, 10, 10)
	a.spawn(t, "healthy", unit.Player, grid.Point{X: 0, Z: 1}, 4, 1)
	hurt := a.spawn(t, "hurt", unit.Player, grid.Point{X: 6, Z: 0}, 4, 1)
	hurt.Stats.HP = 2
	self := a.spawn(t, "cpu", unit.CPU, grid.Point{X: 0, Z: 0}, 4, 1)

	d := ai.NewScript("weakest", mgr).Decide(a.situation(self))
	assert.Same(t, hurt, d.Target)
	require.Len(t, d.Path, 5)
	assert.Equal(t, grid.Point{X: 4, Z: 0}, d.Path[4])
}

func TestNewScript_PanicsOnNilCaller(t *testing.T) {
	assert.Panics(t, func() { ai.NewScript("x", nil) })
}

func TestRegistry(t *testing.T) {
	r := ai.NewRegistry()
	assert.Equal(t, []string{"seek", "zone"}, r.Names())
	assert.Equal(t, ai.SeekName, r.For("").Name())
	assert.Equal(t, ai.SeekName, r.For("missing").Name())
	assert.Equal(t, ai.ZoneName, r.For("zone").Name())

	assert.Error(t, r.Register(ai.Zone{}))
	require.NoError(t, r.Register(ai.NewScript("custom", &fakeCaller{})))
	_, ok := r.Lookup("custom")
	assert.True(t, ok)

	assert.Error(t, r.SetDefault("nope"))
	require.NoError(t, r.SetDefault(ai.ZoneName))
	assert.Equal(t, ai.ZoneName, r.For("missing").Name())
}

func TestPropertyTrimPath_StaysInDiamondAndFree(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := newArena(rt, 10, 10)
		move := rapid.IntRange(0, 6).Draw(rt, "move")
		sx := rapid.IntRange(0, 9).Draw(rt, "sx")
		sz := rapid.IntRange(0, 9).Draw(rt, "sz")
		tx := rapid.IntRange(0, 9).Draw(rt, "tx")
		tz := rapid.IntRange(0, 9).Draw(rt, "tz")
		src, dst := grid.Point{X: sx, Z: sz}, grid.Point{X: tx, Z: tz}
		if src == dst {
			rt.Skip("same tile")
		}
		a.spawn(rt, "ally", unit.Player, dst, 4, 1)
		self := a.spawn(rt, "cpu", unit.CPU, src, move, 1)

		path := ai.TrimPath(a.situation(self), a.roster[0])
		if len(path) == 0 || path[0] != src {
			rt.Fatalf("path must start at source: %v", path)
		}
		if len(path) > move+1 {
			rt.Fatalf("path %v longer than movement %d", path, move)
		}
		if len(path) > 1 {
			last := path[len(path)-1]
			if a.m.IsOccupied(last) {
				rt.Fatalf("path ends on occupied %v", last)
			}
			if d := src.ManhattanTo(last); d < 1 || d > move {
				rt.Fatalf("path end %v outside diamond", last)
			}
		}
	})
}
