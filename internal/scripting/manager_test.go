package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func newTestManager(t testing.TB, limit int) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(7), logger)
	mgr := scripting.NewManager(roller, logger, limit)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func hasLevel(logs *observer.ObservedLogs, level zapcore.Level) bool {
	for _, e := range logs.All() {
		if e.Level == level {
			return true
		}
	}
	return false
}

func TestManager_LoadSource_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	require.NoError(t, mgr.LoadSource("adder", `
		function add(a, b)
			return a + b
		end
	`))
	assert.True(t, mgr.Has("adder"))
	ret, err := mgr.CallHook("adder", "add", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	require.NoError(t, mgr.LoadSource("empty", `-- no functions`))
	ret, err := mgr.CallHook("empty", "nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_UnknownScript_LogsInfo(t *testing.T) {
	mgr, logs := newTestManager(t, 0)
	ret, err := mgr.CallHook("nope", "some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.InfoLevel))
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t, 0)
	require.NoError(t, mgr.LoadSource("bad", `
		function bad_hook()
			error("intentional error")
		end
	`))
	ret, err := mgr.CallHook("bad", "bad_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.WarnLevel))
}

func TestManager_CallHook_BudgetIsPerCall(t *testing.T) {
	mgr, logs := newTestManager(t, 500)
	require.NoError(t, mgr.LoadSource("loop", `
		function spin() while true do end end
		function quick() return 1 end
	`))
	ret, err := mgr.CallHook("loop", "spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.WarnLevel))

	for i := 0; i < 10; i++ {
		ret, err = mgr.CallHook("loop", "quick")
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(1), ret)
	}
}

func TestManager_CallWith_BuildsTablesInVM(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	require.NoError(t, mgr.LoadSource("tables", `
		function count(list) return #list end
	`))
	ret, err := mgr.CallWith("tables", "count", func(L *lua.LState) []lua.LValue {
		tbl := L.NewTable()
		tbl.Append(lua.LString("a"))
		tbl.Append(lua.LString("b"))
		return []lua.LValue{tbl}
	})
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestManager_LoadDir_NamesByFile(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_second.lua"), []byte(`function id() return "b" end`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_first.lua"), []byte(`function id() return "a" end`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte(`ignored`), 0644))

	names, err := mgr.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_first", "b_second"}, names)
	assert.Equal(t, names, mgr.Names())

	ret, err := mgr.CallHook("b_second", "id")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("b"), ret)
}

func TestManager_LoadDir_InvalidLua_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte(`this is not valid lua @@@@`), 0644))
	_, err := mgr.LoadDir(dir)
	assert.Error(t, err)
	assert.False(t, mgr.Has("bad"))
}

func TestManager_LoadDir_MissingDir(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	_, err := mgr.LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestManager_Modules(t *testing.T) {
	mgr, logs := newTestManager(t, 0)
	require.NoError(t, mgr.LoadSource("mods", `
		function check()
			skirmish.log("info", "hello from lua")
			local r = skirmish.roll(6)
			assert(r >= 1 and r <= 6, "roll out of range")
			return skirmish.distance(0, 0, 3, -4)
		end
	`))
	ret, err := mgr.CallHook("mods", "check")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
	assert.Equal(t, 1, logs.FilterMessage("hello from lua").Len())
}

func TestManager_Close_ReleasesScripts(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	require.NoError(t, mgr.LoadSource("x", `function get_x() return 1 end`))
	mgr.Close()
	assert.Empty(t, mgr.Names())
	ret, err := mgr.CallHook("x", "get_x")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestNewManager_PanicsOnNilDeps(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	assert.Panics(t, func() { scripting.NewManager(nil, zap.NewNop(), 0) })
	assert.Panics(t, func() { scripting.NewManager(roller, nil, 0) })
}

func TestProperty_CallHookMissingScriptNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "name")
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		if _, err := mgr.CallHook(name, hook); err != nil {
			rt.Fatal(err)
		}
	})
}
