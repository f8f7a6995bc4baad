package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the skirmish global table into L:
//
//	skirmish.log(level, msg)           -- level is debug|info|warn|error
//	skirmish.roll(n)                   -- uniform integer in [1, n]
//	skirmish.distance(ax, az, bx, bz)  -- Manhattan distance
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(m.luaLog))
	L.SetField(mod, "roll", L.NewFunction(m.luaRoll))
	L.SetField(mod, "distance", L.NewFunction(luaDistance))
	L.SetGlobal("skirmish", mod)
}

func (m *Manager) luaLog(L *lua.LState) int {
	level := L.CheckString(1)
	msg := L.CheckString(2)
	switch level {
	case "debug":
		m.logger.Debug(msg, zap.String("source", "lua"))
	case "warn":
		m.logger.Warn(msg, zap.String("source", "lua"))
	case "error":
		m.logger.Error(msg, zap.String("source", "lua"))
	default:
		m.logger.Info(msg, zap.String("source", "lua"))
	}
	return 0
}

func (m *Manager) luaRoll(L *lua.LState) int {
	n := L.CheckInt(1)
	if n <= 0 {
		L.ArgError(1, "sides must be > 0")
		return 0
	}
	L.Push(lua.LNumber(m.roller.Intn(n) + 1))
	return 1
}

func luaDistance(L *lua.LState) int {
	ax, az := L.CheckInt(1), L.CheckInt(2)
	bx, bz := L.CheckInt(3), L.CheckInt(4)
	dx, dz := ax-bx, az-bz
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	L.Push(lua.LNumber(dx + dz))
	return 1
}
