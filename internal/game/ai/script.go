package ai

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// ScriptCaller is what Script needs from the scripting layer.
type ScriptCaller interface {
	// CallWith calls hook in the named script with arguments built inside its VM.
	// Returns (LNil, nil) when the script or hook is missing.
	CallWith(name, hook string, build func(*lua.LState) []lua.LValue) (lua.LValue, error)
}

const (
	hookChooseTarget   = "choose_target"
	hookShouldApproach = "should_approach"
)

// Script delegates decisions to Lua hooks:
//
//	choose_target(self, candidates) -> 1-based index into candidates, or nil
//	should_approach(self, target, distance) -> boolean, or nil
//
// A nil or out-of-range answer falls back to the nearest enemy and to approaching.
type Script struct {
	name   string
	caller ScriptCaller
}

// NewScript creates a Script bound to the script registered as name.
//
// Precondition: caller must not be nil.
func NewScript(name string, caller ScriptCaller) *Script {
	if caller == nil {
		panic("ai.NewScript: caller must not be nil")
	}
	return &Script{name: name, caller: caller}
}

// Name returns the script name.
func (s *Script) Name() string { return s.name }

// Decide asks the script for a target and whether to approach it.
func (s *Script) Decide(sit *Situation) Decision {
	enemies := sit.Enemies()
	if len(enemies) == 0 {
		return stay(sit, nil)
	}
	target := s.chooseTarget(sit, enemies)
	if !s.shouldApproach(sit, target) {
		return stay(sit, target)
	}
	return Decision{Target: target, Path: TrimPath(sit, target)}
}

func (s *Script) chooseTarget(sit *Situation, enemies []*unit.Combatant) *unit.Combatant {
	ret, err := s.caller.CallWith(s.name, hookChooseTarget, func(L *lua.LState) []lua.LValue {
		list := L.NewTable()
		for _, e := range enemies {
			list.Append(combatantTable(L, e))
		}
		return []lua.LValue{combatantTable(L, sit.Self), list}
	})
	if err == nil {
		if idx, ok := ret.(lua.LNumber); ok {
			i := int(idx)
			if i >= 1 && i <= len(enemies) {
				return enemies[i-1]
			}
		}
	}
	return sit.NearestEnemy()
}

func (s *Script) shouldApproach(sit *Situation, target *unit.Combatant) bool {
	distance := sit.Self.Position().ManhattanTo(target.Position())
	ret, err := s.caller.CallWith(s.name, hookShouldApproach, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{combatantTable(L, sit.Self), combatantTable(L, target), lua.LNumber(distance)}
	})
	if err != nil || ret == lua.LNil {
		return true
	}
	return lua.LVAsBool(ret)
}

func combatantTable(L *lua.LState, c *unit.Combatant) *lua.LTable {
	t := L.NewTable()
	p := c.Position()
	L.SetField(t, "id", lua.LString(c.ID.String()))
	L.SetField(t, "name", lua.LString(c.Name))
	L.SetField(t, "player", lua.LBool(c.IsPlayerControlled()))
	L.SetField(t, "level", lua.LNumber(c.Stats.Level))
	L.SetField(t, "hp", lua.LNumber(c.Stats.HP))
	L.SetField(t, "max_hp", lua.LNumber(c.Stats.MaxHP))
	L.SetField(t, "movement", lua.LNumber(c.MovementRange()))
	L.SetField(t, "weapon_range", lua.LNumber(c.WeaponRange()))
	L.SetField(t, "x", lua.LNumber(p.X))
	L.SetField(t, "z", lua.LNumber(p.Z))
	return t
}
