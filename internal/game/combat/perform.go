package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// performAction is shared by PlayerPerformAction and CPUPerformAction.
type performAction struct{ phase }

// Enter resolves the actor's pending action, or defers it when it is a
// multi-turn ability that has not started yet.
func (p *performAction) Enter() Step {
	c := p.c
	actor := c.turn.actor
	if !c.requireHead(actor) {
		return Goto(TurnOver)
	}
	a := actor.Action
	if a == nil {
		c.logger.Warn("perform without an action", zap.String("combatant", actor.Name))
		actor.Deferred = false
		return Goto(TurnOver)
	}

	if a.CastTurns() > 0 && !actor.Deferred {
		actor.Deferred = true
		c.turn.justDeferred = true
		c.host.Popup(actor.Position(), fmt.Sprintf("casting %s", a.Name()))
		c.logger.Debug("action deferred",
			zap.String("combatant", actor.Name),
			zap.String("action", a.Name()),
			zap.Int("turns", a.CastTurns()),
		)
		return After(c.cfg.ActionBanner, goTo(TurnOver))
	}
	if actor.Deferred {
		actor.Deferred = false
		actor.ExecutedDeferred = true
	}

	c.host.Popup(actor.Position(), a.Name())
	actor.Facing = unit.DirectionTo(actor.Position(), a.TargetTile)
	c.host.PlayAttack(actor, actor.Facing)
	return After(c.cfg.ActionBanner, func() Step {
		c.resolve(actor, a)
		return After(c.cfg.EffectPause, goTo(TurnOver))
	})
}

// resolve applies a to each of its targets in order. A target killed earlier
// in the batch is skipped.
func (c *Controller) resolve(actor *unit.Combatant, a *unit.Action) {
	targets := append([]*unit.Combatant(nil), a.Targets...)
	n := 0
	for _, t := range targets {
		if t != nil && t.Alive() {
			n++
		}
	}
	a.Results = a.Results[:0]
	for _, t := range targets {
		if t == nil || !t.Alive() {
			continue
		}
		r := c.calc.Roll(actor, t, a, n)
		c.land(actor, t, a, &r)
		if r.Hit && a.Kind == unit.UseAbility {
			r.Experience = unit.CombatExperience(actor, t)
			c.stats.award(actor, r.Experience)
		}
		if t.Stats.HP <= 0 {
			r.Killed = true
			c.kill(t, actor)
		}
		a.Results = append(a.Results, r)
	}
	if a.Kind == unit.UseItem && a.Item != nil {
		a.Item.Quantity--
		c.stats.award(actor, unit.ConsumableExperience(actor))
	}
	c.logger.Debug("action resolved",
		zap.String("combatant", actor.Name),
		zap.String("action", a.Name()),
		zap.Int("targets", len(a.Results)),
	)
}

// land applies a rolled result to t: damage, healing and effects.
func (c *Controller) land(actor, t *unit.Combatant, a *unit.Action, r *unit.Result) {
	at := t.Position()
	if !r.Hit {
		c.host.PlaySound("miss")
		c.host.Popup(at, "miss")
		return
	}
	if r.Damage > 0 {
		t.Adjust(effect.HitPoints, -r.Damage)
		text := fmt.Sprintf("-%d", r.Damage)
		if r.Crit {
			text += " critical"
		}
		c.host.PlaySound("hit")
		c.host.Popup(at, text)
	}
	if r.Heal > 0 {
		t.Adjust(effect.HitPoints, r.Heal)
		c.host.Popup(at, fmt.Sprintf("+%d", r.Heal))
	}
	var defs []*effect.Def
	switch {
	case a.Kind == unit.UseAbility && a.Ability != nil:
		defs = a.Ability.Effects
		if a.Ability.VFX != "" {
			c.host.ShowVFX(a.Ability.VFX, at)
		}
	case a.Kind == unit.UseItem && a.Item != nil:
		defs = a.Item.Effects
	}
	for _, def := range defs {
		if err := effect.Land(t, t.Effects, def); err != nil {
			c.logger.Error("effect failed to land",
				zap.String("combatant", t.Name),
				zap.String("by", actor.Name),
				zap.Error(err),
			)
			continue
		}
		if def.VFX != "" {
			c.host.ShowVFX(def.VFX, at)
		}
	}
}
