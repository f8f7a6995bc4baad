package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

type cpuTurn struct{ phase }

// Enter asks the actor's strategy for a target and a trimmed route, walks it,
// then attacks only if the target is within the action's range of the final tile.
func (p *cpuTurn) Enter() Step {
	c := p.c
	actor := c.turn.actor
	if !c.requireHead(actor) {
		return Goto(TurnOver)
	}
	strategy := c.strategies.For(actor.Strategy)
	d := strategy.Decide(c.situation(actor))

	fields := []zap.Field{
		zap.String("combatant", actor.Name),
		zap.String("strategy", strategy.Name()),
		zap.Int("path", len(d.Path)),
	}
	if d.Target != nil {
		fields = append(fields, zap.String("target", d.Target.Name))
	}
	c.logger.Debug("cpu decision", fields...)

	after := func() Step { return p.engage(actor, d.Target) }
	if len(d.Path) < 2 {
		return after()
	}
	return c.walk(actor, d.Path, after)
}

func (p *cpuTurn) engage(actor, target *unit.Combatant) Step {
	c := p.c
	if target == nil || !target.Alive() {
		return Goto(TurnOver)
	}
	a := actor.DefaultAction()
	if a == nil {
		return Goto(TurnOver)
	}
	if !ai.InReach(actor.Position(), target, actor.RangeOf(a)) {
		return Goto(TurnOver)
	}
	a.TargetTile = target.Position()
	a.Targets = c.targetsIn(actor, a, c.footprint(a.TargetTile, a.AOE()))
	if len(a.Targets) == 0 {
		return Goto(TurnOver)
	}
	actor.Action = a
	c.host.ShowPreview(c.calc.Preview(actor, a.Targets[0], a, len(a.Targets)))
	return After(c.cfg.CPUPreview, goTo(CPUPerformAction))
}

func (c *Controller) situation(self *unit.Combatant) *ai.Situation {
	return &ai.Situation{
		Self:       self,
		Roster:     c.roster,
		Map:        c.board,
		Discoverer: c.discoverer,
		Pathfinder: c.pathfinder,
	}
}
