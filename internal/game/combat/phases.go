package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/fsm"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// phase carries what every concrete phase shares. Its Exit releases every
// handler the phase subscribed.
type phase struct {
	id PhaseID
	c  *Controller
}

func (p *phase) Exit() { p.c.release(p.id) }

func (p *phase) on(kind SignalKind, handler func(Signal) Step) {
	p.c.on(p.id, kind, handler)
}

func (c *Controller) newPhase(id PhaseID) fsm.State[Step] {
	base := phase{id: id, c: c}
	switch id {
	case InitCombat:
		return &initCombat{base}
	case DisplayMissionObjectives:
		return &displayMissionObjectives{base}
	case InitTurn:
		return &initTurn{base}
	case PlayerTurn:
		return &playerTurn{base}
	case PlayerSelected:
		return &playerSelected{base}
	case PlayerMove:
		return &playerMove{base}
	case MenuSelection:
		return &menuSelection{base}
	case PlayerTargetSelection:
		return &playerTargetSelection{base}
	case UnitActionConfirmation:
		return &unitActionConfirmation{base}
	case PlayerPerformAction, CPUPerformAction:
		return &performAction{base}
	case CPUTurn:
		return &cpuTurn{base}
	case TurnOver:
		return &turnOver{base}
	case DisplayPostCombatStats:
		return &displayPostCombatStats{base}
	case EndCombat:
		return &endCombat{base}
	}
	panic(fmt.Sprintf("combat: no phase registered for %v", id))
}

type initCombat struct{ phase }

// Enter orders the scheduler by speed, fastest first, and fades in.
func (p *initCombat) Enter() Step {
	c := p.c
	c.sched.Sort(func(a, b *unit.Combatant) bool { return a.Stats.Speed > b.Stats.Speed })
	c.host.FadeIn(c.cfg.FadeIn)
	c.logger.Info("combat started", zap.Int("combatants", c.sched.Count()))
	return After(c.cfg.FadeIn, goTo(DisplayMissionObjectives))
}

type displayMissionObjectives struct{ phase }

func (p *displayMissionObjectives) Enter() Step {
	p.c.host.ShowObjectives(p.c.objectives)
	p.on(Confirm, func(Signal) Step { return Goto(InitTurn) })
	return Idle()
}

func (p *displayMissionObjectives) Exit() {
	p.c.host.HidePanels()
	p.phase.Exit()
}

type initTurn struct{ phase }

// Enter selects the head of the scheduler, settles its over-time effects and
// hands the turn to the right controller.
func (p *initTurn) Enter() Step {
	c := p.c
	actor, ok := c.sched.PeekNext()
	if !ok {
		c.logger.Warn("scheduler empty at turn start")
		return Goto(DisplayPostCombatStats)
	}
	c.turn = turn{actor: actor, origin: actor.Position(), originFacing: actor.Facing}
	c.stats.Turns++
	c.host.PanCamera(actor.Position())
	c.logger.Debug("turn started",
		zap.String("combatant", actor.Name),
		zap.Stringer("side", actor.Controller),
		zap.Int("turn", c.stats.Turns),
	)

	deltas := actor.Effects.PerTurn()
	for _, d := range deltas {
		actor.Adjust(d.Attribute, d.Value)
		c.host.Popup(actor.Position(), fmt.Sprintf("%+d %s", d.Value, d.Attribute))
		if actor.Stats.HP <= 0 {
			c.kill(actor, nil)
			return After(c.cfg.EffectPause, goTo(TurnOver))
		}
	}
	effect.Revert(actor, actor.Effects.Tick())

	if len(deltas) > 0 {
		return After(c.cfg.EffectPause, p.branch)
	}
	return p.branch()
}

func (p *initTurn) branch() Step {
	actor := p.c.turn.actor
	switch {
	case actor.Deferred && actor.IsPlayerControlled():
		return Goto(PlayerPerformAction)
	case actor.Deferred:
		return Goto(CPUPerformAction)
	case actor.IsPlayerControlled():
		return Goto(PlayerTurn)
	default:
		return Goto(CPUTurn)
	}
}

type turnOver struct{ phase }

// Enter drops the turn's working state, requeues the actor and decides
// whether combat is over.
func (p *turnOver) Enter() Step {
	c := p.c
	for _, k := range []HighlightKind{HighlightMovement, HighlightTargeting, HighlightFootprint, HighlightPreview} {
		c.host.ClearHighlights(k)
	}
	c.host.HidePanels()

	if actor := c.turn.actor; actor != nil && actor.Alive() {
		if c.turn.justDeferred {
			c.sched.FinishTurn(actor, actor.Action.CastTurns())
		} else {
			c.sched.FinishTurn(actor, -1)
			actor.ExecutedDeferred = false
			actor.Action = nil
		}
	}
	c.turn = turn{}

	if outcome := c.outcome(); outcome != Undecided {
		c.stats.Outcome = outcome
		return Goto(DisplayPostCombatStats)
	}
	if c.cfg.MaxTurns > 0 && c.stats.Turns >= c.cfg.MaxTurns {
		c.logger.Warn("turn limit reached", zap.Int("turns", c.stats.Turns))
		c.stats.Outcome = Stalemate
		return Goto(DisplayPostCombatStats)
	}
	return Goto(InitTurn)
}

type displayPostCombatStats struct{ phase }

func (p *displayPostCombatStats) Enter() Step {
	c := p.c
	if c.stats.Outcome == Undecided {
		c.stats.Outcome = c.outcome()
	}
	c.host.ShowStats(c.stats.clone())
	p.on(Confirm, func(Signal) Step { return Goto(EndCombat) })
	return Idle()
}

func (p *displayPostCombatStats) Exit() {
	p.c.host.HidePanels()
	p.phase.Exit()
}

type endCombat struct{ phase }

// Enter tears the encounter down and returns control to the overworld. It is terminal.
func (p *endCombat) Enter() Step {
	c := p.c
	c.done = true
	c.host.ShowCursor(false)
	c.host.ClearHighlights(HighlightMarked)
	c.marked.Clear()
	c.sched.Clear()
	c.board.Clear()
	c.logger.Info("combat ended",
		zap.Stringer("outcome", c.stats.Outcome),
		zap.Int("turns", c.stats.Turns),
		zap.Strings("casualties", c.stats.Casualties),
	)
	c.host.ReturnToOverworld(c.stats.clone())
	return Idle()
}
