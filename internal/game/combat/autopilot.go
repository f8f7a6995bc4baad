package combat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// defaultSignalBudget bounds Play when the caller passes no limit.
const defaultSignalBudget = 100000

// Autopilot plays the player side by feeding the Controller the signals a
// human would send, choosing moves with an ai.Strategy.
type Autopilot struct {
	c        *Controller
	strategy ai.Strategy
	logger   *zap.Logger

	plannedFor *unit.Combatant
	planTurn   int
	plan       ai.Decision
	gaveUp     bool
}

// NewAutopilot creates an Autopilot for c.
//
// Precondition: c and strategy must not be nil.
func NewAutopilot(c *Controller, strategy ai.Strategy) *Autopilot {
	if c == nil || strategy == nil {
		panic("combat.NewAutopilot: controller and strategy must not be nil")
	}
	return &Autopilot{c: c, strategy: strategy, logger: c.logger.Named("autopilot")}
}

// Next returns the signal to send in the current phase. ok is false when the
// phase takes no player input.
func (p *Autopilot) Next() (sig Signal, ok bool) {
	phase, started := p.c.Phase()
	if !started {
		return Signal{}, false
	}
	switch phase {
	case DisplayMissionObjectives, DisplayPostCombatStats, UnitActionConfirmation:
		return Signal{Kind: Confirm}, true
	case PlayerTurn:
		return ConfirmAt(p.c.turn.actor.Position()), true
	case PlayerSelected:
		d := p.decide()
		dest := p.c.turn.actor.Position()
		if len(d.Path) >= 2 {
			dest = d.Path[len(d.Path)-1]
		}
		return ConfirmAt(dest), true
	case MenuSelection:
		actor := p.c.turn.actor
		d := p.decide()
		if p.gaveUp || d.Target == nil || len(actor.Abilities) == 0 {
			return MenuPick(MenuEndTurn, 0), true
		}
		a := unit.NewAbilityAction(actor.Abilities[0])
		if !ai.InReach(actor.Position(), d.Target, actor.RangeOf(a)) {
			return MenuPick(MenuEndTurn, 0), true
		}
		return MenuPick(MenuAttack, 0), true
	case PlayerTargetSelection:
		d := p.decide()
		if d.Target == nil || !d.Target.Alive() {
			p.gaveUp = true
			return EscapeSignal(), true
		}
		// Confirming an empty tile keeps the phase idle; give up after one try.
		if p.gaveUp {
			return EscapeSignal(), true
		}
		p.gaveUp = !p.c.turn.targetRange.Has(d.Target.Position())
		return ConfirmAt(d.Target.Position()), true
	default:
		return Signal{}, false
	}
}

// decide plans once per turn of the current actor.
func (p *Autopilot) decide() ai.Decision {
	actor := p.c.turn.actor
	turn := p.c.stats.Turns
	if p.plannedFor == actor && p.planTurn == turn {
		return p.plan
	}
	p.plannedFor, p.planTurn, p.gaveUp = actor, turn, false
	p.plan = p.strategy.Decide(p.c.situation(actor))
	p.plan.Path = append([]grid.Point(nil), p.plan.Path...)
	return p.plan
}

// Play starts the encounter if needed and drives it to EndCombat in
// controller time, without waiting on the wall clock.
//
// Postcondition: returns the final stats; the error is non-nil when ctx ended,
// the signal budget ran out or a phase was left without input.
func (p *Autopilot) Play(ctx context.Context, budget int) (Stats, error) {
	if budget <= 0 {
		budget = defaultSignalBudget
	}
	c := p.c
	c.Start()
	for sent := 0; ; sent++ {
		if err := ctx.Err(); err != nil {
			return c.Stats(), err
		}
		c.Settle()
		if c.Done() {
			return c.Stats(), nil
		}
		if sent >= budget {
			return c.Stats(), fmt.Errorf("autopilot: signal budget of %d exhausted", budget)
		}
		sig, ok := p.Next()
		if !ok {
			phase, _ := c.Phase()
			return c.Stats(), fmt.Errorf("autopilot: no input for phase %s", phase)
		}
		if c.Signal(sig) == 0 {
			p.logger.Debug("signal had no handler", zap.Stringer("signal", sig))
		}
	}
}
