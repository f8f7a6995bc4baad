package combat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/fsm"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/tilemap"
	"github.com/cory-johannsen/skirmish/internal/game/turnorder"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Deps are the collaborators a Controller is built from.
type Deps struct {
	Map        *tilemap.Map
	Scheduler  *turnorder.Scheduler[*unit.Combatant]
	Pathfinder *movement.Pathfinder
	Discoverer *movement.Discoverer
	Strategies *ai.Registry
	Roller     *dice.Roller
	Host       Host
	Logger     *zap.Logger
	Config     config.CombatConfig
}

func (d Deps) validate() error {
	var errs []error
	if d.Map == nil {
		errs = append(errs, errors.New("map is nil"))
	}
	if d.Scheduler == nil {
		errs = append(errs, errors.New("scheduler is nil"))
	}
	if d.Pathfinder == nil {
		errs = append(errs, errors.New("pathfinder is nil"))
	}
	if d.Discoverer == nil {
		errs = append(errs, errors.New("discoverer is nil"))
	}
	if d.Strategies == nil {
		errs = append(errs, errors.New("strategy registry is nil"))
	}
	if d.Roller == nil {
		errs = append(errs, errors.New("roller is nil"))
	}
	if d.Host == nil {
		errs = append(errs, errors.New("host is nil"))
	}
	if d.Logger == nil {
		errs = append(errs, errors.New("logger is nil"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("combat.NewController: %w", errors.Join(errs...))
	}
	return nil
}

// turn is the working state of the combatant currently acting.
// It is discarded on TurnOver.
type turn struct {
	actor        *unit.Combatant
	origin       grid.Point
	originFacing unit.Direction
	dest         grid.Point
	moveRange    mapset.Set[grid.Point]
	targetRange  mapset.Set[grid.Point]
	justDeferred bool
}

// Controller drives one encounter. It owns the phase machine, the per-turn
// working state and the only clock the phases observe.
// It is not safe for concurrent use; Run serialises signals from other goroutines.
type Controller struct {
	board      *tilemap.Map
	sched      *turnorder.Scheduler[*unit.Combatant]
	pathfinder *movement.Pathfinder
	discoverer *movement.Discoverer
	strategies *ai.Registry
	calc       *Calculator
	host       Host
	logger     *zap.Logger
	cfg        config.CombatConfig

	machine   *fsm.Machine[PhaseID, Step]
	listeners *fsm.Listeners[PhaseID, SignalKind, Signal]

	roster     []*unit.Combatant
	objectives []string
	marked     mapset.Set[*unit.Combatant]
	turn       turn
	lastPath   []grid.Point
	stats      Stats

	pending *pendingWait
	clock   time.Duration
	started bool
	done    bool
}

// NewController wires an encounter whose combatants are already placed on
// deps.Map and queued in deps.Scheduler.
//
// Postcondition: returns an error naming every missing dependency.
func NewController(deps Deps, objectives []string) (*Controller, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		board:      deps.Map,
		sched:      deps.Scheduler,
		pathfinder: deps.Pathfinder,
		discoverer: deps.Discoverer,
		strategies: deps.Strategies,
		calc:       NewCalculator(deps.Map, deps.Roller),
		host:       deps.Host,
		logger:     deps.Logger,
		cfg:        deps.Config,
		roster:     deps.Scheduler.All(),
		objectives: append([]string(nil), objectives...),
		marked:     mapset.New[*unit.Combatant](),
		stats:      newStats(),
	}
	c.machine = fsm.NewMachine[PhaseID, Step](c.newPhase)
	c.listeners = fsm.NewListeners[PhaseID, SignalKind, Signal](c.machine)
	c.machine.OnTransition(func(from, to PhaseID) {
		c.logger.Debug("phase transition", zap.Stringer("from", from), zap.Stringer("to", to))
	})
	return c, nil
}

// Start enters InitCombat. Calling Start again is a no-op.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	step, _ := c.machine.ChangeTo(InitCombat)
	c.resume(step)
}

// Phase returns the current phase; ok is false before Start.
func (c *Controller) Phase() (PhaseID, bool) {
	return c.machine.Current()
}

// Done reports whether EndCombat has been reached.
func (c *Controller) Done() bool { return c.done }

// Waiting reports whether a timer or animation is pending.
func (c *Controller) Waiting() bool { return c.pending != nil }

// Animating reports whether the pending wait is an animation.
func (c *Controller) Animating() bool { return c.pending != nil && c.pending.animation }

// Clock returns the controller time consumed so far.
func (c *Controller) Clock() time.Duration { return c.clock }

// Actor returns the combatant whose turn it is, or nil between turns.
func (c *Controller) Actor() *unit.Combatant { return c.turn.actor }

// LastPath returns the route of the most recent walk.
func (c *Controller) LastPath() []grid.Point {
	return append([]grid.Point(nil), c.lastPath...)
}

// Roster returns every combatant the encounter started with, dead or alive.
func (c *Controller) Roster() []*unit.Combatant {
	return append([]*unit.Combatant(nil), c.roster...)
}

// Stats returns a copy of the running statistics.
func (c *Controller) Stats() Stats { return c.stats.clone() }

// Subscriptions returns how many signal handlers phase currently holds.
func (c *Controller) Subscriptions(phase PhaseID) int { return c.listeners.Count(phase) }

// Leaks returns how many handlers were still held when their phase finished exiting.
func (c *Controller) Leaks() int { return c.listeners.Leaks() }

// OnTransition registers fn to observe every phase change.
func (c *Controller) OnTransition(fn func(from, to PhaseID)) {
	c.machine.OnTransition(fn)
}

// Signal delivers one input to the current phase. Signals arriving while a
// timer or animation is pending are dropped.
//
// Postcondition: returns the number of handlers that ran.
func (c *Controller) Signal(sig Signal) int {
	if c.done || c.machine.Transitioning() {
		return 0
	}
	if c.pending != nil {
		c.logger.Debug("signal dropped while waiting", zap.Stringer("signal", sig))
		return 0
	}
	return c.listeners.Dispatch(sig.Kind, sig)
}

// Advance moves controller time forward by dt, completing every wait that
// falls due in order.
func (c *Controller) Advance(dt time.Duration) {
	for c.pending != nil {
		w := c.pending
		if dt < w.remaining {
			w.remaining -= dt
			c.clock += dt
			return
		}
		dt -= w.remaining
		c.clock += w.remaining
		c.pending = nil
		if cur, ok := c.machine.Current(); !ok || cur != w.owner {
			c.logger.Warn("discarding wait of inactive phase", zap.Stringer("owner", w.owner))
			continue
		}
		c.resume(w.next())
	}
}

// Settle advances time until nothing is pending, so the current phase is
// either waiting for a Signal or combat is done.
//
// Postcondition: Waiting() is false.
func (c *Controller) Settle() {
	for c.pending != nil {
		c.Advance(c.pending.remaining)
	}
}

// Run drives the encounter in real time: waits advance by wall-clock ticks and
// signals are taken from the channel. Signals received during a wait are held
// until it completes. Run returns when combat is done or ctx ends.
//
// Precondition: tick > 0.
func (c *Controller) Run(ctx context.Context, tick time.Duration, signals <-chan Signal) error {
	if tick <= 0 {
		return fmt.Errorf("combat.Run: tick must be > 0, got %s", tick)
	}
	c.Start()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	last := time.Now()
	var queued []Signal
	for !c.done {
		for len(queued) > 0 && !c.done && c.pending == nil {
			c.Signal(queued[0])
			queued = queued[1:]
		}
		if c.done {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-signals:
			queued = append(queued, sig)
		case now := <-ticker.C:
			c.Advance(now.Sub(last))
			last = now
		}
	}
	return nil
}

// resume acts on what a phase returned until the machine is waiting.
func (c *Controller) resume(s Step) {
	for {
		switch s.kind {
		case stepIdle:
			return
		case stepWait:
			owner, _ := c.machine.Current()
			c.pending = &pendingWait{owner: owner, remaining: s.wait, animation: s.animation, next: s.next}
			return
		case stepGoto:
			next, ok := c.machine.ChangeTo(s.phase)
			if !ok {
				cur, _ := c.machine.Current()
				c.logger.Debug("transition ignored", zap.Stringer("from", cur), zap.Stringer("to", s.phase))
				return
			}
			s = next
		}
	}
}

// on subscribes a handler for owner; the Step it returns is resumed.
func (c *Controller) on(owner PhaseID, kind SignalKind, handler func(Signal) Step) {
	_, err := c.listeners.Subscribe(owner, kind, func(sig Signal) {
		c.resume(handler(sig))
	})
	if err != nil {
		c.logger.DPanic("signal subscription rejected", zap.Stringer("phase", owner), zap.Error(err))
	}
}

func (c *Controller) release(owner PhaseID) {
	c.listeners.Release(owner)
}

// requireHead checks the single-actor invariant.
func (c *Controller) requireHead(actor *unit.Combatant) bool {
	head, ok := c.sched.PeekNext()
	if ok && head == actor && actor != nil {
		return true
	}
	name := ""
	if actor != nil {
		name = actor.Name
	}
	c.logger.DPanic("acting combatant is not at the head of the scheduler", zap.String("combatant", name))
	return false
}

func (c *Controller) combatantAt(p grid.Point) *unit.Combatant {
	occ := c.board.OccupantAt(p)
	if occ == nil {
		return nil
	}
	cb, _ := occ.(*unit.Combatant)
	return cb
}

// walk moves who along path one tile per animation, swapping occupancy at each step.
// A step onto an occupied tile ends the walk early.
func (c *Controller) walk(who *unit.Combatant, path []grid.Point, done func() Step) Step {
	c.lastPath = append(c.lastPath[:0], path...)
	var step func(i int) Step
	step = func(i int) Step {
		if i >= len(path) {
			return done()
		}
		from, to := who.Position(), path[i]
		if err := c.board.Move(who, from, to); err != nil {
			c.logger.Warn("walk interrupted",
				zap.String("combatant", who.Name),
				zap.Stringer("at", from),
				zap.Error(err),
			)
			return done()
		}
		who.Facing = unit.DirectionTo(from, to)
		c.host.PlayWalk(who, who.Facing)
		return Animate(c.cfg.StepDuration, func() Step { return step(i + 1) })
	}
	return step(1)
}

// kill applies death handling inline: highlights, scheduler and board.
func (c *Controller) kill(victim, killer *unit.Combatant) {
	victim.Dead = true
	if c.marked.Has(victim) {
		c.marked.Remove(victim)
		c.host.Highlight(HighlightMarked, c.markedCells())
	}
	c.sched.Remove(victim)
	c.board.Vacate(victim.Position())
	victim.Effects.Clear()
	c.stats.recordKill(killer, victim)
	c.host.PlaySound("death")
	fields := []zap.Field{zap.String("combatant", victim.Name), zap.Stringer("side", victim.Controller)}
	if killer != nil {
		fields = append(fields, zap.String("killer", killer.Name))
	}
	c.logger.Info("combatant died", fields...)
}

func (c *Controller) markedCells() []grid.Point {
	var out []grid.Point
	c.marked.Each(func(cb *unit.Combatant) {
		out = append(out, cb.Position())
	})
	return movement.Points(pointSet(out))
}

func (c *Controller) outcome() Outcome {
	players, cpus := 0, 0
	for _, cb := range c.roster {
		if !cb.Alive() {
			continue
		}
		if cb.IsPlayerControlled() {
			players++
		} else {
			cpus++
		}
	}
	switch {
	case cpus == 0:
		return Victory
	case players == 0:
		return Defeat
	default:
		return Undecided
	}
}

func pointSet(points []grid.Point) mapset.Set[grid.Point] {
	s := mapset.New[grid.Point]()
	for _, p := range points {
		s.Put(p)
	}
	return s
}
