package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/content"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/tilemap"
	"github.com/cory-johannsen/skirmish/internal/game/turnorder"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Seed fixes the dice for one run so it can be replayed.
type Seed uint64

// Battle is everything main needs to play one encounter.
type Battle struct {
	Encounter  *content.Encounter
	Controller *combat.Controller
	Autopilot  *combat.Autopilot
	Logger     *zap.Logger
}

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideRoller(logger *zap.Logger, seed Seed) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewSeededSource(uint64(seed)), logger.Named("dice"))
}

func provideEffects(cfg config.Config) (*effect.Registry, error) {
	reg, err := effect.LoadDirectory(cfg.Content.EffectsDir)
	if err != nil {
		return nil, fmt.Errorf("loading effects: %w", err)
	}
	return reg, nil
}

func provideEncounter(cfg config.Config, effects *effect.Registry) (*content.Encounter, error) {
	return content.LoadEncounterFromFile(cfg.Content.Encounter, effects)
}

func provideMap(enc *content.Encounter) *tilemap.Map { return enc.Map }

func provideScheduler(enc *content.Encounter) (*turnorder.Scheduler[*unit.Combatant], error) {
	return enc.Deploy()
}

func provideGraph(cfg config.Config, board *tilemap.Map) (*grid.Graph, error) {
	conn, err := grid.ParseConnectivity(cfg.Combat.Connectivity)
	if err != nil {
		return nil, err
	}
	g, err := grid.Build(board.Width(), board.Height())
	if err != nil {
		return nil, err
	}
	g.Connect(conn)
	return g, nil
}

func providePathfinder(g *grid.Graph, board *tilemap.Map) *movement.Pathfinder {
	return movement.NewPathfinder(g, board)
}

func provideDiscoverer(board *tilemap.Map) *movement.Discoverer {
	return movement.NewDiscoverer(board)
}

// provideScripts loads every Lua strategy in ai.script_dir. A missing
// directory disables scripting rather than failing.
func provideScripts(cfg config.Config, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(roller, logger.Named("lua"), cfg.AI.InstructionLimit)
	cleanup := func() { mgr.Close() }
	dir := cfg.AI.ScriptDir
	if dir == "" {
		return mgr, cleanup, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		logger.Warn("script dir not found; scripted strategies disabled", zap.String("dir", dir))
		return mgr, cleanup, nil
	}
	names, err := mgr.LoadDir(filepath.Clean(dir))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("loading strategy scripts: %w", err)
	}
	logger.Info("strategy scripts loaded", zap.Strings("scripts", names))
	return mgr, cleanup, nil
}

// provideStrategies registers one Script strategy per loaded script next to
// the built-in ones and selects ai.default_strategy.
func provideStrategies(cfg config.Config, scripts *scripting.Manager, logger *zap.Logger) (*ai.Registry, error) {
	reg := ai.NewRegistry()
	for _, name := range scripts.Names() {
		if err := reg.Register(ai.NewScript(name, scripts)); err != nil {
			logger.Warn("script shadows a built-in strategy", zap.String("script", name), zap.Error(err))
		}
	}
	if err := reg.SetDefault(cfg.AI.DefaultStrategy); err != nil {
		return nil, err
	}
	return reg, nil
}

func provideHost(logger *zap.Logger) combat.Host {
	return combat.NewLogHost(logger)
}

func provideController(
	cfg config.Config,
	seed Seed,
	enc *content.Encounter,
	sched *turnorder.Scheduler[*unit.Combatant],
	pathfinder *movement.Pathfinder,
	discoverer *movement.Discoverer,
	strategies *ai.Registry,
	roller *dice.Roller,
	host combat.Host,
	logger *zap.Logger,
) (*combat.Controller, error) {
	return combat.NewController(combat.Deps{
		Map:        enc.Map,
		Scheduler:  sched,
		Pathfinder: pathfinder,
		Discoverer: discoverer,
		Strategies: strategies,
		Roller:     roller,
		Host:       host,
		Logger:     observability.ForEncounter(logger, enc.ID, uint64(seed)),
		Config:     cfg.Combat,
	}, enc.Objectives)
}

// provideAutopilot plays the player side with the default strategy.
func provideAutopilot(c *combat.Controller, cfg config.Config, strategies *ai.Registry) *combat.Autopilot {
	return combat.NewAutopilot(c, strategies.For(cfg.AI.DefaultStrategy))
}
