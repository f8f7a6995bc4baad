// Package main provides the skirmish binary, which loads one encounter and
// plays it to the end with both sides driven by strategies.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses built-in defaults")
	encounterPath := flag.String("encounter", "", "encounter YAML file, overriding content.encounter")
	seed := flag.Uint64("seed", 0, "dice seed for a replayable run; 0 picks one at random")
	budget := flag.Int("budget", 0, "maximum signals the autopilot may send; 0 uses the default")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *encounterPath != "" {
		cfg.Content.Encounter = *encounterPath
	}
	if *seed == 0 {
		*seed = uint64(dice.NewCryptoSource().Intn(math.MaxInt))
	}

	battle, cleanup, err := initializeBattle(cfg, Seed(*seed))
	if err != nil {
		log.Fatalf("initializing battle: %v", err)
	}
	defer cleanup()
	logger := battle.Logger

	logger.Info("encounter loaded",
		zap.String("id", battle.Encounter.ID),
		zap.String("name", battle.Encounter.Name),
		zap.Int("units", len(battle.Encounter.Units)),
		zap.Uint64("seed", *seed),
		zap.Duration("elapsed", time.Since(start)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := battle.Autopilot.Play(ctx, *budget)
	if err != nil {
		logger.Error("encounter did not finish", zap.Error(err))
		return
	}

	logger.Info("encounter finished",
		zap.Stringer("outcome", stats.Outcome),
		zap.Int("turns", stats.Turns),
		zap.Int("player_kills", stats.PlayerKills),
		zap.Int("cpu_kills", stats.CPUKills),
		zap.Strings("casualties", stats.Casualties),
		zap.Duration("clock", battle.Controller.Clock()),
		zap.Duration("elapsed", time.Since(start)),
	)
	for _, p := range battle.Encounter.Units {
		if xp := stats.Experience[p.Combatant.ID]; xp > 0 {
			logger.Info("experience", zap.String("combatant", p.Combatant.Name), zap.Int("xp", xp))
		}
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadFromViper(config.Defaults())
	}
	return config.Load(path)
}
