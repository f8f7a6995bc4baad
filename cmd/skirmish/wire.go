//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/cory-johannsen/skirmish/internal/config"
)

func initializeBattle(cfg config.Config, seed Seed) (*Battle, func(), error) {
	wire.Build(
		provideLogger,
		provideRoller,
		provideEffects,
		provideEncounter,
		provideMap,
		provideScheduler,
		provideGraph,
		providePathfinder,
		provideDiscoverer,
		provideScripts,
		provideStrategies,
		provideHost,
		provideController,
		provideAutopilot,
		wire.Struct(new(Battle), "*"),
	)
	return nil, nil, nil
}
