//go:build wireinject

package main

import (
	"io"

	"github.com/google/wire"

	"github.com/cory-johannsen/rollforge/internal/config"
	"github.com/cory-johannsen/rollforge/internal/dice"
	"github.com/cory-johannsen/rollforge/internal/labels"
)

var appSet = wire.NewSet(
	provideLogger,
	provideSource,
	dice.NewLoggedRoller,
	provideScorer,
	provideGenerator,
	labels.Load,
	provideMessageClient,
	provideService,
	newApp,
)

// initializeApp builds the App for cfg, logging to logOut.
func initializeApp(cfg config.Config, logOut io.Writer) (*App, func(), error) {
	wire.Build(appSet)
	return nil, nil, nil
}
