package main

import (
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rollforge/internal/combo"
	"github.com/cory-johannsen/rollforge/internal/config"
	"github.com/cory-johannsen/rollforge/internal/dice"
	"github.com/cory-johannsen/rollforge/internal/enrich"
	"github.com/cory-johannsen/rollforge/internal/labels"
	"github.com/cory-johannsen/rollforge/internal/observability"
	"github.com/cory-johannsen/rollforge/internal/scripting"
)

// App bundles the components every subcommand needs.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Roller    *dice.Roller
	Generator *combo.Generator
	Catalog   *labels.Catalog
	Service   *enrich.Service
}

func newApp(cfg config.Config, logger *zap.Logger, roller *dice.Roller, gen *combo.Generator, catalog *labels.Catalog, svc *enrich.Service) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Roller:    roller,
		Generator: gen,
		Catalog:   catalog,
		Service:   svc,
	}
}

// Locale returns the catalog locale that serves the configured language.
func (a *App) Locale() string {
	return a.Catalog.Match(a.Config.Labels.Locale)
}

// Text returns the localized message for key.
func (a *App) Text(key string, args map[string]any) string {
	return a.Catalog.Text(a.Config.Labels.Locale, key, args)
}

// DistributionTitle names the plot of p, stating whether the numbers are
// exact or come from trials rolls.
func (a *App) DistributionTitle(p dice.ParsedMacro, trials int) string {
	mode := a.Text("mode.theoretical", nil)
	if _, ok := p.SingleDie(); !ok {
		mode = a.Text("mode.sampled", map[string]any{"trials": strconv.Itoa(trials)})
	}
	return a.Text("report.distribution", map[string]any{"macro": p.String(), "mode": mode})
}

// provideLogger logs to stderr through NewLogger unless the command's error
// stream was redirected.
func provideLogger(cfg config.Config, w io.Writer) (*zap.Logger, func(), error) {
	var (
		logger *zap.Logger
		err    error
	)
	if f, ok := w.(*os.File); ok && f == os.Stderr {
		logger, err = observability.NewLogger(cfg.Logging)
	} else {
		logger, err = observability.NewLoggerTo(cfg.Logging, w)
	}
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// provideSource returns a reproducible source when a seed is configured.
func provideSource(cfg config.Config) dice.Source {
	if cfg.Engine.Seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(cfg.Engine.Seed)
}

// provideScorer loads the Lua score script when one is configured and falls
// back to the built-in heuristic otherwise.
func provideScorer(cfg config.Config, logger *zap.Logger) (combo.DistributionScorer, func(), error) {
	if cfg.Generator.ScoreScript == "" {
		return combo.HeuristicScorer{}, func() {}, nil
	}
	s, err := scripting.LoadScorer(cfg.Generator.ScoreScript, cfg.Generator.ScriptInstructionLimit, combo.HeuristicScorer{}, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func provideGenerator(cfg config.Config, scorer combo.DistributionScorer, logger *zap.Logger) *combo.Generator {
	return combo.NewGenerator(combo.Options{
		Limit:       cfg.Generator.Limit,
		D2Bound:     cfg.Generator.D2Bound,
		LadderBound: cfg.Generator.LadderBound,
	}, scorer, logger)
}

// provideMessageClient returns nil when AI enrichment is disabled.
func provideMessageClient(cfg config.Config) enrich.MessageClient {
	if !cfg.AI.Enabled {
		return nil
	}
	return enrich.NewAnthropicClient(cfg.AI)
}

func provideService(client enrich.MessageClient, gen *combo.Generator, roller *dice.Roller, catalog *labels.Catalog, cfg config.Config, logger *zap.Logger) *enrich.Service {
	return enrich.NewService(client, gen, roller, catalog, cfg.AI, cfg.Engine.Trials, logger)
}
