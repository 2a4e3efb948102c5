package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lox/gtotrainer/cmd/gto-trainer/shared"
	"github.com/lox/gtotrainer/internal/config"
	"github.com/lox/gtotrainer/internal/equity"
	"github.com/lox/gtotrainer/internal/store"
	"github.com/lox/gtotrainer/internal/strategy"
	"github.com/lox/gtotrainer/internal/tendency"
	"github.com/lox/gtotrainer/internal/trainer"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `short:"c" help:"Path to HCL config file" default:"gto-trainer.hcl" type:"path" env:"GTO_CONFIG"`
	Debug  bool   `help:"Enable debug logging"`
}

// app is the loaded configuration plus the collaborators built from it.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	table      *strategy.Table
	tendencies *tendency.Table
}

func (g *Globals) load() (*app, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Debug {
		cfg.Log.Level = "debug"
	}

	var logger zerolog.Logger
	if cfg.Log.JSON {
		logger, err = shared.SetupStructuredLogger(cfg.Log.Level)
	} else {
		logger, err = shared.SetupLogger(cfg.Log.Level)
	}
	if err != nil {
		return nil, err
	}

	table, err := cfg.StrategyLoader().Load()
	if err != nil {
		return nil, err
	}
	pre, post := table.Rows()
	logger.Debug().Int("preflop_rows", pre).Int("postflop_rows", post).Msg("Strategy table loaded")

	tend, err := cfg.LoadTendencies()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, table: table, tendencies: tend}, nil
}

func (a *app) calculator() *equity.Calculator {
	opts := []equity.Option{equity.WithSimulations(a.cfg.Engine.EquitySimulations)}
	if a.cfg.Engine.Workers > 0 {
		opts = append(opts, equity.WithWorkers(a.cfg.Engine.Workers))
	}
	if a.cfg.Engine.Seed != 0 {
		opts = append(opts, equity.WithSeed(a.cfg.Engine.Seed))
	}
	return equity.NewCalculator(equity.NewEngine(a.logger, opts...), a.tendencies)
}

func (a *app) engine(opts ...trainer.Option) *trainer.Engine {
	base := []trainer.Option{trainer.WithSizeMenu(a.cfg.SizeMenu)}
	if a.cfg.Engine.Seed != 0 {
		base = append(base, trainer.WithSeed(a.cfg.Engine.Seed))
	}
	return trainer.NewEngine(strategy.NewResolver(a.table), a.calculator(), a.tendencies, a.logger, append(base, opts...)...)
}

// openStore opens the configured store; driver "none" keeps nothing.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.cfg.Storage.Driver == config.DriverNone {
		return store.Noop{}, nil
	}
	s, err := store.OpenSQL(ctx, a.cfg.Storage.Driver, a.cfg.Storage.DSN, a.logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", a.cfg.Storage.Driver, err)
	}
	return s, nil
}
