// Package config loads trainer configuration from an HCL file, then
// applies GTO_* environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/store"
	"github.com/lox/gtotrainer/internal/strategy"
	"github.com/lox/gtotrainer/internal/tendency"
	"github.com/lox/gtotrainer/internal/tracker"
)

// DriverNone disables persistence.
const DriverNone = "none"

// Config is the complete trainer configuration.
type Config struct {
	Engine     EngineSettings
	Storage    StorageSettings
	Strategy   StrategySettings
	Tendencies TendencySettings
	Log        LogSettings
	SizeMenu   game.SizeMenu
}

// EngineSettings tunes grading and stats.
type EngineSettings struct {
	EquitySimulations       int   `hcl:"equity_simulations,optional" env:"GTO_EQUITY_SIMULATIONS"`
	Workers                 int   `hcl:"workers,optional" env:"GTO_WORKERS"`
	BestSessionMinDecisions int   `hcl:"best_session_min_decisions,optional" env:"GTO_BEST_SESSION_MIN_DECISIONS"`
	TrendWindow             int   `hcl:"trend_window,optional" env:"GTO_TREND_WINDOW"`
	Seed                    int64 `hcl:"seed,optional" env:"GTO_SEED"`
}

// StorageSettings selects where records and sessions are persisted.
type StorageSettings struct {
	Driver string `hcl:"driver,optional" env:"GTO_STORAGE_DRIVER"`
	DSN    string `hcl:"dsn,optional" env:"GTO_STORAGE_DSN"`
}

// StrategySettings points at an HCL strategy table; empty means built-in.
type StrategySettings struct {
	File string `hcl:"file,optional" env:"GTO_STRATEGY_FILE"`
}

// TendencySettings points at a JSON tendency table; empty means built-in.
type TendencySettings struct {
	File string `hcl:"file,optional" env:"GTO_TENDENCIES_FILE"`
}

// LogSettings controls the logger.
type LogSettings struct {
	Level string `hcl:"level,optional" env:"GTO_LOG_LEVEL"`
	JSON  bool   `hcl:"json,optional" env:"GTO_LOG_JSON"`
}

// fileConfig mirrors the HCL layout; every block is optional.
type fileConfig struct {
	Engine     *EngineSettings   `hcl:"engine,block"`
	Storage    *StorageSettings  `hcl:"storage,block"`
	Strategy   *StrategySettings `hcl:"strategy,block"`
	Tendencies *TendencySettings `hcl:"tendencies,block"`
	Log        *LogSettings      `hcl:"log,block"`
	SizeMenu   *game.SizeMenu    `hcl:"sizes,block"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Engine: EngineSettings{
			EquitySimulations:       5000,
			BestSessionMinDecisions: tracker.DefaultMinDecisions,
			TrendWindow:             tracker.DefaultTrendWindow,
		},
		Storage: StorageSettings{
			Driver: store.DriverSQLite,
			DSN:    "gto-trainer.db",
		},
		Log:      LogSettings{Level: "info"},
		SizeMenu: game.DefaultSizeMenu,
	}
}

// Load reads filename (a missing file yields defaults), applies
// environment overrides and validates the result.
func Load(filename string) (*Config, error) {
	cfg, err := loadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if fc.Engine != nil {
		e := *fc.Engine
		if e.EquitySimulations == 0 {
			e.EquitySimulations = cfg.Engine.EquitySimulations
		}
		if e.BestSessionMinDecisions == 0 {
			e.BestSessionMinDecisions = cfg.Engine.BestSessionMinDecisions
		}
		if e.TrendWindow == 0 {
			e.TrendWindow = cfg.Engine.TrendWindow
		}
		cfg.Engine = e
	}
	if fc.Storage != nil {
		if fc.Storage.Driver != "" {
			cfg.Storage.Driver = fc.Storage.Driver
		}
		cfg.Storage.DSN = fc.Storage.DSN
		if cfg.Storage.DSN == "" && cfg.Storage.Driver == store.DriverSQLite {
			cfg.Storage.DSN = Default().Storage.DSN
		}
	}
	if fc.Strategy != nil {
		cfg.Strategy = *fc.Strategy
	}
	if fc.Tendencies != nil {
		cfg.Tendencies = *fc.Tendencies
	}
	if fc.Log != nil {
		cfg.Log = *fc.Log
		if cfg.Log.Level == "" {
			cfg.Log.Level = "info"
		}
	}
	if fc.SizeMenu != nil {
		if len(fc.SizeMenu.RaiseMultiples) > 0 {
			cfg.SizeMenu.RaiseMultiples = fc.SizeMenu.RaiseMultiples
		}
		if len(fc.SizeMenu.BetFractions) > 0 {
			cfg.SizeMenu.BetFractions = fc.SizeMenu.BetFractions
		}
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Engine.EquitySimulations <= 0 {
		return fmt.Errorf("equity_simulations must be positive, got %d", c.Engine.EquitySimulations)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Engine.Workers)
	}
	if c.Engine.BestSessionMinDecisions < 0 {
		return fmt.Errorf("best_session_min_decisions must not be negative, got %d", c.Engine.BestSessionMinDecisions)
	}
	if c.Engine.TrendWindow <= 0 {
		return fmt.Errorf("trend_window must be positive, got %d", c.Engine.TrendWindow)
	}

	switch c.Storage.Driver {
	case DriverNone:
	case store.DriverSQLite, store.DriverPgx, store.DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage driver %q requires a dsn", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q (want sqlite, pgx, postgres or none)", c.Storage.Driver)
	}

	for _, m := range c.SizeMenu.RaiseMultiples {
		if m < 2 {
			return fmt.Errorf("raise multiple %.2f is below the minimum raise of 2x", m)
		}
	}
	for _, f := range c.SizeMenu.BetFractions {
		if f <= 0 {
			return fmt.Errorf("bet fraction %.2f must be positive", f)
		}
	}
	return nil
}

// TrackerOptions returns the all-time stats options.
func (c *Config) TrackerOptions() tracker.Options {
	return tracker.Options{
		MinDecisions: c.Engine.BestSessionMinDecisions,
		TrendWindow:  c.Engine.TrendWindow,
	}
}

// StrategyLoader returns the loader for the configured strategy table.
func (c *Config) StrategyLoader() strategy.TableLoader {
	if c.Strategy.File == "" {
		return strategy.EmbeddedLoader{}
	}
	return strategy.FileLoader{Path: c.Strategy.File}
}

// LoadTendencies reads the configured tendency table, or the built-in one.
func (c *Config) LoadTendencies() (*tendency.Table, error) {
	if c.Tendencies.File == "" {
		return tendency.Default(), nil
	}
	data, err := os.ReadFile(c.Tendencies.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read tendencies: %w", err)
	}
	return tendency.Parse(data)
}
