// Package config loads bombpot settings from defaults, an optional HCL file
// and BOMBPOT_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/lox/bombpot/internal/game"
	"github.com/lox/bombpot/sdk/solver"
)

// Config is the complete bombpot configuration.
type Config struct {
	Game      GameSettings
	Solver    SolverSettings
	Inspector InspectorSettings
}

// GameSettings describes the bomb pot being solved.
type GameSettings struct {
	FlopOne string  `env:"BOMBPOT_FLOP_ONE" env-description:"first flop, e.g. Ah7d2c"`
	FlopTwo string  `env:"BOMBPOT_FLOP_TWO" env-description:"second flop, e.g. KsQs9h"`
	Seats   int     `env:"BOMBPOT_SEATS" env-description:"number of players"`
	Stack   float64 `env:"BOMBPOT_STACK" env-description:"starting stack in chips"`
	Ante    float64 `env:"BOMBPOT_ANTE" env-description:"ante posted by every player"`
}

// SolverSettings control the background worker.
type SolverSettings struct {
	Seed             int64         `env:"BOMBPOT_SEED" env-description:"RNG seed, 0 for time based"`
	Evaluator        string        `env:"BOMBPOT_EVALUATOR" env-description:"hand evaluator: native or table"`
	ProgressInterval time.Duration `env:"BOMBPOT_PROGRESS_INTERVAL" env-description:"progress log interval, 0 disables"`
	MaxIterations    int64         `env:"BOMBPOT_MAX_ITERATIONS" env-description:"stop after this many iterations, 0 for no limit"`
}

// InspectorSettings configure the websocket inspector.
type InspectorSettings struct {
	Enabled bool          `env:"BOMBPOT_INSPECTOR" env-description:"serve the tree inspector"`
	Address string        `env:"BOMBPOT_INSPECTOR_ADDRESS" env-description:"inspector listen address"`
	Refresh time.Duration `env:"BOMBPOT_INSPECTOR_REFRESH" env-description:"snapshot push interval"`
}

// fileConfig mirrors Config for HCL decoding. Every field is optional so
// that anything left out keeps its default.
type fileConfig struct {
	Game      *fileGame      `hcl:"game,block"`
	Solver    *fileSolver    `hcl:"solver,block"`
	Inspector *fileInspector `hcl:"inspector,block"`
}

type fileGame struct {
	FlopOne *string  `hcl:"flop_one,optional"`
	FlopTwo *string  `hcl:"flop_two,optional"`
	Seats   *int     `hcl:"seats,optional"`
	Stack   *float64 `hcl:"stack,optional"`
	Ante    *float64 `hcl:"ante,optional"`
}

type fileSolver struct {
	Seed             *int64  `hcl:"seed,optional"`
	Evaluator        *string `hcl:"evaluator,optional"`
	ProgressInterval *string `hcl:"progress_interval,optional"`
	MaxIterations    *int64  `hcl:"max_iterations,optional"`
}

type fileInspector struct {
	Enabled *bool   `hcl:"enabled,optional"`
	Address *string `hcl:"address,optional"`
	Refresh *string `hcl:"refresh,optional"`
}

// Default returns the built in configuration.
func Default() Config {
	sc := solver.DefaultConfig()
	return Config{
		Game: GameSettings{
			FlopOne: sc.FlopOne,
			FlopTwo: sc.FlopTwo,
			Seats:   sc.Seats,
			Stack:   sc.Stack,
			Ante:    sc.Ante,
		},
		Solver: SolverSettings{
			Seed:             sc.Seed,
			Evaluator:        sc.Evaluator,
			ProgressInterval: sc.ProgressInterval,
			MaxIterations:    sc.MaxIterations,
		},
		Inspector: InspectorSettings{
			Address: "localhost:8090",
			Refresh: time.Second,
		},
	}
}

// Load builds the configuration from defaults, the HCL file at path and the
// environment. An empty path or a missing file leaves the defaults in place.
// The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		src, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if cfg, err = Parse(src, path); err != nil {
				return Config{}, err
			}
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Parse decodes HCL source on top of the defaults.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if err := fc.apply(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (fc fileConfig) apply(cfg *Config) error {
	if g := fc.Game; g != nil {
		set(&cfg.Game.FlopOne, g.FlopOne)
		set(&cfg.Game.FlopTwo, g.FlopTwo)
		set(&cfg.Game.Seats, g.Seats)
		set(&cfg.Game.Stack, g.Stack)
		set(&cfg.Game.Ante, g.Ante)
	}
	if s := fc.Solver; s != nil {
		set(&cfg.Solver.Seed, s.Seed)
		set(&cfg.Solver.Evaluator, s.Evaluator)
		set(&cfg.Solver.MaxIterations, s.MaxIterations)
		if err := setDuration(&cfg.Solver.ProgressInterval, s.ProgressInterval, "progress_interval"); err != nil {
			return err
		}
	}
	if i := fc.Inspector; i != nil {
		set(&cfg.Inspector.Enabled, i.Enabled)
		set(&cfg.Inspector.Address, i.Address)
		if err := setDuration(&cfg.Inspector.Refresh, i.Refresh, "refresh"); err != nil {
			return err
		}
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", game.ErrInvalidConfig, name, err)
	}
	*dst = d
	return nil
}

// SolverConfig converts the settings into the solver's own configuration.
func (c Config) SolverConfig() solver.Config {
	return solver.Config{
		FlopOne:          c.Game.FlopOne,
		FlopTwo:          c.Game.FlopTwo,
		Seats:            c.Game.Seats,
		Stack:            c.Game.Stack,
		Ante:             c.Game.Ante,
		Seed:             c.Solver.Seed,
		Evaluator:        c.Solver.Evaluator,
		ProgressInterval: c.Solver.ProgressInterval,
		MaxIterations:    c.Solver.MaxIterations,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	if err := c.SolverConfig().Validate(); err != nil {
		return err
	}
	if _, err := game.EvaluatorByName(c.Solver.Evaluator); err != nil {
		return err
	}
	if c.Inspector.Enabled {
		if c.Inspector.Address == "" {
			return fmt.Errorf("%w: inspector address is required", game.ErrInvalidConfig)
		}
		if c.Inspector.Refresh <= 0 {
			return fmt.Errorf("%w: inspector refresh must be positive", game.ErrInvalidConfig)
		}
	}
	return nil
}

// EnvUsage describes the environment variables Load understands.
func EnvUsage() (string, error) {
	header := "Environment variables:"
	var cfg Config
	return cleanenv.GetDescription(&cfg, &header)
}
