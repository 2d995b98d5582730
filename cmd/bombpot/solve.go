package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/lox/bombpot/cmd/bombpot/shared"
	"github.com/lox/bombpot/internal/config"
	"github.com/lox/bombpot/internal/inspect"
	"github.com/lox/bombpot/sdk/solver"
)

// SolveCmd runs the solver until interrupted or a limit is reached. Flags
// override the config file, which overrides the defaults.
type SolveCmd struct {
	Config    string `kong:"default='bombpot.hcl',type='path',help='HCL config file (missing file uses defaults)'"`
	Debug     bool   `kong:"help='Enable debug logging'"`
	LogFormat string `kong:"default='console',enum='console,json',help='Log output format'"`

	FlopOne   *string  `kong:"help='First flop, e.g. Ah7d2c'"`
	FlopTwo   *string  `kong:"help='Second flop, e.g. KsQs9h'"`
	Seats     *int     `kong:"help='Number of players'"`
	Stack     *float64 `kong:"help='Starting stack'"`
	Ante      *float64 `kong:"help='Ante per player'"`
	Seed      *int64   `kong:"help='RNG seed (0 for time based)'"`
	Evaluator string   `kong:"help='Hand evaluator: native or table'"`

	Iterations int64         `kong:"help='Stop after this many iterations (0 keeps the config value)'"`
	Duration   time.Duration `kong:"help='Stop after this long (0 runs until interrupted)'"`
	Progress   bool          `kong:"help='Show a progress bar'"`

	Inspect bool   `kong:"help='Serve the websocket inspector'"`
	Addr    string `kong:"help='Inspector listen address (overrides config)'"`

	Top  int  `kong:"default='20',help='Hands to print for the root node'"`
	JSON bool `kong:"help='Print the root report as JSON'"`
}

func (c *SolveCmd) Run() error {
	logger, err := shared.SetupLogger(c.LogFormat, c.Debug)
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	c.overlay(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	runID := uuid.NewString()
	s, err := solver.New(cfg.SolverConfig(), solver.WithLogger(logger), solver.WithRunID(runID))
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()
	if c.Duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, c.Duration)
		defer stop()
	}

	if cfg.Inspector.Enabled {
		srv, err := inspect.New(s,
			inspect.WithLogger(shared.NewServerLogger(os.Stderr, c.LogFormat, c.Debug)),
			inspect.WithRefresh(cfg.Inspector.Refresh),
		)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Inspector.Address); err != nil {
				logger.Error().Err(err).Msg("Inspector failed")
			}
		}()
	}

	start := time.Now()
	if err := s.Start(ctx); err != nil {
		return err
	}
	if c.Progress {
		go showProgress(ctx, s, cfg.Solver.MaxIterations)
	}
	if err := s.Wait(context.Background()); err != nil {
		return err
	}
	if err := s.Stop(); err != nil {
		return err
	}

	summarize(logger, s, time.Since(start))
	return c.printRoot(os.Stdout, s.Root())
}

// overlay applies the flags that were set on top of cfg.
func (c *SolveCmd) overlay(cfg *config.Config) {
	if c.FlopOne != nil {
		cfg.Game.FlopOne = *c.FlopOne
	}
	if c.FlopTwo != nil {
		cfg.Game.FlopTwo = *c.FlopTwo
	}
	if c.Seats != nil {
		cfg.Game.Seats = *c.Seats
	}
	if c.Stack != nil {
		cfg.Game.Stack = *c.Stack
	}
	if c.Ante != nil {
		cfg.Game.Ante = *c.Ante
	}
	if c.Seed != nil {
		cfg.Solver.Seed = *c.Seed
	}
	if c.Evaluator != "" {
		cfg.Solver.Evaluator = c.Evaluator
	}
	if c.Iterations > 0 {
		cfg.Solver.MaxIterations = c.Iterations
	}
	if c.Inspect {
		cfg.Inspector.Enabled = true
	}
	if c.Addr != "" {
		cfg.Inspector.Address = c.Addr
	}
}

func (c *SolveCmd) printRoot(w io.Writer, root *solver.Node) error {
	r := root.Report(c.Top)
	if c.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return writeReport(w, r)
}

// showProgress draws a bar until ctx is done or the worker stops. Without an
// iteration limit the bar is an open ended counter.
func showProgress(ctx context.Context, s *solver.Solver, limit int64) {
	total := limit
	if total <= 0 {
		total = -1
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription("solving"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("it"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	defer func() { _ = bar.Finish() }()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		_ = bar.Set64(s.Iterations())
		if s.State() == solver.Stopped {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func summarize(logger zerolog.Logger, s *solver.Solver, elapsed time.Duration) {
	st := s.Stats()
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(st.Iterations) / secs
	}
	logger.Info().
		Str("iterations", humanize.Comma(st.Iterations)).
		Str("decision_nodes", humanize.Comma(st.DecisionNodes)).
		Str("chance_nodes", humanize.Comma(st.ChanceNodes)).
		Str("rate", humanize.CommafWithDigits(rate, 1)+"/s").
		Dur("elapsed", elapsed.Round(time.Millisecond)).
		Msg("Solve finished")
}
