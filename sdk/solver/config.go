package solver

import (
	"fmt"
	"time"

	"github.com/lox/bombpot/internal/game"
	"github.com/lox/bombpot/poker"
)

// Config describes the bomb pot to solve and how the worker runs.
type Config struct {
	// FlopOne and FlopTwo are six character flops such as "Ah7d2c".
	FlopOne string
	FlopTwo string

	Seats int
	Stack float64
	Ante  float64

	// Seed drives every shuffle and sampled action. Zero picks a time based seed.
	Seed int64

	// Evaluator selects the hand ranking backend ("native" or "table").
	Evaluator string

	// ProgressInterval controls how often the worker logs progress. Zero
	// disables progress logging.
	ProgressInterval time.Duration

	// MaxIterations stops the worker after this many iterations. Zero runs
	// until Stop.
	MaxIterations int64
}

// DefaultConfig returns a six handed bomb pot with 100 chip stacks.
func DefaultConfig() Config {
	return Config{
		FlopOne:          "Ah7d2c",
		FlopTwo:          "KsQs9h",
		Seats:            6,
		Stack:            100,
		Ante:             5,
		Seed:             1,
		Evaluator:        game.EvaluatorNative,
		ProgressInterval: 10 * time.Second,
	}
}

// Validate checks everything that does not require dealing cards.
func (c Config) Validate() error {
	_, err := c.stateConfig()
	return err
}

func (c Config) stateConfig() (game.StateConfig, error) {
	if c.ProgressInterval < 0 {
		return game.StateConfig{}, fmt.Errorf("%w: progress interval cannot be negative", game.ErrInvalidConfig)
	}
	if c.MaxIterations < 0 {
		return game.StateConfig{}, fmt.Errorf("%w: max iterations cannot be negative", game.ErrInvalidConfig)
	}
	one, err := parseFlop(c.FlopOne)
	if err != nil {
		return game.StateConfig{}, fmt.Errorf("flop one: %w", err)
	}
	two, err := parseFlop(c.FlopTwo)
	if err != nil {
		return game.StateConfig{}, fmt.Errorf("flop two: %w", err)
	}
	sc := game.StateConfig{
		BoardOne: one,
		BoardTwo: two,
		Seats:    c.Seats,
		Stack:    c.Stack,
		Ante:     c.Ante,
	}
	return sc, sc.Validate()
}

func parseFlop(s string) ([]poker.Card, error) {
	if len(s) != 6 {
		return nil, fmt.Errorf("%w: flop %q must be 6 characters", game.ErrInvalidConfig, s)
	}
	cards, err := poker.ParseCards(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrInvalidConfig, err)
	}
	return cards, nil
}
