package game

import (
	"fmt"

	"github.com/lox/bombpot/poker"
)

// Evaluator ranks an Omaha holding on a complete board using exactly two
// hole cards and three board cards. Lower ranks are stronger.
type Evaluator interface {
	Evaluate(board [5]poker.Card, hand poker.Hand) poker.HandRank
}

// Evaluator names accepted by EvaluatorByName.
const (
	EvaluatorNative = "native"
	EvaluatorTable  = "table"
)

// EvaluatorByName resolves a configured evaluator name.
func EvaluatorByName(name string) (Evaluator, error) {
	switch name {
	case "", EvaluatorNative:
		return poker.OmahaEvaluator{}, nil
	case EvaluatorTable:
		return poker.TableEvaluator{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown evaluator %q", ErrInvalidConfig, name)
	}
}
