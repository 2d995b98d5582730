package solver

import (
	rand "math/rand/v2"

	"github.com/lox/bombpot/internal/game"
)

// SampleAction draws an action from probs and returns it with its
// probability. Zero mass actions are never chosen unless rounding leaves the
// draw past the end, in which case the last action is returned.
func SampleAction(probs []game.ActionProb, rng *rand.Rand) (game.Action, float64) {
	if len(probs) == 0 {
		return game.Nothing, 0
	}
	u := rng.Float64()
	acc := 0.0
	for _, ap := range probs {
		if ap.Prob <= 0 {
			continue
		}
		acc += ap.Prob
		if acc >= u {
			return ap.Action, ap.Prob
		}
	}
	last := probs[len(probs)-1]
	return last.Action, last.Prob
}
