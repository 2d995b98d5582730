package poker

import (
	"math"

	ph "github.com/paulhankin/poker"
)

// TableEvaluator ranks Omaha holdings with the lookup tables from
// github.com/paulhankin/poker. It produces the same ordering as
// OmahaEvaluator but different absolute HandRank values.
type TableEvaluator struct{}

// phCards maps each Card to the library's card value. Built once since
// MakeCard validates on every call.
var phCards = func() [NumCards]ph.Card {
	var out [NumCards]ph.Card
	for i := range out {
		c := Card(i)
		// The library numbers ranks ace low: 1 (ace) through 13 (king).
		rank := ph.Rank(c.Rank() + 2)
		if c.Rank() == Ace {
			rank = 1
		}
		pc, err := ph.MakeCard(ph.Suit(c.Suit()), rank)
		if err != nil {
			panic(err)
		}
		out[i] = pc
	}
	return out
}()

// Evaluate implements game.Evaluator.
func (TableEvaluator) Evaluate(board [5]Card, hand Hand) HandRank {
	return bestOmaha(board, hand, evalTable5)
}

func evalTable5(cards [5]Card) HandRank {
	var in [5]ph.Card
	for i, c := range cards {
		in[i] = phCards[c]
	}
	// Higher library scores win, so flip them into the lower-is-stronger space.
	return HandRank(math.MaxInt16 - int32(ph.Eval5(&in)))
}
