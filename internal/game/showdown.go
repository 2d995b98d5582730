package game

import "github.com/lox/bombpot/poker"

// Showdown returns each hand's share of the pot when both boards are
// complete. Each board is worth half the pot and is split evenly among the
// hands that tie for best on it, so the shares always sum to 1.
func Showdown(hands []poker.Hand, boardOne, boardTwo [5]poker.Card, eval Evaluator) []float64 {
	equity := make([]float64, len(hands))
	for _, board := range [2][5]poker.Card{boardOne, boardTwo} {
		winners := BoardWinners(hands, board, eval)
		share := 0.5 / float64(len(winners))
		for _, w := range winners {
			equity[w] += share
		}
	}
	return equity
}

// BoardWinners returns the indexes of the hands that tie for best on board.
func BoardWinners(hands []poker.Hand, board [5]poker.Card, eval Evaluator) []int {
	var winners []int
	var best poker.HandRank
	for i, h := range hands {
		r := eval.Evaluate(board, h)
		switch {
		case len(winners) == 0 || r < best:
			best = r
			winners = append(winners[:0], i)
		case r == best:
			winners = append(winners, i)
		}
	}
	return winners
}
