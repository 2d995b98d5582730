// Package game implements the betting state machine for a double-board
// pot-limit Omaha bomb pot.
//
// The main type is State, which tracks both boards, every seat's hole cards
// and stack, the pot and the current betting round. A State starts on the
// flop: every seat posts the ante and the action begins with seat 0.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	s, err := game.NewState(game.StateConfig{
//	    BoardOne: flopOne,
//	    BoardTwo: flopTwo,
//	    Seats:    6,
//	    Stack:    100,
//	    Ante:     5,
//	}, rng, poker.OmahaEvaluator{})
//	for !s.EndOfGame() {
//	    if s.EndOfAction() {
//	        s.NextStreet()
//	        continue
//	    }
//	    s.Apply(s.UniformStrategy()[0].Action)
//	}
//	evs, err := s.CalculateEV()
//
// # Betting
//
// The only wagers are CHECK, FOLD, CALL and POT (bet or re-raise the size of
// the pot). A seat that has folded or is all in can only take NOTHING, which
// keeps the tree shape uniform while the remaining seats play on.
//
// The pot holds every chip committed so far, including bets made in the
// current round. Round bets are tracked separately only to size calls.
//
// # Deterministic Testing
//
// All shuffling uses the *rand.Rand handed to NewState, so a fixed seed
// reproduces the same sequence of deals across Reset calls.
package game
