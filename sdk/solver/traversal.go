package solver

import (
	"fmt"
	"time"

	"github.com/lox/bombpot/internal/game"
)

// TraversalStats captures instrumentation for a single iteration.
type TraversalStats struct {
	NodesVisited  int64
	TerminalNodes int64
	MaxDepth      int
	IterationTime time.Duration
}

// iterate resets the live state to a fresh deal and runs one traversal from
// the root. Only the worker, or Iterate while no worker runs, calls it.
func (s *Solver) iterate() error {
	start := s.clock.Now()
	if err := s.state.Reset(); err != nil {
		return err
	}
	var stats TraversalStats
	if _, err := s.traverse(s.root, 1.0, 0, &stats); err != nil {
		return err
	}
	stats.IterationTime = s.clock.Since(start)
	s.setStats(stats)
	s.iterations.Add(1)
	return nil
}

// traverse walks one sampled path below node and returns every seat's EV.
// At each decision the seat to act samples one action, and on the way back
// up the node updates that seat's info set with the sampled EV.
func (s *Solver) traverse(node *Node, reach float64, depth int, stats *TraversalStats) ([]float64, error) {
	stats.NodesVisited++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	state := s.state
	if state.EndOfGame() {
		stats.TerminalNodes++
		return state.CalculateEV()
	}

	switch node.Kind() {
	case KindChance:
		deal, err := state.NextStreet()
		if err != nil {
			return nil, err
		}
		next, created := node.childFor(deal, state)
		if created {
			s.decisionNodes.Add(1)
		}
		return s.traverse(next, reach, depth+1, stats)

	case KindDecision:
		hero := state.NextToAct()
		if hero != node.Seat() {
			return nil, fmt.Errorf("%w: node %s expects seat %d, state has seat %d", game.ErrInvariant, node.PathString(), node.Seat(), hero)
		}
		hash := state.HandHash(hero)
		action, p := SampleAction(node.Strategy(hash), s.rng)
		if err := state.Apply(action); err != nil {
			return nil, err
		}

		next, created := node.child(action, state)
		if created {
			if next.Kind() == KindChance {
				s.chanceNodes.Add(1)
			} else {
				s.decisionNodes.Add(1)
			}
		}

		evs, err := s.traverse(next, reach*p, depth+1, stats)
		if err != nil {
			return nil, err
		}
		if err := node.Update(map[game.Action]float64{action: evs[hero]}, hash, reach); err != nil {
			return nil, err
		}
		return evs, nil

	default:
		return nil, fmt.Errorf("%w: unknown node kind %d", game.ErrInvariant, node.Kind())
	}
}
