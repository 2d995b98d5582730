// Package equity estimates double board showdown equity by Monte Carlo
// sampling. Work is split across goroutines, each with its own RNG derived
// from the seed, so results are reproducible for a fixed seed and worker
// count.
package equity

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/bombpot/internal/game"
	"github.com/lox/bombpot/internal/randutil"
	"github.com/lox/bombpot/poker"
)

// DefaultSamples is used when Options.Samples is zero.
const DefaultSamples = 100_000

// maxWorkers caps the default worker count; past this the returns diminish.
const maxWorkers = 8

// cancelCheck is how many samples a worker runs between context checks.
const cancelCheck = 1024

// Options tune a simulation.
type Options struct {
	Samples   int
	Workers   int // 0 picks min(NumCPU, 8)
	Seed      int64
	Evaluator game.Evaluator // nil uses the native PLO evaluator
}

func (o Options) withDefaults() Options {
	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if o.Workers <= 0 {
		o.Workers = min(runtime.NumCPU(), maxWorkers)
	}
	if o.Workers > o.Samples {
		o.Workers = o.Samples
	}
	if o.Evaluator == nil {
		o.Evaluator = poker.OmahaEvaluator{}
	}
	return o
}

// Result is the outcome of a Multiway simulation.
type Result struct {
	Equity  float64 // hero's average share of the pot
	Samples int
}

// MatchupResult is the outcome of a Matchup simulation. Equity follows the
// order of the input hands.
type MatchupResult struct {
	Equity  []float64
	Samples int
	ChopOne int // samples where board one was split
	ChopTwo int // samples where board two was split
	// ChopBoth counts samples where both boards were split.
	ChopBoth int
}

// Multiway estimates hero's equity on the two flops against players-1
// opponents holding random hands, running out a random turn and river on each
// board.
func Multiway(ctx context.Context, hero poker.Hand, flopOne, flopTwo [3]poker.Card, players int, opts Options) (Result, error) {
	if players < 2 {
		return Result{}, fmt.Errorf("%w: need at least 2 players, got %d", game.ErrInvalidConfig, players)
	}
	if need := 4*players + 10; need > poker.NumCards {
		return Result{}, fmt.Errorf("%w: %d players need %d cards", game.ErrInvalidConfig, players, need)
	}
	known := append(hero[:], flopOne[:]...)
	known = append(known, flopTwo[:]...)
	if err := checkKnown(known); err != nil {
		return Result{}, err
	}
	if opts.Samples < 0 {
		return Result{}, fmt.Errorf("%w: negative sample count", game.ErrInvalidConfig)
	}
	opts = opts.withDefaults()

	sums, err := run(ctx, opts, func(ctx context.Context, w *worker, n int) error {
		hands := make([]poker.Hand, players)
		hands[0] = hero
		for i := 0; i < n; i++ {
			if i%cancelCheck == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := w.prepare(known); err != nil {
				return err
			}
			for p := 1; p < players; p++ {
				if err := w.dealHand(&hands[p]); err != nil {
					return err
				}
			}
			one, two, err := w.runOut(flopOne[:], flopTwo[:])
			if err != nil {
				return err
			}
			w.equity[0] += game.Showdown(hands, one, two, opts.Evaluator)[0]
			w.samples++
		}
		return nil
	}, 1)
	if err != nil {
		return Result{}, err
	}
	return Result{Equity: sums.equity[0] / float64(sums.samples), Samples: sums.samples}, nil
}

// Matchup estimates the equity of fixed hands over random run outs. When the
// flops are nil both boards are dealt in full.
func Matchup(ctx context.Context, hands []poker.Hand, flopOne, flopTwo []poker.Card, opts Options) (MatchupResult, error) {
	if len(hands) < 2 {
		return MatchupResult{}, fmt.Errorf("%w: need at least 2 hands, got %d", game.ErrInvalidConfig, len(hands))
	}
	if len(flopOne) != len(flopTwo) || (len(flopOne) != 0 && len(flopOne) != 3) {
		return MatchupResult{}, fmt.Errorf("%w: flops must both be empty or 3 cards", game.ErrInvalidConfig)
	}
	var known []poker.Card
	for _, h := range hands {
		known = append(known, h[:]...)
	}
	known = append(known, flopOne...)
	known = append(known, flopTwo...)
	if err := checkKnown(known); err != nil {
		return MatchupResult{}, err
	}
	if len(known)+2*(5-len(flopOne)) > poker.NumCards {
		return MatchupResult{}, fmt.Errorf("%w: %d hands do not fit in one deck", game.ErrInvalidConfig, len(hands))
	}
	if opts.Samples < 0 {
		return MatchupResult{}, fmt.Errorf("%w: negative sample count", game.ErrInvalidConfig)
	}
	opts = opts.withDefaults()

	sums, err := run(ctx, opts, func(ctx context.Context, w *worker, n int) error {
		for i := 0; i < n; i++ {
			if i%cancelCheck == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := w.prepare(known); err != nil {
				return err
			}
			one, two, err := w.runOut(flopOne, flopTwo)
			if err != nil {
				return err
			}
			splitOne := len(game.BoardWinners(hands, one, opts.Evaluator)) > 1
			splitTwo := len(game.BoardWinners(hands, two, opts.Evaluator)) > 1
			for j, eq := range game.Showdown(hands, one, two, opts.Evaluator) {
				w.equity[j] += eq
			}
			if splitOne {
				w.chopOne++
			}
			if splitTwo {
				w.chopTwo++
			}
			if splitOne && splitTwo {
				w.chopBoth++
			}
			w.samples++
		}
		return nil
	}, len(hands))
	if err != nil {
		return MatchupResult{}, err
	}

	res := MatchupResult{
		Equity:   make([]float64, len(hands)),
		Samples:  sums.samples,
		ChopOne:  sums.chopOne,
		ChopTwo:  sums.chopTwo,
		ChopBoth: sums.chopBoth,
	}
	for i, s := range sums.equity {
		res.Equity[i] = s / float64(sums.samples)
	}
	return res, nil
}

func checkKnown(cards []poker.Card) error {
	var seen uint64
	for _, c := range cards {
		if !c.Valid() {
			return fmt.Errorf("%w: invalid card %d", game.ErrInvalidConfig, c)
		}
		if seen&c.Mask() != 0 {
			return fmt.Errorf("%w: card %s appears twice", game.ErrInvalidConfig, c)
		}
		seen |= c.Mask()
	}
	return nil
}

// worker holds one goroutine's deck and running totals.
type worker struct {
	deck     *poker.Deck
	equity   []float64
	samples  int
	chopOne  int
	chopTwo  int
	chopBoth int
}

// prepare restores the deck minus the known cards and shuffles it.
func (w *worker) prepare(known []poker.Card) error {
	w.deck.Reset()
	if err := w.deck.Remove(known...); err != nil {
		return err
	}
	w.deck.Shuffle()
	return nil
}

func (w *worker) dealHand(h *poker.Hand) error {
	cards, err := w.deck.Deal(len(h))
	if err != nil {
		return err
	}
	copy(h[:], cards)
	return nil
}

// runOut completes both boards from the given flops.
func (w *worker) runOut(flopOne, flopTwo []poker.Card) (one, two [5]poker.Card, err error) {
	for _, b := range []struct {
		dst  *[5]poker.Card
		flop []poker.Card
	}{{&one, flopOne}, {&two, flopTwo}} {
		n := copy(b.dst[:], b.flop)
		cards, err := w.deck.Deal(5 - n)
		if err != nil {
			return one, two, err
		}
		copy(b.dst[n:], cards)
	}
	return one, two, nil
}

// run splits opts.Samples across opts.Workers goroutines and sums their
// totals. seats sizes each worker's equity accumulator.
func run(ctx context.Context, opts Options, body func(ctx context.Context, w *worker, n int) error, seats int) (*worker, error) {
	perWorker := opts.Samples / opts.Workers
	remainder := opts.Samples % opts.Workers

	workers := make([]*worker, opts.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		n := perWorker
		if i < remainder {
			n++
		}
		w := &worker{
			deck:   poker.NewDeck(randutil.Derive(opts.Seed, i)),
			equity: make([]float64, seats),
		}
		workers[i] = w
		g.Go(func() error {
			return body(gctx, w, n)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &worker{equity: make([]float64, seats)}
	for _, w := range workers {
		for i, e := range w.equity {
			total.equity[i] += e
		}
		total.samples += w.samples
		total.chopOne += w.chopOne
		total.chopTwo += w.chopTwo
		total.chopBoth += w.chopBoth
	}
	return total, nil
}
