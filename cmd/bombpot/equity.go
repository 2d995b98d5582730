package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lox/bombpot/internal/equity"
	"github.com/lox/bombpot/internal/game"
	"github.com/lox/bombpot/poker"
)

// EquityCmd groups the Monte Carlo equity tools.
type EquityCmd struct {
	Multiway MultiwayCmd `cmd:"" help:"Equity of one hand on two flops against random hands"`
	Matchup  MatchupCmd  `cmd:"" help:"Equity of fixed hands over random run outs"`
}

// SimFlags are shared by the equity commands.
type SimFlags struct {
	Samples   int    `kong:"default='100000',help='Monte Carlo samples'"`
	Workers   int    `kong:"default='0',help='Worker goroutines (0 for one per CPU, at most 8)'"`
	Seed      int64  `kong:"default='1',help='RNG seed (0 for time based)'"`
	Evaluator string `kong:"default='native',enum='native,table',help='Hand evaluator'"`
}

func (f SimFlags) options() (equity.Options, error) {
	eval, err := game.EvaluatorByName(f.Evaluator)
	if err != nil {
		return equity.Options{}, err
	}
	seed := f.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return equity.Options{
		Samples:   f.Samples,
		Workers:   f.Workers,
		Seed:      seed,
		Evaluator: eval,
	}, nil
}

type MultiwayCmd struct {
	Hand    string `kong:"arg,help='Hero hand, e.g. AcAdKsKh'"`
	FlopOne string `kong:"required,help='First flop'"`
	FlopTwo string `kong:"required,help='Second flop'"`
	Players int    `kong:"default='6',help='Players including hero'"`
	SimFlags `embed:""`
}

func (c *MultiwayCmd) Run() error {
	hero, err := poker.ParseHand(c.Hand)
	if err != nil {
		return err
	}
	one, err := parseFlop(c.FlopOne)
	if err != nil {
		return err
	}
	two, err := parseFlop(c.FlopTwo)
	if err != nil {
		return err
	}
	opts, err := c.options()
	if err != nil {
		return err
	}

	res, err := equity.Multiway(context.Background(), hero, one, two, c.Players, opts)
	if err != nil {
		return err
	}
	writeMultiway(os.Stdout, hero, c.FlopOne, c.FlopTwo, c.Players, res)
	return nil
}

type MatchupCmd struct {
	Hands   []string `kong:"arg,help='Two or more hands, e.g. AcAdAsAh KcKdKsKh'"`
	FlopOne string   `kong:"help='First flop (empty deals both boards in full)'"`
	FlopTwo string   `kong:"help='Second flop'"`
	SimFlags `embed:""`
}

func (c *MatchupCmd) Run() error {
	hands := make([]poker.Hand, len(c.Hands))
	for i, s := range c.Hands {
		h, err := poker.ParseHand(s)
		if err != nil {
			return err
		}
		hands[i] = h
	}
	var one, two []poker.Card
	if c.FlopOne != "" || c.FlopTwo != "" {
		f1, err := parseFlop(c.FlopOne)
		if err != nil {
			return err
		}
		f2, err := parseFlop(c.FlopTwo)
		if err != nil {
			return err
		}
		one, two = f1[:], f2[:]
	}
	opts, err := c.options()
	if err != nil {
		return err
	}

	res, err := equity.Matchup(context.Background(), hands, one, two, opts)
	if err != nil {
		return err
	}
	writeMatchup(os.Stdout, hands, res)
	return nil
}

func parseFlop(s string) ([3]poker.Card, error) {
	var flop [3]poker.Card
	cards, err := poker.ParseCards(s)
	if err != nil {
		return flop, err
	}
	if len(cards) != 3 {
		return flop, fmt.Errorf("%w: flop %q must have 3 cards", game.ErrInvalidConfig, s)
	}
	copy(flop[:], cards)
	return flop, nil
}

func writeMultiway(w io.Writer, hero poker.Hand, flopOne, flopTwo string, players int, res equity.Result) {
	fmt.Fprintf(w, "Samples: %s\n", humanize.Comma(int64(res.Samples)))
	fmt.Fprintf(w, "Players: %d\n", players)
	fmt.Fprintf(w, "Flop 1:  %s\n", flopOne)
	fmt.Fprintf(w, "Flop 2:  %s\n", flopTwo)
	fmt.Fprintf(w, "Hero:    %s (%s)\n", hero, poker.CategorizeOmaha(hero))
	fmt.Fprintf(w, "Equity:  %.2f%%\n", 100*res.Equity)
}

func writeMatchup(w io.Writer, hands []poker.Hand, res equity.MatchupResult) {
	n := int64(res.Samples)
	fmt.Fprintf(w, "Samples: %s\n", humanize.Comma(n))
	for i, h := range hands {
		fmt.Fprintf(w, "%s  %-14s %6.2f%%\n", h, poker.CategorizeOmaha(h), 100*res.Equity[i])
	}
	fmt.Fprintf(w, "Chop board 1: %s/%s\n", humanize.Comma(int64(res.ChopOne)), humanize.Comma(n))
	fmt.Fprintf(w, "Chop board 2: %s/%s\n", humanize.Comma(int64(res.ChopTwo)), humanize.Comma(n))
	fmt.Fprintf(w, "Chop both:    %s/%s\n", humanize.Comma(int64(res.ChopBoth)), humanize.Comma(n))
}
