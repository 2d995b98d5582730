package equity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bombpot/internal/game"
	"github.com/lox/bombpot/poker"
)

func mustHand(t *testing.T, s string) poker.Hand {
	t.Helper()
	h, err := poker.ParseHand(s)
	require.NoError(t, err)
	return h
}

func mustFlop(t *testing.T, s string) [3]poker.Card {
	t.Helper()
	cards, err := poker.ParseCards(s)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	return [3]poker.Card{cards[0], cards[1], cards[2]}
}

func TestMultiwayValidation(t *testing.T) {
	ctx := context.Background()
	hero := mustHand(t, "AcAdKsKh")
	one := mustFlop(t, "2c7d9h")
	two := mustFlop(t, "3s8sTd")

	_, err := Multiway(ctx, hero, one, two, 1, Options{})
	assert.ErrorIs(t, err, game.ErrInvalidConfig)

	_, err = Multiway(ctx, hero, one, two, 11, Options{})
	assert.ErrorIs(t, err, game.ErrInvalidConfig)

	_, err = Multiway(ctx, hero, mustFlop(t, "Ac7d9h"), two, 4, Options{})
	assert.ErrorIs(t, err, game.ErrInvalidConfig)

	_, err = Multiway(ctx, hero, one, two, 4, Options{Samples: -1})
	assert.ErrorIs(t, err, game.ErrInvalidConfig)
}

func TestMultiwayReproducible(t *testing.T) {
	ctx := context.Background()
	hero := mustHand(t, "AcAdKsKh")
	one := mustFlop(t, "2c7d9h")
	two := mustFlop(t, "3s8sTd")
	opts := Options{Samples: 4000, Workers: 3, Seed: 7}

	a, err := Multiway(ctx, hero, one, two, 4, opts)
	require.NoError(t, err)
	b, err := Multiway(ctx, hero, one, two, 4, opts)
	require.NoError(t, err)

	assert.Equal(t, 4000, a.Samples)
	assert.Equal(t, a, b)
	assert.Greater(t, a.Equity, 0.0)
	assert.Less(t, a.Equity, 1.0)
}

func TestMultiwayHeroAheadOfField(t *testing.T) {
	// Top set on both flops against random hands.
	hero := mustHand(t, "AcAdKsKh")
	res, err := Multiway(context.Background(), hero,
		mustFlop(t, "Ah7d2c"), mustFlop(t, "Kd8s3h"), 3, Options{Samples: 6000, Seed: 1})
	require.NoError(t, err)
	// A fair share in a three way pot is a third.
	assert.Greater(t, res.Equity, 0.6)
}

func TestMatchupQuadsOnBoard(t *testing.T) {
	hands := []poker.Hand{mustHand(t, "AcAdAsAh"), mustHand(t, "KcKdKsKh")}
	res, err := Matchup(context.Background(), hands, nil, nil, Options{Samples: 3000, Seed: 3})
	require.NoError(t, err)

	require.Len(t, res.Equity, 2)
	assert.InDelta(t, 1.0, res.Equity[0]+res.Equity[1], 1e-9)
	// Aces block every ace high run out, kings only the king high ones.
	assert.Greater(t, res.Equity[0], res.Equity[1])
	assert.GreaterOrEqual(t, res.ChopOne, res.ChopBoth)
	assert.GreaterOrEqual(t, res.ChopTwo, res.ChopBoth)
	assert.Equal(t, 3000, res.Samples)
}

func TestMatchupWithFlops(t *testing.T) {
	hands := []poker.Hand{mustHand(t, "AcAdKsKh"), mustHand(t, "QcQdJsJh")}
	one := mustFlop(t, "Ah7d2c")
	two := mustFlop(t, "Kd8s3h")

	res, err := Matchup(context.Background(), hands, one[:], two[:], Options{Samples: 2000, Seed: 9, Workers: 2})
	require.NoError(t, err)
	assert.Greater(t, res.Equity[0], 0.9)

	_, err = Matchup(context.Background(), hands, one[:], nil, Options{})
	assert.ErrorIs(t, err, game.ErrInvalidConfig)

	_, err = Matchup(context.Background(), hands[:1], nil, nil, Options{})
	assert.ErrorIs(t, err, game.ErrInvalidConfig)

	dup := []poker.Hand{hands[0], hands[0]}
	_, err = Matchup(context.Background(), dup, nil, nil, Options{})
	assert.ErrorIs(t, err, game.ErrInvalidConfig)
}

func TestMatchupEvaluatorsAgree(t *testing.T) {
	hands := []poker.Hand{mustHand(t, "AsKsQh7d"), mustHand(t, "9c8c6d5d"), mustHand(t, "JhJdTc2s")}
	opts := Options{Samples: 1500, Seed: 11, Workers: 2}

	native, err := Matchup(context.Background(), hands, nil, nil, opts)
	require.NoError(t, err)
	opts.Evaluator = poker.TableEvaluator{}
	table, err := Matchup(context.Background(), hands, nil, nil, opts)
	require.NoError(t, err)

	// Same seed, same deals; the evaluators must rank them identically.
	assert.Equal(t, native, table)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hands := []poker.Hand{mustHand(t, "AcAdAsAh"), mustHand(t, "KcKdKsKh")}
	_, err := Matchup(ctx, hands, nil, nil, Options{Samples: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultSamples, o.Samples)
	assert.GreaterOrEqual(t, o.Workers, 1)
	assert.LessOrEqual(t, o.Workers, maxWorkers)
	assert.NotNil(t, o.Evaluator)

	o = Options{Samples: 2, Workers: 6}.withDefaults()
	assert.Equal(t, 2, o.Workers)
}
