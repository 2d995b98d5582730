package game

import (
	"testing"

	"github.com/lox/bombpot/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowdownSplitsEachBoard(t *testing.T) {
	t.Parallel()
	one := [5]poker.Card(cards(t, "AhKhQh2c3d"))
	two := [5]poker.Card(cards(t, "9s8s7c2h4d"))

	nutFlush, err := poker.ParseHand("JhTh6s5s")
	require.NoError(t, err)
	straight, err := poker.ParseHand("JcTc6c5c")
	require.NoError(t, err)
	other, err := poker.ParseHand("JdTd6d5d")
	require.NoError(t, err)

	// nutFlush scoops board one, all three make the same straight on board two.
	eq := Showdown([]poker.Hand{nutFlush, straight, other}, one, two, poker.OmahaEvaluator{})
	assert.InDelta(t, 0.5+0.5/3, eq[0], 1e-12)
	assert.InDelta(t, 0.5/3, eq[1], 1e-12)
	assert.InDelta(t, 0.5/3, eq[2], 1e-12)
	assert.InDelta(t, 1.0, eq[0]+eq[1]+eq[2], 1e-12)
}

func TestBoardWinnersTie(t *testing.T) {
	t.Parallel()
	board := [5]poker.Card(cards(t, "AsKdQc2h3h"))
	a, err := poker.ParseHand("JcTd4s5s")
	require.NoError(t, err)
	b, err := poker.ParseHand("JsTh4c5d")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, BoardWinners([]poker.Hand{a, b}, board, poker.OmahaEvaluator{}))
}

func TestPositionLabel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "SB", PositionLabel(0, 6))
	assert.Equal(t, "UTG", PositionLabel(2, 6))
	assert.Equal(t, "BTN", PositionLabel(5, 6))
	assert.Equal(t, "P2", PositionLabel(2, 4))
	assert.Equal(t, "P9", PositionLabel(9, 10))
}

func TestParseActionAndDeal(t *testing.T) {
	t.Parallel()
	for a := Action(0); a < NumActions; a++ {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	got, err := ParseAction("POT")
	require.NoError(t, err)
	assert.Equal(t, Pot, got)
	_, err = ParseAction("raise")
	assert.Error(t, err)

	d, err := ParseDeal("Th2s")
	require.NoError(t, err)
	assert.Equal(t, "Th2s", d.String())
	_, err = ParseDeal("Th")
	assert.Error(t, err)
}

func TestShowdownRanksTwoPairAndKickers(t *testing.T) {
	t.Parallel()
	one := [5]poker.Card(cards(t, "8h2hTc7d4s"))
	two := [5]poker.Card(cards(t, "As9c5hKdQc"))

	sevensFours, err := poker.ParseHand("2cJd4d7s")
	require.NoError(t, err)
	tensDeuces, err := poker.ParseHand("Th2s6c3d")
	require.NoError(t, err)
	hands := []poker.Hand{sevensFours, tensDeuces}

	// TT22 beats 7744 on board one, AKQJ7 beats AKQT6 on board two.
	for _, eval := range []Evaluator{poker.OmahaEvaluator{}, poker.TableEvaluator{}} {
		assert.Equal(t, []int{1}, BoardWinners(hands, one, eval), "%T", eval)
		assert.Equal(t, []int{0}, BoardWinners(hands, two, eval), "%T", eval)
		assert.Equal(t, []float64{0.5, 0.5}, Showdown(hands, one, two, eval), "%T", eval)
	}
}
