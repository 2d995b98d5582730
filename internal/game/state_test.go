package game

import (
	"testing"

	"github.com/lox/bombpot/internal/randutil"
	"github.com/lox/bombpot/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(t *testing.T, s string) []poker.Card {
	t.Helper()
	c, err := poker.ParseCards(s)
	require.NoError(t, err)
	return c
}

func newTestState(t *testing.T, seats int, stack, ante float64, seed int64) *State {
	t.Helper()
	s, err := NewState(StateConfig{
		BoardOne: cards(t, "Ah7d2c"),
		BoardTwo: cards(t, "KsQs9h"),
		Seats:    seats,
		Stack:    stack,
		Ante:     ante,
	}, randutil.New(seed), poker.OmahaEvaluator{})
	require.NoError(t, err)
	return s
}

func totalChips(s *State) float64 {
	total := s.Pot()
	for i := 0; i < s.NumSeats(); i++ {
		total += s.Seat(i).Stack
	}
	return total
}

func TestNewStateRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	valid := func() StateConfig {
		return StateConfig{
			BoardOne: cards(t, "Ah7d2c"),
			BoardTwo: cards(t, "KsQs9h"),
			Seats:    6,
			Stack:    100,
			Ante:     5,
		}
	}
	tests := []struct {
		name   string
		mutate func(*StateConfig)
	}{
		{"short flop", func(c *StateConfig) { c.BoardOne = c.BoardOne[:2] }},
		{"long flop", func(c *StateConfig) { c.BoardTwo = append(c.BoardTwo, poker.NewCard(poker.Two, poker.Spades)) }},
		{"shared card", func(c *StateConfig) { c.BoardTwo = cards(t, "AhQs9h") }},
		{"repeat within flop", func(c *StateConfig) { c.BoardOne = cards(t, "AhAh2c") }},
		{"one seat", func(c *StateConfig) { c.Seats = 1 }},
		{"too many seats", func(c *StateConfig) { c.Seats = 11 }},
		{"zero stack", func(c *StateConfig) { c.Stack = 0 }},
		{"negative ante", func(c *StateConfig) { c.Ante = -1 }},
		{"ante above stack", func(c *StateConfig) { c.Ante = 101 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			s, err := NewState(cfg, randutil.New(1), nil)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, s)
		})
	}

	cfg := valid()
	cfg.Seats = 10
	_, err := NewState(cfg, randutil.New(1), nil)
	assert.NoError(t, err, "ten seats use 44 of the 46 remaining cards")
}

func TestNewStatePostsAntes(t *testing.T) {
	t.Parallel()
	s := newTestState(t, 6, 100, 5, 1)
	assert.Equal(t, 30.0, s.Pot())
	assert.Equal(t, 0, s.NextToAct())
	assert.Equal(t, -1, s.Aggressor())
	assert.Equal(t, "flop", s.Street())

	var used uint64
	for _, c := range append(s.BoardOne(), s.BoardTwo()...) {
		used |= c.Mask()
	}
	for i := 0; i < s.NumSeats(); i++ {
		seat := s.Seat(i)
		assert.Equal(t, 95.0, seat.Stack)
		assert.False(t, seat.Folded)
		require.Zero(t, used&seat.Hand.Mask(), "seat %d shares a card", i)
		used |= seat.Hand.Mask()
	}
}

func TestBoardCanonicalisation(t *testing.T) {
	t.Parallel()
	low, high := cards(t, "2c9h9d"), cards(t, "3cKsQs")
	a, err := NewState(StateConfig{BoardOne: low, BoardTwo: high, Seats: 4, Stack: 50, Ante: 1}, randutil.New(9), nil)
	require.NoError(t, err)
	b, err := NewState(StateConfig{BoardOne: high, BoardTwo: low, Seats: 4, Stack: 50, Ante: 1}, randutil.New(9), nil)
	require.NoError(t, err)

	assert.Equal(t, low, a.BoardOne())
	assert.Equal(t, low, b.BoardOne())
	assert.Equal(t, a.BoardTwo(), b.BoardTwo())
	for i := 0; i < 4; i++ {
		assert.Equal(t, a.Seat(i).Hand, b.Seat(i).Hand)
	}
}

func TestUniformStrategy(t *testing.T) {
	t.Parallel()
	s := newTestState(t, 3, 100, 5, 2)

	strat := s.UniformStrategy()
	require.Len(t, strat, 2)
	assert.Equal(t, ActionProb{Action: Pot, Prob: 0.5}, strat[0])
	assert.Equal(t, ActionProb{Action: Check, Prob: 0.5}, strat[1])

	require.NoError(t, s.Apply(Pot))
	strat = s.UniformStrategy()
	require.Len(t, strat, 3)
	sum := 0.0
	for _, ap := range strat {
		sum += ap.Prob
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Equal(t, []Action{Pot, Fold, Call}, s.LegalActions())
}

func TestPotSizingAndReopen(t *testing.T) {
	t.Parallel()
	s := newTestState(t, 3, 100, 5, 3)

	require.NoError(t, s.Apply(Pot))
	assert.Equal(t, 15.0, s.RoundBet(0))
	assert.Equal(t, 30.0, s.Pot())
	assert.Equal(t, 0, s.Aggressor())
	assert.Equal(t, 1, s.NextToAct())
	assert.Equal(t, 15.0, s.Owed(1))
	assert.Equal(t, 60.0, s.PotBet(1))

	require.NoError(t, s.Apply(Pot))
	assert.Equal(t, 60.0, s.RoundBet(1))
	assert.Equal(t, 90.0, s.Pot())
	assert.Equal(t, 1, s.Aggressor())
	assert.False(t, s.Acted(0), "re-pot reopens the first bettor")
	assert.Equal(t, 2, s.NextToAct())

	require.NoError(t, s.Apply(Fold))
	assert.Equal(t, 0, s.NextToAct())
	require.NoError(t, s.Apply(Call))
	assert.Equal(t, 60.0, s.RoundBet(0))
	assert.Equal(t, 135.0, s.Pot())
	assert.True(t, s.EndOfAction())
	assert.False(t, s.EndOfGame())
	assert.InDelta(t, 300.0, totalChips(s), 1e-9)

	deal, err := s.NextStreet()
	require.NoError(t, err)
	assert.Equal(t, "turn", s.Street())
	assert.Equal(t, deal.One, s.BoardOne()[3])
	assert.Equal(t, deal.Two, s.BoardTwo()[3])
	assert.Equal(t, 0.0, s.RoundBet(0))
	assert.Equal(t, 135.0, s.Pot(), "round bets are already in the pot")
	assert.Equal(t, -1, s.Aggressor())
	assert.False(t, s.Acted(0))
	assert.False(t, s.Acted(1))
	assert.True(t, s.Acted(2), "folded seats stay acted")
	assert.Equal(t, 0, s.NextToAct())
}

func TestApplyRejectsIllegalAction(t *testing.T) {
	t.Parallel()
	s := newTestState(t, 2, 100, 5, 4)
	assert.ErrorIs(t, s.Apply(Fold), ErrInvariant)
	assert.ErrorIs(t, s.Apply(Call), ErrInvariant)
	assert.ErrorIs(t, s.Apply(Nothing), ErrInvariant)
}

func TestFoldOutEndsGameAndCompletesBoards(t *testing.T) {
	t.Parallel()
	s := newTestState(t, 2, 100, 5, 5)

	_, err := s.CalculateEV()
	require.ErrorIs(t, err, ErrNotTerminal)

	require.NoError(t, s.Apply(Pot))
	require.NoError(t, s.Apply(Fold))
	require.True(t, s.EndOfGame())
	assert.ErrorIs(t, s.Apply(Check), ErrInvariant)

	evs, err := s.CalculateEV()
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 0}, evs)
	assert.Len(t, s.BoardOne(), 5)
	assert.Len(t, s.BoardTwo(), 5)
}

func TestAllInRunsOutToRiver(t *testing.T) {
	t.Parallel()
	s := newTestState(t, 2, 10, 5, 6)

	require.NoError(t, s.Apply(Pot))
	assert.True(t, s.Seat(0).AllIn())
	require.NoError(t, s.Apply(Call))
	assert.True(t, s.Seat(1).AllIn())
	assert.Equal(t, 20.0, s.Pot())

	// All in seats keep their acted flags, so the remaining streets need
	// no actions at all.
	streets := 0
	for !s.EndOfGame() {
		require.True(t, s.EndOfAction())
		assert.Equal(t, []Action{Nothing}, s.LegalActions())
		_, err := s.NextStreet()
		require.NoError(t, err)
		streets++
		require.LessOrEqual(t, streets, 2)
	}
	assert.Equal(t, 2, streets)
	assert.Len(t, s.BoardOne(), 5)
	assert.Len(t, s.BoardTwo(), 5)

	evs, err := s.CalculateEV()
	require.NoError(t, err)
	assert.InDelta(t, 20.0, evs[0]+evs[1], 1e-9)

	_, err = s.NextStreet()
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestCalculateEVConservesChips(t *testing.T) {
	t.Parallel()
	s := newTestState(t, 6, 100, 5, 7)
	for iter := 0; iter < 200; iter++ {
		require.NoError(t, s.Reset())
		for !s.EndOfGame() {
			if s.EndOfAction() {
				_, err := s.NextStreet()
				require.NoError(t, err)
				continue
			}
			strat := s.UniformStrategy()
			require.NoError(t, s.Apply(strat[s.rng.IntN(len(strat))].Action))
		}
		require.InDelta(t, 600.0, totalChips(s), 1e-9)

		evs, err := s.CalculateEV()
		require.NoError(t, err)
		sum := 0.0
		for i, ev := range evs {
			if s.Seat(i).Folded {
				require.Zero(t, ev)
			}
			sum += ev
		}
		require.InDelta(t, s.Pot(), sum, 1e-9)
	}
}

func TestQuadsShowdown(t *testing.T) {
	t.Parallel()
	for _, eval := range []Evaluator{poker.OmahaEvaluator{}, poker.TableEvaluator{}} {
		s, err := NewState(StateConfig{
			BoardOne: cards(t, "2c2d2s"),
			BoardTwo: cards(t, "3c3d3s"),
			Seats:    2,
			Stack:    100,
			Ante:     50,
		}, randutil.New(8), eval)
		require.NoError(t, err)

		aces, err := poker.ParseHand("AcAdAsAh")
		require.NoError(t, err)
		kings, err := poker.ParseHand("KcKdKsKh")
		require.NoError(t, err)
		s.seats[0].Hand = aces
		s.seats[1].Hand = kings
		s.boardOne = cards(t, "2c2d2s2h4h")
		s.boardTwo = cards(t, "3c3d3s3h5h")
		for i := range s.acted {
			s.acted[i] = true
		}

		evs, err := s.CalculateEV()
		require.NoError(t, err)
		assert.Equal(t, []float64{100, 0}, evs, "%T", eval)
	}
}

func TestResetRestoresFlop(t *testing.T) {
	t.Parallel()
	s := newTestState(t, 3, 100, 5, 10)
	before := s.Seat(0).Hand

	require.NoError(t, s.Apply(Check))
	require.NoError(t, s.Apply(Check))
	require.NoError(t, s.Apply(Check))
	_, err := s.NextStreet()
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	assert.Len(t, s.BoardOne(), 3)
	assert.Equal(t, 15.0, s.Pot())
	assert.Equal(t, 0, s.NextToAct())
	assert.NotEqual(t, before, s.Seat(0).Hand, "reset deals fresh hands")
}
