package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/bombpot/poker"
)

// allInThreshold is the stack below which a seat counts as all in.
const allInThreshold = 0.001

// runoutCards is the number of cards needed to take both boards from the flop
// to the river.
const runoutCards = 4

// StateConfig describes a bomb pot starting on the flop.
type StateConfig struct {
	BoardOne []poker.Card // flop for the first board, exactly three cards
	BoardTwo []poker.Card // flop for the second board, exactly three cards
	Seats    int
	Stack    float64 // starting stack before the ante
	Ante     float64
}

// Validate checks the configuration before any cards are dealt.
func (c StateConfig) Validate() error {
	if len(c.BoardOne) != 3 || len(c.BoardTwo) != 3 {
		return fmt.Errorf("%w: each flop needs exactly 3 cards (got %d and %d)", ErrInvalidConfig, len(c.BoardOne), len(c.BoardTwo))
	}
	var seen uint64
	for _, card := range append(append([]poker.Card{}, c.BoardOne...), c.BoardTwo...) {
		if !card.Valid() {
			return fmt.Errorf("%w: invalid board card %d", ErrInvalidConfig, card)
		}
		if seen&(1<<card) != 0 {
			return fmt.Errorf("%w: the two flops must hold 6 distinct cards (%s repeats)", ErrInvalidConfig, card)
		}
		seen |= 1 << card
	}
	if c.Seats < 2 {
		return fmt.Errorf("%w: need at least 2 seats, got %d", ErrInvalidConfig, c.Seats)
	}
	if need := 4*c.Seats + runoutCards; need > poker.NumCards-6 {
		return fmt.Errorf("%w: %d seats need %d cards but only %d remain after the flops", ErrInvalidConfig, c.Seats, need, poker.NumCards-6)
	}
	if c.Stack <= 0 {
		return fmt.Errorf("%w: stack must be positive, got %g", ErrInvalidConfig, c.Stack)
	}
	if c.Ante < 0 || c.Ante > c.Stack {
		return fmt.Errorf("%w: ante %g must lie between 0 and the stack %g", ErrInvalidConfig, c.Ante, c.Stack)
	}
	return nil
}

// Seat is one player at the table.
type Seat struct {
	Stack  float64
	Folded bool
	Hand   poker.Hand
}

// AllIn reports whether the seat has no chips left behind.
func (s Seat) AllIn() bool {
	return s.Stack < allInThreshold
}

// State is the live game position used by a single traversal. It is not safe
// for concurrent use.
type State struct {
	cfg  StateConfig
	rng  *rand.Rand
	eval Evaluator
	deck *poker.Deck

	flopOne  [3]poker.Card
	flopTwo  [3]poker.Card
	boardOne []poker.Card
	boardTwo []poker.Card

	seats     []Seat
	pot       float64
	roundBets []float64
	acted     []bool
	aggressor int
	next      int
}

// NewState validates cfg, puts the flops in canonical order, deals four
// cards to every seat and posts the antes.
//
// The flop whose first card is lower in card order always becomes board one,
// so swapping the flops in the configuration produces the same game.
func NewState(cfg StateConfig, rng *rand.Rand, eval Evaluator) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}
	if eval == nil {
		eval = poker.OmahaEvaluator{}
	}

	s := &State{
		cfg:       cfg,
		rng:       rng,
		eval:      eval,
		deck:      poker.NewDeck(rng),
		seats:     make([]Seat, cfg.Seats),
		roundBets: make([]float64, cfg.Seats),
		acted:     make([]bool, cfg.Seats),
		boardOne:  make([]poker.Card, 0, 5),
		boardTwo:  make([]poker.Card, 0, 5),
	}
	copy(s.flopOne[:], cfg.BoardOne)
	copy(s.flopTwo[:], cfg.BoardTwo)
	if s.flopTwo[0] < s.flopOne[0] {
		s.flopOne, s.flopTwo = s.flopTwo, s.flopOne
	}

	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset returns the state to the flop with a fresh deck and a new random
// deal for every seat. Boards, seat count, stacks and ante are unchanged.
func (s *State) Reset() error {
	s.deck.Reset()
	if err := s.deck.Remove(append(s.flopOne[:], s.flopTwo[:]...)...); err != nil {
		return fmt.Errorf("%w: remove flops: %v", ErrInvariant, err)
	}
	s.deck.Shuffle()

	s.boardOne = append(s.boardOne[:0], s.flopOne[:]...)
	s.boardTwo = append(s.boardTwo[:0], s.flopTwo[:]...)

	s.pot = 0
	for i := range s.seats {
		cards, err := s.deck.Deal(4)
		if err != nil {
			return fmt.Errorf("%w: deal seat %d: %v", ErrInvariant, i, err)
		}
		s.seats[i] = Seat{
			Stack: s.cfg.Stack - s.cfg.Ante,
			Hand:  poker.Hand(cards),
		}
		s.pot += s.cfg.Ante
		s.roundBets[i] = 0
		s.acted[i] = false
	}
	s.aggressor = -1
	s.next = 0
	return nil
}

// NumSeats returns the number of seats at the table.
func (s *State) NumSeats() int { return len(s.seats) }

// Seat returns a copy of seat i.
func (s *State) Seat(i int) Seat { return s.seats[i] }

// Pot returns every chip committed so far, including current round bets.
func (s *State) Pot() float64 { return s.pot }

// RoundBet returns what seat i has put in during the current round.
func (s *State) RoundBet(i int) float64 { return s.roundBets[i] }

// Acted reports whether seat i has acted in the current round.
func (s *State) Acted(i int) bool { return s.acted[i] }

// NextToAct returns the seat whose decision is pending.
func (s *State) NextToAct() int { return s.next }

// Aggressor returns the last seat to bet this round, or -1.
func (s *State) Aggressor() int { return s.aggressor }

// BoardOne returns a copy of the first board.
func (s *State) BoardOne() []poker.Card { return append([]poker.Card(nil), s.boardOne...) }

// BoardTwo returns a copy of the second board.
func (s *State) BoardTwo() []poker.Card { return append([]poker.Card(nil), s.boardTwo...) }

// HandHash returns the info set key of seat i's hole cards.
func (s *State) HandHash(i int) poker.HandHash { return s.seats[i].Hand.Hash() }

// Street names the current betting round.
func (s *State) Street() string {
	switch len(s.boardOne) {
	case 3:
		return "flop"
	case 4:
		return "turn"
	default:
		return "river"
	}
}

// Owed returns the chips seat i must add to match the aggressor.
func (s *State) Owed(i int) float64 {
	if s.aggressor < 0 {
		return 0
	}
	return max(0, s.roundBets[s.aggressor]-s.roundBets[i])
}

// PotBet returns the size of a pot-sized raise for seat i: call first, then
// raise by the pot after the call.
func (s *State) PotBet(i int) float64 {
	owed := s.Owed(i)
	return 2*owed + s.pot
}

// EndOfAction reports whether every seat has acted in the current round.
// Folded and all-in seats keep their acted flag across streets.
func (s *State) EndOfAction() bool {
	for _, a := range s.acted {
		if !a {
			return false
		}
	}
	return true
}

// EndOfGame reports whether the hand is over: either the river round has
// closed or everyone still in the hand is the aggressor.
func (s *State) EndOfGame() bool {
	if len(s.boardOne) == 5 && s.EndOfAction() {
		return true
	}
	return s.foldedToAggressor()
}

func (s *State) foldedToAggressor() bool {
	for i, seat := range s.seats {
		if !seat.Folded && i != s.aggressor {
			return false
		}
	}
	return true
}

// LegalActions lists the actions available to the seat next to act. Order
// is stable: POT first when available, then CHECK or FOLD, CALL.
func (s *State) LegalActions() []Action {
	seat := s.seats[s.next]
	if seat.Folded || seat.AllIn() {
		return []Action{Nothing}
	}
	actions := make([]Action, 0, 3)
	owed := s.Owed(s.next)
	if seat.Stack >= owed {
		actions = append(actions, Pot)
	}
	if s.aggressor < 0 {
		actions = append(actions, Check)
	} else {
		actions = append(actions, Fold, Call)
	}
	return actions
}

// UniformStrategy spreads probability evenly over LegalActions.
func (s *State) UniformStrategy() []ActionProb {
	actions := s.LegalActions()
	p := 1.0 / float64(len(actions))
	out := make([]ActionProb, len(actions))
	for i, a := range actions {
		out[i] = ActionProb{Action: a, Prob: p}
	}
	return out
}

func (s *State) isLegal(a Action) bool {
	for _, la := range s.LegalActions() {
		if la == a {
			return true
		}
	}
	return false
}

// Apply performs action a for the seat next to act and moves the action on.
func (s *State) Apply(a Action) error {
	if s.EndOfGame() {
		return fmt.Errorf("%w: %s applied after the hand ended", ErrInvariant, a)
	}
	if !s.isLegal(a) {
		return fmt.Errorf("%w: %s is not legal for seat %d", ErrInvariant, a, s.next)
	}

	i := s.next
	seat := &s.seats[i]
	switch a {
	case Fold:
		seat.Folded = true
	case Call:
		s.commit(i, min(seat.Stack, s.Owed(i)))
	case Pot:
		s.commit(i, min(seat.Stack, s.PotBet(i)))
		s.aggressor = i
		s.reopen(i)
	}

	s.acted[i] = true
	s.advance()
	return nil
}

func (s *State) commit(i int, amount float64) {
	s.seats[i].Stack -= amount
	s.roundBets[i] += amount
	s.pot += amount
}

// reopen asks every other seat that can still act to act again.
func (s *State) reopen(aggressor int) {
	for i, seat := range s.seats {
		if i == aggressor || seat.Folded || seat.AllIn() {
			continue
		}
		s.acted[i] = false
	}
}

func (s *State) advance() {
	if s.EndOfAction() {
		if first := s.firstActive(); first >= 0 {
			s.next = first
		}
		return
	}
	n := len(s.seats)
	for k := 1; k <= n; k++ {
		idx := (s.next + k) % n
		if !s.seats[idx].Folded && !s.acted[idx] {
			s.next = idx
			return
		}
	}
}

func (s *State) firstActive() int {
	for i, seat := range s.seats {
		if !seat.Folded {
			return i
		}
	}
	return -1
}

// NextStreet deals one card to each board and opens a new betting round
// starting from the first seat still in the hand.
func (s *State) NextStreet() (Deal, error) {
	if len(s.boardOne) >= 5 {
		return Deal{}, fmt.Errorf("%w: next street after the river", ErrInvariant)
	}
	first := s.firstActive()
	if first < 0 {
		return Deal{}, fmt.Errorf("%w: every seat folded but a street was dealt", ErrInvariant)
	}
	deal, err := s.dealStreet()
	if err != nil {
		return Deal{}, err
	}

	for i, seat := range s.seats {
		s.roundBets[i] = 0
		if !seat.Folded && !seat.AllIn() {
			s.acted[i] = false
		}
	}
	s.aggressor = -1
	s.next = first
	return deal, nil
}

func (s *State) dealStreet() (Deal, error) {
	one, err := s.deck.DealOne()
	if err != nil {
		return Deal{}, fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	two, err := s.deck.DealOne()
	if err != nil {
		return Deal{}, fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	s.boardOne = append(s.boardOne, one)
	s.boardTwo = append(s.boardTwo, two)
	return Deal{One: one, Two: two}, nil
}

// CalculateEV settles a finished hand. Missing turn and river cards are
// dealt first, then each board's half of the pot is split among that board's
// best surviving hands. The result holds each seat's share of the pot; folded
// seats get exactly zero and the shares sum to the pot.
func (s *State) CalculateEV() ([]float64, error) {
	if !s.EndOfGame() {
		return nil, ErrNotTerminal
	}
	for len(s.boardOne) < 5 {
		if _, err := s.dealStreet(); err != nil {
			return nil, err
		}
	}

	live := make([]int, 0, len(s.seats))
	hands := make([]poker.Hand, 0, len(s.seats))
	for i, seat := range s.seats {
		if !seat.Folded {
			live = append(live, i)
			hands = append(hands, seat.Hand)
		}
	}
	if len(live) == 0 {
		return nil, fmt.Errorf("%w: no seat left at showdown", ErrInvariant)
	}

	equity := Showdown(hands, [5]poker.Card(s.boardOne), [5]poker.Card(s.boardTwo), s.eval)
	evs := make([]float64, len(s.seats))
	for k, i := range live {
		evs[i] = equity[k] * s.pot
	}
	return evs, nil
}
