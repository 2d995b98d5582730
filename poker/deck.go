package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrDeckExhausted is returned when more cards are requested than remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents a standard 52-card deck with some cards optionally
// removed. Cards are dealt from the end of the live slice without replacement.
type Deck struct {
	cards [NumCards]Card // Fixed size backing array
	size  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a full deck, in card order, that shuffles with rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// Reset restores all 52 cards in card order. It does not shuffle.
func (d *Deck) Reset() {
	for i := range d.cards {
		d.cards[i] = Card(i)
	}
	d.size = NumCards
}

// Remove takes specific cards out of the deck, keeping the remaining cards in
// their current order. Every card must be present exactly once.
func (d *Deck) Remove(cards ...Card) error {
	var drop uint64
	for _, c := range cards {
		if !c.Valid() {
			return fmt.Errorf("invalid card %d", c)
		}
		bit := uint64(1) << c
		if drop&bit != 0 {
			return fmt.Errorf("duplicate card %s", c)
		}
		drop |= bit
	}

	kept := 0
	removed := 0
	for i := 0; i < d.size; i++ {
		c := d.cards[i]
		if drop&(uint64(1)<<c) != 0 {
			removed++
			continue
		}
		d.cards[kept] = c
		kept++
	}
	d.size = kept
	if removed != len(cards) {
		return fmt.Errorf("failed to remove %d of %d cards: not in deck", len(cards)-removed, len(cards))
	}
	return nil
}

// Shuffle shuffles the live cards using Fisher-Yates
func (d *Deck) Shuffle() {
	for i := d.size - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck. The returned slice is a copy.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > d.size {
		return nil, fmt.Errorf("deal %d cards with %d remaining: %w", n, d.size, ErrDeckExhausted)
	}
	out := make([]Card, n)
	copy(out, d.cards[d.size-n:d.size])
	d.size -= n
	return out, nil
}

// DealOne deals a single card from the deck
func (d *Deck) DealOne() (Card, error) {
	if d.size == 0 {
		return 0, ErrDeckExhausted
	}
	d.size--
	return d.cards[d.size], nil
}

// Return puts a previously dealt card back and reshuffles.
func (d *Deck) Return(c Card) error {
	if d.Contains(c) {
		return fmt.Errorf("card %s already in deck", c)
	}
	d.cards[d.size] = c
	d.size++
	d.Shuffle()
	return nil
}

// Contains reports whether the card is still in the deck.
func (d *Deck) Contains(c Card) bool {
	for i := 0; i < d.size; i++ {
		if d.cards[i] == c {
			return true
		}
	}
	return false
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return d.size
}

// Cards returns a copy of the live cards.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards[:d.size]...)
}
