package poker

import (
	"fmt"
	"sort"
)

// Hand is the four hole cards held by one seat.
type Hand [4]Card

// HandHash is an order-independent key for a Hand: the four cards sorted
// ascending and packed base 52.
type HandHash uint32

// NewHand builds a Hand from exactly four cards.
func NewHand(cards []Card) (Hand, error) {
	var h Hand
	if len(cards) != len(h) {
		return h, fmt.Errorf("hand requires 4 cards, got %d", len(cards))
	}
	seen := make(map[Card]struct{}, len(cards))
	for i, c := range cards {
		if !c.Valid() {
			return h, fmt.Errorf("invalid card %d in hand", c)
		}
		if _, dup := seen[c]; dup {
			return h, fmt.Errorf("duplicate card %s in hand", c)
		}
		seen[c] = struct{}{}
		h[i] = c
	}
	return h, nil
}

// ParseHand parses an eight character hand such as "AcAdKsKh".
func ParseHand(s string) (Hand, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return Hand{}, err
	}
	return NewHand(cards)
}

// Sorted returns the hand with its cards in ascending order.
func (h Hand) Sorted() Hand {
	s := h
	sort.Slice(s[:], func(i, j int) bool { return s[i] < s[j] })
	return s
}

// Hash returns the permutation invariant info-set key for the hand.
func (h Hand) Hash() HandHash {
	s := h.Sorted()
	return HandHash(uint32(s[0]) + NumCards*uint32(s[1]) + NumCards*NumCards*uint32(s[2]) + NumCards*NumCards*NumCards*uint32(s[3]))
}

// Mask returns the hand as a card bitmask.
func (h Hand) Mask() uint64 {
	var m uint64
	for _, c := range h {
		m |= c.Mask()
	}
	return m
}

func (h Hand) String() string {
	return FormatCards(h[:])
}

// Hand decodes the hash back into its sorted cards.
func (k HandHash) Hand() Hand {
	var h Hand
	v := uint32(k)
	for i := range h {
		h[i] = Card(v % NumCards)
		v /= NumCards
	}
	return h
}

// String renders the sorted hand, highest card first, e.g. "AhKsTd2c".
func (k HandHash) String() string {
	h := k.Hand()
	return FormatCards([]Card{h[3], h[2], h[1], h[0]})
}

// HandFromHash decodes a hash into the sorted hand it was built from.
func HandFromHash(k HandHash) Hand {
	return k.Hand()
}
