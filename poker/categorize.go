package poker

import (
	"math/bits"
	"strings"
)

// Suitedness describes how the four hole cards of an Omaha hand share suits.
type Suitedness string

const (
	DoubleSuited Suitedness = "DS" // two cards each of two suits
	SingleSuited Suitedness = "SS" // exactly one suited pair
	Rainbow      Suitedness = "R"  // four different suits
	HeavySuited  Suitedness = "HS" // three or four cards of one suit
	UnknownSuits Suitedness = "?"
)

// HandCategory is a coarse shape summary of an Omaha hand shown next to
// its strategy row.
type HandCategory struct {
	Suits   Suitedness
	Paired  bool // at least two cards share a rank
	Rundown bool // four distinct ranks within a five rank window
}

// CategorizeOmaha classifies the suit pattern, pairing and connectedness of
// an Omaha hand.
func CategorizeOmaha(h Hand) HandCategory {
	var suitCounts [4]int
	var rankMask uint16
	for _, c := range h {
		if !c.Valid() {
			return HandCategory{Suits: UnknownSuits}
		}
		suitCounts[c.Suit()]++
		rankMask |= 1 << c.Rank()
	}

	cat := HandCategory{Paired: bits.OnesCount16(rankMask) < len(h)}

	var pairs, most int
	for _, n := range suitCounts {
		if n == 2 {
			pairs++
		}
		most = max(most, n)
	}
	switch {
	case most >= 3:
		cat.Suits = HeavySuited
	case pairs == 2:
		cat.Suits = DoubleSuited
	case pairs == 1:
		cat.Suits = SingleSuited
	default:
		cat.Suits = Rainbow
	}

	if !cat.Paired {
		cat.Rundown = withinWindow(rankMask) || withinWindow(aceLow(rankMask))
	}
	return cat
}

func (c HandCategory) String() string {
	var b strings.Builder
	b.WriteString(string(c.Suits))
	if c.Paired {
		b.WriteString(" paired")
	}
	if c.Rundown {
		b.WriteString(" rundown")
	}
	return b.String()
}

// withinWindow reports whether the set ranks span at most five ranks.
func withinWindow(mask uint16) bool {
	if mask == 0 {
		return false
	}
	high := bits.Len16(mask) - 1
	low := bits.TrailingZeros16(mask)
	return high-low <= 4
}

// aceLow moves an ace bit below the deuce so A234 style hands count as
// connected. Ranks shift up by one to make room.
func aceLow(mask uint16) uint16 {
	if mask&(1<<Ace) == 0 {
		return mask
	}
	return (mask&^(1<<Ace))<<1 | 1
}
