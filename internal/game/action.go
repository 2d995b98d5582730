package game

import (
	"fmt"
	"strings"

	"github.com/lox/bombpot/poker"
)

// Action is a betting decision.
type Action uint8

const (
	Check Action = iota
	Fold
	Call
	Pot
	// Nothing is the only action of a seat that has folded or is all in.
	Nothing
)

// NumActions is the number of distinct actions.
const NumActions = 5

func (a Action) String() string {
	if int(a) < NumActions {
		return [...]string{"check", "fold", "call", "pot", "nothing"}[a]
	}
	return "unknown"
}

// ParseAction is the inverse of Action.String. Case is ignored.
func ParseAction(s string) (Action, error) {
	for a := Action(0); a < NumActions; a++ {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// ActionProb pairs an action with the probability of taking it.
type ActionProb struct {
	Action Action
	Prob   float64
}

// Deal is the pair of cards added to board one and board two by a single
// street.
type Deal struct {
	One poker.Card
	Two poker.Card
}

func (d Deal) String() string {
	return d.One.String() + d.Two.String()
}

// ParseDeal parses the four character form produced by Deal.String.
func ParseDeal(s string) (Deal, error) {
	cards, err := poker.ParseCards(s)
	if err != nil {
		return Deal{}, err
	}
	if len(cards) != 2 {
		return Deal{}, fmt.Errorf("deal requires 2 cards, got %d", len(cards))
	}
	return Deal{One: cards[0], Two: cards[1]}, nil
}
