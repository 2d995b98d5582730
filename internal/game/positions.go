package game

import "strconv"

var sixMaxPositions = [...]string{"SB", "BB", "UTG", "HJ", "CO", "BTN"}

// PositionLabel names a seat. The SB..BTN table only applies to six handed
// games; other table sizes get "P" plus the seat index.
func PositionLabel(seat, seats int) string {
	if seats == len(sixMaxPositions) && seat >= 0 && seat < seats {
		return sixMaxPositions[seat]
	}
	return "P" + strconv.Itoa(seat)
}
