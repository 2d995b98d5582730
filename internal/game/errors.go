package game

import "errors"

var (
	// ErrInvalidConfig is returned when a game cannot be constructed from the
	// supplied boards, seat count, stack or ante.
	ErrInvalidConfig = errors.New("invalid game configuration")

	// ErrInvariant marks an internal consistency failure such as an illegal
	// action or dealing past the river. Callers should abort, not repair.
	ErrInvariant = errors.New("game invariant violated")

	// ErrNotTerminal is returned by CalculateEV before the hand has finished.
	ErrNotTerminal = errors.New("game is not terminal")
)
