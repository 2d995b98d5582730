package solver

import (
	"context"
	"testing"

	"github.com/lox/bombpot/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerAbortsOnInvariantViolation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seats = 3
	s, err := New(cfg)
	require.NoError(t, err)

	// A root that claims the wrong seat cannot be traversed.
	s.root.seat = 2

	require.ErrorIs(t, s.Iterate(), game.ErrInvariant)

	require.NoError(t, s.Start(context.Background()))
	require.ErrorIs(t, s.Wait(context.Background()), game.ErrInvariant)
	assert.ErrorIs(t, s.Err(), game.ErrInvariant)
	assert.Equal(t, Stopped, s.State())
	assert.ErrorIs(t, s.Stop(), game.ErrInvariant)
}
