package statemachine

import (
	"testing"

	"quickbites-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionForwardPath(t *testing.T) {
	path := []models.OrderStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReadyForPickup,
		models.StatusOutForDelivery,
		models.StatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, CanTransition(path[i], path[i+1]), "%s → %s", path[i], path[i+1])
	}
}

func TestCanTransitionRejectsJumps(t *testing.T) {
	tests := []struct {
		name string
		from models.OrderStatus
		to   models.OrderStatus
	}{
		{"pending_to_delivered", models.StatusPending, models.StatusDelivered},
		{"pending_to_preparing", models.StatusPending, models.StatusPreparing},
		{"confirmed_to_out_for_delivery", models.StatusConfirmed, models.StatusOutForDelivery},
		{"backwards", models.StatusPreparing, models.StatusConfirmed},
		{"delivered_is_terminal", models.StatusDelivered, models.StatusOutForDelivery},
		{"cancelled_is_terminal", models.StatusCancelled, models.StatusConfirmed},
		{"cancelled_cannot_be_uncancelled", models.StatusCancelled, models.StatusPending},
		{"unknown_status", models.OrderStatus("shipped"), models.StatusDelivered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestCancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []models.OrderStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReadyForPickup,
		models.StatusOutForDelivery,
	} {
		assert.NoError(t, CanTransition(from, models.StatusCancelled), "%s → cancelled", from)
	}

	assert.ErrorIs(t, CanTransition(models.StatusDelivered, models.StatusCancelled), ErrInvalidTransition)
}

func TestSameStatusIsAllowed(t *testing.T) {
	assert.NoError(t, CanTransition(models.StatusPreparing, models.StatusPreparing))
	assert.NoError(t, CanTransition(models.StatusDelivered, models.StatusDelivered))
}

func TestValidTransitionsFrom(t *testing.T) {
	next := ValidTransitionsFrom(models.StatusConfirmed)
	assert.Equal(t, []models.OrderStatus{models.StatusPreparing, models.StatusCancelled}, next)

	assert.Nil(t, ValidTransitionsFrom(models.StatusDelivered))
	assert.Nil(t, ValidTransitionsFrom(models.StatusCancelled))
}

func TestTimestampColumn(t *testing.T) {
	col, ok := TimestampColumn(models.StatusReadyForPickup)
	require.True(t, ok)
	assert.Equal(t, "ready_at", col)

	_, ok = TimestampColumn(models.StatusPending)
	assert.False(t, ok, "pending is stamped via placed_at at creation")
}
