package statemachine

import (
	"errors"
	"fmt"

	"quickbites-api/models"
)

// ErrInvalidTransition is returned for any status jump the lifecycle does not
// allow, e.g. pending → delivered.
var ErrInvalidTransition = errors.New("invalid status transition")

// statusRank orders the forward path of the lifecycle. An order only moves to
// the immediately next rank; cancelled sits outside the ordering and is
// reachable from every non-terminal state.
var statusRank = map[models.OrderStatus]int{
	models.StatusPending:        0,
	models.StatusConfirmed:      1,
	models.StatusPreparing:      2,
	models.StatusReadyForPickup: 3,
	models.StatusOutForDelivery: 4,
	models.StatusDelivered:      5,
}

// Known reports whether s is a recognized order status.
func Known(s models.OrderStatus) bool {
	if s == models.StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transition is defined from s.
func Terminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// CanTransition checks whether an order may move from one status to another.
// A request for the current status is allowed and treated as a no-op by
// callers.
func CanTransition(from, to models.OrderStatus) error {
	if !Known(from) || !Known(to) {
		return fmt.Errorf("%w: unknown status in %s → %s", ErrInvalidTransition, from, to)
	}
	if from == to {
		return nil
	}
	if Terminal(from) {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	if to == models.StatusCancelled {
		return nil
	}
	if statusRank[to] != statusRank[from]+1 {
		return fmt.Errorf("%w: %s → %s (next valid: %s)", ErrInvalidTransition, from, to, nextStatus(from))
	}
	return nil
}

// ValidTransitionsFrom returns all valid next states from a given state.
func ValidTransitionsFrom(from models.OrderStatus) []models.OrderStatus {
	if Terminal(from) || !Known(from) {
		return nil
	}
	return []models.OrderStatus{nextStatus(from), models.StatusCancelled}
}

func nextStatus(from models.OrderStatus) models.OrderStatus {
	next := statusRank[from] + 1
	for s, rank := range statusRank {
		if rank == next {
			return s
		}
	}
	return models.StatusCancelled
}

// TimestampColumn maps a status to the order column stamped on first entry
// into that status. Pending is stamped at creation via placed_at.
func TimestampColumn(s models.OrderStatus) (string, bool) {
	switch s {
	case models.StatusConfirmed:
		return "confirmed_at", true
	case models.StatusPreparing:
		return "preparing_at", true
	case models.StatusReadyForPickup:
		return "ready_at", true
	case models.StatusOutForDelivery:
		return "picked_up_at", true
	case models.StatusDelivered:
		return "delivered_at", true
	case models.StatusCancelled:
		return "cancelled_at", true
	}
	return "", false
}
