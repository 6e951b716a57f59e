package status

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// Status is the integer-coded order status. The codes are part of the wire
// contract with the dashboard and the customer client and must not be
// renumbered.
type Status int

const (
	Pending        Status = 0
	Confirmed      Status = 1
	InPreparation  Status = 2
	Ready          Status = 3
	OutForDelivery Status = 4
	Delivered      Status = 5
	Completed      Status = 6
	Cancelled      Status = 7
)

var ErrUnknownStatus = errors.New("unknown status code")

// TransitionError reports a status change that is not permitted from the
// order's current status.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s (%d) to %s (%d)",
		e.From.Text(), int(e.From), e.To.Text(), int(e.To))
}

// Parse validates a raw status code.
func Parse(code int) (Status, error) {
	s := Status(code)
	if s < Pending || s > Cancelled {
		return 0, ErrUnknownStatus
	}

	return s, nil
}

// Text returns the human-readable status label pushed to clients alongside
// the numeric code.
func (s Status) Text() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case InPreparation:
		return "in_preparation"
	case Ready:
		return "ready"
	case OutForDelivery:
		return "out_for_delivery"
	case Delivered:
		return "delivered"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s Status) Value() (driver.Value, error) {
	return int64(s), nil
}

// IsTerminal reports whether the status closes the order. Terminal orders
// are never reopened.
func (s Status) IsTerminal() bool {
	switch s {
	case Delivered, Completed, Cancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether an order currently in s may move to next.
// The rule is forward-only by status code: the kitchen may skip steps
// (Pending straight to Ready) but never walk an order backwards, and a
// terminal order admits no further changes. Cancelled carries the highest
// code, so cancellation is reachable from every non-terminal status.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}

	return next > s && next <= Cancelled
}

// AllowedNext returns the set of statuses reachable from s, in code order.
func (s Status) AllowedNext() []Status {
	var out []Status
	for next := Pending; next <= Cancelled; next++ {
		if s.CanTransitionTo(next) {
			out = append(out, next)
		}
	}

	return out
}
