package order

import (
	"errors"
	"time"

	"github.com/lacarte/orderdesk/internal/service/models/money"
	"github.com/lacarte/orderdesk/internal/service/models/orderitem"
	"github.com/lacarte/orderdesk/internal/service/models/status"
)

var (
	ErrNotFound    = errors.New("order not found")
	ErrEmptyItems  = errors.New("order must contain at least one item")
	ErrInvalidType = errors.New("invalid order type")
)

// Type is the fulfilment mode of an order.
type Type string

const (
	TypeTakeout  Type = "takeout"
	TypeDelivery Type = "delivery"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeTakeout, TypeDelivery:
		return Type(s), nil
	default:
		return "", ErrInvalidType
	}
}

// PaymentMethod is recorded as submitted; charging is outside this service.
type PaymentMethod string

const (
	PaymentOnSite PaymentMethod = "on_site"
	PaymentCard   PaymentMethod = "card"
)

// StatusHistoryEntry is one row of the append-only status log. Entries are
// never rewritten or reordered; insertion order equals timestamp order.
type StatusHistoryEntry struct {
	Status    status.Status `json:"status"`
	ChangedAt time.Time     `json:"changedAt"`
	ChangedBy string        `json:"changedBy,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

// Order is a customer order. Items and item prices are immutable after
// creation; only the status (and its history) moves.
type Order struct {
	ID               int64                 `json:"id"`
	CustomerID       int64                 `json:"customerId"`
	Type             Type                  `json:"orderType"`
	Status           status.Status         `json:"status"`
	TakeoutTime      *time.Time            `json:"takeoutTime,omitempty"`
	PaymentMethod    PaymentMethod         `json:"paymentMethod"`
	Notes            string                `json:"notes,omitempty"`
	Items            []orderitem.OrderItem `json:"items"`
	SubtotalCents    money.Cents           `json:"subtotalCents"`
	DeliveryFeeCents money.Cents           `json:"deliveryFeeCents"`
	TotalPriceCents  money.Cents           `json:"totalPriceCents"`
	PriceCurrency    money.Currency        `json:"priceCurrency"`
	StatusHistory    []StatusHistoryEntry  `json:"statusHistory"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

// Seq is the per-order event sequence number: the length of the status
// history. It grows by exactly one per successful transition, which is what
// lets subscribers discard stale or replayed status events.
func (o *Order) Seq() uint64 {
	return uint64(len(o.StatusHistory))
}

// Transition moves the order to next, appending the history entry. The
// caller is responsible for holding the order's row lock.
func (o *Order) Transition(next status.Status, changedBy, notes string, at time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return &status.TransitionError{From: o.Status, To: next}
	}

	o.Status = next
	o.UpdatedAt = at
	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
		Status:    next,
		ChangedAt: at,
		ChangedBy: changedBy,
		Notes:     notes,
	})

	return nil
}
