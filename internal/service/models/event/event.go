package event

import (
	"time"

	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/models/status"
)

// Kind identifies an event on the wire, both on the WebSocket channel and on
// the orders.events exchange.
type Kind string

const (
	KindOrderCreated       Kind = "order.created"
	KindOrderStatusChanged Kind = "order.status_changed"
)

// OrderCreated is pushed to every admin subscriber when an order lands.
type OrderCreated struct {
	EventID string      `json:"eventId"`
	Kind    Kind        `json:"kind"`
	Seq     uint64      `json:"seq"`
	Order   order.Order `json:"order"`
}

// OrderStatusChanged is pushed to admin subscribers and to the owning
// customer session. Seq increases by one per transition of the same order;
// subscribers drop events whose seq is not greater than the last one seen.
type OrderStatusChanged struct {
	EventID    string        `json:"eventId"`
	Kind       Kind          `json:"kind"`
	Seq        uint64        `json:"seq"`
	OrderID    int64         `json:"orderId"`
	CustomerID int64         `json:"customerId"`
	Status     status.Status `json:"status"`
	StatusText string        `json:"statusText"`
	ChangedAt  time.Time     `json:"changedAt"`
}
