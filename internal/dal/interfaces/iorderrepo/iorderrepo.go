package iorderrepo

import (
	"context"

	"github.com/lacarte/orderdesk/internal/service/models/order"
)

// IOrderRepository is the persistence contract for orders.
type IOrderRepository interface {
	// Insert persists the order, its items and its initial status log entry.
	Insert(ctx context.Context, o *order.Order) error

	// GetByID loads an order with its items and full status history.
	// Returns order.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id int64) (*order.Order, error)

	// GetByIDForUpdate is GetByID with a row lock on the order. Only valid
	// inside a transaction; it serializes concurrent transitions of the
	// same order.
	GetByIDForUpdate(ctx context.Context, id int64) (*order.Order, error)

	// SetStatus updates the order's status columns and appends the given
	// history entry.
	SetStatus(ctx context.Context, o *order.Order, entry order.StatusHistoryEntry) error

	// Query retrieves orders matching the filter, items and history included.
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
