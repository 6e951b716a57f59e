package orderitem

import (
	"errors"
	"time"

	"github.com/lacarte/orderdesk/internal/service/models/money"
)

var (
	ErrNoProduct   = errors.New("order item must reference a dish or a sauce")
	ErrTwoProducts = errors.New("order item cannot reference both a dish and a sauce")
	ErrBadQuantity = errors.New("order item quantity must be at least 1")
)

// OrderItem is a single line of an order. Exactly one of DishID and SauceID
// is set. Prices are frozen from the catalog snapshot at order creation and
// never recomputed afterwards.
type OrderItem struct {
	ID                   int64          `json:"id"`
	OrderID              int64          `json:"orderId"`
	DishID               *int64         `json:"dishId,omitempty"`
	SauceID              *int64         `json:"sauceId,omitempty"`
	VersionID            *int64         `json:"versionId,omitempty"`
	DishSauceID          *int64         `json:"dishSauceId,omitempty"`
	AddedExtraIDs        []int64        `json:"addedExtraIds,omitempty"`
	RemovedIngredientIDs []int64        `json:"removedIngredientIds,omitempty"`
	Message              string         `json:"message,omitempty"`
	Quantity             int            `json:"quantity"`
	UnitPriceCents       money.Cents    `json:"unitPriceCents"`
	TotalPriceCents      money.Cents    `json:"totalPriceCents"`
	PriceCurrency        money.Currency `json:"priceCurrency"`
	CreatedAt            time.Time      `json:"createdAt"`
}

// Validate checks the structural invariants of the line. Referential checks
// against the catalog happen during pricing.
func (i *OrderItem) Validate() error {
	switch {
	case i.DishID == nil && i.SauceID == nil:
		return ErrNoProduct
	case i.DishID != nil && i.SauceID != nil:
		return ErrTwoProducts
	case i.Quantity < 1:
		return ErrBadQuantity
	}

	return nil
}
