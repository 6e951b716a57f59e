package createorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lacarte/orderdesk/internal/service/models/catalog"
	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/services/ordersvc"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, cmd ordersvc.CreateOrderCommand) (*order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
// Exactly one of dishId and sauceId must be set; the service enforces that.
type itemInCreateOrderRequest struct {
	DishID               *int64  `json:"dishId"`
	SauceID              *int64  `json:"sauceId"`
	VersionID            *int64  `json:"versionId"`
	DishSauceID          *int64  `json:"dishSauceId"`
	AddedExtraIDs        []int64 `json:"addedExtraIds"`
	RemovedIngredientIDs []int64 `json:"removedIngredientIds"`
	Message              string  `json:"message"`
	Quantity             int     `json:"quantity" validate:"gt=0"`
}

func (r *itemInCreateOrderRequest) toCommand() ordersvc.CreateOrderItemCommand {
	return ordersvc.CreateOrderItemCommand{
		DishID:               r.DishID,
		SauceID:              r.SauceID,
		VersionID:            r.VersionID,
		DishSauceID:          r.DishSauceID,
		AddedExtraIDs:        r.AddedExtraIDs,
		RemovedIngredientIDs: r.RemovedIngredientIDs,
		Message:              r.Message,
		Quantity:             r.Quantity,
	}
}

// createOrderRequest represents a create order request. Prices are absent on
// purpose: the server prices every line itself.
type createOrderRequest struct {
	CustomerID    int64                      `json:"customerId"    validate:"gt=0"`
	OrderType     string                     `json:"orderType"     validate:"required"`
	TakeoutTime   *time.Time                 `json:"takeoutTime"`
	PaymentMethod string                     `json:"paymentMethod" validate:"required,oneof=on_site card"`
	Notes         string                     `json:"notes"`
	Items         []itemInCreateOrderRequest `json:"items"         validate:"required,min=1,dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toCommand() ordersvc.CreateOrderCommand {
	items := make([]ordersvc.CreateOrderItemCommand, len(r.Items))
	for i := range r.Items {
		items[i] = r.Items[i].toCommand()
	}

	return ordersvc.CreateOrderCommand{
		CustomerID:    r.CustomerID,
		OrderType:     r.OrderType,
		TakeoutTime:   r.TakeoutTime,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
		Items:         items,
	}
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderReq := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&orderReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := orderReq.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), orderReq.toCommand())
	if err != nil {
		var validationErr *ordersvc.ValidationError
		switch {
		case errors.As(err, &validationErr),
			errors.Is(err, catalog.ErrUnknownDish),
			errors.Is(err, catalog.ErrUnknownSauce),
			errors.Is(err, catalog.ErrUnknownVersion),
			errors.Is(err, catalog.ErrUnknownExtra),
			errors.Is(err, catalog.ErrUnknownIngredient),
			errors.Is(err, catalog.ErrUnavailable):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		slog.Error("Error creating order", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create order", "error", err)
	}
}
