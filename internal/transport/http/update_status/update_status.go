package updatestatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/models/status"
	"github.com/lacarte/orderdesk/internal/service/services/ordersvc"
)

type service interface {
	Transition(ctx context.Context, orderID int64, code int, changedBy, notes string) (*order.Order, error)
}

// updateStatusRequest represents a status change request from the back office.
type updateStatusRequest struct {
	Status    int    `json:"status"    validate:"gte=0"`
	ChangedBy string `json:"changedBy"`
	Notes     string `json:"notes"`
}

func (r *updateStatusRequest) Validate() error {
	return validator.New().Struct(r)
}

// UpdateStatus handles the status change request.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)

		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for update status", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	changedBy := req.ChangedBy
	if changedBy == "" {
		changedBy = "staff"
	}

	updated, err := service.Transition(r.Context(), orderID, req.Status, changedBy, req.Notes)
	if err != nil {
		var transitionErr *status.TransitionError
		var validationErr *ordersvc.ValidationError
		switch {
		case errors.As(err, &transitionErr):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, order.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &validationErr), errors.Is(err, status.ErrUnknownStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		slog.Error("Error updating order status", "order_id", orderID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		slog.Error("Error sending response for update status", "error", err)
	}
}
