package orderhours

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lacarte/orderdesk/internal/service/services/slotsvc"
)

type service interface {
	GetOrderHours(ctx context.Context) (*slotsvc.OrderHours, error)
}

// OrderHours returns the configured time slots and the currently offerable
// pickup options.
func OrderHours(w http.ResponseWriter, r *http.Request, service service) {
	hours, err := service.GetOrderHours(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting order hours", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(hours); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
