package getsettings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lacarte/orderdesk/internal/service/models/settings"
)

type repository interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// GetSettings returns the platform switches the storefront needs before it
// can render the checkout (ASAP toggle, delivery fee, lead time).
func GetSettings(w http.ResponseWriter, r *http.Request, repo repository) {
	cfg, err := repo.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting settings", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
