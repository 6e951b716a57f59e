package isettingsrepo

import (
	"context"

	"github.com/lacarte/orderdesk/internal/service/models/settings"
)

// ISettingsRepository reads the admin-tunable platform settings.
type ISettingsRepository interface {
	Get(ctx context.Context) (settings.Settings, error)
}
