package icatalogrepo

import (
	"context"

	"github.com/lacarte/orderdesk/internal/service/models/catalog"
)

// ICatalogRepository loads catalog snapshots for order validation and pricing.
type ICatalogRepository interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
}
