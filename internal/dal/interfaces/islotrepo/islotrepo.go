package islotrepo

import (
	"context"

	"github.com/lacarte/orderdesk/internal/service/models/timeslot"
)

// ISlotRepository is the persistence contract for configured time slots.
type ISlotRepository interface {
	ListSlots(ctx context.Context) ([]timeslot.Slot, error)
}
