package order

import (
	"time"

	"github.com/lacarte/orderdesk/internal/service/models/status"
)

// QueryOrdersModel is the filter for the dashboard pull path.
type QueryOrdersModel struct {
	Ids         []int64
	CustomerIds []int64
	Statuses    []status.Status
	Date        *time.Time // orders created on this calendar day
	Limit       uint64
	Offset      uint64
}
