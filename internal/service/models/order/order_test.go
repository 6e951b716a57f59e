package order_test

import (
	"testing"
	"time"

	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/models/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	typ, err := order.ParseType("takeout")
	require.NoError(t, err)
	assert.Equal(t, order.TypeTakeout, typ)

	_, err = order.ParseType("drone")
	assert.ErrorIs(t, err, order.ErrInvalidType)
}

func TestTransition_AppendsHistory(t *testing.T) {
	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	o := &order.Order{
		Status: status.Pending,
		StatusHistory: []order.StatusHistoryEntry{
			{Status: status.Pending, ChangedAt: created, ChangedBy: "customer"},
		},
		UpdatedAt: created,
	}
	assert.Equal(t, uint64(1), o.Seq())

	at := created.Add(5 * time.Minute)
	require.NoError(t, o.Transition(status.Confirmed, "staff", "called back", at))

	assert.Equal(t, status.Confirmed, o.Status)
	assert.Equal(t, at, o.UpdatedAt)
	assert.Equal(t, uint64(2), o.Seq())

	last := o.StatusHistory[len(o.StatusHistory)-1]
	assert.Equal(t, status.Confirmed, last.Status)
	assert.Equal(t, "staff", last.ChangedBy)
	assert.Equal(t, "called back", last.Notes)
}

func TestTransition_RejectedLeavesOrderUntouched(t *testing.T) {
	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	o := &order.Order{
		Status: status.Ready,
		StatusHistory: []order.StatusHistoryEntry{
			{Status: status.Pending, ChangedAt: created},
			{Status: status.Ready, ChangedAt: created.Add(time.Minute)},
		},
		UpdatedAt: created.Add(time.Minute),
	}

	err := o.Transition(status.Confirmed, "staff", "", created.Add(2*time.Minute))

	var tErr *status.TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, status.Ready, o.Status)
	assert.Equal(t, uint64(2), o.Seq())
	assert.Equal(t, created.Add(time.Minute), o.UpdatedAt)
}
