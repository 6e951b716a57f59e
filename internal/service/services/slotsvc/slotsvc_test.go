package slotsvc_test

import (
	"context"
	"testing"
	"time"

	"github.com/lacarte/orderdesk/internal/service/models/settings"
	"github.com/lacarte/orderdesk/internal/service/models/timeslot"
	"github.com/lacarte/orderdesk/internal/service/services/slotsvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSlotRepo struct {
	slots []timeslot.Slot
	err   error
}

func (m *mockSlotRepo) ListSlots(_ context.Context) ([]timeslot.Slot, error) {
	return m.slots, m.err
}

type mockSettingsRepo struct {
	cfg settings.Settings
}

func (m *mockSettingsRepo) Get(_ context.Context) (settings.Settings, error) {
	return m.cfg, nil
}

func TestGetOrderHours(t *testing.T) {
	now := time.Date(2026, 3, 14, 17, 50, 0, 0, time.UTC)
	slots := []timeslot.Slot{
		{ID: 1, Time: timeslot.DayTime{Hour: 18, Minute: 0}, Enabled: true},  // inside the lead window
		{ID: 2, Time: timeslot.DayTime{Hour: 18, Minute: 15}, Enabled: true}, // exactly now+lead+5m
		{ID: 3, Time: timeslot.DayTime{Hour: 18, Minute: 30}, Enabled: false},
	}

	svc := slotsvc.MustNewSlotService(
		slotsvc.WithSlotRepository(&mockSlotRepo{slots: slots}),
		slotsvc.WithSettingsRepository(&mockSettingsRepo{cfg: settings.Defaults()}),
		slotsvc.WithClock(func() time.Time { return now }),
	)

	hours, err := svc.GetOrderHours(context.Background())
	require.NoError(t, err)

	// The full configured list comes back for the back office...
	assert.Len(t, hours.Slots, 3)

	// ...while the offerable list applies ASAP, the lead window and the
	// enabled flag.
	require.Len(t, hours.Offerable, 2)
	assert.True(t, hours.Offerable[0].ASAP)
	assert.Equal(t, int64(2), hours.Offerable[1].SlotID)
}

func TestGetOrderHours_ASAPDisabled(t *testing.T) {
	cfg := settings.Defaults()
	cfg.EnableASAP = false

	svc := slotsvc.MustNewSlotService(
		slotsvc.WithSlotRepository(&mockSlotRepo{slots: []timeslot.Slot{
			{ID: 1, Time: timeslot.DayTime{Hour: 18, Minute: 0}, Enabled: true},
		}}),
		slotsvc.WithSettingsRepository(&mockSettingsRepo{cfg: cfg}),
		slotsvc.WithClock(func() time.Time {
			return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		}),
	)

	hours, err := svc.GetOrderHours(context.Background())
	require.NoError(t, err)

	require.Len(t, hours.Offerable, 1)
	assert.False(t, hours.Offerable[0].ASAP)
	assert.Equal(t, int64(1), hours.Offerable[0].SlotID)
}
