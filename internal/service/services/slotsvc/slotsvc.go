package slotsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/lacarte/orderdesk/internal/dal/interfaces/islotrepo"
	"github.com/lacarte/orderdesk/internal/dal/interfaces/isettingsrepo"
	"github.com/lacarte/orderdesk/internal/service/models/timeslot"
)

// SlotService computes which pickup/delivery slots are currently offerable.
type SlotService struct {
	slotRepo     islotrepo.ISlotRepository
	settingsRepo isettingsrepo.ISettingsRepository
	now          func() time.Time
}

// option is a function that configures the SlotService.
type option func(*SlotService)

// MustNewSlotService creates a new SlotService.
func MustNewSlotService(opts ...option) *SlotService {
	s := &SlotService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithSlotRepository sets the slot repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSlotRepository(repo islotrepo.ISlotRepository) option {
	return func(s *SlotService) {
		s.slotRepo = repo
	}
}

// WithSettingsRepository sets the settings repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSettingsRepository(repo isettingsrepo.ISettingsRepository) option {
	return func(s *SlotService) {
		s.settingsRepo = repo
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *SlotService) {
		s.now = now
	}
}

// OrderHours is the payload of GET /order-hours: the configured slots and
// the slots currently offerable given the lead-time window.
type OrderHours struct {
	Slots     []timeslot.Slot  `json:"slots"`
	Offerable []timeslot.Offer `json:"offerable"`
}

// GetOrderHours reads the configured slots and applies admission control.
// Disabling a slot takes effect on the next call; orders already submitted
// against the slot are untouched.
func (s *SlotService) GetOrderHours(ctx context.Context) (*OrderHours, error) {
	slots, err := s.slotRepo.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	cfg, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	lead := time.Duration(cfg.SlotLeadMinutes) * time.Minute
	offers := timeslot.Offerable(slots, s.now(), lead, cfg.EnableASAP)

	return &OrderHours{
		Slots:     slots,
		Offerable: offers,
	}, nil
}
