package ordersvc

import (
	"context"
	"testing"
	"time"

	"github.com/lacarte/orderdesk/internal/dal/interfaces/iorderrepo"
	"github.com/lacarte/orderdesk/internal/dal/interfaces/ioutboxrepo"
	"github.com/lacarte/orderdesk/internal/service/models/catalog"
	"github.com/lacarte/orderdesk/internal/service/models/event"
	"github.com/lacarte/orderdesk/internal/service/models/money"
	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/models/outbox"
	"github.com/lacarte/orderdesk/internal/service/models/settings"
	"github.com/lacarte/orderdesk/internal/service/models/status"
	"github.com/lacarte/orderdesk/internal/service/models/timeslot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- mock repositories ----

type mockOrderRepo struct {
	inserted          []*order.Order
	byID              map[int64]*order.Order
	getErr            error
	getCalls          int
	getForUpdateCalls int
	setStatus         []order.StatusHistoryEntry
	setErr            error
}

func (m *mockOrderRepo) Insert(_ context.Context, o *order.Order) error {
	o.ID = int64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, o)

	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	m.getCalls++

	return m.get(id)
}

func (m *mockOrderRepo) GetByIDForUpdate(_ context.Context, id int64) (*order.Order, error) {
	m.getForUpdateCalls++

	return m.get(id)
}

func (m *mockOrderRepo) get(id int64) (*order.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}

	return o, nil
}

func (m *mockOrderRepo) SetStatus(_ context.Context, _ *order.Order, entry order.StatusHistoryEntry) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setStatus = append(m.setStatus, entry)

	return nil
}

func (m *mockOrderRepo) Query(_ context.Context, _ *order.QueryOrdersModel) ([]order.Order, error) {
	return nil, nil
}

type mockOutboxRepo struct {
	inserted []outbox.Message
}

func (m *mockOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	m.inserted = append(m.inserted, msg)

	return nil
}

func (m *mockOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.Message, error) {
	return nil, nil
}

func (m *mockOutboxRepo) Delete(_ context.Context, _ int64) error { return nil }

func (m *mockOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

// ---- mock unit of work ----

type mockUOW struct {
	orderRepo  *mockOrderRepo
	outboxRepo *mockOutboxRepo
	begun      bool
	committed  bool
	rolledBack bool
}

func (m *mockUOW) Begin(_ context.Context) error {
	m.begun = true

	return nil
}

func (m *mockUOW) Commit(_ context.Context) error {
	m.committed = true

	return nil
}

func (m *mockUOW) Rollback(_ context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}

	return nil
}

func (m *mockUOW) OrderRepository() iorderrepo.IOrderRepository    { return m.orderRepo }
func (m *mockUOW) OutboxRepository() ioutboxrepo.IOutboxRepository { return m.outboxRepo }

// ---- other collaborators ----

type mockCatalogRepo struct {
	snap *catalog.Snapshot
}

func (m *mockCatalogRepo) Snapshot(_ context.Context) (*catalog.Snapshot, error) {
	return m.snap, nil
}

type mockSettingsRepo struct {
	cfg settings.Settings
}

func (m *mockSettingsRepo) Get(_ context.Context) (settings.Settings, error) {
	return m.cfg, nil
}

type mockSlotRepo struct {
	slots []timeslot.Slot
}

func (m *mockSlotRepo) ListSlots(_ context.Context) ([]timeslot.Slot, error) {
	return m.slots, nil
}

type mockBroadcaster struct {
	created []event.OrderCreated
	changed []event.OrderStatusChanged
}

func (m *mockBroadcaster) BroadcastOrderCreated(_ context.Context, evt event.OrderCreated) {
	m.created = append(m.created, evt)
}

func (m *mockBroadcaster) BroadcastStatusChanged(_ context.Context, evt event.OrderStatusChanged) {
	m.changed = append(m.changed, evt)
}

// ---- fixtures ----

func ptr(v int64) *int64 { return &v }

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Dishes: map[int64]catalog.Dish{
			1: {ID: 1, Title: "Tartiflette", PriceCents: 800, Available: true},
		},
		Sauces: map[int64]catalog.Sauce{
			10: {ID: 10, Title: "Aioli", PriceCents: 450, Available: true},
		},
		Extras: map[int64]catalog.Extra{
			20: {ID: 20, Title: "Cheese", PriceCents: 150, Available: true},
		},
		TakenAt: time.Now(),
	}
}

// newTestService wires the service against the default slot ladder; tests
// exercising configured slots use newTestServiceWithSlots.
func newTestService(uow *mockUOW, cfg settings.Settings, bc *mockBroadcaster, now time.Time) *OrderService {
	return newTestServiceWithSlots(uow, cfg, bc, now, nil)
}

func newTestServiceWithSlots(uow *mockUOW, cfg settings.Settings, bc *mockBroadcaster, now time.Time, slots []timeslot.Slot) *OrderService {
	return MustNewOrderService(
		WithCatalogRepository(&mockCatalogRepo{snap: testSnapshot()}),
		WithSettingsRepository(&mockSettingsRepo{cfg: cfg}),
		WithSlotRepository(&mockSlotRepo{slots: slots}),
		WithBroadcaster(bc),
		WithUnitOfWorkFactory(func() unitOfWork { return uow }),
		WithClock(func() time.Time { return now }),
	)
}

func validCommand() CreateOrderCommand {
	return CreateOrderCommand{
		CustomerID:    42,
		OrderType:     "delivery",
		PaymentMethod: "card",
		Items: []CreateOrderItemCommand{
			{DishID: ptr(1), Quantity: 2},
			{SauceID: ptr(10), AddedExtraIDs: []int64{20}, Quantity: 1},
		},
	}
}

// ---- CreateOrder ----

func TestCreateOrder(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	bc := &mockBroadcaster{}
	svc := newTestService(uow, settings.Defaults(), bc, now)

	o, err := svc.CreateOrder(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, status.Pending, o.Status)
	require.Len(t, o.StatusHistory, 1)
	assert.Equal(t, status.Pending, o.StatusHistory[0].Status)
	assert.Equal(t, "customer", o.StatusHistory[0].ChangedBy)

	// 8.00 x 2 + 6.00 = 22.00 subtotal, below the free-delivery threshold
	// of 25.00, so the 2.50 fee applies.
	assert.Equal(t, money.Cents(2200), o.SubtotalCents)
	assert.Equal(t, money.Cents(250), o.DeliveryFeeCents)
	assert.Equal(t, money.Cents(2450), o.TotalPriceCents)

	assert.True(t, uow.committed)
	require.Len(t, uow.outboxRepo.inserted, 1)
	assert.Equal(t, "order.created", uow.outboxRepo.inserted[0].RoutingKey)

	require.Len(t, bc.created, 1)
	assert.Equal(t, uint64(1), bc.created[0].Seq)
	assert.Equal(t, o.ID, bc.created[0].Order.ID)
}

func TestCreateOrder_FreeDeliveryAtThreshold(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, now)

	cmd := validCommand()
	cmd.Items = []CreateOrderItemCommand{{DishID: ptr(1), Quantity: 4}} // 32.00

	o, err := svc.CreateOrder(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(0), o.DeliveryFeeCents)
	assert.Equal(t, money.Cents(3200), o.TotalPriceCents)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, time.Now())

	cmd := validCommand()
	cmd.Items = nil

	_, err := svc.CreateOrder(context.Background(), cmd)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ErrorIs(t, err, order.ErrEmptyItems)
	assert.False(t, uow.begun)
}

func TestCreateOrder_UnknownDishPersistsNothing(t *testing.T) {
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, time.Now())

	cmd := validCommand()
	cmd.Items = []CreateOrderItemCommand{{DishID: ptr(99), Quantity: 1}}

	_, err := svc.CreateOrder(context.Background(), cmd)

	assert.ErrorIs(t, err, catalog.ErrUnknownDish)
	assert.Empty(t, uow.orderRepo.inserted)
	assert.Empty(t, uow.outboxRepo.inserted)
	assert.False(t, uow.committed)
}

func TestCreateOrder_SlotInsideLeadWindowIsRejected(t *testing.T) {
	now := time.Date(2026, 3, 14, 17, 45, 0, 0, time.UTC)
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, now)

	tooSoon := now.Add(19 * time.Minute)
	cmd := validCommand()
	cmd.TakeoutTime = &tooSoon

	_, err := svc.CreateOrder(context.Background(), cmd)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.False(t, uow.begun)
}

func TestCreateOrder_SlotExactlyAtLeadIsAccepted(t *testing.T) {
	now := time.Date(2026, 3, 14, 17, 40, 0, 0, time.UTC)
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, now)

	exact := now.Add(20 * time.Minute)
	cmd := validCommand()
	cmd.TakeoutTime = &exact

	_, err := svc.CreateOrder(context.Background(), cmd)
	require.NoError(t, err)
}

func TestCreateOrder_DisabledSlotIsRejected(t *testing.T) {
	now := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	slots := []timeslot.Slot{
		{ID: 1, Time: timeslot.DayTime{Hour: 18, Minute: 0}, Enabled: false},
		{ID: 2, Time: timeslot.DayTime{Hour: 18, Minute: 15}, Enabled: true},
	}
	svc := newTestServiceWithSlots(uow, settings.Defaults(), &mockBroadcaster{}, now, slots)

	// 18:00 is far outside the lead window, but an admin switched the slot
	// off between the customer loading the offers and submitting.
	disabled := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	cmd := validCommand()
	cmd.TakeoutTime = &disabled

	_, err := svc.CreateOrder(context.Background(), cmd)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.False(t, uow.begun)
}

func TestCreateOrder_EnabledSlotIsAccepted(t *testing.T) {
	now := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	slots := []timeslot.Slot{
		{ID: 2, Time: timeslot.DayTime{Hour: 18, Minute: 15}, Enabled: true},
	}
	svc := newTestServiceWithSlots(uow, settings.Defaults(), &mockBroadcaster{}, now, slots)

	enabled := time.Date(2026, 3, 14, 18, 15, 0, 0, time.UTC)
	cmd := validCommand()
	cmd.TakeoutTime = &enabled

	_, err := svc.CreateOrder(context.Background(), cmd)
	require.NoError(t, err)
}

func TestCreateOrder_TimeOffTheSlotGridIsRejected(t *testing.T) {
	now := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, now)

	offGrid := time.Date(2026, 3, 14, 18, 7, 0, 0, time.UTC)
	cmd := validCommand()
	cmd.TakeoutTime = &offGrid

	_, err := svc.CreateOrder(context.Background(), cmd)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.False(t, uow.begun)
}

func TestCreateOrder_ASAPDisabled(t *testing.T) {
	cfg := settings.Defaults()
	cfg.EnableASAP = false
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, cfg, &mockBroadcaster{}, time.Now())

	_, err := svc.CreateOrder(context.Background(), validCommand())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCreateOrder_DeliveryDisabled(t *testing.T) {
	cfg := settings.Defaults()
	cfg.EnableOnlineDelivery = false
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, cfg, &mockBroadcaster{}, time.Now())

	_, err := svc.CreateOrder(context.Background(), validCommand())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

// ---- Transition ----

func pendingOrder(id int64) *order.Order {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	return &order.Order{
		ID:         id,
		CustomerID: 42,
		Status:     status.Pending,
		StatusHistory: []order.StatusHistoryEntry{
			{Status: status.Pending, ChangedAt: now, ChangedBy: "customer"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTransition(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 5, 0, 0, time.UTC)
	repo := &mockOrderRepo{byID: map[int64]*order.Order{7: pendingOrder(7)}}
	uow := &mockUOW{orderRepo: repo, outboxRepo: &mockOutboxRepo{}}
	bc := &mockBroadcaster{}
	svc := newTestService(uow, settings.Defaults(), bc, now)

	o, err := svc.Transition(context.Background(), 7, int(status.Confirmed), "staff", "")
	require.NoError(t, err)

	assert.Equal(t, status.Confirmed, o.Status)
	require.Len(t, o.StatusHistory, 2)
	assert.Equal(t, status.Confirmed, o.StatusHistory[1].Status)
	assert.Equal(t, "staff", o.StatusHistory[1].ChangedBy)

	// The read must go through the locking variant so concurrent transitions
	// of one order serialize on its row. The locking itself is a database
	// property, not observable against mocks.
	assert.Equal(t, 1, repo.getForUpdateCalls)
	assert.Zero(t, repo.getCalls)

	require.Len(t, repo.setStatus, 1)
	assert.True(t, uow.committed)

	require.Len(t, uow.outboxRepo.inserted, 1)
	assert.Equal(t, "order.status_changed", uow.outboxRepo.inserted[0].RoutingKey)

	require.Len(t, bc.changed, 1)
	assert.Equal(t, uint64(2), bc.changed[0].Seq)
	assert.Equal(t, "confirmed", bc.changed[0].StatusText)
	assert.Equal(t, int64(42), bc.changed[0].CustomerID)
}

func TestGetOrder_ReadsWithoutLock(t *testing.T) {
	repo := &mockOrderRepo{byID: map[int64]*order.Order{7: pendingOrder(7)}}
	uow := &mockUOW{orderRepo: repo, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, time.Now())

	o, err := svc.GetOrder(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), o.ID)

	assert.Equal(t, 1, repo.getCalls)
	assert.Zero(t, repo.getForUpdateCalls)
}

func TestTransition_UnknownOrder(t *testing.T) {
	uow := &mockUOW{orderRepo: &mockOrderRepo{byID: map[int64]*order.Order{}}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, time.Now())

	_, err := svc.Transition(context.Background(), 404, int(status.Confirmed), "staff", "")

	assert.ErrorIs(t, err, order.ErrNotFound)
	assert.False(t, uow.committed)
	assert.True(t, uow.rolledBack)
	assert.Empty(t, uow.outboxRepo.inserted)
}

func TestTransition_BackwardsIsRejected(t *testing.T) {
	o := pendingOrder(7)
	o.Status = status.Ready
	repo := &mockOrderRepo{byID: map[int64]*order.Order{7: o}}
	uow := &mockUOW{orderRepo: repo, outboxRepo: &mockOutboxRepo{}}
	bc := &mockBroadcaster{}
	svc := newTestService(uow, settings.Defaults(), bc, time.Now())

	_, err := svc.Transition(context.Background(), 7, int(status.Confirmed), "staff", "")

	var tErr *status.TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, status.Ready, tErr.From)
	assert.Equal(t, status.Confirmed, tErr.To)

	assert.Empty(t, repo.setStatus)
	assert.Empty(t, uow.outboxRepo.inserted)
	assert.False(t, uow.committed)
	assert.Empty(t, bc.changed)
}

func TestTransition_TerminalOrderIsClosed(t *testing.T) {
	o := pendingOrder(7)
	o.Status = status.Cancelled
	uow := &mockUOW{orderRepo: &mockOrderRepo{byID: map[int64]*order.Order{7: o}}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, time.Now())

	_, err := svc.Transition(context.Background(), 7, int(status.Completed), "staff", "")

	var tErr *status.TransitionError
	assert.ErrorAs(t, err, &tErr)
}

func TestTransition_BadStatusCode(t *testing.T) {
	uow := &mockUOW{orderRepo: &mockOrderRepo{}, outboxRepo: &mockOutboxRepo{}}
	svc := newTestService(uow, settings.Defaults(), &mockBroadcaster{}, time.Now())

	_, err := svc.Transition(context.Background(), 7, 99, "staff", "")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ErrorIs(t, err, status.ErrUnknownStatus)
	assert.False(t, uow.begun)
}
