package ordersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/lacarte/orderdesk/internal/dal/interfaces/icatalogrepo"
	"github.com/lacarte/orderdesk/internal/dal/interfaces/iorderrepo"
	"github.com/lacarte/orderdesk/internal/dal/interfaces/ioutboxrepo"
	"github.com/lacarte/orderdesk/internal/dal/interfaces/isettingsrepo"
	"github.com/lacarte/orderdesk/internal/dal/interfaces/islotrepo"
	"github.com/lacarte/orderdesk/internal/dal/postgres"
	"github.com/lacarte/orderdesk/internal/dal/uow"
	"github.com/lacarte/orderdesk/internal/service/models/event"
	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/models/orderitem"
	"github.com/lacarte/orderdesk/internal/service/models/outbox"
	"github.com/lacarte/orderdesk/internal/service/models/status"
	"github.com/lacarte/orderdesk/internal/service/models/timeslot"
	"github.com/lacarte/orderdesk/internal/service/services/pricing"
)

// ValidationError is a rejected order submission: malformed items, unknown
// or unavailable catalog references, an ineligible takeout time. Nothing is
// persisted when it is returned.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order validation failed: %s: %v", e.Reason, e.Err)
	}

	return "order validation failed: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// unitOfWork is the transactional boundary for order mutations.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// broadcaster is the live push channel. Delivery is best effort: a failed
// push is the broadcaster's to log, never the caller's to handle — the
// mutation is already committed and clients can re-poll.
type broadcaster interface {
	BroadcastOrderCreated(ctx context.Context, evt event.OrderCreated)
	BroadcastStatusChanged(ctx context.Context, evt event.OrderStatusChanged)
}

// OrderService owns the order lifecycle: creation, status transitions and
// the events both produce.
type OrderService struct {
	pgClient     *postgres.Client
	catalogRepo  icatalogrepo.ICatalogRepository
	settingsRepo isettingsrepo.ISettingsRepository
	slotRepo     islotrepo.ISlotRepository
	broadcaster  broadcaster
	newUOW       func() unitOfWork
	now          func() time.Time
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithCatalogRepository sets the catalog repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogRepository(repo icatalogrepo.ICatalogRepository) option {
	return func(s *OrderService) {
		s.catalogRepo = repo
	}
}

// WithSettingsRepository sets the settings repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSettingsRepository(repo isettingsrepo.ISettingsRepository) option {
	return func(s *OrderService) {
		s.settingsRepo = repo
	}
}

// WithSlotRepository sets the time slot repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSlotRepository(repo islotrepo.ISlotRepository) option {
	return func(s *OrderService) {
		s.slotRepo = repo
	}
}

// WithBroadcaster sets the live push channel.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBroadcaster(b broadcaster) option {
	return func(s *OrderService) {
		s.broadcaster = b
	}
}

// WithUnitOfWorkFactory overrides how units of work are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// CreateOrderCommand is an order submission. Client-supplied prices never
// appear here: the service prices everything from its own catalog snapshot.
type CreateOrderCommand struct {
	CustomerID    int64
	OrderType     string
	TakeoutTime   *time.Time
	PaymentMethod string
	Notes         string
	Items         []CreateOrderItemCommand
}

// CreateOrderItemCommand is one submitted line.
type CreateOrderItemCommand struct {
	DishID               *int64
	SauceID              *int64
	VersionID            *int64
	DishSauceID          *int64
	AddedExtraIDs        []int64
	RemovedIngredientIDs []int64
	Message              string
	Quantity             int
}

// CreateOrder validates the submission against a catalog snapshot, prices
// it, persists the order in Pending with its first history entry, and
// announces it. Order row, items, history entry and outbox event commit in
// one transaction; a validation failure persists nothing.
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	now := s.now()

	orderType, err := order.ParseType(cmd.OrderType)
	if err != nil {
		return nil, &ValidationError{Reason: "bad order type", Err: err}
	}

	if len(cmd.Items) == 0 {
		return nil, &ValidationError{Reason: "empty order", Err: order.ErrEmptyItems}
	}

	cfg, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	switch orderType {
	case order.TypeDelivery:
		if !cfg.EnableOnlineDelivery {
			return nil, &ValidationError{Reason: "online delivery is disabled"}
		}
	case order.TypeTakeout:
		if !cfg.EnableOnlinePickup {
			return nil, &ValidationError{Reason: "online pickup is disabled"}
		}
	}

	// Admission control on the requested time: the time must land on an
	// enabled slot that still lies inside the lead window at submission
	// time, and ASAP must be enabled to submit without a time. Checking
	// the slot here catches a slot an admin disabled after the customer
	// loaded the offers.
	if cmd.TakeoutTime == nil {
		if !cfg.EnableASAP {
			return nil, &ValidationError{Reason: "ASAP orders are disabled"}
		}
	} else {
		slots, err := s.slotRepo.ListSlots(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list time slots: %w", err)
		}

		lead := time.Duration(cfg.SlotLeadMinutes) * time.Minute
		if !timeslot.Admit(slots, *cmd.TakeoutTime, now, lead) {
			return nil, &ValidationError{Reason: "requested time is no longer available"}
		}
	}

	snap, err := s.catalogRepo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	items := make([]orderitem.OrderItem, len(cmd.Items))
	for i, it := range cmd.Items {
		items[i] = orderitem.OrderItem{
			DishID:               it.DishID,
			SauceID:              it.SauceID,
			VersionID:            it.VersionID,
			DishSauceID:          it.DishSauceID,
			AddedExtraIDs:        it.AddedExtraIDs,
			RemovedIngredientIDs: it.RemovedIngredientIDs,
			Message:              it.Message,
			Quantity:             it.Quantity,
			CreatedAt:            now,
		}
	}

	subtotal, err := pricing.PriceItems(items, snap)
	if err != nil {
		return nil, &ValidationError{Reason: "invalid item", Err: err}
	}

	fee := pricing.DeliveryFee(orderType, subtotal, cfg)

	o := &order.Order{
		CustomerID:       cmd.CustomerID,
		Type:             orderType,
		Status:           status.Pending,
		TakeoutTime:      cmd.TakeoutTime,
		PaymentMethod:    order.PaymentMethod(cmd.PaymentMethod),
		Notes:            cmd.Notes,
		Items:            items,
		SubtotalCents:    subtotal,
		DeliveryFeeCents: fee,
		TotalPriceCents:  subtotal + fee,
		PriceCurrency:    items[0].PriceCurrency,
		StatusHistory: []order.StatusHistoryEntry{{
			Status:    status.Pending,
			ChangedAt: now,
			ChangedBy: "customer",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer work.Rollback(ctx)

	if err := work.OrderRepository().Insert(ctx, o); err != nil {
		return nil, err
	}

	evt := event.OrderCreated{
		EventID: uuid.NewString(),
		Kind:    event.KindOrderCreated,
		Seq:     o.Seq(),
		Order:   *o,
	}
	if err := s.enqueueEvent(ctx, work.OutboxRepository(), evt.EventID, "order.created", evt, now); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastOrderCreated(ctx, evt)
	}

	slog.InfoContext(ctx, "order created",
		"order_id", o.ID,
		"customer_id", o.CustomerID,
		"total_cents", int64(o.TotalPriceCents),
	)

	return o, nil
}

// Transition moves an order to a new status under the order's row lock, so
// two concurrent transitions of the same order cannot both win. Exactly one
// history entry and one outbox event commit per successful call; a rejected
// call leaves no trace.
func (s *OrderService) Transition(ctx context.Context, orderID int64, code int, changedBy, notes string) (*order.Order, error) {
	next, err := status.Parse(code)
	if err != nil {
		return nil, &ValidationError{Reason: "bad status code", Err: err}
	}

	now := s.now()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer work.Rollback(ctx)

	o, err := work.OrderRepository().GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Transition(next, changedBy, notes, now); err != nil {
		return nil, err
	}

	entry := o.StatusHistory[len(o.StatusHistory)-1]
	if err := work.OrderRepository().SetStatus(ctx, o, entry); err != nil {
		return nil, err
	}

	evt := event.OrderStatusChanged{
		EventID:    uuid.NewString(),
		Kind:       event.KindOrderStatusChanged,
		Seq:        o.Seq(),
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Status:     next,
		StatusText: next.Text(),
		ChangedAt:  now,
	}
	if err := s.enqueueEvent(ctx, work.OutboxRepository(), evt.EventID, "order.status_changed", evt, now); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastStatusChanged(ctx, evt)
	}

	slog.InfoContext(ctx, "order status changed",
		"order_id", o.ID,
		"status", next.Text(),
		"changed_by", changedBy,
	)

	return o, nil
}

// GetOrder loads a single order with its history.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*order.Order, error) {
	return s.newUOW().OrderRepository().GetByID(ctx, orderID)
}

// GetOrders retrieves orders for the dashboard pull path.
func (s *OrderService) GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	return s.newUOW().OrderRepository().Query(ctx, filter)
}

func (s *OrderService) enqueueEvent(
	ctx context.Context,
	repo ioutboxrepo.IOutboxRepository,
	eventID, routingKey string,
	payload any,
	now time.Time,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 10
	}

	return repo.Insert(ctx, outbox.Message{
		MessageID:    eventID,
		ExchangeName: viper.GetString("rabbitmq.events_exchange"),
		RoutingKey:   routingKey,
		Payload:      body,
		ContentType:  "application/json",
		MaxRetries:   maxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	})
}
