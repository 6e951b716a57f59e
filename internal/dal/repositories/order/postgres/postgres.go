package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/lacarte/orderdesk/internal/dal/postgres"
	"github.com/lacarte/orderdesk/internal/service/models/money"
	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/models/orderitem"
	"github.com/lacarte/orderdesk/internal/service/models/status"
)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id               int64      `db:"id"`
	CustomerId       int64      `db:"customer_id"`
	OrderType        string     `db:"order_type"`
	Status           int        `db:"status"`
	TakeoutTime      *time.Time `db:"takeout_time"`
	PaymentMethod    string     `db:"payment_method"`
	Notes            string     `db:"notes"`
	SubtotalCents    int64      `db:"subtotal_cents"`
	DeliveryFeeCents int64      `db:"delivery_fee_cents"`
	TotalPriceCents  int64      `db:"total_price_cents"`
	PriceCurrency    string     `db:"price_currency"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := money.ParseCurrency(o.PriceCurrency)
	if err != nil {
		return nil, err
	}
	st, err := status.Parse(o.Status)
	if err != nil {
		return nil, err
	}
	orderType, err := order.ParseType(o.OrderType)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:               o.Id,
		CustomerID:       o.CustomerId,
		Type:             orderType,
		Status:           st,
		TakeoutTime:      o.TakeoutTime,
		PaymentMethod:    order.PaymentMethod(o.PaymentMethod),
		Notes:            o.Notes,
		SubtotalCents:    money.Cents(o.SubtotalCents),
		DeliveryFeeCents: money.Cents(o.DeliveryFeeCents),
		TotalPriceCents:  money.Cents(o.TotalPriceCents),
		PriceCurrency:    cur,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}, nil
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert persists the order, its items and its initial status log entry.
// Meant to run on a transaction-bound repository so the whole write is
// all-or-nothing.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o *order.Order) error {
	query, args, err := r.sb.Insert("orders").
		Columns(
			"customer_id",
			"order_type",
			"status",
			"takeout_time",
			"payment_method",
			"notes",
			"subtotal_cents",
			"delivery_fee_cents",
			"total_price_cents",
			"price_currency",
			"created_at",
			"updated_at",
		).
		Values(
			o.CustomerID,
			string(o.Type),
			int(o.Status),
			o.TakeoutTime,
			string(o.PaymentMethod),
			o.Notes,
			int64(o.SubtotalCents),
			int64(o.DeliveryFeeCents),
			int64(o.TotalPriceCents),
			o.PriceCurrency.String(),
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.ID); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range o.Items {
		if err := r.insertItem(ctx, o.ID, &o.Items[i]); err != nil {
			return err
		}
	}

	for _, entry := range o.StatusHistory {
		if err := r.appendStatusLog(ctx, o.ID, entry); err != nil {
			return err
		}
	}

	return nil
}

func (r *PostgresOrderRepository) insertItem(ctx context.Context, orderID int64, item *orderitem.OrderItem) error {
	item.OrderID = orderID

	query, args, err := r.sb.Insert("order_items").
		Columns(
			"order_id",
			"dish_id",
			"sauce_id",
			"version_id",
			"dish_sauce_id",
			"added_extra_ids",
			"removed_ingredient_ids",
			"message",
			"quantity",
			"unit_price_cents",
			"total_price_cents",
			"price_currency",
			"created_at",
		).
		Values(
			item.OrderID,
			item.DishID,
			item.SauceID,
			item.VersionID,
			item.DishSauceID,
			item.AddedExtraIDs,
			item.RemovedIngredientIDs,
			item.Message,
			item.Quantity,
			int64(item.UnitPriceCents),
			int64(item.TotalPriceCents),
			item.PriceCurrency.String(),
			item.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build item insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&item.ID); err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}

	return nil
}

func (r *PostgresOrderRepository) appendStatusLog(ctx context.Context, orderID int64, entry order.StatusHistoryEntry) error {
	query, args, err := r.sb.Insert("order_status_log").
		Columns("order_id", "status", "changed_by", "notes", "changed_at").
		Values(orderID, int(entry.Status), entry.ChangedBy, entry.Notes, entry.ChangedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build status log query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to append status log: %w", err)
	}

	return nil
}

// GetByID loads an order with its items and full status history.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate is GetByID with a row lock. Only meaningful on a
// transaction-bound repository.
func (r *PostgresOrderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	return r.getByID(ctx, id, true)
}

func (r *PostgresOrderRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*order.Order, error) {
	query := r.sb.Select(orderColumns()...).
		From("orders").
		Where(sq.Eq{"id": id})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	err = r.conn.QueryRow(ctx, sql, args...).Scan(
		&dal.Id,
		&dal.CustomerId,
		&dal.OrderType,
		&dal.Status,
		&dal.TakeoutTime,
		&dal.PaymentMethod,
		&dal.Notes,
		&dal.SubtotalCents,
		&dal.DeliveryFeeCents,
		&dal.TotalPriceCents,
		&dal.PriceCurrency,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	if err := r.loadItems(ctx, []*order.Order{model}); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, []*order.Order{model}); err != nil {
		return nil, err
	}

	return model, nil
}

// SetStatus updates the order's status columns and appends the history entry.
func (r *PostgresOrderRepository) SetStatus(ctx context.Context, o *order.Order, entry order.StatusHistoryEntry) error {
	query, args, err := r.sb.Update("orders").
		Set("status", int(o.Status)).
		Set("updated_at", o.UpdatedAt).
		Where(sq.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	return r.appendStatusLog(ctx, o.ID, entry)
}

// Query retrieves orders based on filter criteria, items and history included.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	query := r.sb.Select(orderColumns()...).
		From("orders").
		OrderBy("created_at DESC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.CustomerIds) > 0 {
		query = query.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}
	if len(filter.Statuses) > 0 {
		codes := make([]int, len(filter.Statuses))
		for i, s := range filter.Statuses {
			codes[i] = int(s)
		}
		query = query.Where(sq.Eq{"status": codes})
	}
	if filter.Date != nil {
		dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
		query = query.Where(sq.GtOrEq{"created_at": dayStart}).
			Where(sq.Lt{"created_at": dayStart.AddDate(0, 0, 1)})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []*order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.CustomerId,
			&dal.OrderType,
			&dal.Status,
			&dal.TakeoutTime,
			&dal.PaymentMethod,
			&dal.Notes,
			&dal.SubtotalCents,
			&dal.DeliveryFeeCents,
			&dal.TotalPriceCents,
			&dal.PriceCurrency,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, model)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if err := r.loadItems(ctx, result); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, result); err != nil {
		return nil, err
	}

	out := make([]order.Order, len(result))
	for i, o := range result {
		out[i] = *o
	}

	return out, nil
}

func orderColumns() []string {
	return []string{
		"id",
		"customer_id",
		"order_type",
		"status",
		"takeout_time",
		"payment_method",
		"notes",
		"subtotal_cents",
		"delivery_fee_cents",
		"total_price_cents",
		"price_currency",
		"created_at",
		"updated_at",
	}
}

func (r *PostgresOrderRepository) loadItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*order.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	sql, args, err := r.sb.Select(
		"id",
		"order_id",
		"dish_id",
		"sauce_id",
		"version_id",
		"dish_sauce_id",
		"added_extra_ids",
		"removed_ingredient_ids",
		"message",
		"quantity",
		"unit_price_cents",
		"total_price_cents",
		"price_currency",
		"created_at",
	).
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build items query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item orderitem.OrderItem
		var unitCents, totalCents int64
		var cur string
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.DishID,
			&item.SauceID,
			&item.VersionID,
			&item.DishSauceID,
			&item.AddedExtraIDs,
			&item.RemovedIngredientIDs,
			&item.Message,
			&item.Quantity,
			&unitCents,
			&totalCents,
			&cur,
			&item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		item.UnitPriceCents = money.Cents(unitCents)
		item.TotalPriceCents = money.Cents(totalCents)
		item.PriceCurrency, err = money.ParseCurrency(cur)
		if err != nil {
			return err
		}

		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	return rows.Err()
}

func (r *PostgresOrderRepository) loadHistory(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*order.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	sql, args, err := r.sb.Select("order_id", "status", "changed_by", "notes", "changed_at").
		From("order_status_log").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var code int
		var entry order.StatusHistoryEntry
		if err := rows.Scan(&orderID, &code, &entry.ChangedBy, &entry.Notes, &entry.ChangedAt); err != nil {
			return fmt.Errorf("failed to scan status log: %w", err)
		}

		entry.Status, err = status.Parse(code)
		if err != nil {
			return err
		}

		if o, ok := byID[orderID]; ok {
			o.StatusHistory = append(o.StatusHistory, entry)
		}
	}

	return rows.Err()
}
