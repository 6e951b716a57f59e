package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lacarte/orderdesk/internal/dal/postgres"
	"github.com/lacarte/orderdesk/internal/service/models/catalog"
	"github.com/lacarte/orderdesk/internal/service/models/money"
)

// PostgresCatalogRepository loads the product catalog for order validation
// and pricing.
type PostgresCatalogRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresCatalogRepository creates a new Postgres catalog repository.
func NewPostgresCatalogRepository(conn postgres.GenericConn) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Snapshot reads the whole catalog in one pass. The menu of a single
// restaurant is small, so a full read per order submission is cheaper than
// keeping a cache coherent with the back-office.
func (r *PostgresCatalogRepository) Snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	snap := &catalog.Snapshot{
		Dishes:      make(map[int64]catalog.Dish),
		Sauces:      make(map[int64]catalog.Sauce),
		Versions:    make(map[int64]catalog.Version),
		Extras:      make(map[int64]catalog.Extra),
		Ingredients: make(map[int64]catalog.Ingredient),
		TakenAt:     time.Now(),
	}

	if err := r.loadDishes(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadSauces(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadVersions(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadExtras(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadIngredients(ctx, snap); err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *PostgresCatalogRepository) loadDishes(ctx context.Context, snap *catalog.Snapshot) error {
	sql, args, err := r.sb.Select("id", "title", "price_cents", "available").
		From("dishes").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build dishes query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to query dishes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d catalog.Dish
		var cents int64
		if err := rows.Scan(&d.ID, &d.Title, &cents, &d.Available); err != nil {
			return fmt.Errorf("failed to scan dish: %w", err)
		}
		d.PriceCents = money.Cents(cents)
		snap.Dishes[d.ID] = d
	}

	return rows.Err()
}

func (r *PostgresCatalogRepository) loadSauces(ctx context.Context, snap *catalog.Snapshot) error {
	sql, args, err := r.sb.Select("id", "title", "price_cents", "available").
		From("sauces").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sauces query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to query sauces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s catalog.Sauce
		var cents int64
		if err := rows.Scan(&s.ID, &s.Title, &cents, &s.Available); err != nil {
			return fmt.Errorf("failed to scan sauce: %w", err)
		}
		s.PriceCents = money.Cents(cents)
		snap.Sauces[s.ID] = s
	}

	return rows.Err()
}

func (r *PostgresCatalogRepository) loadVersions(ctx context.Context, snap *catalog.Snapshot) error {
	sql, args, err := r.sb.Select("id", "dish_id", "size", "extra_price_cents").
		From("dish_versions").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build versions query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to query dish versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v catalog.Version
		var cents int64
		if err := rows.Scan(&v.ID, &v.DishID, &v.Size, &cents); err != nil {
			return fmt.Errorf("failed to scan dish version: %w", err)
		}
		v.ExtraPriceCents = money.Cents(cents)
		snap.Versions[v.ID] = v
	}

	return rows.Err()
}

func (r *PostgresCatalogRepository) loadExtras(ctx context.Context, snap *catalog.Snapshot) error {
	sql, args, err := r.sb.Select("id", "title", "price_cents", "available").
		From("extras").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build extras query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to query extras: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e catalog.Extra
		var cents int64
		if err := rows.Scan(&e.ID, &e.Title, &cents, &e.Available); err != nil {
			return fmt.Errorf("failed to scan extra: %w", err)
		}
		e.PriceCents = money.Cents(cents)
		snap.Extras[e.ID] = e
	}

	return rows.Err()
}

func (r *PostgresCatalogRepository) loadIngredients(ctx context.Context, snap *catalog.Snapshot) error {
	sql, args, err := r.sb.Select("id", "title").
		From("ingredients").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build ingredients query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing catalog.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Title); err != nil {
			return fmt.Errorf("failed to scan ingredient: %w", err)
		}
		snap.Ingredients[ing.ID] = ing
	}

	return rows.Err()
}
