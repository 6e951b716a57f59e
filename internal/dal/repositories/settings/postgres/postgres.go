package postgresrepo

import (
	"context"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"github.com/lacarte/orderdesk/internal/dal/postgres"
	"github.com/lacarte/orderdesk/internal/service/models/money"
	"github.com/lacarte/orderdesk/internal/service/models/settings"
)

// Setting keys as stored in the settings table.
const (
	keyEnableASAP           = "enable_asap"
	keyEnableOnlinePickup   = "enable_online_pickup"
	keyEnableOnlineDelivery = "enable_online_delivery"
	keySlotLeadMinutes      = "slot_lead_minutes"
	keyDeliveryFeeCents     = "delivery_fee_cents"
	keyFreeDeliveryMinCents = "free_delivery_min_cents"
)

// PostgresSettingsRepository reads the key/value settings table.
type PostgresSettingsRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresSettingsRepository creates a new Postgres settings repository.
func NewPostgresSettingsRepository(conn postgres.GenericConn) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Get loads the settings, falling back to the defaults for any missing key.
func (r *PostgresSettingsRepository) Get(ctx context.Context) (settings.Settings, error) {
	cfg := settings.Defaults()

	sql, args, err := r.sb.Select("key", "value").
		From("settings").
		ToSql()
	if err != nil {
		return cfg, fmt.Errorf("failed to build settings query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return cfg, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return cfg, fmt.Errorf("failed to scan setting: %w", err)
		}

		switch key {
		case keyEnableASAP:
			cfg.EnableASAP = value == "true"
		case keyEnableOnlinePickup:
			cfg.EnableOnlinePickup = value == "true"
		case keyEnableOnlineDelivery:
			cfg.EnableOnlineDelivery = value == "true"
		case keySlotLeadMinutes:
			if n, err := strconv.Atoi(value); err == nil {
				cfg.SlotLeadMinutes = n
			}
		case keyDeliveryFeeCents:
			if c, err := parseMoneySetting(value); err == nil {
				cfg.DeliveryFeeCents = c
			}
		case keyFreeDeliveryMinCents:
			if c, err := parseMoneySetting(value); err == nil {
				cfg.FreeDeliveryMinCents = c
			}
		}
	}

	if err := rows.Err(); err != nil {
		return cfg, fmt.Errorf("error iterating settings: %w", err)
	}

	return cfg, nil
}

// parseMoneySetting accepts either plain cents ("250") or a decimal amount
// ("2.50"), so hand-edited settings rows read naturally.
func parseMoneySetting(value string) (money.Cents, error) {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return money.Cents(n), nil
	}

	return money.ParseCents(value)
}
