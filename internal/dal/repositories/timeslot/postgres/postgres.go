package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lacarte/orderdesk/internal/dal/postgres"
	"github.com/lacarte/orderdesk/internal/service/models/timeslot"
)

// PostgresSlotRepository reads the configured pickup/delivery slots.
type PostgresSlotRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresSlotRepository creates a new Postgres slot repository.
func NewPostgresSlotRepository(conn postgres.GenericConn) *PostgresSlotRepository {
	return &PostgresSlotRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ListSlots returns all configured slots in chronological order.
func (r *PostgresSlotRepository) ListSlots(ctx context.Context) ([]timeslot.Slot, error) {
	sql, args, err := r.sb.Select("id", "slot_time", "enabled").
		From("time_slots").
		OrderBy("slot_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build slots query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time slots: %w", err)
	}
	defer rows.Close()

	var slots []timeslot.Slot
	for rows.Next() {
		var s timeslot.Slot
		var t pgtype.Time
		if err := rows.Scan(&s.ID, &t, &s.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan time slot: %w", err)
		}

		secs := t.Microseconds / 1_000_000
		s.Time = timeslot.DayTime{Hour: int(secs / 3600), Minute: int(secs % 3600 / 60)}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time slots: %w", err)
	}

	return slots, nil
}
