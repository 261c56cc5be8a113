package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type effectRepository struct {
	db *sql.DB
}

func NewEffectRepository(db *sql.DB) repository.EffectRepository {
	return &effectRepository{db: db}
}

func (r *effectRepository) Enqueue(ctx context.Context, effects []domain.Effect) error {
	query := `INSERT INTO effects (id, kind, event_id, guest_id, pool_id, request_id, session_id, seats, created_at, attempts)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0)`
	c := conn(ctx, r.db)
	for _, e := range effects {
		logger.DatabaseCall("INSERT", "effects", "effectID", e.ID, "kind", e.Kind)
		_, err := c.ExecContext(ctx, query, e.ID, e.Kind, e.EventID, e.GuestID,
			nullString(e.PoolID), nullString(e.RequestID), nullString(e.SessionID), e.Seats, e.CreatedAt)
		if err != nil {
			logger.DatabaseResult("INSERT", 0, err, "effectID", e.ID)
			return err
		}
	}
	return nil
}

func (r *effectRepository) ListUndelivered(ctx context.Context, maxAttempts int32, limit int32) ([]domain.Effect, error) {
	query := `SELECT id, kind, event_id, guest_id, COALESCE(pool_id, ''), COALESCE(request_id, ''), COALESCE(session_id, ''),
	                 seats, created_at, delivered_at, attempts, COALESCE(last_error, ''), channels
	          FROM effects WHERE delivered_at IS NULL AND attempts < $1
	          ORDER BY created_at, id LIMIT $2`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var effects []domain.Effect
	for rows.Next() {
		var (
			e        domain.Effect
			channels []string
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.EventID, &e.GuestID, &e.PoolID, &e.RequestID, &e.SessionID,
			&e.Seats, &e.CreatedAt, &e.DeliveredAt, &e.Attempts, &e.LastError, pq.Array(&channels)); err != nil {
			return nil, err
		}
		for _, c := range channels {
			e.Channels = append(e.Channels, domain.Channel(c))
		}
		effects = append(effects, e)
	}
	return effects, rows.Err()
}

func (r *effectRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE effects SET delivered_at = $1, attempts = attempts + 1, last_error = NULL WHERE id = $2`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	return expectOne(res, "effect", id)
}

func (r *effectRepository) MarkChannel(ctx context.Context, id string, channel domain.Channel) error {
	query := `UPDATE effects SET channels = array_append(channels, $1)
	          WHERE id = $2 AND NOT ($1 = ANY(channels))`
	logger.DatabaseCall("UPDATE", "effects", "effectID", id, "channel", channel)
	_, err := conn(ctx, r.db).ExecContext(ctx, query, string(channel), id)
	return err
}

func (r *effectRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `UPDATE effects SET attempts = attempts + 1, last_error = $1 WHERE id = $2`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, reason, id)
	if err != nil {
		return err
	}
	return expectOne(res, "effect", id)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
