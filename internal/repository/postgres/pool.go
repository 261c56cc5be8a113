package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type poolRepository struct {
	db *sql.DB
}

func NewPoolRepository(db *sql.DB) repository.PoolRepository {
	return &poolRepository{db: db}
}

const poolColumns = `id, event_id, name, kind, is_primary, blocked, confirmed, negotiated_rate_cents, valid_from, valid_to, updated_at`

func scanPool(row rowScanner) (*domain.ResourcePool, error) {
	p := &domain.ResourcePool{}
	err := row.Scan(&p.ID, &p.EventID, &p.Name, &p.Kind, &p.IsPrimary, &p.Blocked, &p.Confirmed,
		&p.NegotiatedRateCents, &p.ValidFrom, &p.ValidTo, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *poolRepository) Create(ctx context.Context, p *domain.ResourcePool) error {
	logger.EnterMethod("poolRepository.Create", "eventID", p.EventID, "blocked", p.Blocked)

	query := `INSERT INTO resource_pools (id, event_id, name, kind, is_primary, blocked, confirmed,
	              negotiated_rate_cents, valid_from, valid_to, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	p.UpdatedAt = time.Now().UTC()
	_, err := conn(ctx, r.db).ExecContext(ctx, query, p.ID, p.EventID, p.Name, p.Kind, p.IsPrimary, p.Blocked, p.Confirmed,
		p.NegotiatedRateCents, p.ValidFrom, p.ValidTo, p.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		err = fmt.Errorf("%w: pool %s conflicts with an existing pool (%s)", domain.ErrInvalidArgument, p.ID, pqErr.Constraint)
	}
	if err != nil {
		logger.ExitMethodWithError("poolRepository.Create", err, "poolID", p.ID)
		return err
	}
	logger.ExitMethod("poolRepository.Create", "poolID", p.ID)
	return nil
}

func (r *poolRepository) GetByID(ctx context.Context, id string) (*domain.ResourcePool, error) {
	query := `SELECT ` + poolColumns + ` FROM resource_pools WHERE id = $1`
	p, err := scanPool(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "pool", id)
	}
	return p, nil
}

func (r *poolRepository) GetForUpdate(ctx context.Context, id string) (*domain.ResourcePool, error) {
	query := `SELECT ` + poolColumns + ` FROM resource_pools WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "resource_pools", "poolID", id)
	p, err := scanPool(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "pool", id)
	}
	return p, nil
}

func (r *poolRepository) GetPrimary(ctx context.Context, eventID string, forUpdate bool) (*domain.ResourcePool, error) {
	query := `SELECT ` + poolColumns + ` FROM resource_pools WHERE event_id = $1 AND is_primary ORDER BY id LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	p, err := scanPool(conn(ctx, r.db).QueryRowContext(ctx, query, eventID))
	if err != nil {
		return nil, notFound(err, "primary pool of event", eventID)
	}
	return p, nil
}

func (r *poolRepository) Update(ctx context.Context, p *domain.ResourcePool) error {
	query := `UPDATE resource_pools SET name = $1, blocked = $2, confirmed = $3, negotiated_rate_cents = $4,
	              valid_from = $5, valid_to = $6, updated_at = $7
	          WHERE id = $8`
	p.UpdatedAt = time.Now().UTC()
	logger.DatabaseCall("UPDATE", "resource_pools", "poolID", p.ID, "blocked", p.Blocked, "confirmed", p.Confirmed)
	res, err := conn(ctx, r.db).ExecContext(ctx, query, p.Name, p.Blocked, p.Confirmed, p.NegotiatedRateCents,
		p.ValidFrom, p.ValidTo, p.UpdatedAt, p.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "poolID", p.ID)
		return err
	}
	return expectOne(res, "pool", p.ID)
}

func (r *poolRepository) ListWaitlist(ctx context.Context, poolID string) ([]domain.WaitlistEntry, error) {
	query := `SELECT id, pool_id, guest_id, priority, requested_seats, joined_at, seq
	          FROM waitlist_entries WHERE pool_id = $1 ORDER BY priority, joined_at, seq`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.WaitlistEntry
	for rows.Next() {
		var e domain.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.PoolID, &e.GuestID, &e.Priority, &e.RequestedSeats, &e.JoinedAt, &e.Seq); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *poolRepository) AddWaitlistEntry(ctx context.Context, e *domain.WaitlistEntry) error {
	query := `INSERT INTO waitlist_entries (id, pool_id, guest_id, priority, requested_seats, joined_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING seq`
	logger.DatabaseCall("INSERT", "waitlist_entries", "poolID", e.PoolID, "guestID", e.GuestID)
	return conn(ctx, r.db).QueryRowContext(ctx, query, e.ID, e.PoolID, e.GuestID, e.Priority, e.RequestedSeats, e.JoinedAt).Scan(&e.Seq)
}

func (r *poolRepository) RemoveWaitlistEntry(ctx context.Context, poolID, guestID string) error {
	query := `DELETE FROM waitlist_entries WHERE pool_id = $1 AND guest_id = $2`
	logger.DatabaseCall("DELETE", "waitlist_entries", "poolID", poolID, "guestID", guestID)
	res, err := conn(ctx, r.db).ExecContext(ctx, query, poolID, guestID)
	if err != nil {
		return err
	}
	return expectOne(res, "waitlist entry for guest", guestID)
}
