package postgres

import (
	"context"
	"database/sql"
	"time"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `INSERT INTO events (id, name, starts_at, ends_at) VALUES ($1, $2, $3, $4)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, e.ID, e.Name, e.StartsAt, e.EndsAt)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e := &domain.Event{}
	query := `SELECT id, name, starts_at, ends_at FROM events WHERE id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.StartsAt, &e.EndsAt)
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	return e, nil
}

func (r *eventRepository) ListEndedBefore(ctx context.Context, t time.Time) ([]domain.Event, error) {
	return r.list(ctx, `SELECT id, name, starts_at, ends_at FROM events WHERE ends_at < $1 ORDER BY ends_at`, t)
}

func (r *eventRepository) ListActive(ctx context.Context, t time.Time) ([]domain.Event, error) {
	return r.list(ctx, `SELECT id, name, starts_at, ends_at FROM events WHERE ends_at >= $1 ORDER BY starts_at`, t)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.StartsAt, &e.EndsAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
