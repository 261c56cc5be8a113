package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

// sqlCommand is satisfied by both *sql.DB and *sql.Tx.
type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const uniqueViolation pq.ErrorCode = "23505"

type txKey struct{}

// conn returns the transaction carried by ctx, or db outside of one.
func conn(ctx context.Context, db *sql.DB) sqlCommand {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) repository.Transactor {
	return &transactor{db: db}
}

// WithinTx joins an enclosing transaction when ctx already carries one.
func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error("Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// notFound turns sql.ErrNoRows into domain.ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
	}
	return err
}

// expectOne reports domain.ErrNotFound when an update or delete touched no row.
func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
	}
	return nil
}

type Store struct {
	db *sql.DB
	repository.Transactor
	Events        repository.EventRepository
	Labels        repository.LabelRepository
	Guests        repository.GuestRepository
	Pools         repository.PoolRepository
	Perks         repository.PerkRepository
	Budgets       repository.BudgetRepository
	Requests      repository.RequestRepository
	Itinerary     repository.ItineraryRepository
	Agents        repository.AgentRepository
	Notifications repository.NotificationRepository
	Effects       repository.EffectRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		Transactor:    NewTransactor(db),
		Events:        NewEventRepository(db),
		Labels:        NewLabelRepository(db),
		Guests:        NewGuestRepository(db),
		Pools:         NewPoolRepository(db),
		Perks:         NewPerkRepository(db),
		Budgets:       NewBudgetRepository(db),
		Requests:      NewRequestRepository(db),
		Itinerary:     NewItineraryRepository(db),
		Agents:        NewAgentRepository(db),
		Notifications: NewNotificationRepository(db),
		Effects:       NewEffectRepository(db),
	}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
