package postgres

import (
	"context"
	"database/sql"
	"time"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type guestRepository struct {
	db *sql.DB
}

func NewGuestRepository(db *sql.DB) repository.GuestRepository {
	return &guestRepository{db: db}
}

const guestColumns = `id, event_id, label_id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(device_token, ''),
	status, allocated_seats, confirmed_seats, requested_seats, is_on_waitlist, waitlist_priority,
	registration_source, rsvp_at, arrived_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner) (*domain.Guest, error) {
	g := &domain.Guest{}
	err := row.Scan(&g.ID, &g.EventID, &g.LabelID, &g.Name, &g.Email, &g.Phone, &g.DeviceToken,
		&g.Status, &g.AllocatedSeats, &g.ConfirmedSeats, &g.RequestedSeats, &g.IsOnWaitlist, &g.WaitlistPriority,
		&g.RegistrationSource, &g.RSVPAt, &g.ArrivedAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) Create(ctx context.Context, g *domain.Guest) error {
	logger.EnterMethod("guestRepository.Create", "eventID", g.EventID, "labelID", g.LabelID)

	query := `INSERT INTO guests (id, event_id, label_id, name, email, phone, device_token, status,
	              allocated_seats, confirmed_seats, requested_seats, is_on_waitlist, waitlist_priority,
	              registration_source, rsvp_at, arrived_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	logger.DatabaseCall("INSERT", "guests", "guestID", g.ID)
	res, err := conn(ctx, r.db).ExecContext(ctx, query, g.ID, g.EventID, g.LabelID, g.Name, g.Email, g.Phone, g.DeviceToken,
		g.Status, g.AllocatedSeats, g.ConfirmedSeats, g.RequestedSeats, g.IsOnWaitlist, g.WaitlistPriority,
		g.RegistrationSource, g.RSVPAt, g.ArrivedAt, g.CreatedAt, g.UpdatedAt)
	var n int64
	if err == nil {
		n, _ = res.RowsAffected()
	}
	logger.DatabaseResult("INSERT", n, err, "guestID", g.ID)

	if err != nil {
		logger.ExitMethodWithError("guestRepository.Create", err, "guestID", g.ID)
		return err
	}
	logger.ExitMethod("guestRepository.Create", "guestID", g.ID)
	return nil
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	g, err := scanGuest(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "guest", id)
	}
	return g, nil
}

func (r *guestRepository) GetForUpdate(ctx context.Context, id string) (*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "guests", "guestID", id)
	g, err := scanGuest(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "guest", id)
	}
	return g, nil
}

func (r *guestRepository) Update(ctx context.Context, g *domain.Guest) error {
	query := `UPDATE guests SET label_id = $1, name = $2, email = $3, phone = $4, device_token = $5, status = $6,
	              allocated_seats = $7, confirmed_seats = $8, requested_seats = $9, is_on_waitlist = $10,
	              waitlist_priority = $11, rsvp_at = $12, arrived_at = $13, updated_at = $14
	          WHERE id = $15`
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now().UTC()
	}
	logger.DatabaseCall("UPDATE", "guests", "guestID", g.ID, "status", g.Status)
	res, err := conn(ctx, r.db).ExecContext(ctx, query, g.LabelID, g.Name, g.Email, g.Phone, g.DeviceToken, g.Status,
		g.AllocatedSeats, g.ConfirmedSeats, g.RequestedSeats, g.IsOnWaitlist,
		g.WaitlistPriority, g.RSVPAt, g.ArrivedAt, g.UpdatedAt, g.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "guestID", g.ID)
		return err
	}
	return expectOne(res, "guest", g.ID)
}

func (r *guestRepository) ListByEvent(ctx context.Context, eventID string, status domain.GuestStatus) ([]domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE event_id = $1 AND ($2 = '' OR status = $2) ORDER BY created_at, id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, eventID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []domain.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *g)
	}
	return guests, rows.Err()
}
