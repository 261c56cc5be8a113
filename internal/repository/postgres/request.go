package postgres

import (
	"context"
	"database/sql"
	"time"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type requestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) repository.RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `id, event_id, guest_id, perk_id, COALESCE(type, ''), quantity, budget_consumed_cents, status,
	forwarded_at, COALESCE(reviewed_by, ''), COALESCE(review_note, ''), created_at, updated_at`

func scanRequest(row rowScanner) (*domain.GuestRequest, error) {
	req := &domain.GuestRequest{}
	err := row.Scan(&req.ID, &req.EventID, &req.GuestID, &req.PerkID, &req.Type, &req.Quantity, &req.BudgetConsumedCents,
		&req.Status, &req.ForwardedAt, &req.ReviewedBy, &req.ReviewNote, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) Create(ctx context.Context, req *domain.GuestRequest) error {
	logger.EnterMethod("requestRepository.Create", "guestID", req.GuestID, "perkID", req.PerkID, "status", req.Status)

	query := `INSERT INTO guest_requests (id, event_id, guest_id, perk_id, type, quantity, budget_consumed_cents, status,
	              forwarded_at, reviewed_by, review_note, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
		req.UpdatedAt = req.CreatedAt
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, query, req.ID, req.EventID, req.GuestID, req.PerkID, req.Type, req.Quantity,
		req.BudgetConsumedCents, req.Status, req.ForwardedAt, req.ReviewedBy, req.ReviewNote, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		logger.ExitMethodWithError("requestRepository.Create", err, "requestID", req.ID)
		return err
	}
	logger.ExitMethod("requestRepository.Create", "requestID", req.ID)
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.GuestRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM guest_requests WHERE id = $1`
	req, err := scanRequest(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "request", id)
	}
	return req, nil
}

func (r *requestRepository) GetForUpdate(ctx context.Context, id string) (*domain.GuestRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM guest_requests WHERE id = $1 FOR UPDATE`
	req, err := scanRequest(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "request", id)
	}
	return req, nil
}

func (r *requestRepository) Update(ctx context.Context, req *domain.GuestRequest) error {
	query := `UPDATE guest_requests SET status = $1, forwarded_at = $2, reviewed_by = $3, review_note = $4, updated_at = $5
	          WHERE id = $6`
	logger.DatabaseCall("UPDATE", "guest_requests", "requestID", req.ID, "status", req.Status)
	res, err := conn(ctx, r.db).ExecContext(ctx, query, req.Status, req.ForwardedAt, req.ReviewedBy, req.ReviewNote, req.UpdatedAt, req.ID)
	if err != nil {
		return err
	}
	return expectOne(res, "request", req.ID)
}

func (r *requestRepository) ListByGuest(ctx context.Context, guestID string) ([]domain.GuestRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM guest_requests WHERE guest_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, guestID)
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID string, status domain.RequestStatus) ([]domain.GuestRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM guest_requests WHERE event_id = $1 AND ($2 = '' OR status = $2) ORDER BY created_at, id`
	return r.list(ctx, query, eventID, string(status))
}

func (r *requestRepository) list(ctx context.Context, query string, args ...any) ([]domain.GuestRequest, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.GuestRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func (r *requestRepository) CountAwaitingReview(ctx context.Context, eventID string) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM guest_requests WHERE event_id = $1 AND status IN ('pending', 'forwarded_to_client')`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, eventID).Scan(&count)
	return count, err
}
