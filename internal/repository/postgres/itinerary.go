package postgres

import (
	"context"
	"database/sql"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type itineraryRepository struct {
	db *sql.DB
}

func NewItineraryRepository(db *sql.DB) repository.ItineraryRepository {
	return &itineraryRepository{db: db}
}

const sessionColumns = `id, event_id, title, start_time, end_time, is_mandatory, capacity, current_attendees`

func scanSession(row rowScanner) (*domain.ItinerarySession, error) {
	s := &domain.ItinerarySession{}
	var capacity sql.NullInt64
	err := row.Scan(&s.ID, &s.EventID, &s.Title, &s.StartTime, &s.EndTime, &s.IsMandatory, &capacity, &s.CurrentAttendees)
	if err != nil {
		return nil, err
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		s.Capacity = &c
	}
	return s, nil
}

func (r *itineraryRepository) CreateSession(ctx context.Context, s *domain.ItinerarySession) error {
	query := `INSERT INTO itinerary_sessions (id, event_id, title, start_time, end_time, is_mandatory, capacity, current_attendees)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, s.ID, s.EventID, s.Title, s.StartTime, s.EndTime, s.IsMandatory, s.Capacity, s.CurrentAttendees)
	return err
}

func (r *itineraryRepository) GetSession(ctx context.Context, id string) (*domain.ItinerarySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM itinerary_sessions WHERE id = $1`
	s, err := scanSession(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "session", id)
	}
	return s, nil
}

func (r *itineraryRepository) GetSessionForUpdate(ctx context.Context, id string) (*domain.ItinerarySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM itinerary_sessions WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "itinerary_sessions", "sessionID", id)
	s, err := scanSession(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "session", id)
	}
	return s, nil
}

func (r *itineraryRepository) UpdateSession(ctx context.Context, s *domain.ItinerarySession) error {
	query := `UPDATE itinerary_sessions SET title = $1, start_time = $2, end_time = $3, is_mandatory = $4,
	              capacity = $5, current_attendees = $6
	          WHERE id = $7`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, s.Title, s.StartTime, s.EndTime, s.IsMandatory, s.Capacity, s.CurrentAttendees, s.ID)
	if err != nil {
		return err
	}
	return expectOne(res, "session", s.ID)
}

func (r *itineraryRepository) ListSessions(ctx context.Context, eventID string) ([]domain.ItinerarySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM itinerary_sessions WHERE event_id = $1 ORDER BY start_time, id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.ItinerarySession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *itineraryRepository) ListRegistrationsByGuest(ctx context.Context, guestID string) ([]domain.ItineraryRegistration, error) {
	query := `SELECT id, guest_id, session_id, created_at FROM itinerary_registrations WHERE guest_id = $1 ORDER BY created_at`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []domain.ItineraryRegistration
	for rows.Next() {
		var reg domain.ItineraryRegistration
		if err := rows.Scan(&reg.ID, &reg.GuestID, &reg.SessionID, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *itineraryRepository) CreateRegistration(ctx context.Context, reg *domain.ItineraryRegistration) error {
	query := `INSERT INTO itinerary_registrations (id, guest_id, session_id, created_at) VALUES ($1, $2, $3, $4)`
	logger.DatabaseCall("INSERT", "itinerary_registrations", "guestID", reg.GuestID, "sessionID", reg.SessionID)
	_, err := conn(ctx, r.db).ExecContext(ctx, query, reg.ID, reg.GuestID, reg.SessionID, reg.CreatedAt)
	return err
}

func (r *itineraryRepository) DeleteRegistration(ctx context.Context, guestID, sessionID string) error {
	query := `DELETE FROM itinerary_registrations WHERE guest_id = $1 AND session_id = $2`
	logger.DatabaseCall("DELETE", "itinerary_registrations", "guestID", guestID, "sessionID", sessionID)
	_, err := conn(ctx, r.db).ExecContext(ctx, query, guestID, sessionID)
	return err
}
