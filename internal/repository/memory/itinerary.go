package memory

import (
	"cmp"
	"context"
	"fmt"

	"guestflow-backend/internal/domain"
)

type itineraryRepo struct{ s *Store }

func cloneSession(s domain.ItinerarySession) domain.ItinerarySession {
	if s.Capacity != nil {
		c := *s.Capacity
		s.Capacity = &c
	}
	return s
}

func (r itineraryRepo) CreateSession(ctx context.Context, s *domain.ItinerarySession) error {
	if !insert(ctx, r.s, r.s.sessions, s.ID, cloneSession(*s)) {
		return fmt.Errorf("%w: session %s exists", domain.ErrInvalidArgument, s.ID)
	}
	return nil
}

func (r itineraryRepo) GetSession(ctx context.Context, id string) (*domain.ItinerarySession, error) {
	s, ok := get(r.s, r.s.sessions, id)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	s = cloneSession(s)
	return &s, nil
}

func (r itineraryRepo) GetSessionForUpdate(ctx context.Context, id string) (*domain.ItinerarySession, error) {
	r.s.lockRow(ctx, "session:"+id)
	return r.GetSession(ctx, id)
}

func (r itineraryRepo) UpdateSession(ctx context.Context, s *domain.ItinerarySession) error {
	if _, ok := get(r.s, r.s.sessions, s.ID); !ok {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, s.ID)
	}
	put(ctx, r.s, r.s.sessions, s.ID, cloneSession(*s))
	return nil
}

func (r itineraryRepo) ListSessions(ctx context.Context, eventID string) ([]domain.ItinerarySession, error) {
	sessions := filter(r.s, r.s.sessions,
		func(s domain.ItinerarySession) bool { return s.EventID == eventID },
		func(a, b domain.ItinerarySession) int {
			return cmp.Or(a.StartTime.Compare(b.StartTime), byString(a.ID, b.ID))
		})
	for i := range sessions {
		sessions[i] = cloneSession(sessions[i])
	}
	return sessions, nil
}

func (r itineraryRepo) ListRegistrationsByGuest(ctx context.Context, guestID string) ([]domain.ItineraryRegistration, error) {
	return filter(r.s, r.s.registrations,
		func(reg domain.ItineraryRegistration) bool { return reg.GuestID == guestID },
		func(a, b domain.ItineraryRegistration) int {
			return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), byString(a.SessionID, b.SessionID))
		}), nil
}

func (r itineraryRepo) CreateRegistration(ctx context.Context, reg *domain.ItineraryRegistration) error {
	if !insert(ctx, r.s, r.s.registrations, pairKey(reg.GuestID, reg.SessionID), *reg) {
		return fmt.Errorf("%w: guest %s in session %s", domain.ErrAlreadyRegistered, reg.GuestID, reg.SessionID)
	}
	return nil
}

func (r itineraryRepo) DeleteRegistration(ctx context.Context, guestID, sessionID string) error {
	remove(ctx, r.s, r.s.registrations, pairKey(guestID, sessionID))
	return nil
}
