package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"guestflow-backend/internal/domain"
)

// ConflictsWith returns the optional sessions in registered that overlap session.
// Mandatory sessions never conflict, whichever side they are on.
func ConflictsWith(session domain.ItinerarySession, registered []domain.ItinerarySession) []domain.ItinerarySession {
	if session.IsMandatory {
		return nil
	}
	var conflicts []domain.ItinerarySession
	for _, other := range registered {
		if other.IsMandatory || other.ID == session.ID {
			continue
		}
		if session.Overlaps(other) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts
}

// ItineraryScheduler registers guests for timed sessions.
type ItineraryScheduler struct {
	now   func() time.Time
	newID func() string
}

func NewItineraryScheduler(now func() time.Time, newID func() string) *ItineraryScheduler {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &ItineraryScheduler{now: now, newID: newID}
}

// GuestSchedule is a guest's current registrations with their sessions.
type GuestSchedule struct {
	GuestID       string
	EventID       string
	Registrations map[string]domain.ItineraryRegistration // by session id
	Sessions      map[string]domain.ItinerarySession      // registered sessions by id
}

func NewGuestSchedule(guestID, eventID string, regs []domain.ItineraryRegistration, sessions []domain.ItinerarySession) *GuestSchedule {
	s := &GuestSchedule{
		GuestID:       guestID,
		EventID:       eventID,
		Registrations: make(map[string]domain.ItineraryRegistration, len(regs)),
		Sessions:      make(map[string]domain.ItinerarySession, len(sessions)),
	}
	for _, r := range regs {
		s.Registrations[r.SessionID] = r
	}
	for _, sess := range sessions {
		if _, ok := s.Registrations[sess.ID]; ok {
			s.Sessions[sess.ID] = sess
		}
	}
	return s
}

func (s *GuestSchedule) registeredSessions() []domain.ItinerarySession {
	out := make([]domain.ItinerarySession, 0, len(s.Sessions))
	for _, sess := range s.Sessions {
		out = append(out, sess)
	}
	return out
}

// Registration is the outcome of a register or unregister call.
type Registration struct {
	Session domain.ItinerarySession
	// Created is the new row; nil for implicit attendance of a mandatory session.
	Created *domain.ItineraryRegistration
	// Removed is the deleted row; nil when nothing was registered.
	Removed  *domain.ItineraryRegistration
	Implicit bool
	Effects  []domain.Effect
}

// Register books the guest into session. Mandatory sessions are attended
// implicitly: no row, no conflict check, no capacity change.
func (sc *ItineraryScheduler) Register(schedule *GuestSchedule, session domain.ItinerarySession) (Registration, error) {
	if session.EventID != schedule.EventID {
		return Registration{}, fmt.Errorf("%w: session %s belongs to another event", domain.ErrInvalidArgument, session.ID)
	}
	if session.IsMandatory {
		return Registration{Session: session, Implicit: true}, nil
	}
	if _, ok := schedule.Registrations[session.ID]; ok {
		return Registration{}, fmt.Errorf("%w: guest %s in session %s", domain.ErrAlreadyRegistered, schedule.GuestID, session.ID)
	}
	if conflicts := ConflictsWith(session, schedule.registeredSessions()); len(conflicts) > 0 {
		return Registration{}, &domain.ConflictError{SessionID: session.ID, Conflicts: conflicts}
	}
	if session.IsFull() {
		return Registration{}, fmt.Errorf("%w: session %s has %d of %d places taken", domain.ErrFull, session.ID, session.CurrentAttendees, *session.Capacity)
	}

	reg := domain.ItineraryRegistration{
		ID:        sc.newID(),
		GuestID:   schedule.GuestID,
		SessionID: session.ID,
		CreatedAt: sc.now(),
	}
	session.CurrentAttendees++
	schedule.Registrations[session.ID] = reg
	schedule.Sessions[session.ID] = session

	return Registration{
		Session: session,
		Created: &reg,
		Effects: []domain.Effect{sessionEffect(domain.EffectSessionRegistered, schedule, session.ID)},
	}, nil
}

// Unregister is idempotent: without a registration it changes nothing.
func (sc *ItineraryScheduler) Unregister(schedule *GuestSchedule, session domain.ItinerarySession) Registration {
	reg, ok := schedule.Registrations[session.ID]
	if !ok {
		return Registration{Session: session}
	}
	if session.CurrentAttendees > 0 {
		session.CurrentAttendees--
	}
	delete(schedule.Registrations, session.ID)
	delete(schedule.Sessions, session.ID)
	return Registration{
		Session: session,
		Removed: &reg,
		Effects: []domain.Effect{sessionEffect(domain.EffectSessionUnregistered, schedule, session.ID)},
	}
}

// SwitchResult lists the steps that were applied. Unregistrations stay applied
// even when the final registration fails; callers needing atomicity must
// register the guest back into the original sessions themselves.
type SwitchResult struct {
	Unregistered []Registration
	Registered   *Registration
}

func (sc *ItineraryScheduler) SwitchSession(schedule *GuestSchedule, from []domain.ItinerarySession, to domain.ItinerarySession) (SwitchResult, error) {
	var res SwitchResult
	for _, s := range from {
		res.Unregistered = append(res.Unregistered, sc.Unregister(schedule, s))
	}
	reg, err := sc.Register(schedule, to)
	if err != nil {
		return res, err
	}
	res.Registered = &reg
	return res, nil
}

func sessionEffect(kind domain.EffectKind, schedule *GuestSchedule, sessionID string) domain.Effect {
	return domain.Effect{
		Kind:      kind,
		EventID:   schedule.EventID,
		GuestID:   schedule.GuestID,
		SessionID: sessionID,
	}
}
