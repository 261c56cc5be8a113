package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/engine"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type itineraryService struct {
	tx        repository.Transactor
	events    repository.EventRepository
	guests    repository.GuestRepository
	itinerary repository.ItineraryRepository
	scheduler *engine.ItineraryScheduler
	outbox    *outbox
	newID     IDSource
}

func NewItineraryService(
	tx repository.Transactor,
	events repository.EventRepository,
	guests repository.GuestRepository,
	itinerary repository.ItineraryRepository,
	effects repository.EffectRepository,
	dispatcher EffectDispatcher,
) ItineraryService {
	return &itineraryService{
		tx:        tx,
		events:    events,
		guests:    guests,
		itinerary: itinerary,
		scheduler: engine.NewItineraryScheduler(time.Now, uuid.NewString),
		outbox:    newOutbox(effects, dispatcher),
		newID:     uuid.NewString,
	}
}

func (s *itineraryService) CreateSession(ctx context.Context, session *domain.ItinerarySession) error {
	if strings.TrimSpace(session.Title) == "" {
		return fmt.Errorf("%w: session title is required", domain.ErrInvalidArgument)
	}
	if !session.StartTime.Before(session.EndTime) {
		return fmt.Errorf("%w: session must end after it starts", domain.ErrInvalidArgument)
	}
	if session.Capacity != nil && *session.Capacity < 0 {
		return fmt.Errorf("%w: negative capacity", domain.ErrInvalidArgument)
	}
	if _, err := s.events.GetByID(ctx, session.EventID); err != nil {
		return err
	}
	if session.ID == "" {
		session.ID = s.newID()
	}
	session.CurrentAttendees = 0
	return s.itinerary.CreateSession(ctx, session)
}

func (s *itineraryService) ListSessions(ctx context.Context, eventID string) ([]domain.ItinerarySession, error) {
	return s.itinerary.ListSessions(ctx, eventID)
}

func (s *itineraryService) Register(ctx context.Context, guestID, sessionID string) (*engine.Registration, error) {
	logger.EnterMethod("itineraryService.Register", "guestID", guestID, "sessionID", sessionID)
	var (
		reg    engine.Registration
		staged []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.lockSessions(ctx, []string{sessionID})
		if err != nil {
			return err
		}
		schedule, err := s.lockSchedule(ctx, guestID)
		if err != nil {
			return err
		}
		reg, err = s.scheduler.Register(schedule, locked[sessionID])
		if err != nil {
			return err
		}
		if err := s.persist(ctx, reg); err != nil {
			return err
		}
		staged, err = s.outbox.stage(ctx, reg.Effects)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("itineraryService.Register", err, "guestID", guestID, "sessionID", sessionID)
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	logger.ExitMethod("itineraryService.Register", "guestID", guestID, "sessionID", sessionID, "implicit", reg.Implicit)
	return &reg, nil
}

func (s *itineraryService) Unregister(ctx context.Context, guestID, sessionID string) (*engine.Registration, error) {
	logger.EnterMethod("itineraryService.Unregister", "guestID", guestID, "sessionID", sessionID)
	var (
		reg    engine.Registration
		staged []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.lockSessions(ctx, []string{sessionID})
		if err != nil {
			return err
		}
		g, err := s.guests.GetForUpdate(ctx, guestID)
		if err != nil {
			return err
		}
		schedule, err := s.schedule(ctx, g)
		if err != nil {
			return err
		}
		reg = s.scheduler.Unregister(schedule, locked[sessionID])
		if err := s.persist(ctx, reg); err != nil {
			return err
		}
		staged, err = s.outbox.stage(ctx, reg.Effects)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("itineraryService.Unregister", err, "guestID", guestID, "sessionID", sessionID)
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	logger.ExitMethod("itineraryService.Unregister", "guestID", guestID, "sessionID", sessionID, "removed", reg.Removed != nil)
	return &reg, nil
}

// SwitchSession commits the unregistrations even when registering into the
// target fails; that failure is returned alongside the partial result.
func (s *itineraryService) SwitchSession(ctx context.Context, guestID string, fromSessionIDs []string, toSessionID string) (*engine.SwitchResult, error) {
	logger.EnterMethod("itineraryService.SwitchSession", "guestID", guestID, "from", fromSessionIDs, "to", toSessionID)
	if slices.Contains(fromSessionIDs, toSessionID) {
		return nil, fmt.Errorf("%w: cannot switch session %s into itself", domain.ErrInvalidArgument, toSessionID)
	}
	var (
		res         engine.SwitchResult
		registerErr error
		staged      []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.lockSessions(ctx, append(slices.Clone(fromSessionIDs), toSessionID))
		if err != nil {
			return err
		}
		schedule, err := s.lockSchedule(ctx, guestID)
		if err != nil {
			return err
		}
		from := make([]domain.ItinerarySession, 0, len(fromSessionIDs))
		for _, id := range fromSessionIDs {
			from = append(from, locked[id])
		}

		res, registerErr = s.scheduler.SwitchSession(schedule, from, locked[toSessionID])
		var effects []domain.Effect
		for _, u := range res.Unregistered {
			if err := s.persist(ctx, u); err != nil {
				return err
			}
			effects = append(effects, u.Effects...)
		}
		if res.Registered != nil {
			if err := s.persist(ctx, *res.Registered); err != nil {
				return err
			}
			effects = append(effects, res.Registered.Effects...)
		}
		staged, err = s.outbox.stage(ctx, effects)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("itineraryService.SwitchSession", err, "guestID", guestID)
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	if registerErr != nil {
		logger.ExitMethodWithError("itineraryService.SwitchSession", registerErr, "guestID", guestID, "unregistered", len(res.Unregistered))
		return &res, registerErr
	}
	logger.ExitMethod("itineraryService.SwitchSession", "guestID", guestID, "to", toSessionID)
	return &res, nil
}

// lockSessions locks the distinct sessions in ascending id order.
func (s *itineraryService) lockSessions(ctx context.Context, ids []string) (map[string]domain.ItinerarySession, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	locked := make(map[string]domain.ItinerarySession, len(ids))
	for _, id := range ids {
		sess, err := s.itinerary.GetSessionForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = *sess
	}
	return locked, nil
}

// lockSchedule locks the guest and loads their schedule. Guests who declined
// or did not show up cannot book sessions.
func (s *itineraryService) lockSchedule(ctx context.Context, guestID string) (*engine.GuestSchedule, error) {
	g, err := s.guests.GetForUpdate(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if g.Status == domain.GuestStatusDeclined || g.Status == domain.GuestStatusNoShow {
		return nil, fmt.Errorf("%w: guest %s is %s", domain.ErrInvalidTransition, g.ID, g.Status)
	}
	return s.schedule(ctx, g)
}

func (s *itineraryService) schedule(ctx context.Context, g *domain.Guest) (*engine.GuestSchedule, error) {
	regs, err := s.itinerary.ListRegistrationsByGuest(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.itinerary.ListSessions(ctx, g.EventID)
	if err != nil {
		return nil, err
	}
	return engine.NewGuestSchedule(g.ID, g.EventID, regs, sessions), nil
}

func (s *itineraryService) persist(ctx context.Context, reg engine.Registration) error {
	switch {
	case reg.Created != nil:
		if err := s.itinerary.CreateRegistration(ctx, reg.Created); err != nil {
			return err
		}
	case reg.Removed != nil:
		if err := s.itinerary.DeleteRegistration(ctx, reg.Removed.GuestID, reg.Removed.SessionID); err != nil {
			return err
		}
	default:
		return nil
	}
	session := reg.Session
	return s.itinerary.UpdateSession(ctx, &session)
}
