package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/engine"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type guestService struct {
	tx      repository.Transactor
	events  repository.EventRepository
	labels  repository.LabelRepository
	guests  repository.GuestRepository
	machine *engine.GuestStateMachine
	alloc   *allocator
	outbox  *outbox
	newID   IDSource
}

func NewGuestService(
	tx repository.Transactor,
	events repository.EventRepository,
	labels repository.LabelRepository,
	guests repository.GuestRepository,
	pools repository.PoolRepository,
	effects repository.EffectRepository,
	dispatcher EffectDispatcher,
) GuestService {
	machine := engine.NewGuestStateMachine(time.Now, uuid.NewString)
	return &guestService{
		tx:      tx,
		events:  events,
		labels:  labels,
		guests:  guests,
		machine: machine,
		alloc:   &allocator{pools: pools, guests: guests, machine: machine},
		outbox:  newOutbox(effects, dispatcher),
		newID:   uuid.NewString,
	}
}

func (s *guestService) InviteGuest(ctx context.Context, in NewGuest) (*domain.Guest, error) {
	return s.createGuest(ctx, in, domain.RegistrationSourceInvited)
}

// SelfRegister only admits labels open for registration and a party of one.
// Without a label the event's first open label is used.
func (s *guestService) SelfRegister(ctx context.Context, in NewGuest) (*domain.Guest, error) {
	if in.AllocatedSeats > 1 {
		return nil, fmt.Errorf("%w: self registration is for one seat, got %d", domain.ErrInvalidArgument, in.AllocatedSeats)
	}
	in.AllocatedSeats = 1
	if in.LabelID == "" {
		labels, err := s.labels.ListByEvent(ctx, in.EventID)
		if err != nil {
			return nil, err
		}
		for _, l := range labels {
			if l.OpenRegistration {
				in.LabelID = l.ID
				break
			}
		}
		if in.LabelID == "" {
			return nil, fmt.Errorf("%w: event %s does not accept self registration", domain.ErrUnauthorized, in.EventID)
		}
	} else {
		label, err := s.labels.GetByID(ctx, in.LabelID)
		if err != nil {
			return nil, err
		}
		if !label.OpenRegistration {
			return nil, fmt.Errorf("%w: label %s is not open for self registration", domain.ErrUnauthorized, label.ID)
		}
	}
	return s.createGuest(ctx, in, domain.RegistrationSourceSelfReg)
}

func (s *guestService) createGuest(ctx context.Context, in NewGuest, source domain.RegistrationSource) (*domain.Guest, error) {
	logger.EnterMethod("guestService.createGuest", "eventID", in.EventID, "source", source)
	var g *domain.Guest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		g, err = s.newGuest(ctx, in, source)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("guestService.createGuest", err, "eventID", in.EventID)
		return nil, err
	}
	logger.ExitMethod("guestService.createGuest", "guestID", g.ID)
	return g, nil
}

func (s *guestService) newGuest(ctx context.Context, in NewGuest, source domain.RegistrationSource) (*domain.Guest, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: guest name is required", domain.ErrInvalidArgument)
	}
	seats := in.AllocatedSeats
	if seats == 0 {
		seats = 1
	}
	if seats < 1 {
		return nil, fmt.Errorf("%w: allocated seats must be positive, got %d", domain.ErrInvalidArgument, in.AllocatedSeats)
	}
	if _, err := s.events.GetByID(ctx, in.EventID); err != nil {
		return nil, err
	}
	label, err := s.labels.GetByID(ctx, in.LabelID)
	if err != nil {
		return nil, err
	}
	if label.EventID != in.EventID {
		return nil, fmt.Errorf("%w: label %s belongs to another event", domain.ErrInvalidArgument, label.ID)
	}

	g := &domain.Guest{
		ID:                 s.newID(),
		EventID:            in.EventID,
		LabelID:            in.LabelID,
		Name:               strings.TrimSpace(in.Name),
		Email:              strings.TrimSpace(in.Email),
		Phone:              strings.TrimSpace(in.Phone),
		DeviceToken:        in.DeviceToken,
		Status:             domain.GuestStatusPending,
		AllocatedSeats:     seats,
		WaitlistPriority:   label.Priority,
		RegistrationSource: source,
	}
	if err := s.guests.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// RegisterOnSpot runs creation, confirmation and check-in in one transaction.
func (s *guestService) RegisterOnSpot(ctx context.Context, in NewGuest) (*RSVPResult, error) {
	logger.EnterMethod("guestService.RegisterOnSpot", "eventID", in.EventID)
	var (
		res    *RSVPResult
		staged []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		g, err := s.newGuest(ctx, in, domain.RegistrationSourceOnSpot)
		if err != nil {
			return err
		}
		r, effects, err := s.submitRSVP(ctx, g.ID, domain.RSVPConfirmed, g.AllocatedSeats)
		if err != nil {
			return err
		}
		if !r.Waitlisted {
			t, err := s.machine.CheckIn(r.Guest)
			if err != nil {
				return err
			}
			if err := s.guests.Update(ctx, &t.Guest); err != nil {
				return err
			}
			r.Guest = t.Guest
			effects = append(effects, t.Effects...)
		}
		res = r
		staged, err = s.outbox.stage(ctx, effects)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("guestService.RegisterOnSpot", err, "eventID", in.EventID)
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	logger.ExitMethod("guestService.RegisterOnSpot", "guestID", res.Guest.ID, "status", res.Guest.Status, "waitlisted", res.Waitlisted)
	return res, nil
}

func (s *guestService) SubmitRSVP(ctx context.Context, guestID string, decision domain.RSVPDecision, seats int) (*RSVPResult, error) {
	logger.EnterMethod("guestService.SubmitRSVP", "guestID", guestID, "decision", decision, "seats", seats)
	var (
		res    *RSVPResult
		staged []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, effects, err := s.submitRSVP(ctx, guestID, decision, seats)
		if err != nil {
			return err
		}
		res = r
		staged, err = s.outbox.stage(ctx, effects)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("guestService.SubmitRSVP", err, "guestID", guestID)
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	logger.ExitMethod("guestService.SubmitRSVP", "guestID", guestID, "status", res.Guest.Status, "waitlisted", res.Waitlisted)
	return res, nil
}

// submitRSVP must run inside a transaction. The primary pool is locked before
// the guest when the guest's label consumes primary units.
func (s *guestService) submitRSVP(ctx context.Context, guestID string, decision domain.RSVPDecision, seats int) (*RSVPResult, []domain.Effect, error) {
	peek, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		return nil, nil, err
	}
	label, err := s.labels.GetByID(ctx, peek.LabelID)
	if err != nil {
		return nil, nil, err
	}
	var ledger *engine.InventoryLedger
	if label.RequiresPrimaryUnit {
		if ledger, err = s.alloc.lockPrimary(ctx, peek.EventID); err != nil {
			return nil, nil, err
		}
	}
	g, err := s.guests.GetForUpdate(ctx, guestID)
	if err != nil {
		return nil, nil, err
	}

	t, err := s.machine.SubmitRSVP(engine.RSVPInput{
		Guest:          *g,
		Label:          *label,
		Decision:       decision,
		RequestedSeats: seats,
		Ledger:         ledger,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := t.Guest.CheckInvariants(); err != nil {
		return nil, nil, err
	}
	if err := s.guests.Update(ctx, &t.Guest); err != nil {
		return nil, nil, err
	}
	promoted, err := s.alloc.commit(ctx, ledger, t.Joined, t.Left, t.Promotions)
	if err != nil {
		return nil, nil, err
	}

	res := &RSVPResult{Guest: t.Guest, Waitlisted: t.Waitlisted()}
	outcome := string(t.Guest.Status)
	if t.Joined != nil {
		res.Position = ledger.Waitlist().Position(g.ID)
		outcome = "waitlisted"
	}
	logger.Decision("rsvp", outcome, "guestID", g.ID, "seats", seats, "position", res.Position, "promoted", len(t.Promotions))
	return res, append(t.Effects, promoted...), nil
}

func (s *guestService) CheckIn(ctx context.Context, guestID string) (*domain.Guest, error) {
	logger.EnterMethod("guestService.CheckIn", "guestID", guestID)
	var (
		g      domain.Guest
		staged []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.guests.GetForUpdate(ctx, guestID)
		if err != nil {
			return err
		}
		t, err := s.machine.CheckIn(*current)
		if err != nil {
			return err
		}
		if err := s.guests.Update(ctx, &t.Guest); err != nil {
			return err
		}
		g = t.Guest
		staged, err = s.outbox.stage(ctx, t.Effects)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("guestService.CheckIn", err, "guestID", guestID)
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	logger.ExitMethod("guestService.CheckIn", "guestID", guestID)
	return &g, nil
}

func (s *guestService) MarkNoShow(ctx context.Context, guestID string) (*domain.Guest, error) {
	logger.EnterMethod("guestService.MarkNoShow", "guestID", guestID)
	var (
		g      domain.Guest
		staged []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		peek, err := s.guests.GetByID(ctx, guestID)
		if err != nil {
			return err
		}
		label, err := s.labels.GetByID(ctx, peek.LabelID)
		if err != nil {
			return err
		}
		var ledger *engine.InventoryLedger
		if label.RequiresPrimaryUnit {
			if ledger, err = s.alloc.lockPrimary(ctx, peek.EventID); err != nil {
				return err
			}
		}
		current, err := s.guests.GetForUpdate(ctx, guestID)
		if err != nil {
			return err
		}

		t, err := s.machine.MarkNoShow(engine.NoShowInput{Guest: *current, Label: *label, Ledger: ledger})
		if err != nil {
			return err
		}
		g = t.Guest
		if len(t.Effects) == 0 {
			return nil
		}
		if err := s.guests.Update(ctx, &t.Guest); err != nil {
			return err
		}
		promoted, err := s.alloc.commit(ctx, ledger, nil, t.Left, t.Promotions)
		if err != nil {
			return err
		}
		logger.Decision("no_show", string(g.Status), "guestID", g.ID, "released", current.ConfirmedSeats, "promoted", len(t.Promotions))
		staged, err = s.outbox.stage(ctx, append(t.Effects, promoted...))
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("guestService.MarkNoShow", err, "guestID", guestID)
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	logger.ExitMethod("guestService.MarkNoShow", "guestID", guestID)
	return &g, nil
}

func (s *guestService) GetGuest(ctx context.Context, guestID string) (*domain.Guest, error) {
	return s.guests.GetByID(ctx, guestID)
}

func (s *guestService) ListGuests(ctx context.Context, eventID string, status domain.GuestStatus) ([]domain.Guest, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown guest status %q", domain.ErrInvalidArgument, status)
	}
	return s.guests.ListByEvent(ctx, eventID, status)
}
