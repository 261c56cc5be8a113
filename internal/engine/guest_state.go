package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"guestflow-backend/internal/domain"
)

// GuestStateMachine governs guest status transitions. Every method returns the
// new guest value and the effects of the change; nothing is applied in place.
type GuestStateMachine struct {
	now   func() time.Time
	newID func() string
}

// NewGuestStateMachine uses time.Now and random UUIDs when now or newID is nil.
func NewGuestStateMachine(now func() time.Time, newID func() string) *GuestStateMachine {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &GuestStateMachine{now: now, newID: newID}
}

type RSVPInput struct {
	Guest          domain.Guest
	Label          domain.Label
	Decision       domain.RSVPDecision
	RequestedSeats int
	// Ledger is the event's primary pool. Required when the label needs a
	// primary unit or the guest is currently waitlisted.
	Ledger *InventoryLedger
}

// Transition is the outcome of one guest operation.
type Transition struct {
	Guest      domain.Guest
	Effects    []domain.Effect
	Joined     *domain.WaitlistEntry
	Left       *domain.WaitlistEntry
	Promotions []Promotion
}

func (t Transition) Waitlisted() bool {
	return t.Joined != nil
}

func (m *GuestStateMachine) SubmitRSVP(in RSVPInput) (Transition, error) {
	g := in.Guest
	if g.Status != domain.GuestStatusPending {
		return Transition{}, fmt.Errorf("%w: rsvp from %s", domain.ErrInvalidTransition, g.Status)
	}
	now := m.now()

	switch in.Decision {
	case domain.RSVPDeclined:
		return m.decline(g, in.Ledger, now)
	case domain.RSVPConfirmed:
		return m.confirm(g, in, now)
	default:
		return Transition{}, fmt.Errorf("%w: unknown rsvp decision %q", domain.ErrInvalidArgument, in.Decision)
	}
}

func (m *GuestStateMachine) decline(g domain.Guest, ledger *InventoryLedger, now time.Time) (Transition, error) {
	var t Transition
	if g.IsOnWaitlist {
		if err := m.leaveWaitlist(&t, g, ledger); err != nil {
			return Transition{}, err
		}
	}
	g.Status = domain.GuestStatusDeclined
	g.ConfirmedSeats = 0
	g.RequestedSeats = 0
	g.IsOnWaitlist = false
	g.RSVPAt = &now
	g.UpdatedAt = now

	t.Guest = g
	t.Effects = append(t.Effects, guestEffect(domain.EffectGuestDeclined, g, "", 0))
	return t, nil
}

func (m *GuestStateMachine) confirm(g domain.Guest, in RSVPInput, now time.Time) (Transition, error) {
	seats := in.RequestedSeats
	if seats < 1 || seats > g.AllocatedSeats {
		return Transition{}, fmt.Errorf("%w: requested %d seats, allowed 1..%d", domain.ErrInvalidArgument, seats, g.AllocatedSeats)
	}
	if g.IsOnWaitlist {
		return Transition{}, fmt.Errorf("%w: guest %s is already on the waitlist", domain.ErrAlreadyQueued, g.ID)
	}

	if !in.Label.RequiresPrimaryUnit {
		return m.grant(g, seats, now, ""), nil
	}
	ledger := in.Ledger
	if ledger == nil {
		return Transition{}, fmt.Errorf("%w: label %s requires a primary pool", domain.ErrInvalidArgument, in.Label.ID)
	}

	// Guests already queued keep their place; a newcomer never overtakes them.
	if !ledger.HasWaiting() {
		decision, err := ledger.TryConfirm(seats)
		if err != nil {
			return Transition{}, err
		}
		if decision == Granted {
			return m.grant(g, seats, now, ledger.Pool().ID), nil
		}
	}

	entry := domain.WaitlistEntry{
		ID:             m.newID(),
		PoolID:         ledger.Pool().ID,
		GuestID:        g.ID,
		Priority:       in.Label.Priority,
		RequestedSeats: seats,
		JoinedAt:       now,
	}
	if err := ledger.JoinWaitlist(entry); err != nil {
		return Transition{}, err
	}
	g.IsOnWaitlist = true
	g.WaitlistPriority = entry.Priority
	g.RequestedSeats = seats
	g.RSVPAt = &now
	g.UpdatedAt = now

	return Transition{
		Guest:   g,
		Joined:  &entry,
		Effects: []domain.Effect{guestEffect(domain.EffectGuestWaitlisted, g, entry.PoolID, seats)},
	}, nil
}

func (m *GuestStateMachine) grant(g domain.Guest, seats int, now time.Time, poolID string) Transition {
	g.Status = domain.GuestStatusConfirmed
	g.ConfirmedSeats = seats
	g.RequestedSeats = 0
	g.IsOnWaitlist = false
	g.RSVPAt = &now
	g.UpdatedAt = now
	return Transition{
		Guest:   g,
		Effects: []domain.Effect{guestEffect(domain.EffectGuestConfirmed, g, poolID, seats)},
	}
}

// Promote confirms a waitlisted guest whose entry was served by the ledger.
func (m *GuestStateMachine) Promote(g domain.Guest, p Promotion) (Transition, error) {
	if g.ID != p.Entry.GuestID {
		return Transition{}, fmt.Errorf("%w: promotion for %s applied to %s", domain.ErrInvalidArgument, p.Entry.GuestID, g.ID)
	}
	if g.Status != domain.GuestStatusPending || !g.IsOnWaitlist {
		return Transition{}, fmt.Errorf("%w: promote guest in status %s (waitlisted=%t)", domain.ErrInvalidTransition, g.Status, g.IsOnWaitlist)
	}
	if p.Entry.RequestedSeats > g.AllocatedSeats {
		return Transition{}, fmt.Errorf("%w: promotion of %d seats exceeds allocation %d", domain.ErrInvalidArgument, p.Entry.RequestedSeats, g.AllocatedSeats)
	}
	now := m.now()
	g.Status = domain.GuestStatusConfirmed
	g.ConfirmedSeats = p.Entry.RequestedSeats
	g.RequestedSeats = 0
	g.IsOnWaitlist = false
	g.UpdatedAt = now
	return Transition{
		Guest:   g,
		Effects: []domain.Effect{guestEffect(domain.EffectGuestPromoted, g, p.Entry.PoolID, p.Entry.RequestedSeats)},
	}, nil
}

func (m *GuestStateMachine) CheckIn(g domain.Guest) (Transition, error) {
	if g.Status != domain.GuestStatusConfirmed {
		return Transition{}, fmt.Errorf("%w: check-in from %s", domain.ErrInvalidTransition, g.Status)
	}
	now := m.now()
	g.Status = domain.GuestStatusArrived
	g.ArrivedAt = &now
	g.UpdatedAt = now
	return Transition{
		Guest:   g,
		Effects: []domain.Effect{guestEffect(domain.EffectGuestArrived, g, "", g.ConfirmedSeats)},
	}, nil
}

type NoShowInput struct {
	Guest  domain.Guest
	Label  domain.Label
	Ledger *InventoryLedger
}

// MarkNoShow is idempotent on no_show guests. Seats held in the primary pool are
// released, which may promote waiting guests within the same transition.
func (m *GuestStateMachine) MarkNoShow(in NoShowInput) (Transition, error) {
	g := in.Guest
	var t Transition

	switch g.Status {
	case domain.GuestStatusNoShow:
		return Transition{Guest: g}, nil
	case domain.GuestStatusPending:
		if g.IsOnWaitlist {
			if err := m.leaveWaitlist(&t, g, in.Ledger); err != nil {
				return Transition{}, err
			}
		}
	case domain.GuestStatusConfirmed:
		if in.Label.RequiresPrimaryUnit && g.ConfirmedSeats > 0 {
			if in.Ledger == nil {
				return Transition{}, fmt.Errorf("%w: label %s requires a primary pool", domain.ErrInvalidArgument, in.Label.ID)
			}
			promotions, err := in.Ledger.Release(g.ConfirmedSeats)
			if err != nil {
				return Transition{}, err
			}
			t.Promotions = promotions
		}
	case domain.GuestStatusDeclined, domain.GuestStatusArrived:
		return Transition{}, fmt.Errorf("%w: no-show from %s", domain.ErrInvalidTransition, g.Status)
	default:
		return Transition{}, fmt.Errorf("%w: unknown guest status %q", domain.ErrInvalidArgument, g.Status)
	}

	now := m.now()
	released := g.ConfirmedSeats
	g.Status = domain.GuestStatusNoShow
	g.ConfirmedSeats = 0
	g.RequestedSeats = 0
	g.IsOnWaitlist = false
	g.UpdatedAt = now

	t.Guest = g
	t.Effects = append(t.Effects, guestEffect(domain.EffectGuestNoShow, g, "", released))
	return t, nil
}

// leaveWaitlist drops the guest's entry. When the departing guest was the one
// blocking the head of the queue, the guests behind may now fit.
func (m *GuestStateMachine) leaveWaitlist(t *Transition, g domain.Guest, ledger *InventoryLedger) error {
	if ledger == nil {
		return fmt.Errorf("%w: waitlisted guest %s needs its pool", domain.ErrInvalidArgument, g.ID)
	}
	entry, ok := ledger.LeaveWaitlist(g.ID)
	if !ok {
		return nil
	}
	t.Left = &entry
	t.Promotions = ledger.PromoteNext()
	t.Effects = append(t.Effects, guestEffect(domain.EffectWaitlistLeft, g, entry.PoolID, entry.RequestedSeats))
	return nil
}

func guestEffect(kind domain.EffectKind, g domain.Guest, poolID string, seats int) domain.Effect {
	return domain.Effect{
		Kind:    kind,
		EventID: g.EventID,
		GuestID: g.ID,
		PoolID:  poolID,
		Seats:   seats,
	}
}
