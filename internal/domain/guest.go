package domain

import (
	"fmt"
	"time"
)

type GuestStatus string

const (
	GuestStatusPending   GuestStatus = "pending"
	GuestStatusConfirmed GuestStatus = "confirmed"
	GuestStatusDeclined  GuestStatus = "declined"
	GuestStatusArrived   GuestStatus = "arrived"
	GuestStatusNoShow    GuestStatus = "no_show"
)

func (s GuestStatus) Valid() bool {
	switch s {
	case GuestStatusPending, GuestStatusConfirmed, GuestStatusDeclined, GuestStatusArrived, GuestStatusNoShow:
		return true
	}
	return false
}

// HoldsSeats reports whether a guest in this status may have confirmed seats.
func (s GuestStatus) HoldsSeats() bool {
	return s == GuestStatusConfirmed || s == GuestStatusArrived
}

func ParseGuestStatus(v string) (GuestStatus, error) {
	s := GuestStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown guest status %q", ErrInvalidArgument, v)
	}
	return s, nil
}

type RegistrationSource string

const (
	RegistrationSourceInvited RegistrationSource = "invited"
	RegistrationSourceOnSpot  RegistrationSource = "on_spot"
	RegistrationSourceSelfReg RegistrationSource = "self_reg"
)

func (s RegistrationSource) Valid() bool {
	switch s {
	case RegistrationSourceInvited, RegistrationSourceOnSpot, RegistrationSourceSelfReg:
		return true
	}
	return false
}

func ParseRegistrationSource(v string) (RegistrationSource, error) {
	s := RegistrationSource(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown registration source %q", ErrInvalidArgument, v)
	}
	return s, nil
}

type RSVPDecision string

const (
	RSVPConfirmed RSVPDecision = "confirmed"
	RSVPDeclined  RSVPDecision = "declined"
)

func ParseRSVPDecision(v string) (RSVPDecision, error) {
	switch d := RSVPDecision(v); d {
	case RSVPConfirmed, RSVPDeclined:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown rsvp decision %q", ErrInvalidArgument, v)
}

// Guest is one invited or registered individual for one event.
type Guest struct {
	ID                 string             `json:"id"`
	EventID            string             `json:"event_id"`
	LabelID            string             `json:"label_id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone"`
	DeviceToken        string             `json:"-"` // push token, empty when the guest has no app install
	Status             GuestStatus        `json:"status"`
	AllocatedSeats     int                `json:"allocated_seats"`
	ConfirmedSeats     int                `json:"confirmed_seats"`
	RequestedSeats     int                `json:"requested_seats"` // seats asked for while waitlisted
	IsOnWaitlist       bool               `json:"is_on_waitlist"`
	WaitlistPriority   int                `json:"waitlist_priority"`
	RegistrationSource RegistrationSource `json:"registration_source"`
	RSVPAt             *time.Time         `json:"rsvp_at,omitempty"`
	ArrivedAt          *time.Time         `json:"arrived_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CheckInvariants verifies the seat and waitlist invariants of a guest record.
func (g *Guest) CheckInvariants() error {
	if g.ConfirmedSeats < 0 || g.ConfirmedSeats > g.AllocatedSeats {
		return fmt.Errorf("guest %s: confirmed seats %d outside [0, %d]", g.ID, g.ConfirmedSeats, g.AllocatedSeats)
	}
	if (g.ConfirmedSeats > 0) != g.Status.HoldsSeats() {
		return fmt.Errorf("guest %s: %d confirmed seats in status %s", g.ID, g.ConfirmedSeats, g.Status)
	}
	if g.IsOnWaitlist && g.Status != GuestStatusPending {
		return fmt.Errorf("guest %s: waitlisted in status %s", g.ID, g.Status)
	}
	return nil
}

// Label is a guest tier (VIP, Family, ...).
type Label struct {
	ID                  string `json:"id"`
	EventID             string `json:"event_id"`
	Name                string `json:"name"`
	Priority            int    `json:"priority"` // 1 = served first
	RequiresPrimaryUnit bool   `json:"requires_primary_unit"`
	// OpenRegistration lets guests pick this label when they register themselves.
	OpenRegistration bool `json:"open_registration"`
}

type Event struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}
