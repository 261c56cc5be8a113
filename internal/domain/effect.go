package domain

import (
	"fmt"
	"time"
)

type EffectKind string

const (
	EffectGuestConfirmed       EffectKind = "guest_confirmed"
	EffectGuestWaitlisted      EffectKind = "guest_waitlisted"
	EffectGuestPromoted        EffectKind = "guest_promoted"
	EffectGuestDeclined        EffectKind = "guest_declined"
	EffectGuestArrived         EffectKind = "guest_arrived"
	EffectGuestNoShow          EffectKind = "guest_no_show"
	EffectWaitlistLeft         EffectKind = "waitlist_left"
	EffectRequestApproved      EffectKind = "request_approved"
	EffectRequestPendingReview EffectKind = "request_pending_review"
	EffectRequestForwarded     EffectKind = "request_forwarded"
	EffectRequestRejected      EffectKind = "request_rejected"
	EffectSessionRegistered    EffectKind = "session_registered"
	EffectSessionUnregistered  EffectKind = "session_unregistered"
)

func ParseEffectKind(v string) (EffectKind, error) {
	switch k := EffectKind(v); k {
	case EffectGuestConfirmed, EffectGuestWaitlisted, EffectGuestPromoted, EffectGuestDeclined,
		EffectGuestArrived, EffectGuestNoShow, EffectWaitlistLeft,
		EffectRequestApproved, EffectRequestPendingReview, EffectRequestForwarded, EffectRequestRejected,
		EffectSessionRegistered, EffectSessionUnregistered:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown effect kind %q", ErrInvalidArgument, v)
}

// Effect declares that something happened which the outside world should hear
// about. Decisions produce effects; the dispatcher delivers them after commit.
type Effect struct {
	ID          string     `json:"id"`
	Kind        EffectKind `json:"kind"`
	EventID     string     `json:"event_id"`
	GuestID     string     `json:"guest_id"`
	PoolID      string     `json:"pool_id,omitempty"`
	RequestID   string     `json:"request_id,omitempty"`
	SessionID   string     `json:"session_id,omitempty"`
	Seats       int        `json:"seats,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	Attempts    int        `json:"attempts"`
	LastError   string     `json:"last_error,omitempty"`
	// Channels already delivered on an earlier attempt.
	Channels []Channel `json:"channels,omitempty"`
}

// Channel is one way an effect reaches its guest.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
)

func (e Effect) DeliveredOn(c Channel) bool {
	for _, done := range e.Channels {
		if done == c {
			return true
		}
	}
	return false
}
