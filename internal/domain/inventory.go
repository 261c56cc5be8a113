package domain

import (
	"fmt"
	"time"
)

type PoolKind string

const (
	PoolKindRooms PoolKind = "rooms"
	PoolKindSeats PoolKind = "seats"
)

func ParsePoolKind(v string) (PoolKind, error) {
	switch k := PoolKind(v); k {
	case PoolKindRooms, PoolKindSeats:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown pool kind %q", ErrInvalidArgument, v)
}

// ResourcePool is one shared inventory (hotel rooms, group flight seats) of an event.
// Available is always derived from Blocked and Confirmed.
type ResourcePool struct {
	ID                  string     `json:"id"`
	EventID             string     `json:"event_id"`
	Name                string     `json:"name"`
	Kind                PoolKind   `json:"kind"`
	IsPrimary           bool       `json:"is_primary"`
	Blocked             int        `json:"blocked"`
	Confirmed           int        `json:"confirmed"`
	NegotiatedRateCents int64      `json:"negotiated_rate_cents"`
	ValidFrom           *time.Time `json:"valid_from,omitempty"`
	ValidTo             *time.Time `json:"valid_to,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (p ResourcePool) Available() int {
	return p.Blocked - p.Confirmed
}

func (p ResourcePool) CheckInvariants() error {
	if p.Confirmed < 0 {
		return fmt.Errorf("pool %s: negative confirmed count %d", p.ID, p.Confirmed)
	}
	if p.Available() < 0 {
		return fmt.Errorf("pool %s: negative availability (blocked %d, confirmed %d)", p.ID, p.Blocked, p.Confirmed)
	}
	return nil
}

// WaitlistEntry is a guest waiting for units of one pool.
type WaitlistEntry struct {
	ID             string    `json:"id"`
	PoolID         string    `json:"pool_id"`
	GuestID        string    `json:"guest_id"`
	Priority       int       `json:"priority"`
	RequestedSeats int       `json:"requested_seats"`
	JoinedAt       time.Time `json:"joined_at"`
	// Seq is assigned by the store on insert and grows with every join.
	// Zero means not stored yet.
	Seq int64 `json:"seq"`
}

// Before orders entries by ascending priority, then join time, then join
// sequence. An unstored entry (Seq 0) never sorts before a stored one it ties with.
func (e WaitlistEntry) Before(o WaitlistEntry) bool {
	if e.Priority != o.Priority {
		return e.Priority < o.Priority
	}
	if !e.JoinedAt.Equal(o.JoinedAt) {
		return e.JoinedAt.Before(o.JoinedAt)
	}
	if e.Seq == 0 || o.Seq == 0 {
		return false
	}
	return e.Seq < o.Seq
}
