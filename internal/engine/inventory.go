package engine

import (
	"fmt"

	"guestflow-backend/internal/domain"
)

type Decision int

const (
	Queued Decision = iota
	Granted
)

func (d Decision) String() string {
	if d == Granted {
		return "granted"
	}
	return "queued"
}

// Promotion is a waitlist entry that received its units during a release.
type Promotion struct {
	Entry domain.WaitlistEntry
}

// InventoryLedger is a working copy of one pool and its waitlist. It performs no
// I/O; callers load the snapshot under a lock, apply operations and persist Pool()
// together with the waitlist changes.
type InventoryLedger struct {
	pool  domain.ResourcePool
	queue *WaitlistQueue
}

func NewInventoryLedger(pool domain.ResourcePool, waitlist []domain.WaitlistEntry) *InventoryLedger {
	return &InventoryLedger{pool: pool, queue: NewWaitlistQueue(waitlist)}
}

func (l *InventoryLedger) Pool() domain.ResourcePool {
	return l.pool
}

func (l *InventoryLedger) Waitlist() *WaitlistQueue {
	return l.queue
}

func (l *InventoryLedger) Available() int {
	return l.pool.Available()
}

// HasWaiting reports whether guests are queued ahead of any new request.
func (l *InventoryLedger) HasWaiting() bool {
	return l.queue.Len() > 0
}

// TryConfirm grants the units iff they fit in the current availability.
// A queued decision leaves the ledger untouched.
func (l *InventoryLedger) TryConfirm(units int) (Decision, error) {
	if units <= 0 {
		return Queued, fmt.Errorf("%w: units must be positive, got %d", domain.ErrInvalidArgument, units)
	}
	if units > l.pool.Available() {
		return Queued, nil
	}
	l.pool.Confirmed += units
	return Granted, nil
}

// Release returns units to the pool and promotes waiting guests.
func (l *InventoryLedger) Release(units int) ([]Promotion, error) {
	if units <= 0 {
		return nil, fmt.Errorf("%w: units must be positive, got %d", domain.ErrInvalidArgument, units)
	}
	if units > l.pool.Confirmed {
		return nil, fmt.Errorf("%w: cannot release %d units, only %d confirmed in pool %s",
			domain.ErrInvalidArgument, units, l.pool.Confirmed, l.pool.ID)
	}
	l.pool.Confirmed -= units
	return l.PromoteNext(), nil
}

// SetBlocked replaces the number of held units, e.g. after the inventory
// provider extends the block. It may not drop below what is already confirmed.
func (l *InventoryLedger) SetBlocked(blocked int) ([]Promotion, error) {
	if blocked < l.pool.Confirmed {
		return nil, fmt.Errorf("%w: blocked %d below confirmed %d in pool %s",
			domain.ErrInvalidArgument, blocked, l.pool.Confirmed, l.pool.ID)
	}
	grew := blocked > l.pool.Blocked
	l.pool.Blocked = blocked
	if !grew {
		return nil, nil
	}
	return l.PromoteNext(), nil
}

// PromoteNext serves the queue head while it fits. It stops at the first entry
// that cannot be satisfied, even when a later, smaller entry would fit.
func (l *InventoryLedger) PromoteNext() []Promotion {
	var promoted []Promotion
	for {
		head, ok := l.queue.Peek()
		if !ok {
			return promoted
		}
		decision, err := l.TryConfirm(head.RequestedSeats)
		if err != nil || decision != Granted {
			return promoted
		}
		promoted = append(promoted, Promotion{Entry: l.queue.pop()})
	}
}

// JoinWaitlist queues an entry for this pool.
func (l *InventoryLedger) JoinWaitlist(entry domain.WaitlistEntry) error {
	if entry.PoolID != l.pool.ID {
		return fmt.Errorf("%w: entry for pool %s offered to pool %s", domain.ErrInvalidArgument, entry.PoolID, l.pool.ID)
	}
	return l.queue.Join(entry)
}

func (l *InventoryLedger) LeaveWaitlist(guestID string) (domain.WaitlistEntry, bool) {
	return l.queue.Remove(guestID)
}
