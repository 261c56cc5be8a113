package engine

import (
	"fmt"
	"sort"

	"guestflow-backend/internal/domain"
)

// WaitlistQueue keeps the entries of one pool in service order:
// ascending priority, FIFO within a priority.
type WaitlistQueue struct {
	entries []domain.WaitlistEntry
}

func NewWaitlistQueue(entries []domain.WaitlistEntry) *WaitlistQueue {
	q := &WaitlistQueue{entries: append([]domain.WaitlistEntry(nil), entries...)}
	sort.SliceStable(q.entries, func(i, j int) bool {
		return q.entries[i].Before(q.entries[j])
	})
	return q
}

// Join inserts the entry after every entry it ties with. A guest can hold one
// entry per pool.
func (q *WaitlistQueue) Join(entry domain.WaitlistEntry) error {
	if entry.RequestedSeats <= 0 {
		return fmt.Errorf("%w: waitlist entry needs at least one seat", domain.ErrInvalidArgument)
	}
	if q.Contains(entry.GuestID) {
		return fmt.Errorf("%w: guest %s already waiting for pool %s", domain.ErrAlreadyQueued, entry.GuestID, entry.PoolID)
	}
	i := sort.Search(len(q.entries), func(i int) bool {
		return entry.Before(q.entries[i])
	})
	q.entries = append(q.entries, domain.WaitlistEntry{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = entry
	return nil
}

// Remove drops the guest's entry; it reports false when the guest was not queued.
func (q *WaitlistQueue) Remove(guestID string) (domain.WaitlistEntry, bool) {
	for i, e := range q.entries {
		if e.GuestID == guestID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return e, true
		}
	}
	return domain.WaitlistEntry{}, false
}

func (q *WaitlistQueue) Contains(guestID string) bool {
	return q.Position(guestID) > 0
}

// Position is 1-based; 0 means the guest is not queued.
func (q *WaitlistQueue) Position(guestID string) int {
	for i, e := range q.entries {
		if e.GuestID == guestID {
			return i + 1
		}
	}
	return 0
}

func (q *WaitlistQueue) Peek() (domain.WaitlistEntry, bool) {
	if len(q.entries) == 0 {
		return domain.WaitlistEntry{}, false
	}
	return q.entries[0], true
}

func (q *WaitlistQueue) pop() domain.WaitlistEntry {
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head
}

func (q *WaitlistQueue) Len() int {
	return len(q.entries)
}

// Entries returns a copy in service order.
func (q *WaitlistQueue) Entries() []domain.WaitlistEntry {
	return append([]domain.WaitlistEntry(nil), q.entries...)
}
