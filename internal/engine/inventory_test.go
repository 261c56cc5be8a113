package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/domain"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func pool(blocked, confirmed int) domain.ResourcePool {
	return domain.ResourcePool{ID: "pool-1", EventID: "evt-1", Kind: domain.PoolKindRooms, IsPrimary: true, Blocked: blocked, Confirmed: confirmed}
}

func entry(guestID string, priority, seats int, joinedOffset time.Duration) domain.WaitlistEntry {
	return domain.WaitlistEntry{
		ID:             "wl-" + guestID,
		PoolID:         "pool-1",
		GuestID:        guestID,
		Priority:       priority,
		RequestedSeats: seats,
		JoinedAt:       t0.Add(joinedOffset),
	}
}

func TestInventoryLedger_TryConfirm(t *testing.T) {
	t.Run("Granted when units fit", func(t *testing.T) {
		l := NewInventoryLedger(pool(5, 3), nil)
		d, err := l.TryConfirm(2)
		require.NoError(t, err)
		assert.Equal(t, Granted, d)
		assert.Equal(t, 0, l.Available())
		assert.Equal(t, 5, l.Pool().Confirmed)
	})

	t.Run("Queued without mutation", func(t *testing.T) {
		l := NewInventoryLedger(pool(5, 4), nil)
		d, err := l.TryConfirm(2)
		require.NoError(t, err)
		assert.Equal(t, Queued, d)
		assert.Equal(t, 4, l.Pool().Confirmed)
	})

	t.Run("Rejects non-positive units", func(t *testing.T) {
		l := NewInventoryLedger(pool(5, 0), nil)
		_, err := l.TryConfirm(0)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestInventoryLedger_AvailabilityInvariant(t *testing.T) {
	l := NewInventoryLedger(pool(4, 0), nil)
	ops := []struct {
		confirm bool
		units   int
	}{
		{true, 3}, {true, 2}, {false, 1}, {true, 2}, {false, 3}, {true, 1}, {true, 4}, {false, 2},
	}
	for _, op := range ops {
		if op.confirm {
			_, err := l.TryConfirm(op.units)
			require.NoError(t, err)
		} else {
			_, err := l.Release(op.units)
			require.NoError(t, err)
		}
		p := l.Pool()
		assert.Equal(t, p.Blocked-p.Confirmed, l.Available())
		assert.GreaterOrEqual(t, l.Available(), 0)
		assert.NoError(t, p.CheckInvariants())
	}
}

func TestInventoryLedger_ReleaseMoreThanConfirmed(t *testing.T) {
	l := NewInventoryLedger(pool(4, 1), nil)
	_, err := l.Release(2)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, 1, l.Pool().Confirmed)
}

func TestInventoryLedger_PromotionOrder(t *testing.T) {
	// Joined in order with priorities [2, 1, 1].
	l := NewInventoryLedger(pool(3, 3), nil)
	require.NoError(t, l.JoinWaitlist(entry("g1", 2, 1, 0)))
	require.NoError(t, l.JoinWaitlist(entry("g2", 1, 1, time.Minute)))
	require.NoError(t, l.JoinWaitlist(entry("g3", 1, 1, 2*time.Minute)))

	var order []string
	for i := 0; i < 3; i++ {
		promoted, err := l.Release(1)
		require.NoError(t, err)
		require.Len(t, promoted, 1)
		order = append(order, promoted[0].Entry.GuestID)
	}
	assert.Equal(t, []string{"g2", "g3", "g1"}, order)
	assert.Equal(t, 0, l.Waitlist().Len())
	assert.Equal(t, 0, l.Available())
}

func TestInventoryLedger_SameInstantKeepsJoinOrder(t *testing.T) {
	first := entry("first", 1, 1, 0)
	first.ID = "zzz"
	second := entry("second", 1, 1, 0)
	second.ID = "aaa"

	l := NewInventoryLedger(pool(1, 1), nil)
	require.NoError(t, l.JoinWaitlist(first))
	require.NoError(t, l.JoinWaitlist(second))
	assert.Equal(t, 1, l.Waitlist().Position("first"))

	promoted, err := l.Release(1)
	require.NoError(t, err)
	require.Len(t, promoted, 1)
	assert.Equal(t, "first", promoted[0].Entry.GuestID)
}

func TestWaitlistQueue_StoredSequenceBreaksTies(t *testing.T) {
	early := entry("early", 1, 1, 0)
	early.ID, early.Seq = "zzz", 3
	late := entry("late", 1, 1, 0)
	late.ID, late.Seq = "aaa", 9

	q := NewWaitlistQueue([]domain.WaitlistEntry{late, early})
	assert.Equal(t, 1, q.Position("early"))

	require.NoError(t, q.Join(entry("newcomer", 1, 1, 0)))
	assert.Equal(t, 3, q.Position("newcomer"))
}

func TestInventoryLedger_NoSkipAhead(t *testing.T) {
	l := NewInventoryLedger(pool(5, 5), []domain.WaitlistEntry{
		entry("big", 1, 3, 0),
		entry("small", 1, 1, time.Minute),
	})

	promoted, err := l.Release(2)
	require.NoError(t, err)
	assert.Empty(t, promoted, "a later, smaller request must not overtake the head")
	assert.Equal(t, 2, l.Available())
	assert.Equal(t, 1, l.Waitlist().Position("big"))

	promoted, err = l.Release(1)
	require.NoError(t, err)
	require.Len(t, promoted, 1)
	assert.Equal(t, "big", promoted[0].Entry.GuestID)
	assert.Equal(t, 0, l.Available())
	assert.Equal(t, 1, l.Waitlist().Position("small"))
}

func TestInventoryLedger_ReleasePromotesSeveral(t *testing.T) {
	l := NewInventoryLedger(pool(4, 4), []domain.WaitlistEntry{
		entry("a", 1, 1, 0),
		entry("b", 1, 2, time.Minute),
		entry("c", 2, 2, 0),
	})
	promoted, err := l.Release(4)
	require.NoError(t, err)
	require.Len(t, promoted, 2)
	assert.Equal(t, "a", promoted[0].Entry.GuestID)
	assert.Equal(t, "b", promoted[1].Entry.GuestID)
	assert.Equal(t, 1, l.Available())
	assert.Equal(t, 1, l.Waitlist().Position("c"))
}

func TestInventoryLedger_SetBlocked(t *testing.T) {
	t.Run("Growth promotes", func(t *testing.T) {
		l := NewInventoryLedger(pool(2, 2), []domain.WaitlistEntry{entry("a", 1, 2, 0)})
		promoted, err := l.SetBlocked(4)
		require.NoError(t, err)
		require.Len(t, promoted, 1)
		assert.Equal(t, 4, l.Pool().Confirmed)
	})

	t.Run("Cannot drop below confirmed", func(t *testing.T) {
		l := NewInventoryLedger(pool(5, 3), nil)
		_, err := l.SetBlocked(2)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Equal(t, 5, l.Pool().Blocked)
	})

	t.Run("Shrink keeps queue", func(t *testing.T) {
		l := NewInventoryLedger(pool(5, 3), []domain.WaitlistEntry{entry("a", 1, 3, 0)})
		promoted, err := l.SetBlocked(3)
		require.NoError(t, err)
		assert.Empty(t, promoted)
		assert.Equal(t, 1, l.Waitlist().Len())
	})
}

func TestInventoryLedger_JoinWaitlistTwice(t *testing.T) {
	l := NewInventoryLedger(pool(1, 1), nil)
	require.NoError(t, l.JoinWaitlist(entry("a", 1, 1, 0)))
	err := l.JoinWaitlist(entry("a", 1, 1, time.Minute))
	assert.ErrorIs(t, err, domain.ErrAlreadyQueued)
	assert.Equal(t, 1, l.Waitlist().Len())
}

func TestInventoryLedger_ConcurrentTryConfirm(t *testing.T) {
	const n, k = 50, 7
	l := NewInventoryLedger(pool(k, 0), nil)
	locker := NewKeyLocker()
	poolID := l.Pool().ID

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		queued  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var d Decision
			err := locker.Do(poolID, func() error {
				var err error
				d, err = l.TryConfirm(1)
				return err
			})
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			if d == Granted {
				granted++
			} else {
				queued++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, k, granted)
	assert.Equal(t, n-k, queued)
	assert.Equal(t, 0, l.Available())
}

func TestKeyLocker_IndependentKeys(t *testing.T) {
	locker := NewKeyLocker()
	unlockA := locker.Lock("a")
	done := make(chan struct{})
	go func() {
		defer close(done)
		unlock := locker.Lock("b")
		unlock()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
	unlockA()
	assert.Empty(t, locker.locks, fmt.Sprintf("idle keys should be dropped, have %d", len(locker.locks)))
}
