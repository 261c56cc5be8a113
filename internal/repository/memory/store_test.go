package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/domain"
)

func seedPool(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Pools().Create(ctx, &domain.ResourcePool{ID: "pool-1", EventID: "evt-1", Kind: domain.PoolKindRooms, IsPrimary: true, Blocked: 10}))
}

func TestStore_RollbackUndoesWrites(t *testing.T) {
	s := NewStore()
	seedPool(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.Pools().GetForUpdate(ctx, "pool-1")
		require.NoError(t, err)
		p.Confirmed = 4
		require.NoError(t, s.Pools().Update(ctx, p))
		require.NoError(t, s.Pools().AddWaitlistEntry(ctx, &domain.WaitlistEntry{ID: "w1", PoolID: "pool-1", GuestID: "g1", Priority: 1, RequestedSeats: 1}))
		require.NoError(t, s.Guests().Create(ctx, &domain.Guest{ID: "g1", EventID: "evt-1", Status: domain.GuestStatusPending}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.Pools().GetByID(ctx, "pool-1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Confirmed)
	entries, err := s.Pools().ListWaitlist(ctx, "pool-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = s.Guests().GetByID(ctx, "g1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_CommitKeepsWrites(t *testing.T) {
	s := NewStore()
	seedPool(t, s)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.Pools().GetPrimary(ctx, "evt-1", true)
		if err != nil {
			return err
		}
		p.Confirmed = 3
		return s.Pools().Update(ctx, p)
	})
	require.NoError(t, err)

	p, err := s.Pools().GetByID(ctx, "pool-1")
	require.NoError(t, err)
	assert.Equal(t, 7, p.Available())
}

func TestStore_RowLockSerializesTransactions(t *testing.T) {
	s := NewStore()
	seedPool(t, s)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithinTx(ctx, func(ctx context.Context) error {
				p, err := s.Pools().GetForUpdate(ctx, "pool-1")
				if err != nil {
					return err
				}
				time.Sleep(time.Millisecond)
				if p.Available() == 0 {
					return domain.ErrFull
				}
				p.Confirmed++
				return s.Pools().Update(ctx, p)
			})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrFull)
			}
		}()
	}
	wg.Wait()

	p, err := s.Pools().GetByID(ctx, "pool-1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Confirmed)
	assert.Zero(t, s.rows.Len())
}

func TestStore_WaitlistOrderAndDuplicates(t *testing.T) {
	s := NewStore()
	seedPool(t, s)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	repo := s.Pools()
	require.NoError(t, repo.AddWaitlistEntry(ctx, &domain.WaitlistEntry{ID: "w1", PoolID: "pool-1", GuestID: "g1", Priority: 2, RequestedSeats: 1, JoinedAt: t0}))
	require.NoError(t, repo.AddWaitlistEntry(ctx, &domain.WaitlistEntry{ID: "w2", PoolID: "pool-1", GuestID: "g2", Priority: 1, RequestedSeats: 1, JoinedAt: t0.Add(time.Minute)}))
	require.NoError(t, repo.AddWaitlistEntry(ctx, &domain.WaitlistEntry{ID: "w3", PoolID: "pool-1", GuestID: "g3", Priority: 1, RequestedSeats: 1, JoinedAt: t0.Add(2 * time.Minute)}))

	err := repo.AddWaitlistEntry(ctx, &domain.WaitlistEntry{ID: "w4", PoolID: "pool-1", GuestID: "g1", Priority: 1, RequestedSeats: 1})
	assert.ErrorIs(t, err, domain.ErrAlreadyQueued)

	entries, err := repo.ListWaitlist(ctx, "pool-1")
	require.NoError(t, err)
	var order []string
	for _, e := range entries {
		order = append(order, e.GuestID)
	}
	assert.Equal(t, []string{"g2", "g3", "g1"}, order)
}

func TestStore_WaitlistSameInstantKeepsJoinOrder(t *testing.T) {
	s := NewStore()
	seedPool(t, s)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	first := &domain.WaitlistEntry{ID: "zzz", PoolID: "pool-1", GuestID: "first", Priority: 1, RequestedSeats: 1, JoinedAt: t0}
	second := &domain.WaitlistEntry{ID: "aaa", PoolID: "pool-1", GuestID: "second", Priority: 1, RequestedSeats: 1, JoinedAt: t0}
	require.NoError(t, s.Pools().AddWaitlistEntry(ctx, first))
	require.NoError(t, s.Pools().AddWaitlistEntry(ctx, second))
	assert.Less(t, first.Seq, second.Seq)

	entries, err := s.Pools().ListWaitlist(ctx, "pool-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].GuestID)
	assert.Equal(t, "second", entries[1].GuestID)
}

func TestStore_SessionCapacityIsCopied(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	capacity := 5
	sess := &domain.ItinerarySession{ID: "s1", EventID: "evt-1", Capacity: &capacity}
	require.NoError(t, s.Itinerary().CreateSession(ctx, sess))

	capacity = 1
	got, err := s.Itinerary().GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 5, *got.Capacity)
}

func TestStore_NotificationsPaging(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, s.Notifications().Create(ctx, &domain.Notification{ID: id, GuestID: "g1", CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	notes, total, err := s.Notifications().List(ctx, "g1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(3), total)
	require.Len(t, notes, 2)
	assert.Equal(t, "n3", notes[0].ID)

	assert.ErrorIs(t, s.Notifications().MarkAsRead(ctx, "n1", "other"), domain.ErrNotFound)
	assert.NoError(t, s.Notifications().MarkAsRead(ctx, "n1", "g1"))
}
