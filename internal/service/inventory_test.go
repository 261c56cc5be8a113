package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/domain"
)

func TestInventoryService_CreatePool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	t.Run("Success", func(t *testing.T) {
		p := &domain.ResourcePool{EventID: "evt-1", Name: "Flight AI-101", Kind: domain.PoolKindSeats, Blocked: 40, Confirmed: 7}
		require.NoError(t, f.inventory.CreatePool(ctx, p))
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, 0, p.Confirmed)
	})

	t.Run("Second primary pool", func(t *testing.T) {
		err := f.inventory.CreatePool(ctx, &domain.ResourcePool{EventID: "evt-1", Name: "Annex", Kind: domain.PoolKindRooms, IsPrimary: true, Blocked: 3})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Unknown kind", func(t *testing.T) {
		err := f.inventory.CreatePool(ctx, &domain.ResourcePool{EventID: "evt-1", Name: "Bus", Kind: "buses", Blocked: 3})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Unknown event", func(t *testing.T) {
		err := f.inventory.CreatePool(ctx, &domain.ResourcePool{EventID: "evt-9", Name: "Bus", Kind: domain.PoolKindSeats, Blocked: 3})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInventoryService_ConcurrentPrimaryPools(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Events().Create(ctx, &domain.Event{ID: "evt-2", Name: "Offsite", StartsAt: start, EndsAt: start.Add(24 * time.Hour)}))

	const n = 20
	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.inventory.CreatePool(ctx, &domain.ResourcePool{EventID: "evt-2", Name: "Hotel", Kind: domain.PoolKindRooms, IsPrimary: true, Blocked: 5})
			if err == nil {
				created.Add(1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	_, err := f.store.Pools().GetPrimary(ctx, "evt-2", false)
	assert.NoError(t, err)
}

func TestInventoryService_AdjustBlocked(t *testing.T) {
	ctx := context.Background()

	t.Run("Growth promotes in priority order", func(t *testing.T) {
		f := newFixture(t, 1)
		a := f.invite(t, "ana", "vip", 1)
		b := f.invite(t, "ben", "family", 1)
		c := f.invite(t, "cleo", "vip", 1)
		for _, id := range []string{a.ID, b.ID, c.ID} {
			_, err := f.guests.SubmitRSVP(ctx, id, domain.RSVPConfirmed, 1)
			require.NoError(t, err)
		}

		wl, err := f.inventory.GetWaitlist(ctx, "hotel")
		require.NoError(t, err)
		require.Len(t, wl, 2)
		assert.Equal(t, c.ID, wl[0].Entry.GuestID, "vip is served before family")

		p, err := f.inventory.AdjustBlocked(ctx, "hotel", 2)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Available())
		assert.Equal(t, domain.GuestStatusConfirmed, f.guest(t, c.ID).Status)
		assert.True(t, f.guest(t, b.ID).IsOnWaitlist)
	})

	t.Run("Below confirmed", func(t *testing.T) {
		f := newFixture(t, 3)
		g := f.invite(t, "ana", "vip", 2)
		_, err := f.guests.SubmitRSVP(ctx, g.ID, domain.RSVPConfirmed, 2)
		require.NoError(t, err)

		_, err = f.inventory.AdjustBlocked(ctx, "hotel", 1)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Equal(t, 3, f.pool(t).Blocked)
	})

	t.Run("Unknown pool", func(t *testing.T) {
		f := newFixture(t, 3)
		_, err := f.inventory.AdjustBlocked(ctx, "nope", 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInventoryService_Release(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	a := f.invite(t, "ana", "vip", 2)
	b := f.invite(t, "ben", "vip", 2)
	_, err := f.guests.SubmitRSVP(ctx, a.ID, domain.RSVPConfirmed, 2)
	require.NoError(t, err)
	_, err = f.guests.SubmitRSVP(ctx, b.ID, domain.RSVPConfirmed, 1)
	require.NoError(t, err)

	t.Run("Too many units", func(t *testing.T) {
		_, err := f.inventory.Release(ctx, "hotel", 3)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Success", func(t *testing.T) {
		p, err := f.inventory.Release(ctx, "hotel", 1)
		require.NoError(t, err)
		assert.Equal(t, 2, p.Confirmed)
		assert.Equal(t, domain.GuestStatusConfirmed, f.guest(t, b.ID).Status)
	})
}
