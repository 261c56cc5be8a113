package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository/memory"
	"guestflow-backend/internal/service"
)

type fixture struct {
	store      *memory.Store
	dispatcher *MockDispatcher
	guests     service.GuestService
	inventory  service.InventoryService
	requests   service.RequestService
	itinerary  service.ItineraryService
}

// newFixture seeds event evt-1 with a hotel label (needs a room, priority 1),
// a family label (needs a room, priority 2), a local label (no room) and a
// primary pool holding blocked rooms.
func newFixture(t *testing.T, blocked int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	d := new(MockDispatcher)
	d.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	start := time.Date(2026, 6, 12, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Events().Create(ctx, &domain.Event{ID: "evt-1", Name: "Wedding", StartsAt: start, EndsAt: start.Add(72 * time.Hour)}))
	require.NoError(t, store.Labels().Create(ctx, &domain.Label{ID: "vip", EventID: "evt-1", Name: "VIP", Priority: 1, RequiresPrimaryUnit: true}))
	require.NoError(t, store.Labels().Create(ctx, &domain.Label{ID: "family", EventID: "evt-1", Name: "Family", Priority: 2, RequiresPrimaryUnit: true}))
	require.NoError(t, store.Labels().Create(ctx, &domain.Label{ID: "local", EventID: "evt-1", Name: "Local", Priority: 3, OpenRegistration: true}))
	require.NoError(t, store.Pools().Create(ctx, &domain.ResourcePool{ID: "hotel", EventID: "evt-1", Name: "Hotel block", Kind: domain.PoolKindRooms, IsPrimary: true, Blocked: blocked, NegotiatedRateCents: 12000}))

	return &fixture{
		store:      store,
		dispatcher: d,
		guests:     service.NewGuestService(store.Transactor(), store.Events(), store.Labels(), store.Guests(), store.Pools(), store.Effects(), d),
		inventory:  service.NewInventoryService(store.Transactor(), store.Events(), store.Pools(), store.Guests(), store.Effects(), d),
		requests:   service.NewRequestService(store.Transactor(), store.Guests(), store.Perks(), store.Budgets(), store.Requests(), store.Effects(), d),
		itinerary:  service.NewItineraryService(store.Transactor(), store.Events(), store.Guests(), store.Itinerary(), store.Effects(), d),
	}
}

func (f *fixture) invite(t *testing.T, name, label string, seats int) *domain.Guest {
	t.Helper()
	g, err := f.guests.InviteGuest(context.Background(), service.NewGuest{
		EventID: "evt-1", LabelID: label, Name: name, Email: name + "@example.com", AllocatedSeats: seats,
	})
	require.NoError(t, err)
	return g
}

func (f *fixture) pool(t *testing.T) *domain.ResourcePool {
	t.Helper()
	p, err := f.inventory.GetPool(context.Background(), "hotel")
	require.NoError(t, err)
	return p
}

func (f *fixture) guest(t *testing.T, id string) *domain.Guest {
	t.Helper()
	g, err := f.guests.GetGuest(context.Background(), id)
	require.NoError(t, err)
	return g
}
