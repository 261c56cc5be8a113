package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository/memory"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendEmail(ctx context.Context, to, toName, subject, plainText string) error {
	args := m.Called(ctx, to, toName, subject, plainText)
	return args.Error(0)
}

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, deviceToken string, msg Message) error {
	args := m.Called(ctx, deviceToken, msg)
	return args.Error(0)
}

func seed(t *testing.T, store *memory.Store, g domain.Guest, effects ...domain.Effect) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Guests().Create(ctx, &g))
	require.NoError(t, store.Effects().Enqueue(ctx, effects))
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		store := memory.NewStore()
		e := domain.Effect{ID: "e1", Kind: domain.EffectGuestConfirmed, EventID: "evt-1", GuestID: "g1", Seats: 2, CreatedAt: now}
		seed(t, store, domain.Guest{ID: "g1", EventID: "evt-1", Name: "Ana", Email: "ana@example.com", DeviceToken: "tok"}, e)

		mailer := new(MockMailer)
		pusher := new(MockPusher)
		mailer.On("SendEmail", mock.Anything, "ana@example.com", "Ana", "You're confirmed", mock.AnythingOfType("string")).Return(nil)
		pusher.On("Push", mock.Anything, "tok", mock.AnythingOfType("notify.Message")).Return(nil)

		d := NewDispatcher(store.Guests(), store.Notifications(), store.Effects(), mailer, pusher)
		require.NoError(t, d.Dispatch(ctx, []domain.Effect{e}))

		mailer.AssertExpectations(t)
		pusher.AssertExpectations(t)
		notes, total, err := store.Notifications().List(ctx, "g1", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)
		assert.Equal(t, "guest_confirmed", notes[0].Attributes["kind"])

		undelivered, err := store.Effects().ListUndelivered(ctx, 5, 10)
		require.NoError(t, err)
		assert.Empty(t, undelivered)
	})

	t.Run("Email failure stays in outbox", func(t *testing.T) {
		store := memory.NewStore()
		e := domain.Effect{ID: "e2", Kind: domain.EffectRequestRejected, EventID: "evt-1", GuestID: "g2", RequestID: "r1", CreatedAt: now}
		seed(t, store, domain.Guest{ID: "g2", EventID: "evt-1", Name: "Ben", Email: "ben@example.com"}, e)

		mailer := new(MockMailer)
		mailer.On("SendEmail", mock.Anything, "ben@example.com", "Ben", "Request declined", mock.Anything).Return(errors.New("status 503"))

		d := NewDispatcher(store.Guests(), store.Notifications(), store.Effects(), mailer, nil)
		err := d.Dispatch(ctx, []domain.Effect{e})
		assert.Error(t, err)

		undelivered, err := store.Effects().ListUndelivered(ctx, 5, 10)
		require.NoError(t, err)
		require.Len(t, undelivered, 1)
		assert.Equal(t, 1, undelivered[0].Attempts)
		assert.Contains(t, undelivered[0].LastError, "503")
	})

	t.Run("Redelivery retries only the failed channel", func(t *testing.T) {
		store := memory.NewStore()
		e := domain.Effect{ID: "e4", Kind: domain.EffectGuestConfirmed, EventID: "evt-1", GuestID: "g4", Seats: 1, CreatedAt: now}
		seed(t, store, domain.Guest{ID: "g4", EventID: "evt-1", Name: "Dia", Email: "dia@example.com", DeviceToken: "tok"}, e)

		mailer := new(MockMailer)
		mailer.On("SendEmail", mock.Anything, "dia@example.com", "Dia", mock.Anything, mock.Anything).Return(nil).Once()
		pusher := new(MockPusher)
		pusher.On("Push", mock.Anything, "tok", mock.Anything).Return(errors.New("fcm unavailable")).Once()

		d := NewDispatcher(store.Guests(), store.Notifications(), store.Effects(), mailer, pusher)
		require.Error(t, d.Dispatch(ctx, []domain.Effect{e}))

		undelivered, err := store.Effects().ListUndelivered(ctx, 5, 10)
		require.NoError(t, err)
		require.Len(t, undelivered, 1)
		assert.ElementsMatch(t, []domain.Channel{domain.ChannelInApp, domain.ChannelEmail}, undelivered[0].Channels)

		pusher.On("Push", mock.Anything, "tok", mock.Anything).Return(nil).Once()
		require.NoError(t, d.Dispatch(ctx, undelivered))

		mailer.AssertNumberOfCalls(t, "SendEmail", 1)
		pusher.AssertNumberOfCalls(t, "Push", 2)
		_, total, err := store.Notifications().List(ctx, "g4", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)

		undelivered, err = store.Effects().ListUndelivered(ctx, 5, 10)
		require.NoError(t, err)
		assert.Empty(t, undelivered)
	})

	t.Run("Silent kinds are marked delivered", func(t *testing.T) {
		store := memory.NewStore()
		e := domain.Effect{ID: "e3", Kind: domain.EffectGuestNoShow, EventID: "evt-1", GuestID: "g3", CreatedAt: now}
		seed(t, store, domain.Guest{ID: "g3", EventID: "evt-1", Name: "Cy", Email: "cy@example.com"}, e)

		mailer := new(MockMailer)
		d := NewDispatcher(store.Guests(), store.Notifications(), store.Effects(), mailer, nil)
		require.NoError(t, d.Dispatch(ctx, []domain.Effect{e}))
		mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRender(t *testing.T) {
	g := domain.Guest{Name: "Ana"}
	msg, ok := Render(domain.Effect{Kind: domain.EffectGuestWaitlisted, Seats: 1}, g)
	require.True(t, ok)
	assert.Contains(t, msg.Body, "1 seat")

	msg, ok = Render(domain.Effect{Kind: domain.EffectSessionRegistered, SessionID: "s1"}, g)
	require.True(t, ok)
	assert.Equal(t, "s1", msg.Attributes["session_id"])

	_, ok = Render(domain.Effect{Kind: domain.EffectWaitlistLeft}, g)
	assert.False(t, ok)
}
