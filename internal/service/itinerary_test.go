package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/domain"
)

func seedSessions(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	day := time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC)
	one := 1
	for _, s := range []domain.ItinerarySession{
		{ID: "x", EventID: "evt-1", Title: "Yoga", StartTime: day.Add(10 * time.Hour), EndTime: day.Add(11 * time.Hour)},
		{ID: "y", EventID: "evt-1", Title: "Brunch", StartTime: day.Add(10*time.Hour + 30*time.Minute), EndTime: day.Add(11*time.Hour + 30*time.Minute), Capacity: &one},
		{ID: "z", EventID: "evt-1", Title: "Ceremony", StartTime: day.Add(10 * time.Hour), EndTime: day.Add(12 * time.Hour), IsMandatory: true},
	} {
		require.NoError(t, f.itinerary.CreateSession(ctx, &s))
	}
}

func attendees(t *testing.T, f *fixture, id string) int {
	t.Helper()
	sessions, err := f.itinerary.ListSessions(context.Background(), "evt-1")
	require.NoError(t, err)
	for _, s := range sessions {
		if s.ID == id {
			return s.CurrentAttendees
		}
	}
	t.Fatalf("session %s not found", id)
	return 0
}

func TestItineraryService_CreateSession(t *testing.T) {
	f := newFixture(t, 1)
	now := time.Now()
	err := f.itinerary.CreateSession(context.Background(), &domain.ItinerarySession{EventID: "evt-1", Title: "Backwards", StartTime: now, EndTime: now.Add(-time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestItineraryService_Register(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	seedSessions(t, f)
	g := f.invite(t, "ana", "local", 1)

	t.Run("Success", func(t *testing.T) {
		reg, err := f.itinerary.Register(ctx, g.ID, "x")
		require.NoError(t, err)
		require.NotNil(t, reg.Created)
		assert.Equal(t, 1, attendees(t, f, "x"))
	})

	t.Run("Overlap names the conflicting session", func(t *testing.T) {
		_, err := f.itinerary.Register(ctx, g.ID, "y")
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Len(t, conflict.Conflicts, 1)
		assert.Equal(t, "x", conflict.Conflicts[0].ID)
		assert.Equal(t, 0, attendees(t, f, "y"))
	})

	t.Run("Mandatory is implicit", func(t *testing.T) {
		reg, err := f.itinerary.Register(ctx, g.ID, "z")
		require.NoError(t, err)
		assert.True(t, reg.Implicit)
		assert.Nil(t, reg.Created)
		assert.Equal(t, 0, attendees(t, f, "z"))
	})

	t.Run("Twice", func(t *testing.T) {
		_, err := f.itinerary.Register(ctx, g.ID, "x")
		assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
	})

	t.Run("Full", func(t *testing.T) {
		other := f.invite(t, "ben", "local", 1)
		_, err := f.itinerary.Register(ctx, other.ID, "y")
		require.NoError(t, err)
		third := f.invite(t, "cleo", "local", 1)
		_, err = f.itinerary.Register(ctx, third.ID, "y")
		assert.ErrorIs(t, err, domain.ErrFull)
	})

	t.Run("Declined guest", func(t *testing.T) {
		d := f.invite(t, "dan", "local", 1)
		_, err := f.guests.SubmitRSVP(ctx, d.ID, domain.RSVPDeclined, 0)
		require.NoError(t, err)
		_, err = f.itinerary.Register(ctx, d.ID, "x")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestItineraryService_Unregister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	seedSessions(t, f)
	g := f.invite(t, "ana", "local", 1)
	_, err := f.itinerary.Register(ctx, g.ID, "x")
	require.NoError(t, err)

	reg, err := f.itinerary.Unregister(ctx, g.ID, "x")
	require.NoError(t, err)
	assert.NotNil(t, reg.Removed)
	assert.Equal(t, 0, attendees(t, f, "x"))

	reg, err = f.itinerary.Unregister(ctx, g.ID, "x")
	require.NoError(t, err)
	assert.Nil(t, reg.Removed)
	assert.Equal(t, 0, attendees(t, f, "x"))
}

func TestItineraryService_SwitchSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t, 1)
		seedSessions(t, f)
		g := f.invite(t, "ana", "local", 1)
		_, err := f.itinerary.Register(ctx, g.ID, "x")
		require.NoError(t, err)

		res, err := f.itinerary.SwitchSession(ctx, g.ID, []string{"x"}, "y")
		require.NoError(t, err)
		require.NotNil(t, res.Registered)
		assert.Equal(t, 0, attendees(t, f, "x"))
		assert.Equal(t, 1, attendees(t, f, "y"))
	})

	t.Run("Failed register keeps the unregistrations", func(t *testing.T) {
		f := newFixture(t, 1)
		seedSessions(t, f)
		other := f.invite(t, "ben", "local", 1)
		_, err := f.itinerary.Register(ctx, other.ID, "y")
		require.NoError(t, err)
		g := f.invite(t, "ana", "local", 1)
		_, err = f.itinerary.Register(ctx, g.ID, "x")
		require.NoError(t, err)

		res, err := f.itinerary.SwitchSession(ctx, g.ID, []string{"x"}, "y")
		assert.ErrorIs(t, err, domain.ErrFull)
		require.NotNil(t, res)
		assert.Len(t, res.Unregistered, 1)
		assert.Nil(t, res.Registered)
		assert.Equal(t, 0, attendees(t, f, "x"))
		assert.Equal(t, 1, attendees(t, f, "y"))
	})

	t.Run("Into itself", func(t *testing.T) {
		f := newFixture(t, 1)
		seedSessions(t, f)
		g := f.invite(t, "ana", "local", 1)
		_, err := f.itinerary.SwitchSession(ctx, g.ID, []string{"x"}, "x")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}
