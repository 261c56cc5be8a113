package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_AgentToken(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateAgentToken("agent-1", "agent@example.com", []string{"evt-1", "evt-2"})
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAgent, claims.Role)
	assert.Equal(t, "agent-1", claims.Subject)
	assert.True(t, claims.CanAccessEvent("evt-2"))
	assert.False(t, claims.CanAccessEvent("evt-3"))
	assert.True(t, claims.CanActAsGuest("anyone"))
}

func TestTokenManager_GuestToken(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateGuestToken("g1", "evt-1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleGuest, claims.Role)
	assert.True(t, claims.CanActAsGuest("g1"))
	assert.False(t, claims.CanActAsGuest("g2"))
	assert.True(t, claims.CanAccessEvent("evt-1"))
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, time.Hour)

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Hour, time.Hour)
		token, err := other.GenerateGuestToken("g1", "evt-1")
		require.NoError(t, err)
		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		past := NewTokenManager("test-secret", time.Minute, time.Minute).(*tokenManager)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.GenerateAgentToken("agent-1", "a@example.com", nil)
		require.NoError(t, err)
		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
