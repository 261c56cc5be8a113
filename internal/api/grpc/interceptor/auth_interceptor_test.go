package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"guestflow-backend/internal/security"
)

func TestAuthInterceptor(t *testing.T) {
	tm := security.NewTokenManager("secret", time.Hour, time.Hour)
	unary := NewAuthInterceptor(tm).Unary()

	agentToken, err := tm.GenerateAgentToken("agent-1", "a@example.com", []string{"evt-1"})
	require.NoError(t, err)
	guestToken, err := tm.GenerateGuestToken("guest-1", "evt-1")
	require.NoError(t, err)

	var seen *security.Claims
	handler := func(ctx context.Context, req any) (any, error) {
		seen, _ = security.FromContext(ctx)
		return "ok", nil
	}
	invoke := func(method, token string) error {
		seen = nil
		ctx := context.Background()
		if token != "" {
			ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", "Bearer "+token))
		}
		_, err := unary(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, handler)
		return err
	}

	t.Run("Public method needs no token", func(t *testing.T) {
		require.NoError(t, invoke("/guestflow.api.v1.AuthService/Login", ""))
		assert.Nil(t, seen)
	})

	t.Run("Missing token", func(t *testing.T) {
		err := invoke("/guestflow.api.v1.GuestService/GetGuest", "")
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Garbage token", func(t *testing.T) {
		err := invoke("/guestflow.api.v1.GuestService/GetGuest", "not-a-jwt")
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Guest token on guest method", func(t *testing.T) {
		require.NoError(t, invoke("/guestflow.api.v1.GuestService/SubmitRSVP", guestToken))
		require.NotNil(t, seen)
		assert.Equal(t, security.RoleGuest, seen.Role)
		assert.Equal(t, "guest-1", seen.GuestID)
	})

	t.Run("Guest token on agent method", func(t *testing.T) {
		err := invoke("/guestflow.api.v1.InventoryService/AdjustBlocked", guestToken)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("Unknown method requires an agent", func(t *testing.T) {
		err := invoke("/guestflow.api.v1.Unknown/Method", guestToken)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
		require.NoError(t, invoke("/guestflow.api.v1.Unknown/Method", agentToken))
	})

	t.Run("Agent token on guest method", func(t *testing.T) {
		require.NoError(t, invoke("/guestflow.api.v1.ItineraryService/RegisterSession", agentToken))
		assert.Equal(t, "agent-1", seen.Subject)
	})
}
