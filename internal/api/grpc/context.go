package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/security"
)

// GetClaimsFromContext returns the caller authenticated by the interceptor.
func GetClaimsFromContext(ctx context.Context) (*security.Claims, error) {
	claims, ok := security.FromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "caller is not authenticated")
	}
	return claims, nil
}

// GetAgentIDFromContext returns the calling agent's id.
func GetAgentIDFromContext(ctx context.Context) (string, error) {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	if claims.Role != security.RoleAgent {
		return "", status.Error(codes.PermissionDenied, "agent token required")
	}
	return claims.Subject, nil
}

func authorizeEvent(ctx context.Context, eventID string) error {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if !claims.CanAccessEvent(eventID) {
		return status.Errorf(codes.PermissionDenied, "no access to event %s", eventID)
	}
	return nil
}

// authorizeGuest lets a guest act on their own record and an agent act on the
// guests of events it operates.
func authorizeGuest(ctx context.Context, g *domain.Guest) error {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if !claims.CanActAsGuest(g.ID) || !claims.CanAccessEvent(g.EventID) {
		return status.Errorf(codes.PermissionDenied, "no access to guest %s", g.ID)
	}
	return nil
}

// guestLookup is the slice of GuestService handlers need to authorize a guest id.
type guestLookup interface {
	GetGuest(ctx context.Context, guestID string) (*domain.Guest, error)
}

func loadAuthorizedGuest(ctx context.Context, guests guestLookup, guestID string) (*domain.Guest, error) {
	if guestID == "" {
		return nil, status.Error(codes.InvalidArgument, "guest_id is required")
	}
	g, err := guests.GetGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeGuest(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}
