package security

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Role string

const (
	RoleAgent Role = "agent"
	RoleGuest Role = "guest"
)

// Claims identify either an agent, scoped to the events they operate, or a
// guest, scoped to their own record at one event.
type Claims struct {
	Role     Role     `json:"role"`
	Email    string   `json:"email,omitempty"`
	EventIDs []string `json:"event_ids,omitempty"`
	GuestID  string   `json:"guest_id,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessEvent reports whether the bearer may act within eventID.
func (c *Claims) CanAccessEvent(eventID string) bool {
	return slices.Contains(c.EventIDs, eventID)
}

// CanActAsGuest reports whether the bearer may act on guestID's behalf. Agents
// still need the guest's event in scope, which callers check separately.
func (c *Claims) CanActAsGuest(guestID string) bool {
	switch c.Role {
	case RoleAgent:
		return true
	case RoleGuest:
		return c.GuestID == guestID
	default:
		return false
	}
}

type TokenManager interface {
	GenerateAgentToken(agentID, email string, eventIDs []string) (string, error)
	GenerateGuestToken(guestID, eventID string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type tokenManager struct {
	secret      []byte
	agentExpiry time.Duration
	guestExpiry time.Duration
	now         func() time.Time
}

// NewTokenManager signs HS256 tokens. Guest tokens are sent as magic links and
// live longer than agent sessions.
func NewTokenManager(secret string, agentExpiry, guestExpiry time.Duration) TokenManager {
	return &tokenManager{
		secret:      []byte(secret),
		agentExpiry: agentExpiry,
		guestExpiry: guestExpiry,
		now:         time.Now,
	}
}

func (m *tokenManager) GenerateAgentToken(agentID, email string, eventIDs []string) (string, error) {
	now := m.now()
	claims := Claims{
		Role:     RoleAgent,
		Email:    email,
		EventIDs: slices.Clone(eventIDs),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   agentID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.agentExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "guestflow",
			Audience:  jwt.ClaimStrings{"agent-api"},
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *tokenManager) GenerateGuestToken(guestID, eventID string) (string, error) {
	now := m.now()
	claims := Claims{
		Role:     RoleGuest,
		GuestID:  guestID,
		EventIDs: []string{eventID},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   guestID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.guestExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "guestflow",
			Audience:  jwt.ClaimStrings{"guest-api"},
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	switch claims.Role {
	case RoleAgent:
	case RoleGuest:
		if claims.GuestID == "" || len(claims.EventIDs) != 1 {
			return nil, ErrInvalidToken
		}
	default:
		return nil, ErrInvalidToken
	}
	return claims, nil
}
