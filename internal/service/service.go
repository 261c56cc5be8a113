package service

import (
	"context"
	"time"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/engine"
)

// NewGuest carries the fields an agent or guest supplies when a guest is created.
type NewGuest struct {
	EventID        string
	LabelID        string
	Name           string
	Email          string
	Phone          string
	DeviceToken    string
	AllocatedSeats int
}

type RSVPResult struct {
	Guest      domain.Guest
	Waitlisted bool
	Position   int // 1-based waitlist position, 0 when not waitlisted
}

type GuestService interface {
	InviteGuest(ctx context.Context, in NewGuest) (*domain.Guest, error)
	// RegisterOnSpot creates a walk-in guest, confirms the full allocation and
	// checks them in when capacity allows; otherwise the guest is left waitlisted.
	RegisterOnSpot(ctx context.Context, in NewGuest) (*RSVPResult, error)
	SelfRegister(ctx context.Context, in NewGuest) (*domain.Guest, error)
	SubmitRSVP(ctx context.Context, guestID string, decision domain.RSVPDecision, seats int) (*RSVPResult, error)
	CheckIn(ctx context.Context, guestID string) (*domain.Guest, error)
	MarkNoShow(ctx context.Context, guestID string) (*domain.Guest, error)
	GetGuest(ctx context.Context, guestID string) (*domain.Guest, error)
	ListGuests(ctx context.Context, eventID string, status domain.GuestStatus) ([]domain.Guest, error)
}

type WaitlistPosition struct {
	Entry    domain.WaitlistEntry
	Position int
}

type InventoryService interface {
	CreatePool(ctx context.Context, pool *domain.ResourcePool) error
	GetPool(ctx context.Context, poolID string) (*domain.ResourcePool, error)
	GetWaitlist(ctx context.Context, poolID string) ([]WaitlistPosition, error)
	// AdjustBlocked sets the pool's blocked count as reported by the inventory
	// provider. Growth promotes waiting guests.
	AdjustBlocked(ctx context.Context, poolID string, blocked int) (*domain.ResourcePool, error)
	Release(ctx context.Context, poolID string, units int) (*domain.ResourcePool, error)
}

type RequestService interface {
	CreateRequest(ctx context.Context, guestID, perkID string, quantity int) (*domain.GuestRequest, error)
	GetRequest(ctx context.Context, requestID string) (*domain.GuestRequest, error)
	ReviewRequest(ctx context.Context, requestID string, action domain.ReviewAction, reviewer, note string) (*domain.GuestRequest, error)
	// BulkApprove approves each request in its own transaction and never stops early.
	BulkApprove(ctx context.Context, eventID string, requestIDs []string, reviewer string) engine.BulkResult
	ListRequests(ctx context.Context, eventID string, status domain.RequestStatus) ([]domain.GuestRequest, error)
	GetBudgetSummary(ctx context.Context, guestID string) (*domain.BudgetSummary, error)
}

type ItineraryService interface {
	CreateSession(ctx context.Context, session *domain.ItinerarySession) error
	ListSessions(ctx context.Context, eventID string) ([]domain.ItinerarySession, error)
	Register(ctx context.Context, guestID, sessionID string) (*engine.Registration, error)
	Unregister(ctx context.Context, guestID, sessionID string) (*engine.Registration, error)
	// SwitchSession keeps the unregistrations even when the final registration
	// fails; the returned result says which steps were applied.
	SwitchSession(ctx context.Context, guestID string, fromSessionIDs []string, toSessionID string) (*engine.SwitchResult, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.Agent, error)
	IssueGuestToken(ctx context.Context, agentID, guestID string) (string, error)
	CreateAgent(ctx context.Context, email, name, password string, eventIDs []string) (*domain.Agent, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, guestID string, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, guestID, notificationID string) error
}

// EffectDispatcher delivers effects after their transaction committed.
type EffectDispatcher interface {
	Dispatch(ctx context.Context, effects []domain.Effect) error
}

// Clock and ID sources are injected so tests can pin them.
type Clock func() time.Time
type IDSource func() string
