package grpc

import (
	"time"

	"guestflow-backend/internal/domain"
)

// Auth

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	Agent       *domain.Agent `json:"agent"`
}

type IssueGuestTokenRequest struct {
	GuestID string `json:"guest_id"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateAgentRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	EventIDs []string `json:"event_ids"`
}

type AgentResponse struct {
	Agent *domain.Agent `json:"agent"`
}

// Guests

type NewGuestRequest struct {
	EventID        string `json:"event_id"`
	LabelID        string `json:"label_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	DeviceToken    string `json:"device_token"`
	AllocatedSeats int    `json:"allocated_seats"`
}

type GuestResponse struct {
	Guest *domain.Guest `json:"guest"`
}

type SelfRegisterResponse struct {
	Guest *domain.Guest `json:"guest"`
	Token string        `json:"token"`
}

type SubmitRSVPRequest struct {
	GuestID  string `json:"guest_id"`
	Decision string `json:"decision"`
	Seats    int    `json:"seats"`
}

type RSVPResponse struct {
	Guest      *domain.Guest `json:"guest"`
	Waitlisted bool          `json:"waitlisted"`
	Position   int           `json:"position,omitempty"`
}

type GuestIDRequest struct {
	GuestID string `json:"guest_id"`
}

type ListGuestsRequest struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

type ListGuestsResponse struct {
	Guests []domain.Guest `json:"guests"`
}

// Inventory

type CreatePoolRequest struct {
	EventID             string     `json:"event_id"`
	Name                string     `json:"name"`
	Kind                string     `json:"kind"`
	IsPrimary           bool       `json:"is_primary"`
	Blocked             int        `json:"blocked"`
	NegotiatedRateCents int64      `json:"negotiated_rate_cents"`
	ValidFrom           *time.Time `json:"valid_from,omitempty"`
	ValidTo             *time.Time `json:"valid_to,omitempty"`
}

type PoolIDRequest struct {
	PoolID string `json:"pool_id"`
}

type PoolResponse struct {
	Pool      *domain.ResourcePool `json:"pool"`
	Available int                  `json:"available"`
}

type WaitlistEntry struct {
	Position       int       `json:"position"`
	GuestID        string    `json:"guest_id"`
	Priority       int       `json:"priority"`
	RequestedSeats int       `json:"requested_seats"`
	JoinedAt       time.Time `json:"joined_at"`
}

type WaitlistResponse struct {
	PoolID  string          `json:"pool_id"`
	Entries []WaitlistEntry `json:"entries"`
}

type AdjustBlockedRequest struct {
	PoolID  string `json:"pool_id"`
	Blocked int    `json:"blocked"`
}

type ReleaseUnitsRequest struct {
	PoolID string `json:"pool_id"`
	Units  int    `json:"units"`
}

// Requests

type CreateRequestRequest struct {
	GuestID  string `json:"guest_id"`
	PerkID   string `json:"perk_id"`
	Quantity int    `json:"quantity"`
}

type GuestRequestResponse struct {
	Request *domain.GuestRequest `json:"request"`
}

type ReviewRequestRequest struct {
	RequestID string `json:"request_id"`
	Action    string `json:"action"`
	Note      string `json:"note"`
}

type BulkApproveRequest struct {
	EventID    string   `json:"event_id"`
	RequestIDs []string `json:"request_ids"`
}

type BulkApproveResponse struct {
	Approved int               `json:"approved"`
	Failed   int               `json:"failed"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type ListRequestsRequest struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

type ListRequestsResponse struct {
	Requests []domain.GuestRequest `json:"requests"`
}

type BudgetSummaryResponse struct {
	Summary *domain.BudgetSummary `json:"summary"`
}

// Itinerary

type CreateSessionRequest struct {
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsMandatory bool      `json:"is_mandatory"`
	Capacity    *int      `json:"capacity,omitempty"`
}

type SessionResponse struct {
	Session *domain.ItinerarySession `json:"session"`
}

type ListSessionsRequest struct {
	EventID string `json:"event_id"`
}

type ListSessionsResponse struct {
	Sessions []domain.ItinerarySession `json:"sessions"`
}

type SessionRegistrationRequest struct {
	GuestID   string `json:"guest_id"`
	SessionID string `json:"session_id"`
}

type RegistrationResponse struct {
	Session    domain.ItinerarySession `json:"session"`
	Registered bool                    `json:"registered"`
	Implicit   bool                    `json:"implicit"`
	Removed    bool                    `json:"removed"`
}

type SwitchSessionRequest struct {
	GuestID        string   `json:"guest_id"`
	FromSessionIDs []string `json:"from_session_ids"`
	ToSessionID    string   `json:"to_session_id"`
}

type SwitchSessionResponse struct {
	Unregistered []string             `json:"unregistered"`
	Registered   *RegistrationResponse `json:"registered"`
}

// Notifications

type GetNotificationsRequest struct {
	GuestID  string `json:"guest_id"`
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
}

type GetNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	TotalCount    int32                 `json:"total_count"`
}

type MarkNotificationReadRequest struct {
	GuestID        string `json:"guest_id"`
	NotificationID string `json:"notification_id"`
}

type MarkNotificationReadResponse struct {
	Success bool `json:"success"`
}
