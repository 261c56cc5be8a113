// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityGuest                       // Guest token for the guest in the request, or an agent token
	SecurityAgent                       // Agent token required
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// AuthService
	"/guestflow.api.v1.AuthService/Login":           SecurityPublic,
	"/guestflow.api.v1.AuthService/IssueGuestToken": SecurityAgent,
	"/guestflow.api.v1.AuthService/CreateAgent":     SecurityAgent,

	// GuestService - Public
	"/guestflow.api.v1.GuestService/SelfRegister": SecurityPublic,

	// GuestService - Guest Protected
	"/guestflow.api.v1.GuestService/GetGuest":   SecurityGuest,
	"/guestflow.api.v1.GuestService/SubmitRSVP": SecurityGuest,

	// GuestService - Agent Protected
	"/guestflow.api.v1.GuestService/InviteGuest":    SecurityAgent,
	"/guestflow.api.v1.GuestService/RegisterOnSpot": SecurityAgent,
	"/guestflow.api.v1.GuestService/CheckIn":        SecurityAgent,
	"/guestflow.api.v1.GuestService/MarkNoShow":     SecurityAgent,
	"/guestflow.api.v1.GuestService/ListGuests":     SecurityAgent,

	// InventoryService - Agent Protected
	"/guestflow.api.v1.InventoryService/CreatePool":    SecurityAgent,
	"/guestflow.api.v1.InventoryService/GetPool":       SecurityAgent,
	"/guestflow.api.v1.InventoryService/GetWaitlist":   SecurityAgent,
	"/guestflow.api.v1.InventoryService/AdjustBlocked": SecurityAgent,
	"/guestflow.api.v1.InventoryService/ReleaseUnits":  SecurityAgent,

	// RequestService
	"/guestflow.api.v1.RequestService/CreateRequest":    SecurityGuest,
	"/guestflow.api.v1.RequestService/GetBudgetSummary": SecurityGuest,
	"/guestflow.api.v1.RequestService/ReviewRequest":    SecurityAgent,
	"/guestflow.api.v1.RequestService/BulkApprove":      SecurityAgent,
	"/guestflow.api.v1.RequestService/ListRequests":     SecurityAgent,

	// ItineraryService
	"/guestflow.api.v1.ItineraryService/ListSessions":      SecurityGuest,
	"/guestflow.api.v1.ItineraryService/RegisterSession":   SecurityGuest,
	"/guestflow.api.v1.ItineraryService/UnregisterSession": SecurityGuest,
	"/guestflow.api.v1.ItineraryService/SwitchSession":     SecurityGuest,
	"/guestflow.api.v1.ItineraryService/CreateSession":     SecurityAgent,

	// NotificationService - Guest Protected
	"/guestflow.api.v1.NotificationService/GetNotifications":     SecurityGuest,
	"/guestflow.api.v1.NotificationService/MarkNotificationRead": SecurityGuest,

	// Health checks
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAgent
}
