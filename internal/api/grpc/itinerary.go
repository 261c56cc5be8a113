package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/status"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/service"
)

type ItineraryHandler struct {
	itinerarySvc service.ItineraryService
	guestSvc     service.GuestService
}

func NewItineraryHandler(itinerarySvc service.ItineraryService, guestSvc service.GuestService) *ItineraryHandler {
	return &ItineraryHandler{itinerarySvc: itinerarySvc, guestSvc: guestSvc}
}

var itineraryServiceDesc = serviceDesc("ItineraryService",
	unary("ItineraryService", "CreateSession", (*ItineraryHandler).CreateSession),
	unary("ItineraryService", "ListSessions", (*ItineraryHandler).ListSessions),
	unary("ItineraryService", "RegisterSession", (*ItineraryHandler).RegisterSession),
	unary("ItineraryService", "UnregisterSession", (*ItineraryHandler).UnregisterSession),
	unary("ItineraryService", "SwitchSession", (*ItineraryHandler).SwitchSession),
)

func (h *ItineraryHandler) CreateSession(ctx context.Context, req *CreateSessionRequest) (*SessionResponse, error) {
	if err := authorizeEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	session := &domain.ItinerarySession{
		EventID:     req.EventID,
		Title:       req.Title,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsMandatory: req.IsMandatory,
		Capacity:    req.Capacity,
	}
	if err := h.itinerarySvc.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return &SessionResponse{Session: session}, nil
}

func (h *ItineraryHandler) ListSessions(ctx context.Context, req *ListSessionsRequest) (*ListSessionsResponse, error) {
	if err := authorizeEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	sessions, err := h.itinerarySvc.ListSessions(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return &ListSessionsResponse{Sessions: sessions}, nil
}

func (h *ItineraryHandler) RegisterSession(ctx context.Context, req *SessionRegistrationRequest) (*RegistrationResponse, error) {
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	reg, err := h.itinerarySvc.Register(ctx, req.GuestID, req.SessionID)
	if err != nil {
		return nil, err
	}
	return mapRegistration(reg), nil
}

func (h *ItineraryHandler) UnregisterSession(ctx context.Context, req *SessionRegistrationRequest) (*RegistrationResponse, error) {
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	reg, err := h.itinerarySvc.Unregister(ctx, req.GuestID, req.SessionID)
	if err != nil {
		return nil, err
	}
	return mapRegistration(reg), nil
}

// SwitchSession reports a failed final registration as an error whose message
// names the sessions that were already left.
func (h *ItineraryHandler) SwitchSession(ctx context.Context, req *SwitchSessionRequest) (*SwitchSessionResponse, error) {
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	res, err := h.itinerarySvc.SwitchSession(ctx, req.GuestID, req.FromSessionIDs, req.ToSessionID)
	if err != nil {
		if res == nil {
			return nil, err
		}
		out := mapSwitchResult(res)
		st := status.Convert(toStatus(err))
		return nil, status.Errorf(st.Code(), "%s (unregistered: %s)", st.Message(), strings.Join(out.Unregistered, ","))
	}
	return mapSwitchResult(res), nil
}
