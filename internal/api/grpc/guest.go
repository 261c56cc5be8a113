package grpc

import (
	"context"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/security"
	"guestflow-backend/internal/service"
)

type GuestHandler struct {
	guestSvc service.GuestService
	tokens   security.TokenManager
}

func NewGuestHandler(guestSvc service.GuestService, tokens security.TokenManager) *GuestHandler {
	return &GuestHandler{guestSvc: guestSvc, tokens: tokens}
}

var guestServiceDesc = serviceDesc("GuestService",
	unary("GuestService", "InviteGuest", (*GuestHandler).InviteGuest),
	unary("GuestService", "SelfRegister", (*GuestHandler).SelfRegister),
	unary("GuestService", "RegisterOnSpot", (*GuestHandler).RegisterOnSpot),
	unary("GuestService", "SubmitRSVP", (*GuestHandler).SubmitRSVP),
	unary("GuestService", "CheckIn", (*GuestHandler).CheckIn),
	unary("GuestService", "MarkNoShow", (*GuestHandler).MarkNoShow),
	unary("GuestService", "GetGuest", (*GuestHandler).GetGuest),
	unary("GuestService", "ListGuests", (*GuestHandler).ListGuests),
)

func toNewGuest(req *NewGuestRequest) service.NewGuest {
	return service.NewGuest{
		EventID:        req.EventID,
		LabelID:        req.LabelID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		DeviceToken:    req.DeviceToken,
		AllocatedSeats: req.AllocatedSeats,
	}
}

func (h *GuestHandler) InviteGuest(ctx context.Context, req *NewGuestRequest) (*GuestResponse, error) {
	if err := authorizeEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	g, err := h.guestSvc.InviteGuest(ctx, toNewGuest(req))
	if err != nil {
		return nil, err
	}
	return &GuestResponse{Guest: g}, nil
}

// SelfRegister is unauthenticated and hands the new guest their own token.
func (h *GuestHandler) SelfRegister(ctx context.Context, req *NewGuestRequest) (*SelfRegisterResponse, error) {
	g, err := h.guestSvc.SelfRegister(ctx, toNewGuest(req))
	if err != nil {
		return nil, err
	}
	token, err := h.tokens.GenerateGuestToken(g.ID, g.EventID)
	if err != nil {
		return nil, err
	}
	return &SelfRegisterResponse{Guest: g, Token: token}, nil
}

func (h *GuestHandler) RegisterOnSpot(ctx context.Context, req *NewGuestRequest) (*RSVPResponse, error) {
	if err := authorizeEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	res, err := h.guestSvc.RegisterOnSpot(ctx, toNewGuest(req))
	if err != nil {
		return nil, err
	}
	return mapRSVP(res), nil
}

func (h *GuestHandler) SubmitRSVP(ctx context.Context, req *SubmitRSVPRequest) (*RSVPResponse, error) {
	decision, err := domain.ParseRSVPDecision(req.Decision)
	if err != nil {
		return nil, err
	}
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	res, err := h.guestSvc.SubmitRSVP(ctx, req.GuestID, decision, req.Seats)
	if err != nil {
		return nil, err
	}
	return mapRSVP(res), nil
}

func (h *GuestHandler) CheckIn(ctx context.Context, req *GuestIDRequest) (*GuestResponse, error) {
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	g, err := h.guestSvc.CheckIn(ctx, req.GuestID)
	if err != nil {
		return nil, err
	}
	return &GuestResponse{Guest: g}, nil
}

func (h *GuestHandler) MarkNoShow(ctx context.Context, req *GuestIDRequest) (*GuestResponse, error) {
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	g, err := h.guestSvc.MarkNoShow(ctx, req.GuestID)
	if err != nil {
		return nil, err
	}
	return &GuestResponse{Guest: g}, nil
}

func (h *GuestHandler) GetGuest(ctx context.Context, req *GuestIDRequest) (*GuestResponse, error) {
	g, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID)
	if err != nil {
		return nil, err
	}
	return &GuestResponse{Guest: g}, nil
}

func (h *GuestHandler) ListGuests(ctx context.Context, req *ListGuestsRequest) (*ListGuestsResponse, error) {
	if err := authorizeEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	guests, err := h.guestSvc.ListGuests(ctx, req.EventID, domain.GuestStatus(req.Status))
	if err != nil {
		return nil, err
	}
	return &ListGuestsResponse{Guests: guests}, nil
}
