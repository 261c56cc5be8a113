package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

var authServiceDesc = serviceDesc("AuthService",
	unary("AuthService", "Login", (*AuthHandler).Login),
	unary("AuthService", "IssueGuestToken", (*AuthHandler).IssueGuestToken),
	unary("AuthService", "CreateAgent", (*AuthHandler).CreateAgent),
)

func (h *AuthHandler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	token, agent, err := h.authSvc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return nil, err
	}
	return &LoginResponse{AccessToken: token, Agent: agent}, nil
}

func (h *AuthHandler) IssueGuestToken(ctx context.Context, req *IssueGuestTokenRequest) (*TokenResponse, error) {
	agentID, err := GetAgentIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	token, err := h.authSvc.IssueGuestToken(ctx, agentID, req.GuestID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token}, nil
}

// CreateAgent lets an agent onboard a colleague onto events it already operates.
func (h *AuthHandler) CreateAgent(ctx context.Context, req *CreateAgentRequest) (*AgentResponse, error) {
	for _, eventID := range req.EventIDs {
		if err := authorizeEvent(ctx, eventID); err != nil {
			return nil, err
		}
	}
	agent, err := h.authSvc.CreateAgent(ctx, req.Email, req.Name, req.Password, req.EventIDs)
	if err != nil {
		return nil, err
	}
	return &AgentResponse{Agent: agent}, nil
}
