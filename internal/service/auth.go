package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
	"guestflow-backend/internal/security"
)

var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)

const minPasswordLength = 8

type authService struct {
	agents repository.AgentRepository
	guests repository.GuestRepository
	tokens security.TokenManager
	newID  IDSource
}

func NewAuthService(agents repository.AgentRepository, guests repository.GuestRepository, tokens security.TokenManager) AuthService {
	return &authService{
		agents: agents,
		guests: guests,
		tokens: tokens,
		newID:  uuid.NewString,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Agent, error) {
	agent, err := s.agents.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Agent login rejected", "agentID", agent.ID)
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.GenerateAgentToken(agent.ID, agent.Email, agent.EventIDs)
	if err != nil {
		return "", nil, err
	}
	return token, agent, nil
}

// IssueGuestToken mints a magic-link token for a guest of an event the agent operates.
func (s *authService) IssueGuestToken(ctx context.Context, agentID, guestID string) (string, error) {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return "", err
	}
	g, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		return "", err
	}
	if !agent.OwnsEvent(g.EventID) {
		return "", fmt.Errorf("%w: agent %s does not operate event %s", domain.ErrUnauthorized, agent.ID, g.EventID)
	}
	return s.tokens.GenerateGuestToken(g.ID, g.EventID)
}

func (s *authService) CreateAgent(ctx context.Context, email, name, password string, eventIDs []string) (*domain.Agent, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrInvalidArgument, email)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", domain.ErrInvalidArgument, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	agent := &domain.Agent{
		ID:           s.newID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		EventIDs:     eventIDs,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
