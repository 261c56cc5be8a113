package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"guestflow-backend/internal/domain"
)

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, effects []domain.Effect) error {
	args := m.Called(ctx, effects)
	return args.Error(0)
}

// dispatched returns every effect handed to the dispatcher, in call order.
func (m *MockDispatcher) dispatched() []domain.Effect {
	var out []domain.Effect
	for _, c := range m.Calls {
		out = append(out, c.Arguments.Get(1).([]domain.Effect)...)
	}
	return out
}

func kinds(effects []domain.Effect) []domain.EffectKind {
	out := make([]domain.EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

// MockAgentRepo
type MockAgentRepo struct {
	mock.Mock
}

func (m *MockAgentRepo) Create(ctx context.Context, agent *domain.Agent) error {
	args := m.Called(ctx, agent)
	return args.Error(0)
}
func (m *MockAgentRepo) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}
func (m *MockAgentRepo) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}
func (m *MockAgentRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.Agent, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Agent), args.Error(1)
}

// MockGuestRepo
type MockGuestRepo struct {
	mock.Mock
}

func (m *MockGuestRepo) Create(ctx context.Context, g *domain.Guest) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}
func (m *MockGuestRepo) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Guest), args.Error(1)
}
func (m *MockGuestRepo) GetForUpdate(ctx context.Context, id string) (*domain.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Guest), args.Error(1)
}
func (m *MockGuestRepo) Update(ctx context.Context, g *domain.Guest) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}
func (m *MockGuestRepo) ListByEvent(ctx context.Context, eventID string, status domain.GuestStatus) ([]domain.Guest, error) {
	args := m.Called(ctx, eventID, status)
	return args.Get(0).([]domain.Guest), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, guestID string, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, guestID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, guestID string) error {
	args := m.Called(ctx, id, guestID)
	return args.Error(0)
}
