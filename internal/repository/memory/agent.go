package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"guestflow-backend/internal/domain"
)

type agentRepo struct{ s *Store }

func (r agentRepo) Create(ctx context.Context, a *domain.Agent) error {
	a.CreatedAt = time.Now().UTC()
	stored := *a
	stored.EventIDs = slices.Clone(a.EventIDs)
	if !insert(ctx, r.s, r.s.agents, a.ID, stored) {
		return fmt.Errorf("%w: agent %s exists", domain.ErrInvalidArgument, a.ID)
	}
	return nil
}

func (r agentRepo) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	a, ok := get(r.s, r.s.agents, id)
	if !ok {
		return nil, fmt.Errorf("%w: agent %s", domain.ErrNotFound, id)
	}
	a.EventIDs = slices.Clone(a.EventIDs)
	return &a, nil
}

func (r agentRepo) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	found := filter(r.s, r.s.agents,
		func(a domain.Agent) bool { return strings.EqualFold(a.Email, email) },
		func(a, b domain.Agent) int { return byString(a.ID, b.ID) })
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: agent %s", domain.ErrNotFound, email)
	}
	a := found[0]
	a.EventIDs = slices.Clone(a.EventIDs)
	return &a, nil
}

func (r agentRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.Agent, error) {
	return filter(r.s, r.s.agents,
		func(a domain.Agent) bool { return a.OwnsEvent(eventID) },
		func(a, b domain.Agent) int { return byString(a.Email, b.Email) }), nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	stored := *n
	stored.Attributes = maps.Clone(n.Attributes)
	if !insert(ctx, r.s, r.s.notifications, n.ID, stored) {
		return fmt.Errorf("%w: notification %s exists", domain.ErrInvalidArgument, n.ID)
	}
	return nil
}

func (r notificationRepo) List(ctx context.Context, guestID string, limit, offset int32) ([]domain.Notification, int32, error) {
	all := filter(r.s, r.s.notifications,
		func(n domain.Notification) bool { return n.GuestID == guestID },
		func(a, b domain.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	total := int32(len(all))
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

func (r notificationRepo) MarkAsRead(ctx context.Context, id, guestID string) error {
	n, ok := get(r.s, r.s.notifications, id)
	if !ok || n.GuestID != guestID {
		return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
	}
	n.IsRead = true
	put(ctx, r.s, r.s.notifications, id, n)
	return nil
}
