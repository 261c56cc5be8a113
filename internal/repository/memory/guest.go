package memory

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"guestflow-backend/internal/domain"
)

type eventRepo struct{ s *Store }

func (r eventRepo) Create(ctx context.Context, e *domain.Event) error {
	if !insert(ctx, r.s, r.s.events, e.ID, *e) {
		return fmt.Errorf("%w: event %s exists", domain.ErrInvalidArgument, e.ID)
	}
	return nil
}

func (r eventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, ok := get(r.s, r.s.events, id)
	if !ok {
		return nil, fmt.Errorf("%w: event %s", domain.ErrNotFound, id)
	}
	return &e, nil
}

func (r eventRepo) ListEndedBefore(ctx context.Context, t time.Time) ([]domain.Event, error) {
	return filter(r.s, r.s.events,
		func(e domain.Event) bool { return e.EndsAt.Before(t) },
		func(a, b domain.Event) int { return a.EndsAt.Compare(b.EndsAt) }), nil
}

func (r eventRepo) ListActive(ctx context.Context, t time.Time) ([]domain.Event, error) {
	return filter(r.s, r.s.events,
		func(e domain.Event) bool { return !e.EndsAt.Before(t) },
		func(a, b domain.Event) int { return a.StartsAt.Compare(b.StartsAt) }), nil
}

type labelRepo struct{ s *Store }

func (r labelRepo) Create(ctx context.Context, l *domain.Label) error {
	if !insert(ctx, r.s, r.s.labels, l.ID, *l) {
		return fmt.Errorf("%w: label %s exists", domain.ErrInvalidArgument, l.ID)
	}
	return nil
}

func (r labelRepo) GetByID(ctx context.Context, id string) (*domain.Label, error) {
	l, ok := get(r.s, r.s.labels, id)
	if !ok {
		return nil, fmt.Errorf("%w: label %s", domain.ErrNotFound, id)
	}
	return &l, nil
}

func (r labelRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.Label, error) {
	return filter(r.s, r.s.labels,
		func(l domain.Label) bool { return l.EventID == eventID },
		func(a, b domain.Label) int {
			return cmp.Or(cmp.Compare(a.Priority, b.Priority), byString(a.Name, b.Name))
		}), nil
}

type guestRepo struct{ s *Store }

func (r guestRepo) Create(ctx context.Context, g *domain.Guest) error {
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	if !insert(ctx, r.s, r.s.guests, g.ID, *g) {
		return fmt.Errorf("%w: guest %s exists", domain.ErrInvalidArgument, g.ID)
	}
	return nil
}

func (r guestRepo) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	g, ok := get(r.s, r.s.guests, id)
	if !ok {
		return nil, fmt.Errorf("%w: guest %s", domain.ErrNotFound, id)
	}
	return &g, nil
}

func (r guestRepo) GetForUpdate(ctx context.Context, id string) (*domain.Guest, error) {
	r.s.lockRow(ctx, "guest:"+id)
	return r.GetByID(ctx, id)
}

func (r guestRepo) Update(ctx context.Context, g *domain.Guest) error {
	if _, ok := get(r.s, r.s.guests, g.ID); !ok {
		return fmt.Errorf("%w: guest %s", domain.ErrNotFound, g.ID)
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now().UTC()
	}
	put(ctx, r.s, r.s.guests, g.ID, *g)
	return nil
}

func (r guestRepo) ListByEvent(ctx context.Context, eventID string, status domain.GuestStatus) ([]domain.Guest, error) {
	return filter(r.s, r.s.guests,
		func(g domain.Guest) bool {
			return g.EventID == eventID && (status == "" || g.Status == status)
		},
		func(a, b domain.Guest) int {
			return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), byString(a.ID, b.ID))
		}), nil
}
