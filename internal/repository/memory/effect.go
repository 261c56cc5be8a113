package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"guestflow-backend/internal/domain"
)

type effectRepo struct{ s *Store }

func (r effectRepo) Enqueue(ctx context.Context, effects []domain.Effect) error {
	for _, e := range effects {
		if !insert(ctx, r.s, r.s.effects, e.ID, e) {
			return fmt.Errorf("%w: effect %s exists", domain.ErrInvalidArgument, e.ID)
		}
	}
	return nil
}

func (r effectRepo) ListUndelivered(ctx context.Context, maxAttempts int32, limit int32) ([]domain.Effect, error) {
	pending := filter(r.s, r.s.effects,
		func(e domain.Effect) bool { return e.DeliveredAt == nil && int32(e.Attempts) < maxAttempts },
		func(a, b domain.Effect) int {
			return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), byString(a.ID, b.ID))
		})
	if int32(len(pending)) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r effectRepo) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, func(e *domain.Effect) {
		e.DeliveredAt = &at
		e.Attempts++
		e.LastError = ""
	})
}

func (r effectRepo) MarkChannel(ctx context.Context, id string, channel domain.Channel) error {
	return r.update(ctx, id, func(e *domain.Effect) {
		if !e.DeliveredOn(channel) {
			e.Channels = append(slices.Clone(e.Channels), channel)
		}
	})
}

func (r effectRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.update(ctx, id, func(e *domain.Effect) {
		e.Attempts++
		e.LastError = reason
	})
}

func (r effectRepo) update(ctx context.Context, id string, fn func(e *domain.Effect)) error {
	r.s.lockRow(ctx, "effect:"+id)
	e, ok := get(r.s, r.s.effects, id)
	if !ok {
		return fmt.Errorf("%w: effect %s", domain.ErrNotFound, id)
	}
	fn(&e)
	put(ctx, r.s, r.s.effects, id, e)
	return nil
}
