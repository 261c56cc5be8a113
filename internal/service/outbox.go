package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

// outbox stages effects inside the deciding transaction and hands them to the
// dispatcher once that transaction committed. Effects the dispatcher could not
// deliver stay in the outbox for the redelivery job.
type outbox struct {
	effects    repository.EffectRepository
	dispatcher EffectDispatcher
	newID      IDSource
	now        Clock
}

func newOutbox(effects repository.EffectRepository, dispatcher EffectDispatcher) *outbox {
	return &outbox{
		effects:    effects,
		dispatcher: dispatcher,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

func (o *outbox) stage(ctx context.Context, effects []domain.Effect) ([]domain.Effect, error) {
	if len(effects) == 0 {
		return nil, nil
	}
	now := o.now().UTC()
	staged := make([]domain.Effect, 0, len(effects))
	for _, e := range effects {
		e.ID = o.newID()
		e.CreatedAt = now
		staged = append(staged, e)
	}
	if err := o.effects.Enqueue(ctx, staged); err != nil {
		return nil, err
	}
	return staged, nil
}

func (o *outbox) flush(ctx context.Context, effects []domain.Effect) {
	if len(effects) == 0 || o.dispatcher == nil {
		return
	}
	if err := o.dispatcher.Dispatch(ctx, effects); err != nil {
		logger.WarnContext(ctx, "Effect delivery incomplete, left for redelivery", "count", len(effects), "error", err)
	}
}
