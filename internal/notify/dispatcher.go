package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

// Dispatcher delivers committed effects to guests: an in-app notification,
// an email when the guest has an address and a push when they have a device.
type Dispatcher struct {
	guests  repository.GuestRepository
	notes   repository.NotificationRepository
	effects repository.EffectRepository
	mailer  Mailer
	pusher  Pusher
	now     func() time.Time
}

func NewDispatcher(
	guests repository.GuestRepository,
	notes repository.NotificationRepository,
	effects repository.EffectRepository,
	mailer Mailer,
	pusher Pusher,
) *Dispatcher {
	if mailer == nil {
		mailer = NewLogMailer()
	}
	if pusher == nil {
		pusher = NewNoopPusher()
	}
	return &Dispatcher{
		guests:  guests,
		notes:   notes,
		effects: effects,
		mailer:  mailer,
		pusher:  pusher,
		now:     time.Now,
	}
}

// Dispatch delivers every effect independently and marks each in the outbox.
// Channels that succeed are recorded on the effect, so a redelivery only
// retries the ones that failed. The returned error joins the individual
// delivery failures.
func (d *Dispatcher) Dispatch(ctx context.Context, effects []domain.Effect) error {
	var errs []error
	for _, e := range effects {
		if err := d.deliver(ctx, e); err != nil {
			logger.WarnContext(ctx, "Effect delivery failed", "effectID", e.ID, "kind", e.Kind, "error", err)
			if markErr := d.effects.MarkFailed(ctx, e.ID, err.Error()); markErr != nil {
				errs = append(errs, markErr)
			}
			errs = append(errs, fmt.Errorf("effect %s: %w", e.ID, err))
			continue
		}
		if err := d.effects.MarkDelivered(ctx, e.ID, d.now().UTC()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) deliver(ctx context.Context, e domain.Effect) error {
	g, err := d.guests.GetByID(ctx, e.GuestID)
	if err != nil {
		return err
	}
	msg, ok := Render(e, *g)
	if !ok {
		return nil
	}

	if err := d.once(ctx, e, domain.ChannelInApp, func() error {
		return d.notes.Create(ctx, &domain.Notification{
			ID:         uuid.NewString(),
			GuestID:    g.ID,
			EventID:    e.EventID,
			Title:      msg.Title,
			Message:    msg.Body,
			Attributes: msg.Attributes,
			CreatedAt:  d.now().UTC(),
		})
	}); err != nil {
		return err
	}
	if g.Email != "" {
		if err := d.once(ctx, e, domain.ChannelEmail, func() error {
			return d.mailer.SendEmail(ctx, g.Email, g.Name, msg.Title, msg.Body)
		}); err != nil {
			return err
		}
	}
	if g.DeviceToken != "" {
		if err := d.once(ctx, e, domain.ChannelPush, func() error {
			return d.pusher.Push(ctx, g.DeviceToken, msg)
		}); err != nil {
			return err
		}
	}
	return nil
}

// once runs send unless the channel was delivered on an earlier attempt and
// records it on success. A failure to record is logged; the channel may then
// be sent again on redelivery.
func (d *Dispatcher) once(ctx context.Context, e domain.Effect, channel domain.Channel, send func() error) error {
	if e.DeliveredOn(channel) {
		return nil
	}
	if err := send(); err != nil {
		return fmt.Errorf("%s: %w", channel, err)
	}
	if err := d.effects.MarkChannel(ctx, e.ID, channel); err != nil {
		logger.WarnContext(ctx, "Recording delivered channel failed", "effectID", e.ID, "channel", channel, "error", err)
	}
	return nil
}
