package jobs

import (
	"context"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
)

// MarkNoShows marks guests of ended events who never arrived as no-shows.
// Confirmed guests give their units back to the pool on the way.
func (jr *JobRunner) MarkNoShows() {
	jr.runWithRecovery(JobMarkNoShows, jr.markNoShows)
}

func (jr *JobRunner) markNoShows(ctx context.Context) error {
	log := logger.WithJob(JobMarkNoShows)
	events, err := jr.repos.Events.ListEndedBefore(ctx, jr.now())
	if err != nil {
		return err
	}

	count := 0
	for _, e := range events {
		for _, status := range []domain.GuestStatus{domain.GuestStatusPending, domain.GuestStatusConfirmed} {
			guests, err := jr.repos.Guests.ListByEvent(ctx, e.ID, status)
			if err != nil {
				return err
			}
			for _, g := range guests {
				if _, err := jr.services.Guests.MarkNoShow(ctx, g.ID); err != nil {
					log.Error("Failed to mark no-show", "event_id", e.ID, "guest_id", g.ID, "error", err)
					continue
				}
				count++
			}
		}
	}
	log.Info("Marked no-shows", "events", len(events), "guests", count)
	return nil
}
