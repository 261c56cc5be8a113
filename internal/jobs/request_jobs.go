package jobs

import (
	"context"
	"fmt"

	"guestflow-backend/internal/logger"
)

// RemindPendingRequests emails each running event's agents how many guest
// requests still wait for a decision.
func (jr *JobRunner) RemindPendingRequests() {
	jr.runWithRecovery(JobRemindPendingRequests, jr.remindPendingRequests)
}

func (jr *JobRunner) remindPendingRequests(ctx context.Context) error {
	log := logger.WithJob(JobRemindPendingRequests)
	events, err := jr.repos.Events.ListActive(ctx, jr.now())
	if err != nil {
		return err
	}

	sent := 0
	for _, e := range events {
		waiting, err := jr.repos.Requests.CountAwaitingReview(ctx, e.ID)
		if err != nil {
			return err
		}
		if waiting == 0 {
			continue
		}
		agents, err := jr.repos.Agents.ListByEvent(ctx, e.ID)
		if err != nil {
			return err
		}

		subject := fmt.Sprintf("%d guest requests waiting for %s", waiting, e.Name)
		for _, a := range agents {
			body := fmt.Sprintf(`Hi %s,

%d guest requests for %s are pending or forwarded to the client and still need a decision.

Guestflow`, a.Name, waiting, e.Name)
			if err := jr.services.Mailer.SendEmail(ctx, a.Email, a.Name, subject, body); err != nil {
				log.Error("Failed to send request reminder", "event_id", e.ID, "agent_id", a.ID, "error", err)
				continue
			}
			sent++
		}
	}
	log.Info("Sent request reminders", "events", len(events), "emails", sent)
	return nil
}
