package jobs

import (
	"context"

	"guestflow-backend/internal/logger"
)

// RedeliverEffects retries outbox effects whose delivery failed or never ran,
// e.g. because the process stopped between commit and dispatch.
func (jr *JobRunner) RedeliverEffects() {
	jr.runWithRecovery(JobRedeliverEffects, jr.redeliverEffects)
}

func (jr *JobRunner) redeliverEffects(ctx context.Context) error {
	cfg := jr.config.Scheduler
	effects, err := jr.repos.Effects.ListUndelivered(ctx, int32(cfg.MaxDeliveryAttempts), int32(cfg.RedeliveryBatchSize))
	if err != nil {
		return err
	}
	if len(effects) == 0 {
		return nil
	}
	// Dispatch marks each effect itself; a joined error only reports the failures.
	if err := jr.services.Dispatcher.Dispatch(ctx, effects); err != nil {
		logger.WithJob(JobRedeliverEffects).Warn("Some effects failed again", "error", err)
	}
	logger.WithJob(JobRedeliverEffects).Info("Redelivered effects", "count", len(effects))
	return nil
}
