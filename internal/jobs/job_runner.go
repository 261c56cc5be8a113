package jobs

import (
	"context"
	"fmt"
	"time"

	"guestflow-backend/internal/config"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/notify"
	"guestflow-backend/internal/repository"
	"guestflow-backend/internal/service"
)

// Job names accepted by RunJob.
const (
	JobMarkNoShows           = "mark-no-shows"
	JobRemindPendingRequests = "remind-pending-requests"
	JobRedeliverEffects      = "redeliver-effects"
	JobAll                   = "all"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	repos    Repositories
	services Services
	config   *config.Config
	now      func() time.Time
}

// Repositories holds the stores jobs scan for work
type Repositories struct {
	Events   repository.EventRepository
	Guests   repository.GuestRepository
	Requests repository.RequestRepository
	Agents   repository.AgentRepository
	Effects  repository.EffectRepository
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Guests     service.GuestService
	Dispatcher service.EffectDispatcher
	Mailer     notify.Mailer
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos Repositories, services Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		repos:    repos,
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// RunJob runs one job by name, or every job for JobAll.
func (jr *JobRunner) RunJob(name string) error {
	switch name {
	case JobMarkNoShows:
		jr.MarkNoShows()
	case JobRemindPendingRequests:
		jr.RemindPendingRequests()
	case JobRedeliverEffects:
		jr.RedeliverEffects()
	case JobAll:
		jr.MarkNoShows()
		jr.RemindPendingRequests()
		jr.RedeliverEffects()
	default:
		return fmt.Errorf("unknown job %q", name)
	}
	return nil
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	log := logger.WithJob(jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	log.Info("Starting job")
	start := jr.now()
	if err := jobFunc(context.Background()); err != nil {
		log.Error("Job failed", "error", err, "duration", jr.now().Sub(start))
		return
	}
	log.Info("Job completed", "duration", jr.now().Sub(start))
}
