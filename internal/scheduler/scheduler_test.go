package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/config"
	"guestflow-backend/internal/jobs"
)

func TestNewScheduler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			MarkNoShows:           "0 0 2 * * *",
			RemindPendingRequests: "0 0 9 * * *",
			RedeliverEffects:      "0 */5 * * * *",
		}}
		s, err := NewScheduler(jobs.NewJobRunner(jobs.Repositories{}, jobs.Services{}, cfg))
		require.NoError(t, err)
		assert.Equal(t, 3, s.Entries())
	})

	t.Run("Invalid cron expression", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			MarkNoShows:           "every night",
			RemindPendingRequests: "0 0 9 * * *",
			RedeliverEffects:      "0 */5 * * * *",
		}}
		_, err := NewScheduler(jobs.NewJobRunner(jobs.Repositories{}, jobs.Services{}, cfg))
		assert.ErrorContains(t, err, jobs.JobMarkNoShows)
	})
}
