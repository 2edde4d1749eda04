// Package refresh runs periodic jobs on a cron schedule.
package refresh

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	appLog "careplan/internal/log"
)

// Job is one unit of periodic work, e.g. reloading the plan file.
type Job func(ctx context.Context) error

// Start schedules job on spec (standard five-field cron) and returns once
// the scheduler is running. The scheduler stops when ctx is cancelled; the
// returned channel is closed after any running job has finished. Errors
// from job are logged and the schedule continues.
func Start(ctx context.Context, spec string, job Job) (<-chan struct{}, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := job(ctx); err != nil {
			appLog.Error("refresh job failed", err, "schedule", spec)
			return
		}
		appLog.Debug("refresh job finished", "schedule", spec)
	})
	if err != nil {
		return nil, fmt.Errorf("refresh: schedule %q: %w", spec, err)
	}

	c.Start()
	appLog.Info("refresh scheduler started", "schedule", spec)

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Info("refresh scheduler stopped")
		close(done)
	}()
	return done, nil
}
