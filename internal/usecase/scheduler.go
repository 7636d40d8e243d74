package usecase

import (
	"context"
	"log/slog"
	"time"

	"BrainCandy/internal/ports"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context, trigger time.Time) error

// Scheduler wires a cron-like driver with a job. A failing run is logged and
// the driver waits for the next tick.
type Scheduler struct {
	name   string
	driver ports.Scheduler
	job    Job
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop a recurring job.
func NewScheduler(name string, driver ports.Scheduler, job Job, logger *slog.Logger) *Scheduler {
	return &Scheduler{name: name, driver: driver, job: job, logger: logger}
}

// Start registers the job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.job == nil {
		return nil
	}

	run := func(trigger time.Time) {
		if err := s.job(ctx, trigger); err != nil && ctx.Err() == nil {
			if s.logger != nil {
				s.logger.Error("scheduled job failed", "job", s.name, "error", err)
			}
		}
	}

	return s.driver.Start(ctx, run)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
