package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"BrainCandy/internal/ports"
)

// Option configures a CronScheduler.
type Option func(*CronScheduler)

// RunImmediately fires the job once on Start before the first tick.
func RunImmediately() Option {
	return func(c *CronScheduler) { c.runImmediately = true }
}

// WithLogger reports recovered panics and skipped runs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CronScheduler) { c.logger = logger }
}

// WithRunLock serializes runs with every other scheduler holding the same lock.
// A tick waits for the lock instead of being skipped.
func WithRunLock(lock sync.Locker) Option {
	return func(c *CronScheduler) { c.runLock = lock }
}

// CronScheduler runs a job on a standard cron spec in a fixed timezone.
// Runs never overlap: a tick that arrives while the job is busy is skipped.
type CronScheduler struct {
	spec           string
	location       *time.Location
	runImmediately bool
	logger         *slog.Logger
	runLock        sync.Locker

	mu   sync.Mutex
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for spec, evaluated in loc.
func NewCronScheduler(spec string, loc *time.Location, opts ...Option) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	c := &CronScheduler{spec: spec, location: loc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Next returns the first activation strictly after t.
func (c *CronScheduler) Next(t time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(c.spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron spec %q: %w", c.spec, err)
	}
	return schedule.Next(t.In(c.location)), nil
}

// Start registers job and begins ticking until Stop or ctx is done.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	logger := cronLogger{logger: c.logger}
	wrappers := []cron.JobWrapper{cron.Recover(logger), cron.SkipIfStillRunning(logger)}
	if c.runLock != nil {
		wrappers = append(wrappers, serialize(c.runLock))
	}
	cr := cron.New(
		cron.WithLocation(c.location),
		cron.WithChain(wrappers...),
	)

	id, err := cr.AddFunc(c.spec, func() { job(time.Now().In(c.location)) })
	if err != nil {
		return fmt.Errorf("parse cron spec %q: %w", c.spec, err)
	}

	c.cron = cr
	cr.Start()

	if c.runImmediately {
		// The wrapped job shares the skip guard with scheduled ticks.
		go cr.Entry(id).WrappedJob.Run()
	}

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Stop halts ticking and waits for a running tick or ctx, whichever ends first.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	cr := c.cron
	c.cron = nil
	c.mu.Unlock()

	if cr == nil {
		return nil
	}

	done := cr.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func serialize(lock sync.Locker) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			lock.Lock()
			defer lock.Unlock()
			j.Run()
		})
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, keysAndValues...)
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Error(msg, append(keysAndValues, "error", err)...)
	}
}
