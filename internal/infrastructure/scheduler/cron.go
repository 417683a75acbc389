package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ListingCrawler/internal/ports"
)

// CronScheduler runs a job once on start and then on every cron tick.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	stopped chan struct{}
	initial sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
// A nil location means UTC.
func NewCronScheduler(spec string, location *time.Location, logger *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CronScheduler{spec: spec, location: location, logger: logger}
}

// Start registers job and begins ticking until ctx is done or Stop is called.
// Overlapping ticks are skipped while a run is still in progress.
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
	cronner := cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	id, err := cronner.AddFunc(c.spec, func() {
		job(time.Now().In(c.location))
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}

	wrapped := cronner.Entry(id).WrappedJob

	c.cron = cronner
	c.stopped = make(chan struct{})
	cronner.Start()

	c.initial.Add(1)
	go func() {
		defer c.initial.Done()
		wrapped.Run()
	}()

	go func(stopped chan struct{}) {
		select {
		case <-ctx.Done():
			cronner.Stop()
		case <-stopped:
		}
	}(c.stopped)

	return nil
}

// Stop halts the cron loop and waits for a running job to return.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	cronner := c.cron
	if cronner == nil {
		c.mu.Unlock()
		return nil
	}
	c.cron = nil
	close(c.stopped)
	c.mu.Unlock()

	running := cronner.Stop()
	done := make(chan struct{})
	go func() {
		<-running.Done()
		c.initial.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger forwards cron's key/value logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
