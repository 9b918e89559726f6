package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of scheduled work, typically a full pipeline run.
type Job func(ctx context.Context) error

// Scheduler owns the daemon loop: it runs the job once at startup and then
// on every tick of its cron schedule. A tick that fires while the previous
// run is still going is skipped.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	job      Job
	logger   *slog.Logger
}

// Expression picks the cron expression for the daemon. An explicit expression
// wins over an interval.
func Expression(every time.Duration, expr string) (string, error) {
	if expr != "" {
		return expr, nil
	}
	if every <= 0 {
		return "", errors.New("either an interval or a cron expression is required")
	}
	return "@every " + every.String(), nil
}

// NewScheduler parses spec (five-field cron or a descriptor such as
// "@every 6h") and returns a scheduler for job.
func NewScheduler(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	return &Scheduler{spec: spec, schedule: schedule, job: job, logger: logger}, nil
}

// Run starts the loop. It returns nil when ctx is cancelled, after the run in
// progress (if any) has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "schedule", s.spec)

	log := cronLogger{s.logger}
	wrapped := cron.NewChain(cron.Recover(log), cron.SkipIfStillRunning(log)).Then(cron.FuncJob(func() {
		s.runOnce(ctx)
	}))

	c := cron.New(cron.WithLogger(log))
	c.Schedule(s.schedule, wrapped)
	c.Start()

	// First run without waiting for the first tick.
	var first sync.WaitGroup
	first.Add(1)
	go func() {
		defer first.Done()
		wrapped.Run()
	}()

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	first.Wait()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
		return
	}
	s.logger.Debug("scheduled run finished", "duration", time.Since(start).Round(time.Millisecond))
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
