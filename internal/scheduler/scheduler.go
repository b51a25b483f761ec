// Package scheduler triggers runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron and runs a single job on a schedule.
type Scheduler struct {
	job    Job
	spec   string // cron spec, e.g. "@every 6h"
	logger *slog.Logger
}

// New creates a scheduler that runs job on spec. spec accepts standard
// five-field cron expressions and descriptors such as "@hourly" or "@every 6h".
func New(job Job, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		job:    job,
		spec:   spec,
		logger: logger,
	}
}

// Run runs one immediate job, then runs it on the schedule until ctx is
// cancelled. A tick that fires while the previous run is still going is
// skipped. It returns nil on graceful shutdown, after the in-flight run
// finishes.
func (s *Scheduler) Run(ctx context.Context) error {
	sched, err := cron.ParseStandard(s.spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	logger := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(s.spec, func() { s.runJob(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.logger.Info("starting scheduler", "schedule", s.spec, "next", sched.Next(time.Now()).Format(time.RFC3339))

	s.runJob(ctx)
	c.Start()

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
	}
}

// cronLogger adapts slog to cron.Logger. cron's routine info messages go to
// debug level.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
