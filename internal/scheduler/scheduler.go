// Package scheduler runs the monthly report job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"finreport/internal/config"
	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/report"
)

// ReportBuilder builds the report for one month.
type ReportBuilder interface {
	Build(ctx context.Context, period core.Period) (core.MonthlyReport, error)
}

// Scheduler manages the cron tasks of the report worker.
type Scheduler struct {
	cron    *cron.Cron
	builder ReportBuilder
	sinks   []report.Sink
	logger  *log.Logger
	ctx     context.Context
	now     func() time.Time
}

// New creates a scheduler. Jobs run with ctx and stop being useful once it
// is cancelled.
func New(ctx context.Context, builder ReportBuilder, sinks []report.Sink, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default(log.ComponentScheduler)
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(config.CronParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		builder: builder,
		sinks:   sinks,
		logger:  logger.WithComponent(log.ComponentScheduler),
		ctx:     ctx,
		now:     time.Now,
	}
}

// Register adds the monthly report task on the given cron schedule.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.monthlyTask); err != nil {
		return fmt.Errorf("register monthly report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", "entries", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// ReportPeriod is the month a run at now reports on: the last complete one.
func ReportPeriod(now time.Time) core.Period {
	return core.PeriodOf(now).Previous()
}

// RunNow builds and delivers the report for the last complete month.
func (s *Scheduler) RunNow(ctx context.Context) (core.MonthlyReport, error) {
	period := ReportPeriod(s.now())
	start := time.Now()
	logger := s.logger.With(log.FieldRunID, uuid.NewString())
	ctx = log.WithContext(ctx, logger)

	r, err := s.builder.Build(ctx, period)
	if err != nil {
		return core.MonthlyReport{}, err
	}
	if !r.OK() {
		logger.WarnContext(ctx, "Report built with failed sections", "period", period.String(), "errors", r.Errors)
	}

	if err := report.Deliver(ctx, logger, r, s.sinks...); err != nil {
		return r, err
	}

	logger.InfoContext(ctx, "Monthly report delivered",
		"period", period.String(),
		"sinks", len(s.sinks),
		log.FieldDuration, time.Since(start).Milliseconds())
	return r, nil
}

func (s *Scheduler) monthlyTask() {
	if s.ctx.Err() != nil {
		return
	}
	if _, err := s.RunNow(s.ctx); err != nil {
		s.logger.ErrorContext(s.ctx, "Monthly report task failed", log.FieldError, err)
	}
}
