// Package worker moves finished monthly reports into the spreadsheet.
package worker

import (
	"context"
	"fmt"
	"time"

	"finreport/internal/amqp"
	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/sheets"
)

// ReportSource builds a monthly report on demand.
type ReportSource interface {
	Build(ctx context.Context, period core.Period) (core.MonthlyReport, error)
}

// SyncWorker handles synchronization of monthly reports to Google Sheets
type SyncWorker struct {
	writer sheets.ReportWriter
	reader sheets.ReportReader
	source ReportSource
	logger *log.Logger
	now    func() time.Time
}

// NewSyncWorker creates a worker. reader and source are only needed for
// StartupSyncCheck and may be nil otherwise.
func NewSyncWorker(writer sheets.ReportWriter, reader sheets.ReportReader, source ReportSource, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Default(log.ComponentSheets)
	}
	return &SyncWorker{
		writer: writer,
		reader: reader,
		source: source,
		logger: logger.WithComponent(log.ComponentSheets),
		now:    time.Now,
	}
}

// HandleReportMessage writes a single report message from AMQP
func (w *SyncWorker) HandleReportMessage(ctx context.Context, msg *amqp.ReportMessage) error {
	w.logger.InfoContext(ctx, "Processing report message",
		"id", msg.ID,
		log.FieldYear, msg.Year,
		log.FieldMonth, msg.Month)

	report, err := msg.Report()
	if err != nil {
		return fmt.Errorf("decode report message %s: %w", msg.ID, err)
	}

	ref, err := w.writer.WriteReport(ctx, report)
	if err != nil {
		return fmt.Errorf("write report %s: %w", report.Period, err)
	}

	w.logger.InfoContext(ctx, "Successfully synced report",
		"id", msg.ID,
		"sheets_ref", ref,
		"timestamp", msg.Timestamp)
	return nil
}

// StartupSyncCheck fills in months of the current year, up to and including
// the previous month, that have no row yet. This recovers from reports lost
// while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) (int, error) {
	if w.reader == nil || w.source == nil {
		return 0, nil
	}

	last := core.PeriodOf(w.now()).Previous()
	existing, err := w.reader.ReadReports(ctx, last.Year)
	if err != nil {
		return 0, fmt.Errorf("read existing reports for %d: %w", last.Year, err)
	}

	have := make(map[int]bool, len(existing))
	for _, r := range existing {
		have[r.Period.Month] = true
	}

	synced, failed := 0, 0
	for month := 1; month <= last.Month; month++ {
		if have[month] {
			continue
		}
		period := core.NewPeriod(month, last.Year)
		report, err := w.source.Build(ctx, period)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to build report during startup", log.FieldMonth, month, log.FieldYear, last.Year, log.FieldError, err)
			failed++
			continue
		}
		if _, err := w.writer.WriteReport(ctx, report); err != nil {
			w.logger.ErrorContext(ctx, "Failed to write report during startup", log.FieldMonth, month, log.FieldYear, last.Year, log.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		log.FieldYear, last.Year,
		"existing", len(existing),
		"synced", synced,
		"errors", failed)
	return synced, nil
}
