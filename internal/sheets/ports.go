package sheets

import (
	"context"

	"finreport/internal/core"
)

// Ports for report sinks.
type (
	// ReportWriter stores a monthly report, replacing any earlier report for
	// the same month.
	ReportWriter interface {
		WriteReport(ctx context.Context, r core.MonthlyReport) (rowRef string, err error)
	}

	// ReportReader returns the reports stored for a year, ordered by month.
	ReportReader interface {
		ReadReports(ctx context.Context, year int) ([]core.MonthlyReport, error)
	}
)
