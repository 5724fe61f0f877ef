package backend

import (
	"context"
	"errors"
	"fmt"

	"finreport/internal/amqp"
	"finreport/internal/config"
	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/report"
	"finreport/internal/sheets"
	gsheet "finreport/internal/sheets/google"
)

// SinksResult holds the report sinks configured for this process.
type SinksResult struct {
	Sinks   []report.Sink
	Cleanup CleanupFunc
}

type publisherSink struct {
	client *amqp.Client
}

func (s publisherSink) Name() string { return "amqp" }

func (s publisherSink) Send(ctx context.Context, r core.MonthlyReport) error {
	return s.client.PublishReport(ctx, r)
}

// WriterSink adapts a sheets.ReportWriter to report.Sink.
type WriterSink struct {
	Label  string
	Writer sheets.ReportWriter
}

func (s WriterSink) Name() string { return s.Label }

func (s WriterSink) Send(ctx context.Context, r core.MonthlyReport) error {
	_, err := s.Writer.WriteReport(ctx, r)
	return err
}

// NewSheetsWriter creates the Google Sheets report writer from cfg.
func NewSheetsWriter(ctx context.Context, cfg *config.Config, logger *log.Logger) (*gsheet.Client, error) {
	return gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}, logger)
}

// CreateSinks connects the optional AMQP publisher and Sheets writer. A
// sink that cannot be initialized is logged and skipped.
func CreateSinks(ctx context.Context, cfg *config.Config, logger *log.Logger) *SinksResult {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	logger = logger.WithComponent(log.ComponentBackend)

	res := &SinksResult{}
	var closers []func() error

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without publishing", log.FieldError, err)
		} else {
			logger.InfoContext(ctx, "Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			res.Sinks = append(res.Sinks, publisherSink{client: client})
			closers = append(closers, client.Close)
		}
	}

	if cfg.SheetsEnabled() {
		writer, err := NewSheetsWriter(ctx, cfg, logger)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize Google Sheets client, continuing without export", log.FieldError, err)
		} else {
			res.Sinks = append(res.Sinks, WriterSink{Label: "sheets", Writer: writer})
		}
	}

	res.Cleanup = func() error {
		var errs []error
		for _, c := range closers {
			if err := c(); err != nil {
				errs = append(errs, fmt.Errorf("close sink: %w", err))
			}
		}
		return errors.Join(errs...)
	}
	return res
}
