package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"finreport/internal/backend"
	"finreport/internal/cli"
	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/report"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	last := core.PeriodOf(time.Now()).Previous()
	month := flag.Int("month", last.Month, "month to report on (1-12)")
	year := flag.Int("year", last.Year, "year to report on")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	publish := flag.Bool("publish", false, "deliver the report to the configured AMQP exchange and spreadsheet")
	flag.Parse()

	cfg, err := cli.LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, backendCfg.Type.String())
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}

	builder, _ := backend.NewReportBuilder(cfg, res.Backend, logger)
	r, err := builder.Build(ctx, core.NewPeriod(*month, *year))
	if err != nil {
		logger.Error("Failed to build report", log.FieldError, err)
		os.Exit(2)
	}

	if *asJSON {
		err = writeJSON(os.Stdout, r)
	} else {
		err = writeText(os.Stdout, r)
	}
	if err != nil {
		logger.Error("Failed to print report", log.FieldError, err)
		os.Exit(1)
	}

	if *publish {
		sinks := backend.CreateSinks(ctx, cfg, logger)
		defer sinks.Cleanup()
		if err := report.Deliver(ctx, logger, r, sinks.Sinks...); err != nil {
			logger.Error("Report delivery failed", log.FieldError, err)
			os.Exit(1)
		}
	}
}

func writeJSON(w io.Writer, r core.MonthlyReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeText(w io.Writer, r core.MonthlyReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Report\t%s\n", r.Period)
	fmt.Fprintf(tw, "Expected bills\t%s\n", core.FormatAmount(r.ExpectedBills))
	fmt.Fprintf(tw, "Average monthly bills\t%s\n", core.FormatAmount(r.AverageMonthlyBills))
	fmt.Fprintf(tw, "Paycheck surplus\t%s\n", core.FormatAmount(r.PaycheckSurplus))
	fmt.Fprintf(tw, "Budgets\t%s spent of %s (%s left)\n",
		core.FormatAmount(r.Budgets.TotalSpent),
		core.FormatAmount(r.Budgets.TotalLimit),
		core.FormatAmount(r.Budgets.TotalRemaining))
	for _, l := range r.Budgets.Lines {
		fmt.Fprintf(tw, "  %s\t%s / %s\n", l.Name, core.FormatAmount(l.Spent), core.FormatAmount(l.Limit))
	}
	fmt.Fprintf(tw, "Unbudgeted\t%s in %d transactions\n", core.FormatAmount(r.Unbudgeted.Total), r.Unbudgeted.Count)
	fmt.Fprintf(tw, "Pending categorization\t%d\n", r.PendingCategorization)
	for op, msg := range r.Errors {
		fmt.Fprintf(tw, "Error\t%s: %s\n", op, msg)
	}
	return tw.Flush()
}
