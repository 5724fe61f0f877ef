package main

import (
	"context"
	"flag"
	"os"
	"time"

	"finreport/internal/amqp"
	"finreport/internal/backend"
	"finreport/internal/cache"
	"finreport/internal/cli"
	"finreport/internal/log"
	"finreport/internal/scheduler"
	"finreport/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	consume := flag.Bool("consume", false, "consume reports from AMQP into Google Sheets instead of scheduling")
	runOnStart := flag.Bool("run-on-start", false, "build and deliver last month's report immediately")
	flag.Parse()

	logger.Info("Starting report-worker", "consume", *consume)

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
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}

	builder, bills := backend.NewReportBuilder(cfg, res.Backend, logger)

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(bills.Cleaner())
	cacheManager.StartCleanup(cfg.CacheCleanupInterval)

	var stop []func()
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		for i := len(stop) - 1; i >= 0; i-- {
			stop[i]()
		}
		cacheManager.Stop()
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Failed to close backend", log.FieldError, err)
			}
		}
	})

	if *consume {
		if !cfg.AMQPEnabled() || !cfg.SheetsEnabled() {
			logger.Error("Consume mode needs AMQP_URL and GOOGLE_SPREADSHEET_ID")
			os.Exit(1)
		}
		sheetsClient, err := backend.NewSheetsWriter(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		stop = append(stop, func() { _ = amqpClient.Close() })

		syncWorker := worker.NewSyncWorker(sheetsClient, sheetsClient, builder, logger)
		if n, err := syncWorker.StartupSyncCheck(ctx); err != nil {
			logger.Warn("Startup sync check failed", log.FieldError, err)
		} else {
			logger.Info("Startup sync check complete", "synced", n)
		}

		go func() {
			if err := amqpClient.ConsumeReports(ctx, syncWorker.HandleReportMessage); err != nil && ctx.Err() == nil {
				logger.Error("AMQP consumer stopped", log.FieldError, err)
			}
		}()
	} else {
		sinks := backend.CreateSinks(ctx, cfg, logger)
		stop = append(stop, func() { _ = sinks.Cleanup() })

		sched := scheduler.New(ctx, builder, sinks.Sinks, logger)
		if err := sched.Register(cfg.ReportCron); err != nil {
			logger.Error("Failed to register report task", log.FieldError, err)
			os.Exit(1)
		}
		sched.Start()
		stop = append(stop, sched.Stop)

		if *runOnStart {
			if _, err := sched.RunNow(ctx); err != nil {
				logger.Error("Initial report run failed", log.FieldError, err)
			}
		}
	}

	cli.WaitForShutdown(ctx, done)
}
