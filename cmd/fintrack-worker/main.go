package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger, err := cli.SetupLogger(cfg, applog.ComponentWorker)
	if err != nil {
		return err
	}
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		return err
	}
	logger.Info("Starting fintrack-worker")

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	b, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		return err
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()
	if b.Events == nil {
		return errors.New("AMQP broker unavailable, worker has nothing to consume")
	}

	levels := cache.NewLRUCache[core.AlertLevel](cfg.AlertCacheSize, cfg.AlertCacheTTL)
	caches := cache.NewManager()
	caches.Register(levels)
	caches.StartCleanup(cfg.AlertCacheTTL / 2)
	defer caches.Stop()

	app := cli.NewApp(b, cfg.RecentLimit)
	alerts := worker.NewAlertWorker(app.Budgets, levels, applog.NewStructuredLogger(logger))

	if cfg.SheetsEnabled() {
		sheets, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleReportSheet, gsheet.Credentials{
			JSON: cfg.GoogleCredentialsJSON,
			File: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			return err
		}
		alerts.WithReports(app.Reports, sheets)
		logger.Info("Month reports export to Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	err = b.Events.ConsumeTransactionChanged(ctx, alerts.HandleTransactionChanged)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		return err
	}
	logger.Info("Worker stopped gracefully")
	return nil
}
