package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/sheets"
)

type (
	ProgressReader interface {
		Progress(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.BudgetProgress, error)
	}

	ReportBuilder interface {
		Build(ctx context.Context, userID core.ID, month core.MonthKey) (report.MonthReport, error)
	}
)

// Alert is a budget that moved into a higher band.
type Alert struct {
	UserID   core.ID
	Month    core.MonthKey
	Progress core.BudgetProgress
	Previous core.AlertLevel
}

// AlertWorker turns transaction-change events into budget alerts and,
// when a sheets writer is configured, refreshed month reports.
type AlertWorker struct {
	progress ProgressReader
	levels   cache.Cache[core.AlertLevel]
	logger   *applog.StructuredLogger
	reports  ReportBuilder
	sheets   sheets.ReportWriter
}

func NewAlertWorker(progress ProgressReader, levels cache.Cache[core.AlertLevel], logger *applog.StructuredLogger) *AlertWorker {
	return &AlertWorker{progress: progress, levels: levels, logger: logger}
}

// WithReports enables writing the month report after every event.
func (w *AlertWorker) WithReports(builder ReportBuilder, writer sheets.ReportWriter) *AlertWorker {
	w.reports = builder
	w.sheets = writer
	return w
}

// HandleTransactionChanged processes one event. Progress failures are
// returned so the message is requeued; report export is best effort.
func (w *AlertWorker) HandleTransactionChanged(ctx context.Context, msg *amqp.TransactionChangedMessage) error {
	slog.InfoContext(ctx, "Processing transaction change",
		"id", msg.ID,
		"user_id", msg.UserID,
		"kind", msg.Kind,
		"action", msg.Action,
		"month", msg.Month.String())

	alerts, err := w.Evaluate(ctx, msg.UserID, msg.Month)
	if err != nil {
		return fmt.Errorf("evaluate budgets: %w", err)
	}
	for _, a := range alerts {
		w.logger.LogBudgetAlert(ctx,
			string(a.UserID),
			a.Month.String(),
			string(a.Progress.BudgetID),
			a.Progress.CategoryName,
			string(a.Previous),
			string(a.Progress.AlertLevel),
			a.Progress.Percentage)
	}

	w.exportReport(ctx, msg.UserID, msg.Month)
	return nil
}

// Evaluate recomputes the month's progress and returns the budgets whose
// band rose since the last evaluation. A budget seen for the first time is
// compared against safe.
func (w *AlertWorker) Evaluate(ctx context.Context, userID core.ID, month core.MonthKey) ([]Alert, error) {
	progress, err := w.progress.Progress(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	for _, p := range progress {
		key := levelKey(userID, month, p.BudgetID)
		previous, ok := w.levels.Get(key)
		if !ok {
			previous = core.AlertSafe
		}
		w.levels.Set(key, p.AlertLevel)

		if p.AlertLevel.Rank() > previous.Rank() {
			alerts = append(alerts, Alert{UserID: userID, Month: month, Progress: p, Previous: previous})
		}
	}
	return alerts, nil
}

func (w *AlertWorker) exportReport(ctx context.Context, userID core.ID, month core.MonthKey) {
	if w.reports == nil || w.sheets == nil {
		return
	}
	r, err := w.reports.Build(ctx, userID, month)
	if err != nil {
		w.logger.LogError(ctx, "Failed to build month report", err, applog.ComponentReport, applog.OpExport,
			applog.NewFields().WithScope(string(userID), month.String()))
		return
	}
	ref, err := w.sheets.WriteMonthReport(ctx, r)
	if err != nil {
		w.logger.LogError(ctx, "Failed to write month report", err, applog.ComponentSheets, applog.OpExport,
			applog.NewFields().WithScope(string(userID), month.String()))
		return
	}
	slog.DebugContext(ctx, "Month report exported", "user_id", userID, "month", month.String(), "ref", ref)
}

func levelKey(userID core.ID, month core.MonthKey, budgetID core.ID) string {
	return string(userID) + "|" + month.String() + "|" + string(budgetID)
}
