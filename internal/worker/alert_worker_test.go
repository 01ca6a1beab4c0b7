package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
	sheetsmem "fintrack/internal/sheets/memory"
	"fintrack/internal/storage/memory"
)

const user core.ID = "user-1"

var jan = core.MustMonthKey("2025-01")

type fixture struct {
	expenses *services.ExpenseService
	budgets  *services.BudgetService
	builder  *report.Builder
	food     core.ID
	logs     *bytes.Buffer
	logger   *applog.StructuredLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	agg := services.NewAggregator(store)
	budgets := services.NewBudgetService(store, store, agg)
	cats := services.NewCategoryService(store, agg)
	expenses := services.NewExpenseService(store, store, nil)
	incomes := services.NewIncomeService(store, store, nil)
	dashboard := services.NewDashboardService(store, agg, budgets, 10)

	food := cats.Create(ctx, user, services.LabelInput{Name: "Food"})
	require.True(t, food.Success)
	require.True(t, budgets.Create(ctx, user, services.BudgetInput{
		CategoryID: food.Data.ID, Limit: core.Money{Cents: 10000}, Month: jan,
	}).Success)

	logs := &bytes.Buffer{}
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: "json", Component: applog.ComponentWorker, Output: logs})

	return &fixture{
		expenses: expenses,
		budgets:  budgets,
		builder:  report.NewBuilder(dashboard, expenses, incomes),
		food:     food.Data.ID,
		logs:     logs,
		logger:   applog.NewStructuredLogger(logger),
	}
}

func (f *fixture) spend(t *testing.T, cents int64) core.ID {
	t.Helper()
	res := f.expenses.Create(context.Background(), user, services.ExpenseInput{
		Title: "shop", Amount: core.Money{Cents: cents}, Date: core.NewDate(2025, 1, 10), CategoryID: f.food,
	})
	require.True(t, res.Success, res.Error)
	return res.Data.ID
}

func (f *fixture) worker() *AlertWorker {
	return NewAlertWorker(f.budgets, cache.NewLRUCache[core.AlertLevel](100, time.Hour), f.logger)
}

func levels(alerts []Alert) []core.AlertLevel {
	out := make([]core.AlertLevel, len(alerts))
	for i, a := range alerts {
		out[i] = a.Progress.AlertLevel
	}
	return out
}

func TestEvaluateRaisesOnlyOnHigherBand(t *testing.T) {
	f := newFixture(t)
	w := f.worker()
	ctx := context.Background()

	alerts, err := w.Evaluate(ctx, user, jan)
	require.NoError(t, err)
	assert.Empty(t, alerts, "an untouched budget is safe")

	f.spend(t, 8500)
	alerts, err = w.Evaluate(ctx, user, jan)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, core.AlertWarning, alerts[0].Progress.AlertLevel)
	assert.Equal(t, core.AlertSafe, alerts[0].Previous)
	assert.Equal(t, "Food", alerts[0].Progress.CategoryName)

	alerts, err = w.Evaluate(ctx, user, jan)
	require.NoError(t, err)
	assert.Empty(t, alerts, "same band is not raised twice")

	f.spend(t, 2000)
	alerts, err = w.Evaluate(ctx, user, jan)
	require.NoError(t, err)
	assert.Equal(t, []core.AlertLevel{core.AlertOver}, levels(alerts))
	assert.Equal(t, core.AlertWarning, alerts[0].Previous)
}

func TestEvaluateRearmsAfterBandDrops(t *testing.T) {
	f := newFixture(t)
	w := f.worker()
	ctx := context.Background()

	id := f.spend(t, 9500)
	alerts, err := w.Evaluate(ctx, user, jan)
	require.NoError(t, err)
	assert.Equal(t, []core.AlertLevel{core.AlertDanger}, levels(alerts))

	require.True(t, f.expenses.Delete(ctx, user, id).Success)
	alerts, err = w.Evaluate(ctx, user, jan)
	require.NoError(t, err)
	assert.Empty(t, alerts, "dropping a band is silent")

	f.spend(t, 9000)
	alerts, err = w.Evaluate(ctx, user, jan)
	require.NoError(t, err)
	assert.Equal(t, []core.AlertLevel{core.AlertDanger}, levels(alerts))
}

func TestEvaluateScopesByMonth(t *testing.T) {
	f := newFixture(t)
	w := f.worker()
	f.spend(t, 9000)

	alerts, err := w.Evaluate(context.Background(), user, core.MustMonthKey("2025-02"))
	require.NoError(t, err)
	assert.Empty(t, alerts, "no budgets in February")
}

func TestHandleTransactionChangedLogsAndExports(t *testing.T) {
	f := newFixture(t)
	writer := sheetsmem.New()
	w := f.worker().WithReports(f.builder, writer)
	ctx := context.Background()

	id := f.spend(t, 10500)
	msg := amqp.NewTransactionChangedMessage(core.KindExpense, amqp.ActionCreated, user, id, jan)
	require.NoError(t, w.HandleTransactionChanged(ctx, msg))

	var alert map[string]any
	for _, line := range strings.Split(strings.TrimSpace(f.logs.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "budget alert raised" {
			alert = entry
		}
	}
	require.NotNil(t, alert, "alert logged")
	assert.Equal(t, "over", alert[applog.FieldAlertLevel])
	assert.Equal(t, "safe", alert[applog.FieldPreviousLevel])
	assert.Equal(t, float64(105), alert[applog.FieldPercentage])
	assert.Equal(t, "2025-01", alert[applog.FieldMonth])

	r, ok := writer.Latest(user, jan)
	require.True(t, ok, "report exported")
	assert.Len(t, r.Expenses, 1)
	assert.Equal(t, 1, writer.Writes())
}

type failingProgress struct{}

func (failingProgress) Progress(context.Context, core.ID, core.MonthKey) ([]core.BudgetProgress, error) {
	return nil, errors.New("database is locked")
}

func TestHandleTransactionChangedRequeuesOnProgressFailure(t *testing.T) {
	f := newFixture(t)
	w := NewAlertWorker(failingProgress{}, cache.NewLRUCache[core.AlertLevel](10, time.Hour), f.logger)

	msg := amqp.NewTransactionChangedMessage(core.KindExpense, amqp.ActionDeleted, user, "x", jan)
	err := w.HandleTransactionChanged(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

type failingWriter struct{}

func (failingWriter) WriteMonthReport(context.Context, report.MonthReport) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestHandleTransactionChangedToleratesExportFailure(t *testing.T) {
	f := newFixture(t)
	w := f.worker().WithReports(f.builder, failingWriter{})

	msg := amqp.NewTransactionChangedMessage(core.KindIncome, amqp.ActionUpdated, user, "x", jan)
	require.NoError(t, w.HandleTransactionChanged(context.Background(), msg))
	assert.Contains(t, f.logs.String(), "quota exceeded")
}
