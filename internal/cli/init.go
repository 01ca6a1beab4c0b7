// Package cli holds the start-up steps shared by the fintrack binaries.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger installs the process logger described by cfg.
func SetupLogger(cfg *config.Config, component string) (*applog.Logger, error) {
	logger, err := applog.Setup(cfg.LogLevel, cfg.LogFormat, component)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	return logger, nil
}

// OpenBackend opens the configured store and, when AMQP_URL is set, the
// event client.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
}

// App bundles the domain services over one backend.
type App struct {
	Budgets    *services.BudgetService
	Expenses   *services.ExpenseService
	Incomes    *services.IncomeService
	Categories *services.CategoryService
	Sources    *services.IncomeSourceService
	Dashboard  *services.DashboardService
	Reports    *report.Builder
}

func NewApp(b *backend.BackendResult, recentLimit int) *App {
	store := b.Store
	publisher := b.Publisher()
	agg := services.NewAggregator(store)
	budgets := services.NewBudgetService(store, store, agg)
	expenses := services.NewExpenseService(store, store, publisher)
	incomes := services.NewIncomeService(store, store, publisher)
	dashboard := services.NewDashboardService(store, agg, budgets, recentLimit)
	return &App{
		Budgets:    budgets,
		Expenses:   expenses,
		Incomes:    incomes,
		Categories: services.NewCategoryService(store, agg),
		Sources:    services.NewIncomeSourceService(store),
		Dashboard:  dashboard,
		Reports:    report.NewBuilder(dashboard, expenses, incomes),
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
