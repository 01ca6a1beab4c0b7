package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const DefaultRecentLimit = 10

// DashboardService assembles the dashboard from independent reads that run
// in parallel and are combined once all of them finish.
type DashboardService struct {
	store       storage.Store
	agg         *Aggregator
	budgets     *BudgetService
	recentLimit int
}

func NewDashboardService(store storage.Store, agg *Aggregator, budgets *BudgetService, recentLimit int) *DashboardService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &DashboardService{
		store:       store,
		agg:         agg,
		budgets:     budgets,
		recentLimit: recentLimit,
	}
}

// Summary computes spending against the category-level budget total.
func (s *DashboardService) Summary(ctx context.Context, userID core.ID, month core.MonthKey) (core.DashboardSummary, error) {
	if err := requireMonth(month); err != nil {
		return core.DashboardSummary{}, err
	}
	var spent, budget core.Money
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spent, err = s.agg.SumAmount(gctx, userID, month, core.KindExpense, "", "")
		return err
	})
	g.Go(func() error {
		var err error
		budget, err = s.store.SumCategoryBudgets(gctx, userID, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.DashboardSummary{}, fmt.Errorf("dashboard summary: %w", err)
	}
	return core.Summarize(month, spent, budget), nil
}

func (s *DashboardService) Daily(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.DailyTotal, error) {
	return s.agg.DailyTotals(ctx, userID, month)
}

// RecentTransactions merges the newest expenses and incomes into one feed.
func (s *DashboardService) RecentTransactions(ctx context.Context, userID core.ID, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = s.recentLimit
	}
	var expenses []core.ExpenseView
	var incomes []core.IncomeView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.RecentExpenses(gctx, userID, limit)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = s.store.RecentIncomes(gctx, userID, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return mergeFeeds(limit, expenses, incomes), nil
}

func mergeFeeds(limit int, expenses []core.ExpenseView, incomes []core.IncomeView) []core.Transaction {
	ex := make([]core.Transaction, 0, len(expenses))
	for _, e := range expenses {
		ex = append(ex, e.Transaction())
	}
	in := make([]core.Transaction, 0, len(incomes))
	for _, i := range incomes {
		in = append(in, i.Transaction())
	}
	return core.MergeRecent(limit, ex, in)
}

// Overview is the full dashboard for one month.
func (s *DashboardService) Overview(ctx context.Context, userID core.ID, month core.MonthKey) (core.DashboardOverview, error) {
	if err := requireMonth(month); err != nil {
		return core.DashboardOverview{}, err
	}

	var (
		ov             core.DashboardOverview
		spent, budget  core.Money
		recentExpenses []core.ExpenseView
		recentIncomes  []core.IncomeView
		expenseCount   int
		budgetCount    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		spent, err = s.agg.SumAmount(gctx, userID, month, core.KindExpense, "", "")
		return err
	})
	g.Go(func() (err error) {
		ov.TotalIncome, err = s.agg.SumAmount(gctx, userID, month, core.KindIncome, "", "")
		return err
	})
	g.Go(func() (err error) {
		budget, err = s.store.SumCategoryBudgets(gctx, userID, month)
		return err
	})
	g.Go(func() (err error) {
		ov.Progress, err = s.budgets.Progress(gctx, userID, month)
		return err
	})
	g.Go(func() (err error) {
		ov.ExpensesByCategory, err = s.agg.SumByCategory(gctx, userID, month)
		return err
	})
	g.Go(func() (err error) {
		ov.IncomeBySource, err = s.agg.SumBySource(gctx, userID, month)
		return err
	})
	g.Go(func() (err error) {
		recentExpenses, err = s.store.RecentExpenses(gctx, userID, s.recentLimit)
		return err
	})
	g.Go(func() (err error) {
		recentIncomes, err = s.store.RecentIncomes(gctx, userID, s.recentLimit)
		return err
	})
	g.Go(func() (err error) {
		ov.Daily, err = s.agg.DailyTotals(gctx, userID, month)
		return err
	})
	g.Go(func() (err error) {
		expenseCount, err = s.store.CountExpenses(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		budgetCount, err = s.store.CountBudgets(gctx, userID, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.DashboardOverview{}, fmt.Errorf("dashboard overview: %w", err)
	}

	ov.Summary = core.Summarize(month, spent, budget)
	ov.NetCashFlow = ov.TotalIncome.Sub(spent)
	ov.Recent = mergeFeeds(s.recentLimit, recentExpenses, recentIncomes)
	ov.HasExpenses = expenseCount > 0
	ov.HasBudgets = budgetCount > 0
	return ov, nil
}
