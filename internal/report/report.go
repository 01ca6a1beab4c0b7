// Package report turns one user's month into exportable tables: an XLSX
// workbook, a daily trend chart and the rows written to Google Sheets.
package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

type (
	OverviewReader interface {
		Overview(ctx context.Context, userID core.ID, month core.MonthKey) (core.DashboardOverview, error)
	}

	ExpenseLister interface {
		List(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.ExpenseView, error)
	}

	IncomeLister interface {
		List(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.IncomeView, error)
	}
)

// MonthReport is everything exported for one user and month.
type MonthReport struct {
	UserID        core.ID
	Month         core.MonthKey
	GeneratedAt   time.Time
	Overview      core.DashboardOverview
	BudgetSummary core.BudgetPageSummary
	Expenses      []core.ExpenseView
	Incomes       []core.IncomeView
}

// Table is a named grid with a header row.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

type Builder struct {
	overview OverviewReader
	expenses ExpenseLister
	incomes  IncomeLister
	now      func() time.Time
}

func NewBuilder(overview OverviewReader, expenses ExpenseLister, incomes IncomeLister) *Builder {
	return &Builder{
		overview: overview,
		expenses: expenses,
		incomes:  incomes,
		now:      time.Now,
	}
}

// Build gathers the month's data with parallel reads.
func (b *Builder) Build(ctx context.Context, userID core.ID, month core.MonthKey) (MonthReport, error) {
	if month.IsZero() {
		return MonthReport{}, core.ErrInvalidMonth
	}
	r := MonthReport{UserID: userID, Month: month, GeneratedAt: b.now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r.Overview, err = b.overview.Overview(gctx, userID, month)
		return err
	})
	g.Go(func() (err error) {
		r.Expenses, err = b.expenses.List(gctx, userID, month)
		return err
	})
	g.Go(func() (err error) {
		r.Incomes, err = b.incomes.List(gctx, userID, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return MonthReport{}, fmt.Errorf("build month report: %w", err)
	}

	r.BudgetSummary = core.SummarizeBudgets(month, r.Overview.Progress)
	return r, nil
}

// Tables returns the report as the four sheets of the export, in order:
// Summary, Budgets, Expenses, Incomes.
func (r MonthReport) Tables() []Table {
	return []Table{r.summaryTable(), r.budgetsTable(), r.expensesTable(), r.incomesTable()}
}

func (r MonthReport) summaryTable() Table {
	s := r.Overview.Summary
	rows := [][]any{
		{"Month", r.Month.String()},
		{"Total expenses", s.TotalExpenses.Euros()},
		{"Total budget", s.TotalBudget.Euros()},
		{"Remaining", s.Remaining.Euros()},
		{"Percentage used", s.PercentageUsed},
		{"Total income", r.Overview.TotalIncome.Euros()},
		{"Net cash flow", r.Overview.NetCashFlow.Euros()},
		{"Generated at", r.GeneratedAt.Format(time.RFC3339)},
	}
	if len(r.Overview.ExpensesByCategory) > 0 {
		rows = append(rows, []any{}, []any{"Category", "Total", "Count"})
		for _, c := range r.Overview.ExpensesByCategory {
			rows = append(rows, []any{c.CategoryName, c.Total.Euros(), c.Count})
		}
	}
	return Table{Name: "Summary", Header: []string{"Metric", "Value"}, Rows: rows}
}

func (r MonthReport) budgetsTable() Table {
	rows := make([][]any, 0, len(r.Overview.Progress))
	for _, p := range r.Overview.Progress {
		rows = append(rows, []any{
			p.CategoryName,
			p.SubCategoryName,
			p.Limit.Euros(),
			p.Spent.Euros(),
			p.Remaining.Euros(),
			p.Percentage,
			string(p.AlertLevel),
		})
	}
	return Table{
		Name:   "Budgets",
		Header: []string{"Category", "Sub-category", "Limit", "Spent", "Remaining", "Percentage", "Alert"},
		Rows:   rows,
	}
}

func (r MonthReport) expensesTable() Table {
	rows := make([][]any, 0, len(r.Expenses))
	for _, e := range r.Expenses {
		category := e.CategoryName
		if category == "" {
			category = core.UnknownCategoryName
		}
		rows = append(rows, []any{
			e.Date.Format(time.DateOnly),
			e.Title,
			category,
			e.SubCategoryName,
			e.Amount.Euros(),
			e.Note,
		})
	}
	return Table{
		Name:   "Expenses",
		Header: []string{"Date", "Title", "Category", "Sub-category", "Amount", "Note"},
		Rows:   rows,
	}
}

func (r MonthReport) incomesTable() Table {
	rows := make([][]any, 0, len(r.Incomes))
	for _, i := range r.Incomes {
		rows = append(rows, []any{
			i.Date.Format(time.DateOnly),
			i.SourceName,
			i.Amount.Euros(),
			i.Note,
		})
	}
	return Table{
		Name:   "Incomes",
		Header: []string{"Date", "Source", "Amount", "Note"},
		Rows:   rows,
	}
}
