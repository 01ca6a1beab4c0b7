package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Aggregator answers month totals over one user's ledger. A month without
// matching records sums to zero, never to an error.
type Aggregator struct {
	reader storage.AggregateReader
}

func NewAggregator(reader storage.AggregateReader) *Aggregator {
	return &Aggregator{reader: reader}
}

// SumAmount totals one kind of transaction in a month. groupID filters by
// category (expenses) or source (incomes); subCategoryID only applies to
// expenses. Empty IDs do not filter.
func (a *Aggregator) SumAmount(ctx context.Context, userID core.ID, month core.MonthKey, kind core.TransactionKind, groupID, subCategoryID core.ID) (core.Money, error) {
	if err := requireMonth(month); err != nil {
		return core.Money{}, err
	}
	if !kind.Valid() {
		return core.Money{}, fmt.Errorf("sum amount: unknown kind %q", kind)
	}
	if kind == core.KindIncome {
		subCategoryID = ""
	}
	return a.reader.SumAmount(ctx, storage.AmountQuery{
		UserID:        userID,
		Month:         month,
		Kind:          kind,
		GroupID:       groupID,
		SubCategoryID: subCategoryID,
	})
}

// Spent is what was spent against a budget's scope in its month.
func (a *Aggregator) Spent(ctx context.Context, b core.Budget) (core.Money, error) {
	return a.SumAmount(ctx, b.UserID, b.Month, core.KindExpense, b.CategoryID, b.SubCategoryID)
}

func (a *Aggregator) SumByCategory(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.CategoryTotal, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}
	return a.reader.SumExpensesByCategory(ctx, userID, month)
}

func (a *Aggregator) SumBySubCategory(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.SubCategoryTotal, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}
	return a.reader.SumExpensesBySubCategory(ctx, userID, month)
}

func (a *Aggregator) SumBySource(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.SourceTotal, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}
	return a.reader.SumIncomeBySource(ctx, userID, month)
}

// DailyTotals returns one zero-filled entry per day of the month.
func (a *Aggregator) DailyTotals(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.DailyTotal, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}
	expenses, err := a.reader.DatedAmounts(ctx, userID, month, core.KindExpense)
	if err != nil {
		return nil, fmt.Errorf("dated expenses: %w", err)
	}
	incomes, err := a.reader.DatedAmounts(ctx, userID, month, core.KindIncome)
	if err != nil {
		return nil, fmt.Errorf("dated incomes: %w", err)
	}
	return core.DailyTotals(month, expenses, incomes), nil
}
