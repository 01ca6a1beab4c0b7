// Package storage defines the persistence ports used by the services.
// Every method is scoped to a user: a record owned by someone else behaves
// exactly like a record that does not exist (core.ErrNotFound).
package storage

import (
	"context"

	"fintrack/internal/core"
)

type (
	CategoryRepository interface {
		CreateCategory(ctx context.Context, c core.Category) error
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, userID, id core.ID) error
		GetCategory(ctx context.Context, userID, id core.ID) (core.Category, error)
		// ListCategories returns the user's categories sorted by name.
		ListCategories(ctx context.Context, userID core.ID) ([]core.Category, error)

		CreateSubCategory(ctx context.Context, s core.SubCategory) error
		DeleteSubCategory(ctx context.Context, userID, id core.ID) error
		GetSubCategory(ctx context.Context, userID, id core.ID) (core.SubCategory, error)
		ListSubCategories(ctx context.Context, userID core.ID) ([]core.SubCategory, error)
	}

	IncomeSourceRepository interface {
		CreateIncomeSource(ctx context.Context, s core.IncomeSource) error
		UpdateIncomeSource(ctx context.Context, s core.IncomeSource) error
		DeleteIncomeSource(ctx context.Context, userID, id core.ID) error
		GetIncomeSource(ctx context.Context, userID, id core.ID) (core.IncomeSource, error)
		ListIncomeSources(ctx context.Context, userID core.ID) ([]core.IncomeSource, error)
	}

	ExpenseRepository interface {
		CreateExpense(ctx context.Context, e core.Expense) error
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, userID, id core.ID) error
		GetExpense(ctx context.Context, userID, id core.ID) (core.ExpenseView, error)
		// ListExpenses returns the month's expenses, newest date first.
		ListExpenses(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.ExpenseView, error)
		// RecentExpenses orders by date then creation time, both descending.
		RecentExpenses(ctx context.Context, userID core.ID, limit int) ([]core.ExpenseView, error)
		CountExpenses(ctx context.Context, userID core.ID) (int, error)
	}

	IncomeRepository interface {
		CreateIncome(ctx context.Context, i core.Income) error
		UpdateIncome(ctx context.Context, i core.Income) error
		DeleteIncome(ctx context.Context, userID, id core.ID) error
		GetIncome(ctx context.Context, userID, id core.ID) (core.IncomeView, error)
		ListIncomes(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.IncomeView, error)
		RecentIncomes(ctx context.Context, userID core.ID, limit int) ([]core.IncomeView, error)
	}

	BudgetRepository interface {
		// CreateBudget fails with core.ErrBudgetExists when the
		// (user, category, sub-category, month) tuple is taken.
		CreateBudget(ctx context.Context, b core.Budget) error
		// UpdateBudget changes limit and month only.
		UpdateBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, userID, id core.ID) error
		GetBudget(ctx context.Context, userID, id core.ID) (core.Budget, error)
		// ListBudgets returns the month's budgets, most recently created
		// first. Budgets whose category is gone are kept with
		// CategoryMissing set.
		ListBudgets(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.BudgetView, error)
		// BudgetExists matches the exact tuple; an empty subCategoryID
		// means a category-level budget.
		BudgetExists(ctx context.Context, userID core.ID, month core.MonthKey, categoryID, subCategoryID core.ID) (bool, error)
		// SumCategoryBudgets totals the limits of category-level budgets.
		SumCategoryBudgets(ctx context.Context, userID core.ID, month core.MonthKey) (core.Money, error)
		CountBudgets(ctx context.Context, userID core.ID, month core.MonthKey) (int, error)
	}

	// AggregateReader answers the month totals the calculators need.
	AggregateReader interface {
		SumAmount(ctx context.Context, q AmountQuery) (core.Money, error)
		// Grouped sums include only groups whose category or source still
		// exists, sorted by total descending.
		SumExpensesByCategory(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.CategoryTotal, error)
		SumExpensesBySubCategory(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.SubCategoryTotal, error)
		SumIncomeBySource(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.SourceTotal, error)
		DatedAmounts(ctx context.Context, userID core.ID, month core.MonthKey, kind core.TransactionKind) ([]core.DatedAmount, error)
	}

	// Store is the full persistence surface of one backend.
	Store interface {
		CategoryRepository
		IncomeSourceRepository
		ExpenseRepository
		IncomeRepository
		BudgetRepository
		AggregateReader
		Ping(ctx context.Context) error
		Close() error
	}
)

// AmountQuery selects transactions of one kind in one month. GroupID is
// the category for expenses and the source for incomes; SubCategoryID
// only applies to expenses. Empty IDs do not filter.
type AmountQuery struct {
	UserID        core.ID
	Month         core.MonthKey
	Kind          core.TransactionKind
	GroupID       core.ID
	SubCategoryID core.ID
}
