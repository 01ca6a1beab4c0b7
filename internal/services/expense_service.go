package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// ExpenseInput is the caller-editable part of an expense.
type ExpenseInput struct {
	Title         string     `json:"title"`
	Amount        core.Money `json:"amount"`
	Date          core.Date  `json:"date"`
	CategoryID    core.ID    `json:"categoryId"`
	SubCategoryID core.ID    `json:"subCategoryId,omitempty"`
	Note          string     `json:"note,omitempty"`
}

// ExpenseService stores expenses and announces every change on the
// event bus.
type ExpenseService struct {
	expenses   storage.ExpenseRepository
	categories storage.CategoryRepository
	publisher  Publisher
}

func NewExpenseService(expenses storage.ExpenseRepository, categories storage.CategoryRepository, publisher Publisher) *ExpenseService {
	return &ExpenseService{
		expenses:   expenses,
		categories: categories,
		publisher:  publisher,
	}
}

func (s *ExpenseService) build(ctx context.Context, userID core.ID, in ExpenseInput) (core.Expense, error) {
	catID, err := normalizeID("categoryId", in.CategoryID)
	if err != nil {
		return core.Expense{}, err
	}
	subID, err := normalizeID("subCategoryId", in.SubCategoryID)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		UserID:        userID,
		Title:         strings.TrimSpace(in.Title),
		Amount:        in.Amount,
		Date:          in.Date,
		CategoryID:    catID,
		SubCategoryID: subID,
		Note:          strings.TrimSpace(in.Note),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := checkCategory(ctx, s.categories, userID, catID, subID); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// Create validates and stores an expense, then publishes the change.
func (s *ExpenseService) Create(ctx context.Context, userID core.ID, in ExpenseInput) core.Result[core.Expense] {
	e, err := s.build(ctx, userID, in)
	if err != nil {
		return fail[core.Expense](ctx, "create expense", err)
	}
	e.ID = core.NewID()

	if err := s.expenses.CreateExpense(ctx, e); err != nil {
		return fail[core.Expense](ctx, "create expense", fmt.Errorf("save expense: %w", err))
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", e.ID,
		"amount", e.Amount.String(),
		"month", e.Date.Month().String())
	publishChange(ctx, s.publisher, core.KindExpense, amqp.ActionCreated, userID, e.ID, e.Date.Month())
	return core.Ok(s.stored(ctx, e), "Expense created")
}

// Update replaces the editable fields of an expense. Moving it to another
// month announces both months so each one is re-evaluated.
func (s *ExpenseService) Update(ctx context.Context, userID, id core.ID, in ExpenseInput) core.Result[core.Expense] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.Expense](ctx, "update expense", err)
	}
	e, err := s.build(ctx, userID, in)
	if err != nil {
		return fail[core.Expense](ctx, "update expense", err)
	}
	cur, err := s.expenses.GetExpense(ctx, userID, id)
	if err != nil {
		return fail[core.Expense](ctx, "update expense", err)
	}
	e.ID = id
	e.CreatedAt = cur.CreatedAt

	if err := s.expenses.UpdateExpense(ctx, e); err != nil {
		return fail[core.Expense](ctx, "update expense", err)
	}

	slog.InfoContext(ctx, "Expense updated", "expense_id", id)
	publishMove(ctx, s.publisher, core.KindExpense, userID, id, cur.Date.Month(), e.Date.Month())
	return core.Ok(s.stored(ctx, e), "Expense updated")
}

// stored returns e as persisted, with the store's timestamps. The write has
// already succeeded, so a failed re-read falls back to e.
func (s *ExpenseService) stored(ctx context.Context, e core.Expense) core.Expense {
	v, err := s.expenses.GetExpense(ctx, e.UserID, e.ID)
	if err != nil {
		slog.WarnContext(ctx, "Reload after write failed", "expense_id", e.ID, "error", err)
		return e
	}
	return v.Expense
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id core.ID) core.Result[core.ID] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.ID](ctx, "delete expense", err)
	}
	// read first: the event needs the month the expense was in
	cur, err := s.expenses.GetExpense(ctx, userID, id)
	if err != nil {
		return fail[core.ID](ctx, "delete expense", err)
	}
	if err := s.expenses.DeleteExpense(ctx, userID, id); err != nil {
		return fail[core.ID](ctx, "delete expense", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id)
	publishChange(ctx, s.publisher, core.KindExpense, amqp.ActionDeleted, userID, id, cur.Date.Month())
	return core.Ok(id, "Expense deleted")
}

func (s *ExpenseService) Get(ctx context.Context, userID, id core.ID) (core.ExpenseView, error) {
	id, err := targetID(id)
	if err != nil {
		return core.ExpenseView{}, err
	}
	return s.expenses.GetExpense(ctx, userID, id)
}

// List returns the month's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.ExpenseView, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}
	return s.expenses.ListExpenses(ctx, userID, month)
}

func (s *ExpenseService) Recent(ctx context.Context, userID core.ID, limit int) ([]core.ExpenseView, error) {
	if limit <= 0 {
		return []core.ExpenseView{}, nil
	}
	return s.expenses.RecentExpenses(ctx, userID, limit)
}

// HasExpenses reports whether the user ever recorded an expense.
func (s *ExpenseService) HasExpenses(ctx context.Context, userID core.ID) (bool, error) {
	n, err := s.expenses.CountExpenses(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count expenses: %w", err)
	}
	return n > 0, nil
}
