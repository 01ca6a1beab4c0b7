package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

const expenseSelect = `SELECT e.id, e.user_id, e.title, e.amount_cents, e.date, e.category_id, e.sub_category_id, e.note,
	e.created_at, e.updated_at,
	COALESCE(c.name, ''), COALESCE(c.icon, ''), COALESCE(c.color, ''), COALESCE(sc.name, '')
FROM expenses e
LEFT JOIN categories c ON c.id = e.category_id AND c.user_id = e.user_id
LEFT JOIN sub_categories sc ON sc.id = e.sub_category_id AND sc.user_id = e.user_id`

func scanExpense(row scanner) (core.ExpenseView, error) {
	var (
		v                      core.ExpenseView
		date, created, updated int64
	)
	err := row.Scan(&v.ID, &v.UserID, &v.Title, &v.Amount.Cents, &date, &v.CategoryID, &v.SubCategoryID, &v.Note,
		&created, &updated, &v.CategoryName, &v.CategoryIcon, &v.CategoryColor, &v.SubCategoryName)
	if err != nil {
		return core.ExpenseView{}, err
	}
	v.Date = core.DateOf(fromMillis(date))
	v.CreatedAt, v.UpdatedAt = fromMillis(created), fromMillis(updated)
	return v, nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) error {
	now := s.stamp()
	_, err := s.exec(ctx,
		`INSERT INTO expenses (id, user_id, title, amount_cents, date, category_id, sub_category_id, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Amount.Cents, toMillis(e.Date.Time), e.CategoryID, e.SubCategoryID, e.Note, now, now)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (s *Store) UpdateExpense(ctx context.Context, e core.Expense) error {
	err := mustAffect(s.exec(ctx,
		`UPDATE expenses SET title = ?, amount_cents = ?, date = ?, category_id = ?, sub_category_id = ?, note = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Title, e.Amount.Cents, toMillis(e.Date.Time), e.CategoryID, e.SubCategoryID, e.Note, s.stamp(), e.ID, e.UserID))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("update expense: %w", err)
	}
	return err
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id core.ID) error {
	err := mustAffect(s.exec(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("delete expense: %w", err)
	}
	return err
}

func (s *Store) GetExpense(ctx context.Context, userID, id core.ID) (core.ExpenseView, error) {
	v, err := scanExpense(s.queryRow(ctx, expenseSelect+` WHERE e.id = ? AND e.user_id = ?`, id, userID))
	if err != nil {
		return core.ExpenseView{}, noRows(err)
	}
	return v, nil
}

func (s *Store) ListExpenses(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.ExpenseView, error) {
	from, to := monthRange(month)
	rows, err := s.query(ctx,
		expenseSelect+` WHERE e.user_id = ? AND e.date >= ? AND e.date <= ? ORDER BY e.date DESC, e.created_at DESC`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanExpense)
}

func (s *Store) RecentExpenses(ctx context.Context, userID core.ID, limit int) ([]core.ExpenseView, error) {
	rows, err := s.query(ctx,
		expenseSelect+` WHERE e.user_id = ? ORDER BY e.date DESC, e.created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanExpense)
}

func (s *Store) CountExpenses(ctx context.Context, userID core.ID) (int, error) {
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

const incomeSelect = `SELECT i.id, i.user_id, i.income_source_id, i.amount_cents, i.date, i.note, i.created_at, i.updated_at,
	COALESCE(src.name, ''), COALESCE(src.icon, ''), COALESCE(src.color, '')
FROM incomes i
LEFT JOIN income_sources src ON src.id = i.income_source_id AND src.user_id = i.user_id`

func scanIncome(row scanner) (core.IncomeView, error) {
	var (
		v                      core.IncomeView
		date, created, updated int64
	)
	err := row.Scan(&v.ID, &v.UserID, &v.SourceID, &v.Amount.Cents, &date, &v.Note, &created, &updated,
		&v.SourceName, &v.SourceIcon, &v.SourceColor)
	if err != nil {
		return core.IncomeView{}, err
	}
	v.Date = core.DateOf(fromMillis(date))
	v.CreatedAt, v.UpdatedAt = fromMillis(created), fromMillis(updated)
	return v, nil
}

func (s *Store) CreateIncome(ctx context.Context, in core.Income) error {
	now := s.stamp()
	_, err := s.exec(ctx,
		`INSERT INTO incomes (id, user_id, income_source_id, amount_cents, date, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.SourceID, in.Amount.Cents, toMillis(in.Date.Time), in.Note, now, now)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	return nil
}

func (s *Store) UpdateIncome(ctx context.Context, in core.Income) error {
	err := mustAffect(s.exec(ctx,
		`UPDATE incomes SET income_source_id = ?, amount_cents = ?, date = ?, note = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		in.SourceID, in.Amount.Cents, toMillis(in.Date.Time), in.Note, s.stamp(), in.ID, in.UserID))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("update income: %w", err)
	}
	return err
}

func (s *Store) DeleteIncome(ctx context.Context, userID, id core.ID) error {
	err := mustAffect(s.exec(ctx, `DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("delete income: %w", err)
	}
	return err
}

func (s *Store) GetIncome(ctx context.Context, userID, id core.ID) (core.IncomeView, error) {
	v, err := scanIncome(s.queryRow(ctx, incomeSelect+` WHERE i.id = ? AND i.user_id = ?`, id, userID))
	if err != nil {
		return core.IncomeView{}, noRows(err)
	}
	return v, nil
}

func (s *Store) ListIncomes(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.IncomeView, error) {
	from, to := monthRange(month)
	rows, err := s.query(ctx,
		incomeSelect+` WHERE i.user_id = ? AND i.date >= ? AND i.date <= ? ORDER BY i.date DESC, i.created_at DESC`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanIncome)
}

func (s *Store) RecentIncomes(ctx context.Context, userID core.ID, limit int) ([]core.IncomeView, error) {
	rows, err := s.query(ctx,
		incomeSelect+` WHERE i.user_id = ? ORDER BY i.date DESC, i.created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent incomes: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanIncome)
}
