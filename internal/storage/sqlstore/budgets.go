package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

func (s *Store) CreateBudget(ctx context.Context, b core.Budget) error {
	now := s.stamp()
	_, err := s.exec(ctx,
		`INSERT INTO budgets (id, user_id, category_id, sub_category_id, limit_cents, month, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.CategoryID, b.SubCategoryID, b.Limit.Cents, b.Month.String(), now, now)
	if isUniqueViolation(err) {
		return core.ErrBudgetExists
	}
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (s *Store) UpdateBudget(ctx context.Context, b core.Budget) error {
	err := mustAffect(s.exec(ctx,
		`UPDATE budgets SET limit_cents = ?, month = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		b.Limit.Cents, b.Month.String(), s.stamp(), b.ID, b.UserID))
	switch {
	case err == nil, errors.Is(err, core.ErrNotFound):
		return err
	case isUniqueViolation(err):
		return core.ErrBudgetExists
	default:
		return fmt.Errorf("update budget: %w", err)
	}
}

func (s *Store) DeleteBudget(ctx context.Context, userID, id core.ID) error {
	err := mustAffect(s.exec(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("delete budget: %w", err)
	}
	return err
}

const budgetColumns = `b.id, b.user_id, b.category_id, b.sub_category_id, b.limit_cents, b.month, b.created_at, b.updated_at`

func budgetDest(dest *core.Budget, month *string, created, updated *int64) []any {
	return []any{&dest.ID, &dest.UserID, &dest.CategoryID, &dest.SubCategoryID, &dest.Limit.Cents, month, created, updated}
}

func finishBudget(b *core.Budget, month string, created, updated int64) error {
	m, err := core.ParseMonthKey(month)
	if err != nil {
		return fmt.Errorf("stored budget %s has month %q: %w", b.ID, month, err)
	}
	b.Month = m
	b.CreatedAt, b.UpdatedAt = fromMillis(created), fromMillis(updated)
	return nil
}

func (s *Store) GetBudget(ctx context.Context, userID, id core.ID) (core.Budget, error) {
	var (
		b                core.Budget
		month            string
		created, updated int64
	)
	err := s.queryRow(ctx, `SELECT `+budgetColumns+` FROM budgets b WHERE b.id = ? AND b.user_id = ?`, id, userID).
		Scan(budgetDest(&b, &month, &created, &updated)...)
	if err != nil {
		return core.Budget{}, noRows(err)
	}
	if err := finishBudget(&b, month, created, updated); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// ListBudgets left-joins the category so budgets whose category was
// deleted still show up.
func (s *Store) ListBudgets(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.BudgetView, error) {
	rows, err := s.query(ctx, `SELECT `+budgetColumns+`,
		c.id, COALESCE(c.name, ''), COALESCE(c.icon, ''), COALESCE(c.color, ''), COALESCE(sc.name, '')
		FROM budgets b
		LEFT JOIN categories c ON c.id = b.category_id AND c.user_id = b.user_id
		LEFT JOIN sub_categories sc ON sc.id = b.sub_category_id AND sc.user_id = b.user_id
		WHERE b.user_id = ? AND b.month = ?
		ORDER BY b.created_at DESC, b.id DESC`, userID, month.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.BudgetView, 0)
	for rows.Next() {
		var (
			v                core.BudgetView
			m                string
			created, updated int64
			categoryID       sql.NullString
		)
		dest := append(budgetDest(&v.Budget, &m, &created, &updated),
			&categoryID, &v.CategoryName, &v.CategoryIcon, &v.CategoryColor, &v.SubCategoryName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if err := finishBudget(&v.Budget, m, created, updated); err != nil {
			return nil, err
		}
		v.CategoryMissing = !categoryID.Valid
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) BudgetExists(ctx context.Context, userID core.ID, month core.MonthKey, categoryID, subCategoryID core.ID) (bool, error) {
	var n int
	err := s.queryRow(ctx,
		`SELECT COUNT(*) FROM budgets WHERE user_id = ? AND month = ? AND category_id = ? AND sub_category_id = ?`,
		userID, month.String(), categoryID, subCategoryID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check budget: %w", err)
	}
	return n > 0, nil
}

func (s *Store) SumCategoryBudgets(ctx context.Context, userID core.ID, month core.MonthKey) (core.Money, error) {
	var total int64
	err := s.queryRow(ctx,
		`SELECT COALESCE(CAST(SUM(limit_cents) AS BIGINT), 0) FROM budgets WHERE user_id = ? AND month = ? AND sub_category_id = ''`,
		userID, month.String()).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum budgets: %w", err)
	}
	return core.Money{Cents: total}, nil
}

func (s *Store) CountBudgets(ctx context.Context, userID core.ID, month core.MonthKey) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM budgets WHERE user_id = ? AND month = ?`, userID, month.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count budgets: %w", err)
	}
	return n, nil
}
