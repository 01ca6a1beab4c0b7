package sqlstore

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func (s *Store) SumAmount(ctx context.Context, q storage.AmountQuery) (core.Money, error) {
	from, to := monthRange(q.Month)
	var (
		query string
		args  = []any{q.UserID, from, to}
	)
	switch q.Kind {
	case core.KindExpense:
		query = `SELECT COALESCE(CAST(SUM(amount_cents) AS BIGINT), 0) FROM expenses WHERE user_id = ? AND date >= ? AND date <= ?`
		if !q.GroupID.IsZero() {
			query += ` AND category_id = ?`
			args = append(args, q.GroupID)
		}
		if !q.SubCategoryID.IsZero() {
			query += ` AND sub_category_id = ?`
			args = append(args, q.SubCategoryID)
		}
	case core.KindIncome:
		query = `SELECT COALESCE(CAST(SUM(amount_cents) AS BIGINT), 0) FROM incomes WHERE user_id = ? AND date >= ? AND date <= ?`
		if !q.GroupID.IsZero() {
			query += ` AND income_source_id = ?`
			args = append(args, q.GroupID)
		}
	default:
		return core.Money{}, fmt.Errorf("unknown transaction kind %q", q.Kind)
	}

	var total int64
	if err := s.queryRow(ctx, query, args...).Scan(&total); err != nil {
		return core.Money{}, fmt.Errorf("sum %s: %w", q.Kind, err)
	}
	return core.Money{Cents: total}, nil
}

// Breakdowns inner-join so amounts whose category or source is gone are
// left out.

func (s *Store) SumExpensesByCategory(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.CategoryTotal, error) {
	from, to := monthRange(month)
	rows, err := s.query(ctx, `SELECT c.id, c.name, c.icon, c.color, CAST(SUM(e.amount_cents) AS BIGINT), COUNT(*)
		FROM expenses e
		JOIN categories c ON c.id = e.category_id AND c.user_id = e.user_id
		WHERE e.user_id = ? AND e.date >= ? AND e.date <= ?
		GROUP BY c.id, c.name, c.icon, c.color`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	defer rows.Close()

	out, err := collect(rows, func(r scanner) (core.CategoryTotal, error) {
		var t core.CategoryTotal
		err := r.Scan(&t.CategoryID, &t.CategoryName, &t.CategoryIcon, &t.CategoryColor, &t.Total.Cents, &t.Count)
		return t, err
	})
	if err != nil {
		return nil, err
	}
	core.SortCategoryTotals(out)
	return out, nil
}

func (s *Store) SumExpensesBySubCategory(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.SubCategoryTotal, error) {
	from, to := monthRange(month)
	rows, err := s.query(ctx, `SELECT sc.id, sc.category_id, sc.name, CAST(SUM(e.amount_cents) AS BIGINT), COUNT(*)
		FROM expenses e
		JOIN sub_categories sc ON sc.id = e.sub_category_id AND sc.user_id = e.user_id
		WHERE e.user_id = ? AND e.sub_category_id <> '' AND e.date >= ? AND e.date <= ?
		GROUP BY sc.id, sc.category_id, sc.name`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("expenses by sub-category: %w", err)
	}
	defer rows.Close()

	out, err := collect(rows, func(r scanner) (core.SubCategoryTotal, error) {
		var t core.SubCategoryTotal
		err := r.Scan(&t.SubCategoryID, &t.CategoryID, &t.SubCategoryName, &t.Total.Cents, &t.Count)
		return t, err
	})
	if err != nil {
		return nil, err
	}
	core.SortSubCategoryTotals(out)
	return out, nil
}

func (s *Store) SumIncomeBySource(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.SourceTotal, error) {
	from, to := monthRange(month)
	rows, err := s.query(ctx, `SELECT src.id, src.name, src.icon, src.color, CAST(SUM(i.amount_cents) AS BIGINT), COUNT(*)
		FROM incomes i
		JOIN income_sources src ON src.id = i.income_source_id AND src.user_id = i.user_id
		WHERE i.user_id = ? AND i.date >= ? AND i.date <= ?
		GROUP BY src.id, src.name, src.icon, src.color`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("income by source: %w", err)
	}
	defer rows.Close()

	out, err := collect(rows, func(r scanner) (core.SourceTotal, error) {
		var t core.SourceTotal
		err := r.Scan(&t.SourceID, &t.SourceName, &t.SourceIcon, &t.SourceColor, &t.Total.Cents, &t.Count)
		return t, err
	})
	if err != nil {
		return nil, err
	}
	core.SortSourceTotals(out)
	return out, nil
}

// DatedAmounts returns raw rows; bucketing by day happens in core so both
// dialects agree on UTC day boundaries.
func (s *Store) DatedAmounts(ctx context.Context, userID core.ID, month core.MonthKey, kind core.TransactionKind) ([]core.DatedAmount, error) {
	table := ""
	switch kind {
	case core.KindExpense:
		table = "expenses"
	case core.KindIncome:
		table = "incomes"
	default:
		return nil, fmt.Errorf("unknown transaction kind %q", kind)
	}

	from, to := monthRange(month)
	rows, err := s.query(ctx,
		`SELECT date, amount_cents FROM `+table+` WHERE user_id = ? AND date >= ? AND date <= ?`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("dated %s: %w", kind, err)
	}
	defer rows.Close()

	return collect(rows, func(r scanner) (core.DatedAmount, error) {
		var (
			d  core.DatedAmount
			ms int64
		)
		if err := r.Scan(&ms, &d.Amount.Cents); err != nil {
			return d, err
		}
		d.Date = fromMillis(ms)
		return d, nil
	})
}
