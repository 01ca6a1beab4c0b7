package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

func (s *Store) CreateCategory(ctx context.Context, c core.Category) error {
	now := s.stamp()
	_, err := s.exec(ctx,
		`INSERT INTO categories (id, user_id, name, icon, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Icon, c.Color, now, now)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	err := mustAffect(s.exec(ctx,
		`UPDATE categories SET name = ?, icon = ?, color = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.Icon, c.Color, s.stamp(), c.ID, c.UserID))
	if err != nil && err != core.ErrNotFound {
		return fmt.Errorf("update category: %w", err)
	}
	return err
}

// DeleteCategory removes the category and its sub-categories in one
// transaction. Expenses and budgets referencing it are kept.
func (s *Store) DeleteCategory(ctx context.Context, userID, id core.ID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = mustAffect(tx.ExecContext(ctx,
		s.dialect.rebind(`DELETE FROM categories WHERE id = ? AND user_id = ?`), id, userID))
	if err != nil {
		if err == core.ErrNotFound {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		s.dialect.rebind(`DELETE FROM sub_categories WHERE category_id = ? AND user_id = ?`), id, userID); err != nil {
		return fmt.Errorf("delete sub-categories: %w", err)
	}
	return tx.Commit()
}

const categoryColumns = `id, user_id, name, icon, color, created_at, updated_at`

func scanCategory(row scanner) (core.Category, error) {
	var (
		c                core.Category
		created, updated int64
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color, &created, &updated); err != nil {
		return core.Category{}, err
	}
	c.CreatedAt, c.UpdatedAt = fromMillis(created), fromMillis(updated)
	return c, nil
}

func (s *Store) GetCategory(ctx context.Context, userID, id core.ID) (core.Category, error) {
	c, err := scanCategory(s.queryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.Category{}, noRows(err)
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, userID core.ID) ([]core.Category, error) {
	rows, err := s.query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanCategory)
}

func (s *Store) CreateSubCategory(ctx context.Context, sc core.SubCategory) error {
	var n int
	if err := s.queryRow(ctx,
		`SELECT COUNT(*) FROM categories WHERE id = ? AND user_id = ?`, sc.CategoryID, sc.UserID).Scan(&n); err != nil {
		return fmt.Errorf("check parent category: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	now := s.stamp()
	_, err := s.exec(ctx,
		`INSERT INTO sub_categories (id, user_id, category_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.UserID, sc.CategoryID, sc.Name, now, now)
	if err != nil {
		return fmt.Errorf("insert sub-category: %w", err)
	}
	return nil
}

func (s *Store) DeleteSubCategory(ctx context.Context, userID, id core.ID) error {
	err := mustAffect(s.exec(ctx, `DELETE FROM sub_categories WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil && err != core.ErrNotFound {
		return fmt.Errorf("delete sub-category: %w", err)
	}
	return err
}

const subCategoryColumns = `id, user_id, category_id, name, created_at, updated_at`

func scanSubCategory(row scanner) (core.SubCategory, error) {
	var (
		sc               core.SubCategory
		created, updated int64
	)
	if err := row.Scan(&sc.ID, &sc.UserID, &sc.CategoryID, &sc.Name, &created, &updated); err != nil {
		return core.SubCategory{}, err
	}
	sc.CreatedAt, sc.UpdatedAt = fromMillis(created), fromMillis(updated)
	return sc, nil
}

func (s *Store) GetSubCategory(ctx context.Context, userID, id core.ID) (core.SubCategory, error) {
	sc, err := scanSubCategory(s.queryRow(ctx,
		`SELECT `+subCategoryColumns+` FROM sub_categories WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.SubCategory{}, noRows(err)
	}
	return sc, nil
}

func (s *Store) ListSubCategories(ctx context.Context, userID core.ID) ([]core.SubCategory, error) {
	rows, err := s.query(ctx,
		`SELECT `+subCategoryColumns+` FROM sub_categories WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sub-categories: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanSubCategory)
}

func (s *Store) CreateIncomeSource(ctx context.Context, src core.IncomeSource) error {
	now := s.stamp()
	_, err := s.exec(ctx,
		`INSERT INTO income_sources (id, user_id, name, icon, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		src.ID, src.UserID, src.Name, src.Icon, src.Color, now, now)
	if err != nil {
		return fmt.Errorf("insert income source: %w", err)
	}
	return nil
}

func (s *Store) UpdateIncomeSource(ctx context.Context, src core.IncomeSource) error {
	err := mustAffect(s.exec(ctx,
		`UPDATE income_sources SET name = ?, icon = ?, color = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		src.Name, src.Icon, src.Color, s.stamp(), src.ID, src.UserID))
	if err != nil && err != core.ErrNotFound {
		return fmt.Errorf("update income source: %w", err)
	}
	return err
}

func (s *Store) DeleteIncomeSource(ctx context.Context, userID, id core.ID) error {
	err := mustAffect(s.exec(ctx, `DELETE FROM income_sources WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil && err != core.ErrNotFound {
		return fmt.Errorf("delete income source: %w", err)
	}
	return err
}

func scanIncomeSource(row scanner) (core.IncomeSource, error) {
	var (
		src              core.IncomeSource
		created, updated int64
	)
	if err := row.Scan(&src.ID, &src.UserID, &src.Name, &src.Icon, &src.Color, &created, &updated); err != nil {
		return core.IncomeSource{}, err
	}
	src.CreatedAt, src.UpdatedAt = fromMillis(created), fromMillis(updated)
	return src, nil
}

func (s *Store) GetIncomeSource(ctx context.Context, userID, id core.ID) (core.IncomeSource, error) {
	src, err := scanIncomeSource(s.queryRow(ctx,
		`SELECT `+categoryColumns+` FROM income_sources WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.IncomeSource{}, noRows(err)
	}
	return src, nil
}

func (s *Store) ListIncomeSources(ctx context.Context, userID core.ID) ([]core.IncomeSource, error) {
	rows, err := s.query(ctx,
		`SELECT `+categoryColumns+` FROM income_sources WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanIncomeSource)
}

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
