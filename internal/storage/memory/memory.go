// Package memory is an in-process storage backend. It is the default for
// local runs and the reference implementation in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	categories    map[core.ID]core.Category
	subCategories map[core.ID]core.SubCategory
	sources       map[core.ID]core.IncomeSource
	expenses      map[core.ID]core.Expense
	incomes       map[core.ID]core.Income
	budgets       map[core.ID]core.Budget
}

func New() *Store {
	return &Store{
		now:           time.Now,
		categories:    map[core.ID]core.Category{},
		subCategories: map[core.ID]core.SubCategory{},
		sources:       map[core.ID]core.IncomeSource{},
		expenses:      map[core.ID]core.Expense{},
		incomes:       map[core.ID]core.Income{},
		budgets:       map[core.ID]core.Budget{},
	}
}

// WithClock overrides the timestamp source, for deterministic ordering in tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error              { return nil }

func (s *Store) stamp(created *time.Time, updated *time.Time) {
	now := s.now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// Categories

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&c.CreatedAt, &c.UpdatedAt)
	s.categories[c.ID] = c
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.categories[c.ID]
	if !ok || cur.UserID != c.UserID {
		return core.ErrNotFound
	}
	cur.Name, cur.Icon, cur.Color = c.Name, c.Icon, c.Color
	s.stamp(&cur.CreatedAt, &cur.UpdatedAt)
	s.categories[c.ID] = cur
	return nil
}

// DeleteCategory removes the category and its sub-categories. Expenses and
// budgets that point at it are left dangling.
func (s *Store) DeleteCategory(_ context.Context, userID, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.categories[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.categories, id)
	for sid, sc := range s.subCategories {
		if sc.CategoryID == id {
			delete(s.subCategories, sid)
		}
	}
	return nil
}

func (s *Store) GetCategory(_ context.Context, userID, id core.ID) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, userID core.ID) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0)
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateSubCategory(_ context.Context, sc core.SubCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, ok := s.categories[sc.CategoryID]
	if !ok || parent.UserID != sc.UserID {
		return core.ErrNotFound
	}
	s.stamp(&sc.CreatedAt, &sc.UpdatedAt)
	s.subCategories[sc.ID] = sc
	return nil
}

func (s *Store) DeleteSubCategory(_ context.Context, userID, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.subCategories[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.subCategories, id)
	return nil
}

func (s *Store) GetSubCategory(_ context.Context, userID, id core.ID) (core.SubCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.subCategories[id]
	if !ok || sc.UserID != userID {
		return core.SubCategory{}, core.ErrNotFound
	}
	return sc, nil
}

func (s *Store) ListSubCategories(_ context.Context, userID core.ID) ([]core.SubCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.SubCategory, 0)
	for _, sc := range s.subCategories {
		if sc.UserID == userID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Income sources

func (s *Store) CreateIncomeSource(_ context.Context, src core.IncomeSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&src.CreatedAt, &src.UpdatedAt)
	s.sources[src.ID] = src
	return nil
}

func (s *Store) UpdateIncomeSource(_ context.Context, src core.IncomeSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sources[src.ID]
	if !ok || cur.UserID != src.UserID {
		return core.ErrNotFound
	}
	cur.Name, cur.Icon, cur.Color = src.Name, src.Icon, src.Color
	s.stamp(&cur.CreatedAt, &cur.UpdatedAt)
	s.sources[src.ID] = cur
	return nil
}

func (s *Store) DeleteIncomeSource(_ context.Context, userID, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sources[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.sources, id)
	return nil
}

func (s *Store) GetIncomeSource(_ context.Context, userID, id core.ID) (core.IncomeSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[id]
	if !ok || src.UserID != userID {
		return core.IncomeSource{}, core.ErrNotFound
	}
	return src, nil
}

func (s *Store) ListIncomeSources(_ context.Context, userID core.ID) ([]core.IncomeSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.IncomeSource, 0)
	for _, src := range s.sources {
		if src.UserID == userID {
			out = append(out, src)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Expenses

func (s *Store) CreateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&e.CreatedAt, &e.UpdatedAt)
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.expenses[e.ID]
	if !ok || cur.UserID != e.UserID {
		return core.ErrNotFound
	}
	e.CreatedAt = cur.CreatedAt
	s.stamp(&e.CreatedAt, &e.UpdatedAt)
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.expenses[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) GetExpense(_ context.Context, userID, id core.ID) (core.ExpenseView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.ExpenseView{}, core.ErrNotFound
	}
	return s.expenseView(e), nil
}

func (s *Store) ListExpenses(_ context.Context, userID core.ID, month core.MonthKey) ([]core.ExpenseView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.ExpenseView, 0)
	for _, e := range s.expenses {
		if e.UserID == userID && month.Contains(e.Date.Time) {
			out = append(out, s.expenseView(e))
		}
	}
	sortExpenses(out)
	return out, nil
}

func (s *Store) RecentExpenses(_ context.Context, userID core.ID, limit int) ([]core.ExpenseView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.ExpenseView, 0)
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, s.expenseView(e))
		}
	}
	sortExpenses(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountExpenses(_ context.Context, userID core.ID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.expenses {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) expenseView(e core.Expense) core.ExpenseView {
	v := core.ExpenseView{Expense: e}
	if c, ok := s.categories[e.CategoryID]; ok && c.UserID == e.UserID {
		v.CategoryName, v.CategoryIcon, v.CategoryColor = c.Name, c.Icon, c.Color
	}
	if sc, ok := s.subCategories[e.SubCategoryID]; ok && sc.UserID == e.UserID {
		v.SubCategoryName = sc.Name
	}
	return v
}

func sortExpenses(v []core.ExpenseView) {
	sort.Slice(v, func(i, j int) bool {
		if !v[i].Date.Equal(v[j].Date.Time) {
			return v[i].Date.After(v[j].Date.Time)
		}
		return v[i].CreatedAt.After(v[j].CreatedAt)
	})
}

// Incomes

func (s *Store) CreateIncome(_ context.Context, in core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&in.CreatedAt, &in.UpdatedAt)
	s.incomes[in.ID] = in
	return nil
}

func (s *Store) UpdateIncome(_ context.Context, in core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.incomes[in.ID]
	if !ok || cur.UserID != in.UserID {
		return core.ErrNotFound
	}
	in.CreatedAt = cur.CreatedAt
	s.stamp(&in.CreatedAt, &in.UpdatedAt)
	s.incomes[in.ID] = in
	return nil
}

func (s *Store) DeleteIncome(_ context.Context, userID, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.incomes[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.incomes, id)
	return nil
}

func (s *Store) GetIncome(_ context.Context, userID, id core.ID) (core.IncomeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.incomes[id]
	if !ok || in.UserID != userID {
		return core.IncomeView{}, core.ErrNotFound
	}
	return s.incomeView(in), nil
}

func (s *Store) ListIncomes(_ context.Context, userID core.ID, month core.MonthKey) ([]core.IncomeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.IncomeView, 0)
	for _, in := range s.incomes {
		if in.UserID == userID && month.Contains(in.Date.Time) {
			out = append(out, s.incomeView(in))
		}
	}
	sortIncomes(out)
	return out, nil
}

func (s *Store) RecentIncomes(_ context.Context, userID core.ID, limit int) ([]core.IncomeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.IncomeView, 0)
	for _, in := range s.incomes {
		if in.UserID == userID {
			out = append(out, s.incomeView(in))
		}
	}
	sortIncomes(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) incomeView(in core.Income) core.IncomeView {
	v := core.IncomeView{Income: in}
	if src, ok := s.sources[in.SourceID]; ok && src.UserID == in.UserID {
		v.SourceName, v.SourceIcon, v.SourceColor = src.Name, src.Icon, src.Color
	}
	return v
}

func sortIncomes(v []core.IncomeView) {
	sort.Slice(v, func(i, j int) bool {
		if !v[i].Date.Equal(v[j].Date.Time) {
			return v[i].Date.After(v[j].Date.Time)
		}
		return v[i].CreatedAt.After(v[j].CreatedAt)
	})
}

// Budgets

func (s *Store) CreateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.budgetTaken(b.UserID, b.Month, b.CategoryID, b.SubCategoryID, "") {
		return core.ErrBudgetExists
	}
	s.stamp(&b.CreatedAt, &b.UpdatedAt)
	s.budgets[b.ID] = b
	return nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.budgets[b.ID]
	if !ok || cur.UserID != b.UserID {
		return core.ErrNotFound
	}
	if s.budgetTaken(cur.UserID, b.Month, cur.CategoryID, cur.SubCategoryID, cur.ID) {
		return core.ErrBudgetExists
	}
	cur.Limit, cur.Month = b.Limit, b.Month
	s.stamp(&cur.CreatedAt, &cur.UpdatedAt)
	s.budgets[b.ID] = cur
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.budgets[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) GetBudget(_ context.Context, userID, id core.ID) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBudgets(_ context.Context, userID core.ID, month core.MonthKey) ([]core.BudgetView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.BudgetView, 0)
	for _, b := range s.budgets {
		if b.UserID != userID || b.Month != month {
			continue
		}
		v := core.BudgetView{Budget: b, CategoryMissing: true}
		if c, ok := s.categories[b.CategoryID]; ok && c.UserID == userID {
			v.CategoryName, v.CategoryIcon, v.CategoryColor = c.Name, c.Icon, c.Color
			v.CategoryMissing = false
		}
		if sc, ok := s.subCategories[b.SubCategoryID]; ok && sc.UserID == userID {
			v.SubCategoryName = sc.Name
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) BudgetExists(_ context.Context, userID core.ID, month core.MonthKey, categoryID, subCategoryID core.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budgetTaken(userID, month, categoryID, subCategoryID, ""), nil
}

func (s *Store) budgetTaken(userID core.ID, month core.MonthKey, categoryID, subCategoryID, except core.ID) bool {
	for _, b := range s.budgets {
		if b.ID == except {
			continue
		}
		if b.UserID == userID && b.Month == month && b.CategoryID == categoryID && b.SubCategoryID == subCategoryID {
			return true
		}
	}
	return false
}

func (s *Store) SumCategoryBudgets(_ context.Context, userID core.ID, month core.MonthKey) (core.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total core.Money
	for _, b := range s.budgets {
		if b.UserID == userID && b.Month == month && b.IsCategoryLevel() {
			total = total.Add(b.Limit)
		}
	}
	return total, nil
}

func (s *Store) CountBudgets(_ context.Context, userID core.ID, month core.MonthKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.budgets {
		if b.UserID == userID && b.Month == month {
			n++
		}
	}
	return n, nil
}

// Aggregates

func (s *Store) SumAmount(_ context.Context, q storage.AmountQuery) (core.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total core.Money
	switch q.Kind {
	case core.KindExpense:
		for _, e := range s.expenses {
			if e.UserID != q.UserID || !q.Month.Contains(e.Date.Time) {
				continue
			}
			if !q.GroupID.IsZero() && e.CategoryID != q.GroupID {
				continue
			}
			if !q.SubCategoryID.IsZero() && e.SubCategoryID != q.SubCategoryID {
				continue
			}
			total = total.Add(e.Amount)
		}
	case core.KindIncome:
		for _, in := range s.incomes {
			if in.UserID != q.UserID || !q.Month.Contains(in.Date.Time) {
				continue
			}
			if !q.GroupID.IsZero() && in.SourceID != q.GroupID {
				continue
			}
			total = total.Add(in.Amount)
		}
	}
	return total, nil
}

func (s *Store) SumExpensesByCategory(_ context.Context, userID core.ID, month core.MonthKey) ([]core.CategoryTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := map[core.ID]*core.CategoryTotal{}
	for _, e := range s.expenses {
		if e.UserID != userID || !month.Contains(e.Date.Time) {
			continue
		}
		c, ok := s.categories[e.CategoryID]
		if !ok || c.UserID != userID {
			continue
		}
		g, ok := groups[c.ID]
		if !ok {
			g = &core.CategoryTotal{CategoryID: c.ID, CategoryName: c.Name, CategoryIcon: c.Icon, CategoryColor: c.Color}
			groups[c.ID] = g
		}
		g.Total = g.Total.Add(e.Amount)
		g.Count++
	}
	out := make([]core.CategoryTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	core.SortCategoryTotals(out)
	return out, nil
}

func (s *Store) SumExpensesBySubCategory(_ context.Context, userID core.ID, month core.MonthKey) ([]core.SubCategoryTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := map[core.ID]*core.SubCategoryTotal{}
	for _, e := range s.expenses {
		if e.UserID != userID || e.SubCategoryID.IsZero() || !month.Contains(e.Date.Time) {
			continue
		}
		sc, ok := s.subCategories[e.SubCategoryID]
		if !ok || sc.UserID != userID {
			continue
		}
		g, ok := groups[sc.ID]
		if !ok {
			g = &core.SubCategoryTotal{SubCategoryID: sc.ID, CategoryID: e.CategoryID, SubCategoryName: sc.Name}
			groups[sc.ID] = g
		}
		g.Total = g.Total.Add(e.Amount)
		g.Count++
	}
	out := make([]core.SubCategoryTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	core.SortSubCategoryTotals(out)
	return out, nil
}

func (s *Store) SumIncomeBySource(_ context.Context, userID core.ID, month core.MonthKey) ([]core.SourceTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := map[core.ID]*core.SourceTotal{}
	for _, in := range s.incomes {
		if in.UserID != userID || !month.Contains(in.Date.Time) {
			continue
		}
		src, ok := s.sources[in.SourceID]
		if !ok || src.UserID != userID {
			continue
		}
		g, ok := groups[src.ID]
		if !ok {
			g = &core.SourceTotal{SourceID: src.ID, SourceName: src.Name, SourceIcon: src.Icon, SourceColor: src.Color}
			groups[src.ID] = g
		}
		g.Total = g.Total.Add(in.Amount)
		g.Count++
	}
	out := make([]core.SourceTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	core.SortSourceTotals(out)
	return out, nil
}

func (s *Store) DatedAmounts(_ context.Context, userID core.ID, month core.MonthKey, kind core.TransactionKind) ([]core.DatedAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.DatedAmount, 0)
	switch kind {
	case core.KindExpense:
		for _, e := range s.expenses {
			if e.UserID == userID && month.Contains(e.Date.Time) {
				out = append(out, core.DatedAmount{Date: e.Date.Time, Amount: e.Amount})
			}
		}
	case core.KindIncome:
		for _, in := range s.incomes {
			if in.UserID == userID && month.Contains(in.Date.Time) {
				out = append(out, core.DatedAmount{Date: in.Date.Time, Amount: in.Amount})
			}
		}
	}
	return out, nil
}
