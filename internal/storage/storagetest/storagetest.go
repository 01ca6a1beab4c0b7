// Package storagetest holds the behaviour every storage.Store backend must
// share. Backends call Run from their own tests.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Factory returns an empty store whose timestamps come from now.
type Factory func(t *testing.T, now func() time.Time) storage.Store

const (
	alice core.ID = "user-alice"
	bob   core.ID = "user-bob"
)

// Clock hands out strictly increasing timestamps, one second apart.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock() *Clock {
	return &Clock{t: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func Run(t *testing.T, newStore Factory) {
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore) })
	t.Run("IncomeSources", func(t *testing.T) { testIncomeSources(t, newStore) })
	t.Run("Expenses", func(t *testing.T) { testExpenses(t, newStore) })
	t.Run("Incomes", func(t *testing.T) { testIncomes(t, newStore) })
	t.Run("Budgets", func(t *testing.T) { testBudgets(t, newStore) })
	t.Run("Aggregates", func(t *testing.T) { testAggregates(t, newStore) })
}

func category(user core.ID, name string) core.Category {
	return core.Category{ID: core.NewID(), UserID: user, Name: name, Icon: "🛒", Color: "#10B981"}
}

func expense(user, cat core.ID, cents int64, d core.Date) core.Expense {
	return core.Expense{ID: core.NewID(), UserID: user, Title: "item", Amount: core.Money{Cents: cents}, Date: d, CategoryID: cat}
}

func testCategories(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, NewClock().Now)

	food := category(alice, "Food")
	rent := category(alice, "Rent")
	require.NoError(t, s.CreateCategory(ctx, rent))
	require.NoError(t, s.CreateCategory(ctx, food))
	require.NoError(t, s.CreateCategory(ctx, category(bob, "Bob's")))

	got, err := s.GetCategory(ctx, alice, food.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.GetCategory(ctx, bob, food.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	list, err := s.ListCategories(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Food", list[0].Name)
	assert.Equal(t, "Rent", list[1].Name)

	food.Name = "Groceries"
	require.NoError(t, s.UpdateCategory(ctx, food))
	got, err = s.GetCategory(ctx, alice, food.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)

	stolen := food
	stolen.UserID = bob
	assert.ErrorIs(t, s.UpdateCategory(ctx, stolen), core.ErrNotFound)

	sub := core.SubCategory{ID: core.NewID(), UserID: alice, CategoryID: food.ID, Name: "Fruit"}
	require.NoError(t, s.CreateSubCategory(ctx, sub))
	orphan := core.SubCategory{ID: core.NewID(), UserID: alice, CategoryID: core.NewID(), Name: "Nowhere"}
	assert.ErrorIs(t, s.CreateSubCategory(ctx, orphan), core.ErrNotFound)

	subs, err := s.ListSubCategories(ctx, alice)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, food.ID, subs[0].CategoryID)

	assert.ErrorIs(t, s.DeleteCategory(ctx, bob, food.ID), core.ErrNotFound)
	require.NoError(t, s.DeleteCategory(ctx, alice, food.ID))
	_, err = s.GetSubCategory(ctx, alice, sub.ID)
	assert.ErrorIs(t, err, core.ErrNotFound, "sub-categories go with their category")
	assert.ErrorIs(t, s.DeleteCategory(ctx, alice, food.ID), core.ErrNotFound)
}

func testIncomeSources(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, NewClock().Now)

	salary := core.IncomeSource{ID: core.NewID(), UserID: alice, Name: "Salary", Color: "#22C55E"}
	require.NoError(t, s.CreateIncomeSource(ctx, salary))
	require.NoError(t, s.CreateIncomeSource(ctx, core.IncomeSource{ID: core.NewID(), UserID: alice, Name: "Freelance"}))

	list, err := s.ListIncomeSources(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Freelance", list[0].Name)

	salary.Name = "Wages"
	require.NoError(t, s.UpdateIncomeSource(ctx, salary))
	got, err := s.GetIncomeSource(ctx, alice, salary.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wages", got.Name)

	_, err = s.GetIncomeSource(ctx, bob, salary.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, s.DeleteIncomeSource(ctx, alice, salary.ID))
	assert.ErrorIs(t, s.DeleteIncomeSource(ctx, alice, salary.ID), core.ErrNotFound)
}

func testExpenses(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, NewClock().Now)

	food := category(alice, "Food")
	require.NoError(t, s.CreateCategory(ctx, food))
	fruit := core.SubCategory{ID: core.NewID(), UserID: alice, CategoryID: food.ID, Name: "Fruit"}
	require.NoError(t, s.CreateSubCategory(ctx, fruit))

	first := expense(alice, food.ID, 1000, core.NewDate(2025, 3, 10))
	first.SubCategoryID = fruit.ID
	second := expense(alice, food.ID, 2000, core.NewDate(2025, 3, 10))
	older := expense(alice, food.ID, 500, core.NewDate(2025, 3, 1))
	april := expense(alice, food.ID, 700, core.NewDate(2025, 4, 1))
	for _, e := range []core.Expense{first, second, older, april} {
		require.NoError(t, s.CreateExpense(ctx, e))
	}
	require.NoError(t, s.CreateExpense(ctx, expense(bob, food.ID, 9999, core.NewDate(2025, 3, 10))))

	march, err := s.ListExpenses(ctx, alice, core.MustMonthKey("2025-03"))
	require.NoError(t, err)
	require.Len(t, march, 3)
	assert.Equal(t, second.ID, march[0].ID, "same date: newest created first")
	assert.Equal(t, first.ID, march[1].ID)
	assert.Equal(t, older.ID, march[2].ID)
	assert.Equal(t, "Food", march[1].CategoryName)
	assert.Equal(t, "Fruit", march[1].SubCategoryName)

	recent, err := s.RecentExpenses(ctx, alice, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, april.ID, recent[0].ID)
	assert.Equal(t, second.ID, recent[1].ID)

	n, err := s.CountExpenses(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	older.Title = "renamed"
	older.Amount = core.Money{Cents: 650}
	require.NoError(t, s.UpdateExpense(ctx, older))
	got, err := s.GetExpense(ctx, alice, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, int64(650), got.Amount.Cents)
	assert.True(t, got.Date.Equal(core.NewDate(2025, 3, 1).Time))

	_, err = s.GetExpense(ctx, bob, older.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, s.DeleteExpense(ctx, bob, older.ID), core.ErrNotFound)
	require.NoError(t, s.DeleteExpense(ctx, alice, older.ID))

	require.NoError(t, s.DeleteCategory(ctx, alice, food.ID))
	got, err = s.GetExpense(ctx, alice, first.ID)
	require.NoError(t, err, "expenses survive their category")
	assert.Empty(t, got.CategoryName)
	assert.Equal(t, core.UnknownCategoryName, got.Transaction().GroupName)
}

func testIncomes(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, NewClock().Now)

	salary := core.IncomeSource{ID: core.NewID(), UserID: alice, Name: "Salary"}
	require.NoError(t, s.CreateIncomeSource(ctx, salary))

	in := core.Income{ID: core.NewID(), UserID: alice, SourceID: salary.ID, Amount: core.Money{Cents: 300000}, Date: core.NewDate(2025, 3, 27)}
	require.NoError(t, s.CreateIncome(ctx, in))
	feb := core.Income{ID: core.NewID(), UserID: alice, SourceID: salary.ID, Amount: core.Money{Cents: 290000}, Date: core.NewDate(2025, 2, 27)}
	require.NoError(t, s.CreateIncome(ctx, feb))

	list, err := s.ListIncomes(ctx, alice, core.MustMonthKey("2025-03"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Salary", list[0].SourceName)

	recent, err := s.RecentIncomes(ctx, alice, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, in.ID, recent[0].ID)

	in.Note = "bonus included"
	require.NoError(t, s.UpdateIncome(ctx, in))
	got, err := s.GetIncome(ctx, alice, in.ID)
	require.NoError(t, err)
	assert.Equal(t, "bonus included", got.Note)

	assert.ErrorIs(t, s.DeleteIncome(ctx, bob, in.ID), core.ErrNotFound)
	require.NoError(t, s.DeleteIncome(ctx, alice, in.ID))
	_, err = s.GetIncome(ctx, alice, in.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testBudgets(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, NewClock().Now)
	march := core.MustMonthKey("2025-03")

	food := category(alice, "Food")
	travel := category(alice, "Travel")
	require.NoError(t, s.CreateCategory(ctx, food))
	require.NoError(t, s.CreateCategory(ctx, travel))
	fruit := core.SubCategory{ID: core.NewID(), UserID: alice, CategoryID: food.ID, Name: "Fruit"}
	require.NoError(t, s.CreateSubCategory(ctx, fruit))

	foodBudget := core.Budget{ID: core.NewID(), UserID: alice, CategoryID: food.ID, Limit: core.Money{Cents: 50000}, Month: march}
	require.NoError(t, s.CreateBudget(ctx, foodBudget))

	dup := foodBudget
	dup.ID = core.NewID()
	assert.ErrorIs(t, s.CreateBudget(ctx, dup), core.ErrBudgetExists)

	fruitBudget := core.Budget{ID: core.NewID(), UserID: alice, CategoryID: food.ID, SubCategoryID: fruit.ID, Limit: core.Money{Cents: 10000}, Month: march}
	require.NoError(t, s.CreateBudget(ctx, fruitBudget), "sub-category budget is a different tuple")

	travelBudget := core.Budget{ID: core.NewID(), UserID: alice, CategoryID: travel.ID, Limit: core.Money{Cents: 100000}, Month: march}
	require.NoError(t, s.CreateBudget(ctx, travelBudget))

	bobs := foodBudget
	bobs.ID, bobs.UserID = core.NewID(), bob
	require.NoError(t, s.CreateBudget(ctx, bobs), "uniqueness is per user")

	exists, err := s.BudgetExists(ctx, alice, march, food.ID, "")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.BudgetExists(ctx, alice, march, food.ID, core.NewID())
	require.NoError(t, err)
	assert.False(t, exists, "an unrelated sub-category does not match")
	exists, err = s.BudgetExists(ctx, alice, march.Next(), food.ID, "")
	require.NoError(t, err)
	assert.False(t, exists)

	total, err := s.SumCategoryBudgets(ctx, alice, march)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), total.Cents)

	n, err := s.CountBudgets(ctx, alice, march)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, s.DeleteCategory(ctx, alice, travel.ID))
	views, err := s.ListBudgets(ctx, alice, march)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, travelBudget.ID, views[0].ID, "newest first")
	assert.True(t, views[0].CategoryMissing)
	assert.Equal(t, fruitBudget.ID, views[1].ID)
	assert.Equal(t, "Fruit", views[1].SubCategoryName)
	assert.Equal(t, "Food", views[2].CategoryName)
	assert.False(t, views[2].CategoryMissing)

	// moving the food budget onto a month it already has is a conflict
	april := foodBudget
	april.ID, april.Month = core.NewID(), march.Next()
	require.NoError(t, s.CreateBudget(ctx, april))
	moved := foodBudget
	moved.Month = march.Next()
	assert.ErrorIs(t, s.UpdateBudget(ctx, moved), core.ErrBudgetExists)

	changed := foodBudget
	changed.Limit = core.Money{Cents: 60000}
	changed.CategoryID = travel.ID
	require.NoError(t, s.UpdateBudget(ctx, changed))
	got, err := s.GetBudget(ctx, alice, foodBudget.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), got.Limit.Cents)
	assert.Equal(t, food.ID, got.CategoryID, "category is not editable")
	assert.Equal(t, march, got.Month)

	_, err = s.GetBudget(ctx, bob, foodBudget.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, s.DeleteBudget(ctx, alice, foodBudget.ID))
	assert.ErrorIs(t, s.DeleteBudget(ctx, alice, foodBudget.ID), core.ErrNotFound)
}

func testAggregates(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, NewClock().Now)
	march := core.MustMonthKey("2025-03")

	food := category(alice, "Food")
	fun := category(alice, "Fun")
	gone := category(alice, "Gone")
	for _, c := range []core.Category{food, fun, gone} {
		require.NoError(t, s.CreateCategory(ctx, c))
	}
	fruit := core.SubCategory{ID: core.NewID(), UserID: alice, CategoryID: food.ID, Name: "Fruit"}
	require.NoError(t, s.CreateSubCategory(ctx, fruit))

	withFruit := expense(alice, food.ID, 1200, core.NewDate(2025, 3, 1))
	withFruit.SubCategoryID = fruit.ID
	lastMoment := expense(alice, fun.ID, 300, core.DateOf(time.Date(2025, 3, 31, 23, 59, 59, 999_000_000, time.UTC)))
	rows := []core.Expense{
		withFruit,
		expense(alice, food.ID, 800, core.NewDate(2025, 3, 15)),
		expense(alice, fun.ID, 5000, core.NewDate(2025, 3, 20)),
		lastMoment,
		expense(alice, gone.ID, 400, core.NewDate(2025, 3, 2)),
		expense(alice, food.ID, 9000, core.NewDate(2025, 4, 1)),
		expense(alice, food.ID, 9000, core.DateOf(time.Date(2025, 2, 28, 23, 59, 59, 999_000_000, time.UTC))),
		expense(bob, food.ID, 7777, core.NewDate(2025, 3, 5)),
	}
	for _, e := range rows {
		require.NoError(t, s.CreateExpense(ctx, e))
	}
	require.NoError(t, s.DeleteCategory(ctx, alice, gone.ID))

	salary := core.IncomeSource{ID: core.NewID(), UserID: alice, Name: "Salary"}
	side := core.IncomeSource{ID: core.NewID(), UserID: alice, Name: "Side"}
	require.NoError(t, s.CreateIncomeSource(ctx, salary))
	require.NoError(t, s.CreateIncomeSource(ctx, side))
	for _, in := range []core.Income{
		{ID: core.NewID(), UserID: alice, SourceID: salary.ID, Amount: core.Money{Cents: 300000}, Date: core.NewDate(2025, 3, 27)},
		{ID: core.NewID(), UserID: alice, SourceID: side.ID, Amount: core.Money{Cents: 20000}, Date: core.NewDate(2025, 3, 5)},
		{ID: core.NewID(), UserID: alice, SourceID: side.ID, Amount: core.Money{Cents: 15000}, Date: core.NewDate(2025, 3, 6)},
	} {
		require.NoError(t, s.CreateIncome(ctx, in))
	}

	sum := func(q storage.AmountQuery) int64 {
		t.Helper()
		m, err := s.SumAmount(ctx, q)
		require.NoError(t, err)
		return m.Cents
	}
	assert.Equal(t, int64(7700), sum(storage.AmountQuery{UserID: alice, Month: march, Kind: core.KindExpense}),
		"totals include dangling categories and the last millisecond of the month")
	assert.Equal(t, int64(2000), sum(storage.AmountQuery{UserID: alice, Month: march, Kind: core.KindExpense, GroupID: food.ID}))
	assert.Equal(t, int64(1200), sum(storage.AmountQuery{UserID: alice, Month: march, Kind: core.KindExpense, GroupID: food.ID, SubCategoryID: fruit.ID}))
	assert.Equal(t, int64(335000), sum(storage.AmountQuery{UserID: alice, Month: march, Kind: core.KindIncome}))
	assert.Equal(t, int64(35000), sum(storage.AmountQuery{UserID: alice, Month: march, Kind: core.KindIncome, GroupID: side.ID}))
	assert.Equal(t, int64(0), sum(storage.AmountQuery{UserID: alice, Month: march.Prev().Prev(), Kind: core.KindExpense}))

	byCat, err := s.SumExpensesByCategory(ctx, alice, march)
	require.NoError(t, err)
	require.Len(t, byCat, 2, "deleted categories are left out of the breakdown")
	assert.Equal(t, "Fun", byCat[0].CategoryName)
	assert.Equal(t, int64(5300), byCat[0].Total.Cents)
	assert.Equal(t, 2, byCat[0].Count)
	assert.Equal(t, int64(2000), byCat[1].Total.Cents)

	bySub, err := s.SumExpensesBySubCategory(ctx, alice, march)
	require.NoError(t, err)
	require.Len(t, bySub, 1)
	assert.Equal(t, "Fruit", bySub[0].SubCategoryName)
	assert.Equal(t, food.ID, bySub[0].CategoryID)
	assert.Equal(t, int64(1200), bySub[0].Total.Cents)

	bySource, err := s.SumIncomeBySource(ctx, alice, march)
	require.NoError(t, err)
	require.Len(t, bySource, 2)
	assert.Equal(t, "Salary", bySource[0].SourceName)
	assert.Equal(t, 2, bySource[1].Count)

	dated, err := s.DatedAmounts(ctx, alice, march, core.KindExpense)
	require.NoError(t, err)
	assert.Len(t, dated, 5)
	daily := core.DailyTotals(march, dated, nil)
	assert.Equal(t, int64(300), daily[30].Expenses.Cents)

	incomeDates, err := s.DatedAmounts(ctx, alice, march, core.KindIncome)
	require.NoError(t, err)
	assert.Len(t, incomeDates, 3)
}
