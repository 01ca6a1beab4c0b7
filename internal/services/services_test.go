package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
	"fintrack/internal/storage/storagetest"
)

const user core.ID = "user-1"

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.TransactionChangedMessage
	err  error
}

func (p *recordingPublisher) PublishTransactionChanged(_ context.Context, msg *amqp.TransactionChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

type fixture struct {
	store      *memory.Store
	pub        *recordingPublisher
	agg        *Aggregator
	budgets    *BudgetService
	expenses   *ExpenseService
	incomes    *IncomeService
	categories *CategoryService
	sources    *IncomeSourceService
	dashboard  *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New().WithClock(storagetest.NewClock().Now)
	pub := &recordingPublisher{}
	agg := NewAggregator(store)
	budgets := NewBudgetService(store, store, agg)
	return &fixture{
		store:      store,
		pub:        pub,
		agg:        agg,
		budgets:    budgets,
		expenses:   NewExpenseService(store, store, pub),
		incomes:    NewIncomeService(store, store, pub),
		categories: NewCategoryService(store, agg),
		sources:    NewIncomeSourceService(store),
		dashboard:  NewDashboardService(store, agg, budgets, 5),
	}
}

func (f *fixture) category(t *testing.T, name string) core.Category {
	t.Helper()
	res := f.categories.Create(context.Background(), user, LabelInput{Name: name})
	require.True(t, res.Success, res.Error)
	return res.Data
}

func (f *fixture) expense(t *testing.T, cat core.ID, amount string, date string) core.Expense {
	t.Helper()
	cents, err := core.ParseDecimalToCents(amount)
	require.NoError(t, err)
	d, err := core.ParseDate(date)
	require.NoError(t, err)
	res := f.expenses.Create(context.Background(), user, ExpenseInput{
		Title: "expense", Amount: core.Money{Cents: cents}, Date: d, CategoryID: cat,
	})
	require.True(t, res.Success, res.Error)
	return res.Data
}

func (f *fixture) budget(t *testing.T, cat, sub core.ID, limit int64, month string) core.Budget {
	t.Helper()
	res := f.budgets.Create(context.Background(), user, BudgetInput{
		CategoryID: cat, SubCategoryID: sub, Limit: core.Money{Cents: limit}, Month: core.MustMonthKey(month),
	})
	require.True(t, res.Success, res.Error)
	return res.Data
}

func TestBudgetProgressScenarios(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	f.budget(t, food.ID, "", 10000, "2025-01")
	f.expense(t, food.ID, "45.50", "2025-01-05")

	progress, err := f.budgets.Progress(ctx, user, core.MustMonthKey("2025-01"))
	require.NoError(t, err)
	require.Len(t, progress, 1)
	p := progress[0]
	assert.Equal(t, "Food", p.CategoryName)
	assert.Equal(t, int64(10000), p.Limit.Cents)
	assert.Equal(t, int64(4550), p.Spent.Cents)
	assert.Equal(t, int64(5450), p.Remaining.Cents)
	assert.Equal(t, 46, p.Percentage)
	assert.False(t, p.IsOverBudget)
	assert.Equal(t, core.AlertSafe, p.AlertLevel)

	f.expense(t, food.ID, "60", "2025-01-20")
	progress, err = f.budgets.Progress(ctx, user, core.MustMonthKey("2025-01"))
	require.NoError(t, err)
	p = progress[0]
	assert.Equal(t, int64(10550), p.Spent.Cents)
	assert.Equal(t, int64(-550), p.Remaining.Cents)
	assert.Equal(t, 106, p.Percentage)
	assert.True(t, p.IsOverBudget)
	assert.Equal(t, core.AlertOver, p.AlertLevel)

	again, err := f.budgets.Progress(ctx, user, core.MustMonthKey("2025-01"))
	require.NoError(t, err)
	assert.Equal(t, progress, again, "progress is a pure function of stored state")
}

func TestBudgetProgressSubCategoryScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	fruit := f.categories.CreateSubCategory(ctx, user, food.ID, "Fruit")
	require.True(t, fruit.Success)

	f.budget(t, food.ID, "", 50000, "2025-03")
	f.budget(t, food.ID, fruit.Data.ID, 10000, "2025-03")

	withSub := f.expenses.Create(ctx, user, ExpenseInput{
		Title: "apples", Amount: core.Money{Cents: 900}, Date: core.NewDate(2025, 3, 3),
		CategoryID: food.ID, SubCategoryID: fruit.Data.ID,
	})
	require.True(t, withSub.Success, withSub.Error)
	f.expense(t, food.ID, "20", "2025-03-04")

	page, err := f.budgets.Page(ctx, user, core.MustMonthKey("2025-03"))
	require.NoError(t, err)
	require.Len(t, page.Progress, 2)

	byID := map[core.ID]core.BudgetProgress{}
	for _, p := range page.Progress {
		byID[p.BudgetID] = p
	}
	for _, b := range page.Budgets {
		p := byID[b.ID]
		if b.IsCategoryLevel() {
			assert.Equal(t, int64(2900), p.Spent.Cents)
		} else {
			assert.Equal(t, int64(900), p.Spent.Cents)
			assert.Equal(t, "Fruit", p.SubCategoryName)
			assert.Equal(t, 9, p.Percentage)
		}
	}
	assert.Equal(t, int64(50000), page.Summary.TotalBudget.Cents, "sub-category budgets are not double counted")
	assert.Equal(t, int64(2900), page.Summary.TotalSpent.Cents)
	assert.Empty(t, page.Alerts)
}

func TestBudgetProgressDanglingCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	travel := f.category(t, "Travel")
	f.budget(t, travel.ID, "", 20000, "2025-03")
	f.expense(t, travel.ID, "190", "2025-03-09")

	require.True(t, f.categories.Delete(ctx, user, travel.ID).Success)

	progress, err := f.budgets.Progress(ctx, user, core.MustMonthKey("2025-03"))
	require.NoError(t, err)
	require.Len(t, progress, 1, "the budget survives its category")
	assert.Equal(t, core.UnknownCategoryName, progress[0].CategoryName)
	assert.Equal(t, int64(19000), progress[0].Spent.Cents)
	assert.Equal(t, core.AlertDanger, progress[0].AlertLevel)

	alerts, err := f.budgets.Alerts(ctx, user, core.MustMonthKey("2025-03"))
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestBudgetCreateRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	f.budget(t, food.ID, "", 10000, "2025-01")

	dup := f.budgets.Create(ctx, user, BudgetInput{CategoryID: food.ID, Limit: core.Money{Cents: 500}, Month: core.MustMonthKey("2025-01")})
	assert.False(t, dup.Success)
	assert.ErrorIs(t, dup.Err, core.ErrBudgetExists)
	assert.Equal(t, core.ErrBudgetExists.Error(), dup.Error)

	cases := map[string]BudgetInput{
		"zero limit":       {CategoryID: food.ID, Limit: core.Money{}, Month: core.MustMonthKey("2025-02")},
		"limit too large":  {CategoryID: food.ID, Limit: core.Money{Cents: core.MaxBudgetCents + 1}, Month: core.MustMonthKey("2025-02")},
		"no month":         {CategoryID: food.ID, Limit: core.Money{Cents: 100}},
		"no category":      {Limit: core.Money{Cents: 100}, Month: core.MustMonthKey("2025-02")},
		"malformed id":     {CategoryID: "food", Limit: core.Money{Cents: 100}, Month: core.MustMonthKey("2025-02")},
		"foreign category": {CategoryID: core.NewID(), Limit: core.Money{Cents: 100}, Month: core.MustMonthKey("2025-02")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			res := f.budgets.Create(ctx, user, in)
			assert.False(t, res.Success)
			assert.True(t, core.IsValidation(res.Err), "got %v", res.Err)
		})
	}

	other := f.category(t, "Other")
	sub := f.categories.CreateSubCategory(ctx, user, other.ID, "Misc")
	require.True(t, sub.Success)
	mismatch := f.budgets.Create(ctx, user, BudgetInput{
		CategoryID: food.ID, SubCategoryID: sub.Data.ID, Limit: core.Money{Cents: 100}, Month: core.MustMonthKey("2025-01"),
	})
	assert.ErrorIs(t, mismatch.Err, core.ErrSubCategoryMismatch)
}

func TestBudgetUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	jan := f.budget(t, food.ID, "", 10000, "2025-01")
	f.budget(t, food.ID, "", 10000, "2025-02")

	res := f.budgets.Update(ctx, user, jan.ID, BudgetUpdate{Limit: ptr(core.Money{Cents: 25000}), Month: ptr(core.MustMonthKey("2025-01"))})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, int64(25000), res.Data.Limit.Cents)

	clash := f.budgets.Update(ctx, user, jan.ID, BudgetUpdate{Month: ptr(core.MustMonthKey("2025-02"))})
	assert.ErrorIs(t, clash.Err, core.ErrBudgetExists)

	foreign := f.budgets.Update(ctx, "someone-else", jan.ID, BudgetUpdate{Limit: ptr(core.Money{Cents: 1})})
	assert.ErrorIs(t, foreign.Err, core.ErrNotFound)

	assert.ErrorIs(t, f.budgets.Delete(ctx, user, "not-a-uuid").Err, core.ErrInvalidID)
	require.True(t, f.budgets.Delete(ctx, user, jan.ID).Success)
	assert.ErrorIs(t, f.budgets.Delete(ctx, user, jan.ID).Err, core.ErrNotFound)

	has, err := f.budgets.HasBudgets(ctx, user, core.MustMonthKey("2025-01"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBudgetPartialUpdateKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	jan := f.budget(t, food.ID, "", 10000, "2025-01")

	limitOnly := f.budgets.Update(ctx, user, jan.ID, BudgetUpdate{Limit: ptr(core.Money{Cents: 15000})})
	require.True(t, limitOnly.Success, limitOnly.Error)
	assert.Equal(t, int64(15000), limitOnly.Data.Limit.Cents)
	assert.Equal(t, "2025-01", limitOnly.Data.Month.String())
	assert.Equal(t, jan.CreatedAt, limitOnly.Data.CreatedAt)
	assert.True(t, limitOnly.Data.UpdatedAt.After(jan.UpdatedAt))

	monthOnly := f.budgets.Update(ctx, user, jan.ID, BudgetUpdate{Month: ptr(core.MustMonthKey("2025-03"))})
	require.True(t, monthOnly.Success, monthOnly.Error)
	assert.Equal(t, int64(15000), monthOnly.Data.Limit.Cents)
	assert.Equal(t, "2025-03", monthOnly.Data.Month.String())

	empty := f.budgets.Update(ctx, user, jan.ID, BudgetUpdate{})
	assert.True(t, core.IsValidation(empty.Err), "got %v", empty.Err)

	zero := f.budgets.Update(ctx, user, jan.ID, BudgetUpdate{Limit: ptr(core.Money{})})
	assert.True(t, core.IsValidation(zero.Err), "got %v", zero.Err)
}

func TestExpenseLifecyclePublishesEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")

	e := f.expense(t, food.ID, "12.30", "2025-03-05")
	upd := f.expenses.Update(ctx, user, e.ID, ExpenseInput{
		Title: "  lunch  ", Amount: core.Money{Cents: 1500}, Date: core.NewDate(2025, 4, 1), CategoryID: food.ID,
	})
	require.True(t, upd.Success, upd.Error)
	assert.Equal(t, "lunch", upd.Data.Title)

	require.True(t, f.expenses.Delete(ctx, user, e.ID).Success)

	require.Len(t, f.pub.msgs, 4)
	assert.Equal(t, amqp.ActionCreated, f.pub.msgs[0].Action)
	assert.Equal(t, "2025-03", f.pub.msgs[0].Month.String())
	assert.Equal(t, amqp.ActionUpdated, f.pub.msgs[1].Action)
	assert.Equal(t, amqp.ActionUpdated, f.pub.msgs[2].Action)
	assert.Equal(t, amqp.ActionDeleted, f.pub.msgs[3].Action)
	assert.Equal(t, "2025-04", f.pub.msgs[3].Month.String(), "delete reports the month the expense was in")
	for _, m := range f.pub.msgs {
		assert.Equal(t, core.KindExpense, m.Kind)
		assert.Equal(t, user, m.UserID)
	}
}

func TestExpenseMoveAnnouncesBothMonths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	e := f.expense(t, food.ID, "20", "2025-01-05")
	require.False(t, e.CreatedAt.IsZero())

	moved := f.expenses.Update(ctx, user, e.ID, ExpenseInput{
		Title: "expense", Amount: core.Money{Cents: 2000}, Date: core.NewDate(2025, 2, 3), CategoryID: food.ID,
	})
	require.True(t, moved.Success, moved.Error)
	assert.Equal(t, e.CreatedAt, moved.Data.CreatedAt)
	assert.True(t, moved.Data.UpdatedAt.After(e.UpdatedAt))

	updates := f.pub.msgs[1:]
	require.Len(t, updates, 2)
	months := []string{updates[0].Month.String(), updates[1].Month.String()}
	assert.ElementsMatch(t, []string{"2025-01", "2025-02"}, months)
	for _, m := range updates {
		assert.Equal(t, amqp.ActionUpdated, m.Action)
		assert.Equal(t, e.ID, m.ID)
	}

	same := f.expenses.Update(ctx, user, e.ID, ExpenseInput{
		Title: "expense", Amount: core.Money{Cents: 2500}, Date: core.NewDate(2025, 2, 9), CategoryID: food.ID,
	})
	require.True(t, same.Success, same.Error)
	require.Len(t, f.pub.msgs, 4, "an update within one month announces it once")
	assert.Equal(t, "2025-02", f.pub.msgs[3].Month.String())

	missing := f.expenses.Update(ctx, user, core.NewID(), ExpenseInput{
		Title: "expense", Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 2, 9), CategoryID: food.ID,
	})
	assert.ErrorIs(t, missing.Err, core.ErrNotFound)
	assert.Len(t, f.pub.msgs, 4)
}

func TestExpenseWriteSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("connection refused")
	food := f.category(t, "Food")
	f.expense(t, food.ID, "3", "2025-03-05")

	has, err := f.expenses.HasExpenses(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestExpenseServiceWithoutPublisher(t *testing.T) {
	store := memory.New()
	svc := NewExpenseService(store, store, nil)
	cats := NewCategoryService(store, NewAggregator(store))
	food := cats.Create(context.Background(), user, LabelInput{Name: "Food"})
	require.True(t, food.Success)

	res := svc.Create(context.Background(), user, ExpenseInput{
		Title: "bread", Amount: core.Money{Cents: 250}, Date: core.NewDate(2025, 3, 1), CategoryID: food.Data.ID,
	})
	assert.True(t, res.Success, res.Error)
}

func TestExpenseValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	long := make([]byte, core.MaxTitleLength+1)
	for i := range long {
		long[i] = 'x'
	}

	cases := map[string]ExpenseInput{
		"blank title":      {Title: "   ", Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 3, 1), CategoryID: food.ID},
		"long title":       {Title: string(long), Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 3, 1), CategoryID: food.ID},
		"zero amount":      {Title: "x", Date: core.NewDate(2025, 3, 1), CategoryID: food.ID},
		"over 9999.99":     {Title: "x", Amount: core.Money{Cents: 1_000_000}, Date: core.NewDate(2025, 3, 1), CategoryID: food.ID},
		"no date":          {Title: "x", Amount: core.Money{Cents: 100}, CategoryID: food.ID},
		"no category":      {Title: "x", Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 3, 1)},
		"unknown category": {Title: "x", Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 3, 1), CategoryID: core.NewID()},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			res := f.expenses.Create(ctx, user, in)
			assert.False(t, res.Success)
			assert.True(t, core.IsValidation(res.Err), "got %v", res.Err)
			assert.NotEmpty(t, res.Error)
		})
	}
	assert.Empty(t, f.pub.msgs, "rejected writes publish nothing")
}

func TestOwnershipIsIndistinguishableFromAbsence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	e := f.expense(t, food.ID, "10", "2025-03-05")

	_, errForeign := f.expenses.Get(ctx, "intruder", e.ID)
	_, errMissing := f.expenses.Get(ctx, user, core.NewID())
	assert.ErrorIs(t, errForeign, core.ErrNotFound)
	assert.ErrorIs(t, errMissing, core.ErrNotFound)
	assert.Equal(t, errForeign.Error(), errMissing.Error())

	res := f.expenses.Delete(ctx, "intruder", e.ID)
	assert.Equal(t, core.ErrNotFound.Error(), res.Error)
}

func TestIncomeLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	src := f.sources.Create(ctx, user, LabelInput{Name: "Salary", Color: "#22C55E"})
	require.True(t, src.Success, src.Error)

	bad := f.sources.Create(ctx, user, LabelInput{Name: "x", Color: "green"})
	assert.ErrorIs(t, bad.Err, core.ErrInvalidColor)

	in := f.incomes.Create(ctx, user, IncomeInput{SourceID: src.Data.ID, Amount: core.Money{Cents: 300000}, Date: core.NewDate(2025, 3, 27)})
	require.True(t, in.Success, in.Error)

	tooBig := f.incomes.Create(ctx, user, IncomeInput{SourceID: src.Data.ID, Amount: core.Money{Cents: core.MaxIncomeCents + 1}, Date: core.NewDate(2025, 3, 27)})
	assert.True(t, core.IsValidation(tooBig.Err))

	list, err := f.incomes.List(ctx, user, core.MustMonthKey("2025-03"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Salary", list[0].SourceName)

	require.True(t, f.incomes.Delete(ctx, user, in.Data.ID).Success)
	require.Len(t, f.pub.msgs, 2)
	assert.Equal(t, core.KindIncome, f.pub.msgs[1].Kind)
}

func TestIncomeMoveAnnouncesBothMonths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	src := f.sources.Create(ctx, user, LabelInput{Name: "Salary"})
	require.True(t, src.Success, src.Error)

	in := f.incomes.Create(ctx, user, IncomeInput{SourceID: src.Data.ID, Amount: core.Money{Cents: 300000}, Date: core.NewDate(2025, 1, 31)})
	require.True(t, in.Success, in.Error)
	require.False(t, in.Data.CreatedAt.IsZero())

	moved := f.incomes.Update(ctx, user, in.Data.ID, IncomeInput{SourceID: src.Data.ID, Amount: core.Money{Cents: 300000}, Date: core.NewDate(2025, 2, 1)})
	require.True(t, moved.Success, moved.Error)
	assert.Equal(t, in.Data.CreatedAt, moved.Data.CreatedAt)
	assert.False(t, moved.Data.UpdatedAt.Before(moved.Data.CreatedAt))

	require.Len(t, f.pub.msgs, 3)
	var months []string
	for _, m := range f.pub.msgs[1:] {
		assert.Equal(t, amqp.ActionUpdated, m.Action)
		assert.Equal(t, core.KindIncome, m.Kind)
		months = append(months, m.Month.String())
	}
	assert.ElementsMatch(t, []string{"2025-01", "2025-02"}, months)
}

func TestAggregatorSumAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	f.expense(t, food.ID, "10", "2025-03-01")
	f.expense(t, food.ID, "5.25", "2025-03-31")

	got, err := f.agg.SumAmount(ctx, user, core.MustMonthKey("2025-03"), core.KindExpense, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1525), got.Cents)

	empty, err := f.agg.SumAmount(ctx, user, core.MustMonthKey("1999-01"), core.KindIncome, "", "")
	require.NoError(t, err, "an empty month is zero, not an error")
	assert.Equal(t, int64(0), empty.Cents)

	_, err = f.agg.SumAmount(ctx, user, core.MonthKey{}, core.KindExpense, "", "")
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestCategoryListAndStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	f.category(t, "Bills")
	fruit := f.categories.CreateSubCategory(ctx, user, food.ID, "Fruit")
	require.True(t, fruit.Success)

	blank := f.categories.CreateSubCategory(ctx, user, food.ID, "  ")
	assert.ErrorIs(t, blank.Err, core.ErrEmptyName)

	list, err := f.categories.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bills", list[0].Name)
	assert.NotNil(t, list[0].SubCategories)
	assert.Empty(t, list[0].SubCategories)
	require.Len(t, list[1].SubCategories, 1)

	res := f.expenses.Create(ctx, user, ExpenseInput{
		Title: "pears", Amount: core.Money{Cents: 400}, Date: core.NewDate(2025, 3, 2), CategoryID: food.ID, SubCategoryID: fruit.Data.ID,
	})
	require.True(t, res.Success, res.Error)
	f.expense(t, food.ID, "6", "2025-03-03")

	stats, err := f.categories.Stats(ctx, user, core.MustMonthKey("2025-03"))
	require.NoError(t, err)
	require.Len(t, stats.Categories, 1)
	assert.Equal(t, int64(1000), stats.Categories[0].Total.Cents)
	assert.Equal(t, 2, stats.Categories[0].Count)
	require.Len(t, stats.SubCategories, 1, "only expenses with a sub-category are counted")
	assert.Equal(t, int64(400), stats.SubCategories[0].Total.Cents)
}

func TestDashboardOverview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	march := core.MustMonthKey("2025-03")

	food := f.category(t, "Food")
	fun := f.category(t, "Fun")
	fruit := f.categories.CreateSubCategory(ctx, user, food.ID, "Fruit")
	require.True(t, fruit.Success)
	f.budget(t, food.ID, "", 50000, "2025-03")
	f.budget(t, food.ID, fruit.Data.ID, 10000, "2025-03")
	f.budget(t, fun.ID, "", 10000, "2025-03")

	f.expense(t, food.ID, "100", "2025-03-01")
	f.expense(t, fun.ID, "95", "2025-03-15")
	f.expense(t, food.ID, "1", "2025-04-01")

	salary := f.sources.Create(ctx, user, LabelInput{Name: "Salary"})
	require.True(t, salary.Success)
	require.True(t, f.incomes.Create(ctx, user, IncomeInput{SourceID: salary.Data.ID, Amount: core.Money{Cents: 250000}, Date: core.NewDate(2025, 3, 27)}).Success)

	ov, err := f.dashboard.Overview(ctx, user, march)
	require.NoError(t, err)

	assert.Equal(t, int64(19500), ov.Summary.TotalExpenses.Cents)
	assert.Equal(t, int64(60000), ov.Summary.TotalBudget.Cents, "category-level budgets only")
	assert.Equal(t, int64(40500), ov.Summary.Remaining.Cents)
	assert.Equal(t, 33, ov.Summary.PercentageUsed)
	assert.Equal(t, march, ov.Summary.Month)
	assert.Equal(t, int64(250000), ov.TotalIncome.Cents)
	assert.Equal(t, int64(230500), ov.NetCashFlow.Cents)
	assert.Len(t, ov.Progress, 3)
	require.Len(t, ov.ExpensesByCategory, 2)
	assert.Equal(t, "Food", ov.ExpensesByCategory[0].CategoryName)
	require.Len(t, ov.IncomeBySource, 1)
	assert.Len(t, ov.Daily, 31)
	assert.Equal(t, int64(10000), ov.Daily[0].Expenses.Cents)
	assert.Equal(t, int64(250000), ov.Daily[26].Income.Cents)
	require.Len(t, ov.Recent, 4)
	assert.Equal(t, core.KindExpense, ov.Recent[0].Kind, "April expense is the newest")
	assert.Equal(t, core.KindIncome, ov.Recent[1].Kind)
	assert.True(t, ov.HasExpenses)
	assert.True(t, ov.HasBudgets)

	summary, err := f.dashboard.Summary(ctx, user, march)
	require.NoError(t, err)
	assert.Equal(t, ov.Summary, summary)

	empty, err := f.dashboard.Overview(ctx, user, core.MustMonthKey("2024-02"))
	require.NoError(t, err)
	assert.Len(t, empty.Daily, 29)
	assert.False(t, empty.HasBudgets)
	assert.Equal(t, 0, empty.Summary.PercentageUsed)
}

func TestDashboardRecentLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	food := f.category(t, "Food")
	for i := 1; i <= 7; i++ {
		f.expense(t, food.ID, "1", time.Date(2025, 3, i, 0, 0, 0, 0, time.UTC).Format(time.DateOnly))
	}
	recent, err := f.dashboard.RecentTransactions(ctx, user, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 5, "falls back to the configured limit")
	assert.Equal(t, "2025-03-07", recent[0].Date.Format(time.DateOnly))
}

type failingStore struct {
	storage.Store
}

func (failingStore) SumAmount(context.Context, storage.AmountQuery) (core.Money, error) {
	return core.Money{}, errors.New("database is locked")
}

func TestDashboardSurfacesInfrastructureFailure(t *testing.T) {
	store := failingStore{Store: memory.New()}
	agg := NewAggregator(store)
	dash := NewDashboardService(store, agg, NewBudgetService(store, store, agg), 5)

	_, err := dash.Overview(context.Background(), user, core.MustMonthKey("2025-03"))
	require.Error(t, err)
	assert.Equal(t, "internal error", core.PublicMessage(err))
}

func ptr[T any](v T) *T { return &v }
