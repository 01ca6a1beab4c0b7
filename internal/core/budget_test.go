package core

import "testing"

func TestClassifyAlert(t *testing.T) {
	cases := []struct {
		pct  int
		want AlertLevel
	}{
		{0, AlertSafe},
		{79, AlertSafe},
		{80, AlertWarning},
		{89, AlertWarning},
		{90, AlertDanger},
		{99, AlertDanger},
		{100, AlertOver},
		{250, AlertOver},
	}
	for _, tc := range cases {
		if got := ClassifyAlert(tc.pct); got != tc.want {
			t.Fatalf("%d%%: expected %s, got %s", tc.pct, tc.want, got)
		}
	}
}

func TestClassifyAlertMonotonic(t *testing.T) {
	prev := ClassifyAlert(0).Rank()
	for p := 1; p <= 150; p++ {
		r := ClassifyAlert(p).Rank()
		if r < prev {
			t.Fatalf("band decreased at %d%%", p)
		}
		prev = r
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		part, total int64
		want        int
	}{
		{4550, 10000, 46}, // 45.5 rounds half up
		{4549, 10000, 45},
		{10550, 10000, 106},
		{0, 10000, 0},
		{500, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
	}
	for _, tc := range cases {
		if got := Percentage(Money{Cents: tc.part}, Money{Cents: tc.total}); got != tc.want {
			t.Fatalf("%d/%d: expected %d, got %d", tc.part, tc.total, tc.want, got)
		}
	}
}

func TestComputeProgress(t *testing.T) {
	b := BudgetView{
		Budget:       Budget{ID: "b1", CategoryID: "c1", Limit: Money{Cents: 10000}, Month: MustMonthKey("2025-03")},
		CategoryName: "Food",
	}

	t.Run("under budget", func(t *testing.T) {
		p := ComputeProgress(b, Money{Cents: 4550})
		if p.Remaining.Cents != 5450 || p.Percentage != 46 || p.IsOverBudget || p.AlertLevel != AlertSafe {
			t.Fatalf("unexpected progress %+v", p)
		}
		if p.CategoryName != "Food" {
			t.Fatalf("expected category name Food, got %q", p.CategoryName)
		}
	})

	t.Run("over budget", func(t *testing.T) {
		p := ComputeProgress(b, Money{Cents: 10550})
		if p.Remaining.Cents != -550 || p.Percentage != 106 || !p.IsOverBudget || p.AlertLevel != AlertOver {
			t.Fatalf("unexpected progress %+v", p)
		}
	})

	t.Run("exactly at limit is not over", func(t *testing.T) {
		p := ComputeProgress(b, Money{Cents: 10000})
		if p.IsOverBudget || p.Percentage != 100 || p.AlertLevel != AlertOver || p.Remaining.Cents != 0 {
			t.Fatalf("unexpected progress %+v", p)
		}
	})

	t.Run("dangling category", func(t *testing.T) {
		dangling := b
		dangling.CategoryName = ""
		dangling.CategoryMissing = true
		p := ComputeProgress(dangling, Money{})
		if p.CategoryName != UnknownCategoryName || p.SubCategoryName != "" {
			t.Fatalf("expected Unknown fallback, got %+v", p)
		}
	})

	t.Run("zero limit", func(t *testing.T) {
		zero := b
		zero.Limit = Money{}
		p := ComputeProgress(zero, Money{Cents: 100})
		if p.Percentage != 0 || !p.IsOverBudget {
			t.Fatalf("unexpected progress %+v", p)
		}
	})
}

func TestAlerts(t *testing.T) {
	in := []BudgetProgress{
		{BudgetID: "a", Percentage: 10},
		{BudgetID: "b", Percentage: 85},
		{BudgetID: "c", Percentage: 120},
		{BudgetID: "d", Percentage: 79},
	}
	got := Alerts(in)
	if len(got) != 2 || got[0].BudgetID != "b" || got[1].BudgetID != "c" {
		t.Fatalf("unexpected alerts %+v", got)
	}
	if got := Alerts(nil); got == nil || len(got) != 0 {
		t.Fatal("expected empty, non-nil alerts")
	}
}

func TestSummarizeBudgets(t *testing.T) {
	m := MustMonthKey("2025-03")
	progress := []BudgetProgress{
		{BudgetID: "food", Limit: Money{Cents: 50000}, Spent: Money{Cents: 30000}},
		{BudgetID: "lunch", SubCategoryID: "s1", Limit: Money{Cents: 20000}, Spent: Money{Cents: 25000}},
		{BudgetID: "rent", Limit: Money{Cents: 100000}, Spent: Money{Cents: 100000}},
	}
	s := SummarizeBudgets(m, progress)
	if s.TotalBudget.Cents != 150000 || s.TotalSpent.Cents != 130000 || s.Remaining.Cents != 20000 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Month != m {
		t.Fatalf("month not carried: %v", s.Month)
	}
}
