package core

import "github.com/shopspring/decimal"

// UnknownCategoryName is shown for budgets whose category no longer exists.
const UnknownCategoryName = "Unknown"

// AlertLevel is the display band of a budget's usage.
type AlertLevel string

const (
	AlertSafe    AlertLevel = "safe"
	AlertWarning AlertLevel = "warning"
	AlertDanger  AlertLevel = "danger"
	AlertOver    AlertLevel = "over"
)

// Rank orders levels from safe (0) to over (3).
func (l AlertLevel) Rank() int {
	switch l {
	case AlertWarning:
		return 1
	case AlertDanger:
		return 2
	case AlertOver:
		return 3
	default:
		return 0
	}
}

// ClassifyAlert maps a usage percentage to its band. Thresholds are
// evaluated from the top down.
func ClassifyAlert(percentage int) AlertLevel {
	switch {
	case percentage >= 100:
		return AlertOver
	case percentage >= 90:
		return AlertDanger
	case percentage >= 80:
		return AlertWarning
	default:
		return AlertSafe
	}
}

// Percentage is round(part/total*100) with half-up rounding, or 0 when
// total is not positive.
func Percentage(part, total Money) int {
	if total.Cents <= 0 {
		return 0
	}
	p := decimal.NewFromInt(part.Cents).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total.Cents)).
		Round(0)
	return int(p.IntPart())
}

// BudgetProgress is the derived spending state of one budget.
type BudgetProgress struct {
	BudgetID        ID         `json:"budgetId"`
	CategoryID      ID         `json:"categoryId"`
	CategoryName    string     `json:"categoryName"`
	SubCategoryID   ID         `json:"subCategoryId,omitempty"`
	SubCategoryName string     `json:"subCategoryName,omitempty"`
	Limit           Money      `json:"limit"`
	Spent           Money      `json:"spent"`
	Remaining       Money      `json:"remaining"`
	Percentage      int        `json:"percentage"`
	IsOverBudget    bool       `json:"isOverBudget"`
	AlertLevel      AlertLevel `json:"alertLevel"`
}

// BudgetView is a budget together with the names it refers to. A missing
// category yields an empty CategoryName and CategoryMissing set.
type BudgetView struct {
	Budget
	CategoryName    string `json:"categoryName"`
	CategoryIcon    string `json:"categoryIcon,omitempty"`
	CategoryColor   string `json:"categoryColor,omitempty"`
	SubCategoryName string `json:"subCategoryName,omitempty"`
	CategoryMissing bool   `json:"-"`
}

// ComputeProgress derives the progress of a single budget from what was
// spent against it. Remaining may be negative.
func ComputeProgress(b BudgetView, spent Money) BudgetProgress {
	name := b.CategoryName
	if b.CategoryMissing || name == "" {
		name = UnknownCategoryName
	}
	pct := Percentage(spent, b.Limit)
	return BudgetProgress{
		BudgetID:        b.ID,
		CategoryID:      b.CategoryID,
		CategoryName:    name,
		SubCategoryID:   b.SubCategoryID,
		SubCategoryName: b.SubCategoryName,
		Limit:           b.Limit,
		Spent:           spent,
		Remaining:       b.Limit.Sub(spent),
		Percentage:      pct,
		IsOverBudget:    spent.Cents > b.Limit.Cents,
		AlertLevel:      ClassifyAlert(pct),
	}
}

// Alerts returns the progress entries that are not in the safe band,
// preserving order.
func Alerts(progress []BudgetProgress) []BudgetProgress {
	out := make([]BudgetProgress, 0)
	for _, p := range progress {
		if ClassifyAlert(p.Percentage) != AlertSafe {
			out = append(out, p)
		}
	}
	return out
}

// BudgetPageSummary is the header of the budgets page.
type BudgetPageSummary struct {
	Month       MonthKey `json:"month"`
	TotalBudget Money    `json:"totalBudget"`
	TotalSpent  Money    `json:"totalSpent"`
	Remaining   Money    `json:"remaining"`
}

// SummarizeBudgets totals category-level budgets only; sub-category budgets
// are already covered by their parent and would double count.
func SummarizeBudgets(month MonthKey, progress []BudgetProgress) BudgetPageSummary {
	s := BudgetPageSummary{Month: month}
	for _, p := range progress {
		if !p.SubCategoryID.IsZero() {
			continue
		}
		s.TotalBudget = s.TotalBudget.Add(p.Limit)
		s.TotalSpent = s.TotalSpent.Add(p.Spent)
	}
	s.Remaining = s.TotalBudget.Sub(s.TotalSpent)
	return s
}
