package core

import (
	"sort"
	"time"
)

// DashboardSummary is the month headline: spending against the
// category-level budget total.
type DashboardSummary struct {
	TotalExpenses  Money    `json:"totalExpenses"`
	TotalBudget    Money    `json:"totalBudget"`
	Remaining      Money    `json:"remaining"`
	PercentageUsed int      `json:"percentageUsed"`
	Month          MonthKey `json:"month"`
}

// Summarize builds the headline from its two totals.
func Summarize(month MonthKey, totalExpenses, totalBudget Money) DashboardSummary {
	return DashboardSummary{
		TotalExpenses:  totalExpenses,
		TotalBudget:    totalBudget,
		Remaining:      totalBudget.Sub(totalExpenses),
		PercentageUsed: Percentage(totalExpenses, totalBudget),
		Month:          month,
	}
}

// DailyTotal is one day of the month trend.
type DailyTotal struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Day      int    `json:"day"`
	Expenses Money  `json:"expenses"`
	Income   Money  `json:"income"`
}

// DatedAmount is the minimum a transaction needs to be bucketed by day.
type DatedAmount struct {
	Date   time.Time
	Amount Money
}

// DailyTotals buckets expenses and incomes by UTC day of month. The result
// has exactly month.Days() entries; days without activity are zero.
// Entries outside the month are ignored.
func DailyTotals(month MonthKey, expenses, incomes []DatedAmount) []DailyTotal {
	days := month.Days()
	out := make([]DailyTotal, days)
	for i := range out {
		d := month.Start().AddDate(0, 0, i)
		out[i] = DailyTotal{Date: d.Format(time.DateOnly), Day: i + 1}
	}
	for _, e := range expenses {
		if !month.Contains(e.Date) {
			continue
		}
		idx := e.Date.UTC().Day() - 1
		out[idx].Expenses = out[idx].Expenses.Add(e.Amount)
	}
	for _, in := range incomes {
		if !month.Contains(in.Date) {
			continue
		}
		idx := in.Date.UTC().Day() - 1
		out[idx].Income = out[idx].Income.Add(in.Amount)
	}
	return out
}

// CategoryTotal is one row of the expense-by-category breakdown.
type CategoryTotal struct {
	CategoryID    ID     `json:"categoryId"`
	CategoryName  string `json:"categoryName"`
	CategoryIcon  string `json:"categoryIcon,omitempty"`
	CategoryColor string `json:"categoryColor,omitempty"`
	Total         Money  `json:"total"`
	Count         int    `json:"count"`
}

// SourceTotal is one row of the income-by-source breakdown.
type SourceTotal struct {
	SourceID    ID     `json:"sourceId"`
	SourceName  string `json:"sourceName"`
	SourceIcon  string `json:"sourceIcon,omitempty"`
	SourceColor string `json:"sourceColor,omitempty"`
	Total       Money  `json:"total"`
	Count       int    `json:"count"`
}

// SubCategoryTotal is one row of the sub-category statistics.
type SubCategoryTotal struct {
	SubCategoryID   ID     `json:"subCategoryId"`
	CategoryID      ID     `json:"categoryId"`
	SubCategoryName string `json:"subCategoryName"`
	Total           Money  `json:"total"`
	Count           int    `json:"count"`
}

// SortCategoryTotals orders by total descending, then by name for a stable
// presentation of ties.
func SortCategoryTotals(rows []CategoryTotal) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total.Cents != rows[j].Total.Cents {
			return rows[i].Total.Cents > rows[j].Total.Cents
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
}

func SortSourceTotals(rows []SourceTotal) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total.Cents != rows[j].Total.Cents {
			return rows[i].Total.Cents > rows[j].Total.Cents
		}
		return rows[i].SourceName < rows[j].SourceName
	})
}

func SortSubCategoryTotals(rows []SubCategoryTotal) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total.Cents != rows[j].Total.Cents {
			return rows[i].Total.Cents > rows[j].Total.Cents
		}
		return rows[i].SubCategoryName < rows[j].SubCategoryName
	})
}

// TransactionKind distinguishes the two ledgers.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

func (k TransactionKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Transaction is a display row shared by expenses and incomes in the
// recent activity feed.
type Transaction struct {
	ID        ID              `json:"id"`
	Kind      TransactionKind `json:"kind"`
	Title     string          `json:"title"`
	Amount    Money           `json:"amount"`
	Date      Date            `json:"date"`
	GroupID   ID              `json:"groupId"` // category for expenses, source for incomes
	GroupName string          `json:"groupName"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SortRecent orders by date descending, then creation time descending.
func SortRecent(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

// MergeRecent interleaves two already sorted feeds and keeps the first
// limit entries.
func MergeRecent(limit int, feeds ...[]Transaction) []Transaction {
	all := make([]Transaction, 0)
	for _, f := range feeds {
		all = append(all, f...)
	}
	SortRecent(all)
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// DashboardOverview is everything the dashboard page shows for one month.
type DashboardOverview struct {
	Summary            DashboardSummary `json:"summary"`
	TotalIncome        Money            `json:"totalIncome"`
	NetCashFlow        Money            `json:"netCashFlow"`
	Progress           []BudgetProgress `json:"budgetProgress"`
	ExpensesByCategory []CategoryTotal  `json:"expensesByCategory"`
	IncomeBySource     []SourceTotal    `json:"incomeBySource"`
	Recent             []Transaction    `json:"recentTransactions"`
	Daily              []DailyTotal     `json:"dailyTotals"`
	HasExpenses        bool             `json:"hasExpenses"`
	HasBudgets         bool             `json:"hasBudgets"`
}

// CategoryStats groups the category and sub-category statistics of a month.
type CategoryStats struct {
	Month         MonthKey           `json:"month"`
	Categories    []CategoryTotal    `json:"categories"`
	SubCategories []SubCategoryTotal `json:"subCategories"`
}
