package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	bandStyles = map[core.AlertLevel]lipgloss.Style{
		core.AlertSafe:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		core.AlertWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		core.AlertDanger:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		core.AlertOver:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
)

func band(level core.AlertLevel) string {
	style, ok := bandStyles[level]
	if !ok {
		return string(level)
	}
	return style.Render(string(level))
}

func header(w io.Writer, cols ...string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, headerStyle.Render(c))
	}
	fmt.Fprintln(w)
}

func renderProgress(out io.Writer, page services.BudgetPage) error {
	fmt.Fprintln(out, titleStyle.Render("Budgets for "+page.Month.Label()))
	if len(page.Progress) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("(no budgets this month)"))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header(w, "Category", "Limit", "Spent", "Remaining", "Used", "Level")
	for _, p := range page.Progress {
		name := p.CategoryName
		if p.SubCategoryName != "" {
			name += " / " + p.SubCategoryName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
			name, p.Limit, p.Spent, p.Remaining, p.Percentage, band(p.AlertLevel))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal %s of %s, %s left\n",
		page.Summary.TotalSpent, page.Summary.TotalBudget, page.Summary.Remaining)
	if n := len(page.Alerts); n > 0 {
		fmt.Fprintln(out, bandStyles[core.AlertWarning].Render(fmt.Sprintf("%d budget(s) need attention", n)))
	}
	return nil
}

func renderOverview(out io.Writer, month core.MonthKey, o core.DashboardOverview) error {
	fmt.Fprintln(out, titleStyle.Render("Dashboard for "+month.Label()))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Expenses\t%s\n", o.Summary.TotalExpenses)
	fmt.Fprintf(w, "Budget\t%s (%d%% used)\n", o.Summary.TotalBudget, o.Summary.PercentageUsed)
	fmt.Fprintf(w, "Remaining\t%s\n", o.Summary.Remaining)
	fmt.Fprintf(w, "Income\t%s\n", o.TotalIncome)
	fmt.Fprintf(w, "Net cash flow\t%s\n", o.NetCashFlow)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(o.ExpensesByCategory) == 0 {
		if !o.HasExpenses {
			fmt.Fprintln(out, mutedStyle.Render("\n(no expenses recorded yet)"))
		}
		return nil
	}
	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header(w, "Category", "Total", "Count")
	for _, c := range o.ExpensesByCategory {
		fmt.Fprintf(w, "%s\t%s\t%d\n", c.CategoryName, c.Total, c.Count)
	}
	return w.Flush()
}
