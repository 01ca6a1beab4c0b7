package sheets

import (
	"context"

	"fintrack/internal/report"
)

// Ports for outbound adapters.
type (
	// ReportWriter publishes a month report to a spreadsheet and returns
	// the range it wrote.
	ReportWriter interface {
		WriteMonthReport(ctx context.Context, r report.MonthReport) (rangeRef string, err error)
	}
)
