package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"fintrack/internal/core"
)

// RenderDailyTrend draws the month's daily expenses and income as a PNG.
func RenderDailyTrend(month core.MonthKey, daily []core.DailyTotal) ([]byte, error) {
	if len(daily) < 2 {
		return nil, fmt.Errorf("render daily trend: need at least two days, got %d", len(daily))
	}

	xValues := make([]time.Time, len(daily))
	expenses := make([]float64, len(daily))
	income := make([]float64, len(daily))
	peak := 0.0
	for i, d := range daily {
		xValues[i] = month.Start().AddDate(0, 0, d.Day-1)
		expenses[i] = d.Expenses.Euros()
		income[i] = d.Income.Euros()
		peak = max(peak, expenses[i], income[i])
	}

	yAxis := chart.YAxis{
		ValueFormatter: func(v interface{}) string {
			return fmt.Sprintf("%.0f", v.(float64))
		},
	}
	// an all-zero month has no data range of its own
	if peak == 0 {
		yAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	}

	graph := chart.Chart{
		Title:  month.Label(),
		Width:  1000,
		Height: 400,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02"),
		},
		YAxis: yAxis,
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Expenses",
				XValues: xValues,
				YValues: expenses,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    "Income",
				XValues: xValues,
				YValues: income,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render daily trend: %w", err)
	}
	return buf.Bytes(), nil
}
