package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/wcharczuk/go-chart/v2"
)

// ErrNoChartData is returned when a summary has no expenses to draw
var ErrNoChartData = errors.New("no expenses to chart")

// ExpensePieChart renders the category breakdown of a month as a PNG
func ExpensePieChart(summary models.MonthlySummary) ([]byte, error) {
	if !summary.TotalExpenses.IsPositive() {
		return nil, ErrNoChartData
	}

	names := make([]string, 0, len(summary.CategoryBreakdown))
	for name, total := range summary.CategoryBreakdown {
		if total.IsPositive() {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := summary.CategoryBreakdown[names[i]], summary.CategoryBreakdown[names[j]]
		if a.Equal(b) {
			return names[i] < names[j]
		}
		return a.GreaterThan(b)
	})

	values := make([]chart.Value, 0, len(names))
	for _, name := range names {
		total := summary.CategoryBreakdown[name]
		share := total.Div(summary.TotalExpenses).Shift(2).Round(1)
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%s%%)", name, total.StringFixed(2), share.String()),
			Value: total.InexactFloat64(),
		})
	}

	pie := chart.PieChart{
		Title:  summary.Month,
		Width:  800,
		Height: 600,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   40,
				Right:  40,
				Bottom: 40,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render expense chart: %w", err)
	}
	return buffer.Bytes(), nil
}
