// Package report turns filtered transaction rows into monthly and yearly
// summaries and renders them as spreadsheets and charts.
package report

import (
	"fmt"
	"sort"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// AggregateMonth sums transactions of one user in a single pass.
// Rows are expected to be pre-filtered to the aggregation window.
// Anything that is not income is treated as an expense.
func AggregateMonth(txs []models.Transaction) models.MonthlySummary {
	income := decimal.Zero
	expenses := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	byDay := make(map[string]*models.DailyTotals)

	for _, tx := range txs {
		day := tx.Date.String()
		bucket, ok := byDay[day]
		if !ok {
			bucket = &models.DailyTotals{Date: day, Income: decimal.Zero, Expenses: decimal.Zero}
			byDay[day] = bucket
		}

		if tx.Type == models.TypeIncome {
			income = income.Add(tx.Amount)
			bucket.Income = bucket.Income.Add(tx.Amount)
			continue
		}
		expenses = expenses.Add(tx.Amount)
		bucket.Expenses = bucket.Expenses.Add(tx.Amount)
		byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
	}

	trend := make([]models.DailyTotals, 0, len(byDay))
	for _, bucket := range byDay {
		trend = append(trend, *bucket)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })

	return models.MonthlySummary{
		TotalIncome:       income,
		TotalExpenses:     expenses,
		Balance:           income.Sub(expenses),
		CategoryBreakdown: byCategory,
		DailyTrend:        trend,
		TransactionCount:  len(txs),
	}
}

// MonthLabel formats a year and month as YYYY-MM
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
