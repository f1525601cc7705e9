package report

import (
	"time"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// AggregateYear spreads pre-grouped (month, type) totals over twelve month
// buckets and derives monthly balances and yearly totals.
func AggregateYear(year int, rows []models.MonthTypeTotal) models.YearlyReport {
	months := make([]models.MonthBreakdown, 12)
	for i := range months {
		months[i] = models.MonthBreakdown{
			Month:     i + 1,
			MonthName: time.Month(i + 1).String(),
			Income:    decimal.Zero,
			Expenses:  decimal.Zero,
			Balance:   decimal.Zero,
		}
	}

	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		bucket := &months[row.Month-1]
		if row.Type == models.TypeIncome {
			bucket.Income = row.Total
		} else {
			bucket.Expenses = row.Total
		}
	}

	totals := models.Totals{Income: decimal.Zero, Expenses: decimal.Zero}
	for i := range months {
		months[i].Balance = months[i].Income.Sub(months[i].Expenses)
		totals.Income = totals.Income.Add(months[i].Income)
		totals.Expenses = totals.Expenses.Add(months[i].Expenses)
	}
	totals.Balance = totals.Income.Sub(totals.Expenses)

	return models.YearlyReport{
		Year:             year,
		YearlyTotals:     totals,
		MonthlyBreakdown: months,
	}
}

// SummarizeStats folds per-type totals into an income/expenses/balance triple
func SummarizeStats(types []models.TypeStat) models.Totals {
	totals := models.Totals{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, ts := range types {
		switch ts.Type {
		case models.TypeIncome:
			totals.Income = ts.Total
		case models.TypeExpense:
			totals.Expenses = ts.Total
		}
	}
	totals.Balance = totals.Income.Sub(totals.Expenses)
	return totals
}
