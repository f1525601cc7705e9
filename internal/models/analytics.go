package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DailyTotals holds income and expenses booked on one calendar day
type DailyTotals struct {
	Date     string          `json:"date"` // Format: YYYY-MM-DD
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// MonthlySummary is the aggregated view of one month of transactions
type MonthlySummary struct {
	Month             string                     `json:"month"` // Format: YYYY-MM
	TotalIncome       decimal.Decimal            `json:"totalIncome"`
	TotalExpenses     decimal.Decimal            `json:"totalExpenses"`
	Balance           decimal.Decimal            `json:"balance"`
	CategoryBreakdown map[string]decimal.Decimal `json:"categoryBreakdown"`
	DailyTrend        []DailyTotals              `json:"dailyTrend"`
	TransactionCount  int                        `json:"transactionCount"`
}

// MonthTypeTotal is one (month, type) group of a yearly aggregate query
type MonthTypeTotal struct {
	Month int
	Type  string
	Total decimal.Decimal
}

// MonthBreakdown represents one month of a yearly report
type MonthBreakdown struct {
	Month     int             `json:"month"`
	MonthName string          `json:"monthName"`
	Income    decimal.Decimal `json:"income"`
	Expenses  decimal.Decimal `json:"expenses"`
	Balance   decimal.Decimal `json:"balance"`
}

// Totals is an income/expenses/balance triple
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// YearlyReport represents the per-month breakdown of one year
type YearlyReport struct {
	Year             int              `json:"year"`
	YearlyTotals     Totals           `json:"yearlyTotals"`
	MonthlyBreakdown []MonthBreakdown `json:"monthlyBreakdown"`
}

// CategoryStat is the expense total of one category
type CategoryStat struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// TypeStat is the total of one transaction type
type TypeStat struct {
	Type  string
	Total decimal.Decimal
	Count int
}

// TransactionStats is the summary returned by the stats endpoint
type TransactionStats struct {
	Summary           Totals         `json:"summary"`
	CategoryBreakdown []CategoryStat `json:"categoryBreakdown"`
}
