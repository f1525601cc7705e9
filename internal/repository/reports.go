package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/finance-tracker/internal/models"
)

// Period is an optional aggregation window. Month is only honored together
// with Year; a zero Year means all time.
type Period struct {
	Year  int
	Month int
}

// Bounds returns the [from, to) dates of the period, ok=false for all time
func (p Period) Bounds() (from, to time.Time, ok bool) {
	switch {
	case p.Year > 0 && p.Month >= 1 && p.Month <= 12:
		from = time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), true
	case p.Year > 0:
		from = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0), true
	}
	return time.Time{}, time.Time{}, false
}

func periodClause(p Period, args []any) (string, []any) {
	from, to, ok := p.Bounds()
	if !ok {
		return "", args
	}
	args = append(args, from.Format(models.DateLayout), to.Format(models.DateLayout))
	return fmt.Sprintf(" AND date >= $%d AND date < $%d", len(args)-1, len(args)), args
}

// TypeTotals sums the user's transactions per type within the period
func (r *Repository) TypeTotals(ctx context.Context, userID int64, p Period) ([]models.TypeStat, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter, args := periodClause(p, []any{userID})
	query := `SELECT type, SUM(amount), COUNT(*)
		FROM transactions
		WHERE user_id = $1` + filter + `
		GROUP BY type`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.wrap("sum transactions by type", err)
	}
	defer rows.Close()

	var stats []models.TypeStat
	for rows.Next() {
		var s models.TypeStat
		if err := rows.Scan(&s.Type, &s.Total, &s.Count); err != nil {
			return nil, r.wrap("scan type totals", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("sum transactions by type", err)
	}
	return stats, nil
}

// ExpenseCategoryTotals sums the user's expenses per category, largest first
func (r *Repository) ExpenseCategoryTotals(ctx context.Context, userID int64, p Period) ([]models.CategoryStat, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter, args := periodClause(p, []any{userID})
	query := `SELECT category, SUM(amount) AS total, COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND type = 'expense'` + filter + `
		GROUP BY category
		ORDER BY total DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.wrap("sum expenses by category", err)
	}
	defer rows.Close()

	stats := []models.CategoryStat{}
	for rows.Next() {
		var s models.CategoryStat
		if err := rows.Scan(&s.Category, &s.Total, &s.Count); err != nil {
			return nil, r.wrap("scan category totals", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("sum expenses by category", err)
	}
	return stats, nil
}

// MonthlyTypeTotals groups one year of the user's transactions by month and type
func (r *Repository) MonthlyTypeTotals(ctx context.Context, userID int64, year int) ([]models.MonthTypeTotal, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter, args := periodClause(Period{Year: year}, []any{userID})
	query := `SELECT EXTRACT(MONTH FROM date)::int AS month, type, SUM(amount)
		FROM transactions
		WHERE user_id = $1` + filter + `
		GROUP BY month, type
		ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.wrap("sum transactions by month", err)
	}
	defer rows.Close()

	var totals []models.MonthTypeTotal
	for rows.Next() {
		var m models.MonthTypeTotal
		if err := rows.Scan(&m.Month, &m.Type, &m.Total); err != nil {
			return nil, r.wrap("scan monthly totals", err)
		}
		totals = append(totals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("sum transactions by month", err)
	}
	return totals, nil
}
