package service

import (
	"context"
	"errors"
	"time"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/report"
	"github.com/Dan9191/finance-tracker/internal/repository"
	"golang.org/x/sync/errgroup"
)

// resolveMonth fills a missing year or month from the current date
func (s *Service) resolveMonth(year, month int) (int, int, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	var problems []string
	if year < 1 {
		problems = append(problems, "year must be a positive integer")
	}
	if month < 1 || month > 12 {
		problems = append(problems, "month must be between 1 and 12")
	}
	if len(problems) > 0 {
		return 0, 0, invalid(problems...)
	}
	return year, month, nil
}

// MonthlyReport aggregates one calendar month of the user's transactions.
// Zero year or month default to the current ones.
func (s *Service) MonthlyReport(ctx context.Context, userID int64, year, month int) (*models.MonthlySummary, error) {
	year, month, err := s.resolveMonth(year, month)
	if err != nil {
		return nil, err
	}
	from, to, _ := repository.Period{Year: year, Month: month}.Bounds()

	txs, err := s.repo.TransactionsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	summary := report.AggregateMonth(txs)
	summary.Month = report.MonthLabel(year, month)
	return &summary, nil
}

// MonthlyChart renders the month's expenses by category as a PNG pie chart
func (s *Service) MonthlyChart(ctx context.Context, userID int64, year, month int) ([]byte, error) {
	summary, err := s.MonthlyReport(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	png, err := report.ExpensePieChart(*summary)
	if errors.Is(err, report.ErrNoChartData) {
		return nil, ErrNoExpenses
	}
	if err != nil {
		return nil, err
	}
	return png, nil
}

// YearlyReport breaks one year down into twelve months
func (s *Service) YearlyReport(ctx context.Context, userID int64, year int) (*models.YearlyReport, error) {
	if year == 0 {
		year = s.now().Year()
	}
	if year < 1 {
		return nil, invalid("year must be a positive integer")
	}

	rows, err := s.repo.MonthlyTypeTotals(ctx, userID, year)
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	yearly := report.AggregateYear(year, rows)
	return &yearly, nil
}

// Stats returns income/expense totals and the expense breakdown per category.
// Both aggregates are queried concurrently.
func (s *Service) Stats(ctx context.Context, userID int64, p repository.Period) (*models.TransactionStats, error) {
	var (
		types      []models.TypeStat
		categories []models.CategoryStat
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		types, err = s.repo.TypeTotals(gctx, userID, p)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.repo.ExpenseCategoryTotals(gctx, userID, p)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}

	if categories == nil {
		categories = []models.CategoryStat{}
	}
	return &models.TransactionStats{
		Summary:           report.SummarizeStats(types),
		CategoryBreakdown: categories,
	}, nil
}

// Export is a rendered workbook and the name it is offered under
type Export struct {
	FileName string
	Content  []byte
}

// ExportTransactions renders the filtered transactions as a workbook
func (s *Service) ExportTransactions(ctx context.Context, userID int64, f models.TransactionFilter) (*Export, error) {
	txs, err := s.repo.ExportTransactions(ctx, userID, f)
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	content, err := report.FilteredWorkbook(txs)
	if err != nil {
		return nil, err
	}
	return &Export{FileName: report.ExportFileName(s.now()), Content: content}, nil
}

// ExportLedger renders every transaction of the user with sized columns
func (s *Service) ExportLedger(ctx context.Context, userID int64) (*Export, error) {
	txs, err := s.repo.ExportTransactions(ctx, userID, models.TransactionFilter{})
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	content, err := report.LedgerWorkbook(txs)
	if err != nil {
		return nil, err
	}
	return &Export{FileName: report.ExportFileName(s.now()), Content: content}, nil
}

// previousMonth returns the year and month before the one containing t
func previousMonth(t time.Time) (int, int) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return first.Year(), int(first.Month())
}
