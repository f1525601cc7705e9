package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/finance-tracker/internal/report"
	"github.com/Dan9191/finance-tracker/internal/repository"
	"github.com/Dan9191/finance-tracker/internal/utils/email"
	"golang.org/x/sync/errgroup"
)

const digestWorkers = 4

// MonthlyDigests builds the previous month's digest for every user who
// recorded at least one transaction in it
func (s *Service) MonthlyDigests(ctx context.Context) ([]email.Digest, error) {
	year, month := previousMonth(s.now())
	from, to, _ := repository.Period{Year: year, Month: month}.Bounds()

	users, err := s.repo.ListActiveUsers(ctx, from, to)
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}

	digests := make([]email.Digest, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(digestWorkers)
	for i, user := range users {
		g.Go(func() error {
			txs, err := s.repo.TransactionsBetween(gctx, user.ID, from, to)
			if err != nil {
				return fmt.Errorf("digest for user %d: %w", user.ID, err)
			}
			summary := report.AggregateMonth(txs)
			summary.Month = report.MonthLabel(year, month)

			workbook, err := report.LedgerWorkbook(txs)
			if err != nil {
				return fmt.Errorf("digest workbook for user %d: %w", user.ID, err)
			}
			digests[i] = email.Digest{
				To:         user.Email,
				Name:       user.Name,
				Summary:    summary,
				Attachment: workbook,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, translate(err, ErrUserNotFound)
	}

	s.log.Infof("Built %d digests for %s", len(digests), report.MonthLabel(year, month))
	return digests, nil
}
