package service

import (
	"context"
	"strings"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// Listing limits
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// TransactionInput carries the editable fields of a transaction
type TransactionInput struct {
	Amount      decimal.Decimal
	Type        string
	Category    string
	Description *string
	Date        models.Date
}

// TransactionPage is one page of a transaction listing
type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   models.Pagination    `json:"pagination"`
}

// NormalizePage applies the listing defaults and the limit cap
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// ListTransactions returns one page of the user's transactions, newest first
func (s *Service) ListTransactions(ctx context.Context, userID int64, f models.TransactionFilter, page, limit int) (*TransactionPage, error) {
	page, limit = NormalizePage(page, limit)

	txs, err := s.repo.ListTransactions(ctx, userID, f, limit, (page-1)*limit)
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	total, err := s.repo.CountTransactions(ctx, userID, f)
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	return &TransactionPage{
		Transactions: txs,
		Pagination:   models.NewPagination(page, limit, total),
	}, nil
}

// GetTransaction returns one of the user's transactions
func (s *Service) GetTransaction(ctx context.Context, userID, id int64) (*models.Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	return t, nil
}

// CreateTransaction records a transaction for the user
func (s *Service) CreateTransaction(ctx context.Context, userID int64, in TransactionInput) (*models.Transaction, error) {
	t := in.transaction()
	t.UserID = userID
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	s.log.Infof("Transaction %d created for user %d: %s %s", t.ID, userID, t.Type, t.Amount.StringFixed(2))
	return t, nil
}

// UpdateTransaction rewrites one of the user's transactions
func (s *Service) UpdateTransaction(ctx context.Context, userID, id int64, in TransactionInput) (*models.Transaction, error) {
	t := in.transaction()
	t.ID = id
	t.UserID = userID
	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	s.log.Infof("Transaction %d updated for user %d", id, userID)
	return t, nil
}

// DeleteTransaction removes one of the user's transactions
func (s *Service) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, id, userID); err != nil {
		return translate(err, ErrTransactionNotFound)
	}
	s.log.Infof("Transaction %d deleted for user %d", id, userID)
	return nil
}

func (in TransactionInput) transaction() *models.Transaction {
	t := &models.Transaction{
		Amount:   in.Amount.Round(2),
		Type:     in.Type,
		Category: strings.TrimSpace(in.Category),
		Date:     in.Date,
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d != "" {
			t.Description = &d
		}
	}
	return t
}
