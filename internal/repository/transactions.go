package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/finance-tracker/internal/models"
)

const transactionColumns = `id, user_id, amount, type, category, description, date, created_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	if err := row.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Category, &t.Description, &t.Date, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// transactionWhere always scopes to the owner, then adds the optional filters
func transactionWhere(userID int64, f models.TransactionFilter) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}
	if f.Category != "" {
		args = append(args, f.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.StartDate != nil && f.EndDate != nil {
		args = append(args, f.StartDate.Format(models.DateLayout), f.EndDate.Format(models.DateLayout))
		clauses = append(clauses, fmt.Sprintf("date BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *Repository) queryTransactions(ctx context.Context, op, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, r.wrap("scan transaction", err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap(op, err)
	}
	return txs, nil
}

// ListTransactions returns one page of the user's transactions, newest first
func (r *Repository) ListTransactions(ctx context.Context, userID int64, f models.TransactionFilter, limit, offset int) ([]models.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where, args := transactionWhere(userID, f)
	args = append(args, limit, offset)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return r.queryTransactions(ctx, "list transactions", query, args...)
}

// CountTransactions counts the user's transactions matching the filter
func (r *Repository) CountTransactions(ctx context.Context, userID int64, f models.TransactionFilter) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where, args := transactionWhere(userID, f)
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return 0, r.wrap("count transactions", err)
	}
	return total, nil
}

// ExportTransactions returns every transaction matching the filter, newest first
func (r *Repository) ExportTransactions(ctx context.Context, userID int64, f models.TransactionFilter) ([]models.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where, args := transactionWhere(userID, f)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY date DESC, created_at DESC`
	return r.queryTransactions(ctx, "export transactions", query, args...)
}

// TransactionsBetween returns the user's transactions dated in [from, to)
func (r *Repository) TransactionsBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date DESC`
	return r.queryTransactions(ctx, "list transactions in period", query,
		userID, from.Format(models.DateLayout), to.Format(models.DateLayout))
}

// GetTransaction returns one of the user's transactions
func (r *Repository) GetTransaction(ctx context.Context, id, userID int64) (*models.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, r.wrap("get transaction", err)
	}
	return t, nil
}

// CreateTransaction creates a new transaction in the database
func (r *Repository) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO transactions (user_id, amount, type, category, description, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, t.UserID, t.Amount, t.Type, t.Category, t.Description, t.Date).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return r.wrap("create transaction", err)
	}
	return nil
}

// UpdateTransaction rewrites one of the user's transactions
func (r *Repository) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE transactions
		SET amount = $1, type = $2, category = $3, description = $4, date = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $6 AND user_id = $7
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, t.Amount, t.Type, t.Category, t.Description, t.Date, t.ID, t.UserID).
		Scan(&t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return r.wrap("update transaction", err)
	}
	return nil
}

// DeleteTransaction removes one of the user's transactions
func (r *Repository) DeleteTransaction(ctx context.Context, id, userID int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return r.wrap("delete transaction", err)
	}
	return expectRow(res)
}
