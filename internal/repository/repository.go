package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row does not exist or is not owned by the caller
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write collides with an existing row
	ErrDuplicate = errors.New("record already exists")
	// ErrInUse is returned when a row is still referenced and cannot be removed
	ErrInUse = errors.New("record is in use")
	// ErrTimeout is returned when the database did not answer in time
	ErrTimeout = errors.New("database timeout")
)

const uniqueViolation pq.ErrorCode = "23505"

// DefaultQueryTimeout bounds every repository call when none is configured
const DefaultQueryTimeout = 15 * time.Second

// Repository provides database operations
type Repository struct {
	db      *sql.DB
	timeout time.Duration
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB, timeout time.Duration) *Repository {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Repository{db: db, timeout: timeout}
}

// Ping checks that a connection can be acquired
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.PingContext(ctx); err != nil {
		return r.wrap("ping database", err)
	}
	return nil
}

// withTimeout bounds a call, including the wait for a pooled connection
func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Repository) wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to %s: %w", op, ErrTimeout)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("failed to %s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
