package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dan9191/finance-tracker/internal/models"
)

const categoryColumns = `id, user_id, name, color, icon, type, is_default, created_at`

func scanCategory(row rowScanner) (*models.Category, error) {
	c := &models.Category{}
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.Type, &c.IsDefault, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns the defaults followed by the user's own categories
func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_default = TRUE OR user_id = $1
		ORDER BY is_default DESC, name ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, r.wrap("list categories", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, r.wrap("scan category", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("list categories", err)
	}
	return categories, nil
}

// FindCategory returns a category visible to the user: one of theirs or a default
func (r *Repository) FindCategory(ctx context.Context, id, userID int64) (*models.Category, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1 AND (user_id = $2 OR is_default = TRUE)`
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, r.wrap("find category", err)
	}
	return c, nil
}

// CreateCategory inserts a user category unless the name+type is already
// taken by the user (unique index) or by a default (guarded insert).
func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO categories (name, color, icon, type, user_id, is_default)
		SELECT $1, $2, $3, $4, $5, FALSE
		WHERE NOT EXISTS (
			SELECT 1 FROM categories WHERE is_default = TRUE AND lower(name) = lower($1) AND type = $4
		)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Color, c.Icon, c.Type, c.UserID).
		Scan(&c.ID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicate
	}
	if err != nil {
		return r.wrap("create category", err)
	}
	c.IsDefault = false
	return nil
}

// UpdateCategory rewrites a user-owned category. A name+type clash with
// another category surfaces as ErrDuplicate, a vanished row as ErrNotFound.
func (r *Repository) UpdateCategory(ctx context.Context, c *models.Category) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE categories
		SET name = $1, color = $2, icon = $3, type = $4
		WHERE id = $5 AND user_id = $6 AND is_default = FALSE
		  AND NOT EXISTS (
			SELECT 1 FROM categories d WHERE d.is_default = TRUE AND lower(d.name) = lower($1) AND d.type = $4
		  )
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Color, c.Icon, c.Type, c.ID, c.UserID).
		Scan(&c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r.missingOr(ctx, c.ID, c.UserID, ErrDuplicate)
	}
	if err != nil {
		return r.wrap("update category", err)
	}
	return nil
}

// CountCategoryUsage counts the user's transactions filed under a category name
func (r *Repository) CountCategoryUsage(ctx context.Context, userID int64, name string) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE lower(category) = lower($1) AND user_id = $2`, name, userID).
		Scan(&count)
	if err != nil {
		return 0, r.wrap("count category usage", err)
	}
	return count, nil
}

// DeleteCategory removes a user-owned category that no transaction of the
// user still references. The reference check and the delete are one statement.
func (r *Repository) DeleteCategory(ctx context.Context, id, userID int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		DELETE FROM categories c
		WHERE c.id = $1 AND c.user_id = $2 AND c.is_default = FALSE
		  AND NOT EXISTS (
			SELECT 1 FROM transactions t WHERE t.user_id = $2 AND lower(t.category) = lower(c.name)
		  )`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return r.wrap("delete category", err)
	}
	if err := expectRow(res); errors.Is(err, ErrNotFound) {
		return r.missingOr(ctx, id, userID, ErrInUse)
	} else if err != nil {
		return err
	}
	return nil
}

// missingOr explains a guarded statement that touched no row: ErrNotFound
// when the user's category is gone, guardErr when the guard refused it.
func (r *Repository) missingOr(ctx context.Context, id int64, userID any, guardErr error) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND user_id = $2 AND is_default = FALSE)`, id, userID).
		Scan(&exists)
	if err != nil {
		return r.wrap("check category", err)
	}
	if !exists {
		return ErrNotFound
	}
	return guardErr
}
