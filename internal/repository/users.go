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

const userColumns = `id, name, email, password_hash, first_name, second_name, first_last_name,
		second_last_name, age, nationality, neighborhood, city, address_line, postal_code,
		occupation, profile_picture_url, created_at, updated_at`

// profileColumns lists the user columns a profile update may touch
var profileColumns = map[string]bool{
	"first_name":       true,
	"second_name":      true,
	"first_last_name":  true,
	"second_last_name": true,
	"age":              true,
	"nationality":      true,
	"neighborhood":     true,
	"city":             true,
	"address_line":     true,
	"postal_code":      true,
	"occupation":       true,
}

// FieldChange sets one profile column; a nil Value stores NULL
type FieldChange struct {
	Column string
	Value  any
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.FirstName, &u.SecondName,
		&u.FirstLastName, &u.SecondLastName, &u.Age, &u.Nationality, &u.Neighborhood, &u.City,
		&u.AddressLine, &u.PostalCode, &u.Occupation, &u.ProfilePictureURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return r.wrap("create user", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, r.wrap("find user", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, r.wrap("find user", err)
	}
	return user, nil
}

// UpdateUserProfile applies the given column changes to one user
func (r *Repository) UpdateUserProfile(ctx context.Context, id int64, changes []FieldChange) error {
	if len(changes) == 0 {
		return nil
	}

	sets := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+1)
	for _, c := range changes {
		if !profileColumns[c.Column] {
			return fmt.Errorf("unknown profile column %q", c.Column)
		}
		args = append(args, c.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", c.Column, len(args)))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.wrap("update user profile", err)
	}
	return expectRow(res)
}

// SetProfilePicture stores the public URL of the user's picture
func (r *Repository) SetProfilePicture(ctx context.Context, id int64, url string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET profile_picture_url = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, url, id)
	if err != nil {
		return r.wrap("set profile picture", err)
	}
	return expectRow(res)
}

// ListActiveUsers returns users with at least one transaction dated in [from, to)
func (r *Repository) ListActiveUsers(ctx context.Context, from, to time.Time) ([]models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users u
		WHERE EXISTS (
			SELECT 1 FROM transactions t
			WHERE t.user_id = u.id AND t.date >= $1 AND t.date < $2
		)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, r.wrap("list active users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, r.wrap("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("list active users", err)
	}
	return users, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
