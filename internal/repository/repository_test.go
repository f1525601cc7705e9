package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewRepository(db, time.Second), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func date(s string) *time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestWrapTranslatesDriverErrors(t *testing.T) {
	r := NewRepository(nil, 0)
	assert.Equal(t, DefaultQueryTimeout, r.timeout)
	assert.ErrorIs(t, r.wrap("x", context.DeadlineExceeded), ErrTimeout)
	assert.ErrorIs(t, r.wrap("x", &pq.Error{Code: "23505"}), ErrDuplicate)

	other := errors.New("boom")
	err := r.wrap("create user", other)
	assert.ErrorIs(t, err, other)
	assert.EqualError(t, err, "failed to create user: boom")
}

func TestTransactionWhere(t *testing.T) {
	where, args := transactionWhere(7, models.TransactionFilter{})
	assert.Equal(t, " WHERE user_id = $1", where)
	assert.Equal(t, []any{int64(7)}, args)

	where, args = transactionWhere(7, models.TransactionFilter{
		Category:  "food",
		Type:      models.TypeExpense,
		StartDate: date("2024-01-01"),
		EndDate:   date("2024-01-31"),
	})
	assert.Equal(t, " WHERE user_id = $1 AND category = $2 AND type = $3 AND date BETWEEN $4 AND $5", where)
	assert.Equal(t, []any{int64(7), "food", "expense", "2024-01-01", "2024-01-31"}, args)

	// a half-open range is ignored
	where, _ = transactionWhere(7, models.TransactionFilter{StartDate: date("2024-01-01")})
	assert.Equal(t, " WHERE user_id = $1", where)
}

func TestPeriodBounds(t *testing.T) {
	from, to, ok := Period{Year: 2024, Month: 12}.Bounds()
	require.True(t, ok)
	assert.Equal(t, "2024-12-01", from.Format(models.DateLayout))
	assert.Equal(t, "2025-01-01", to.Format(models.DateLayout))

	from, to, ok = Period{Year: 2024}.Bounds()
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", from.Format(models.DateLayout))
	assert.Equal(t, "2025-01-01", to.Format(models.DateLayout))

	_, _, ok = Period{Month: 3}.Bounds()
	assert.False(t, ok)
}

func TestCreateUser(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(q("INSERT INTO users (name, email, password_hash")).
		WithArgs("Ana", "ana@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))

	u := &models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"}
	require.NoError(t, r.CreateUser(context.Background(), u))
	assert.Equal(t, int64(5), u.ID)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(q("INSERT INTO users")).WillReturnError(&pq.Error{Code: "23505"})

	err := r.CreateUser(context.Background(), &models.User{Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestFindUserByEmailNotFound(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(q("FROM users WHERE email = $1")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.FindUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserProfile(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(q("UPDATE users SET first_name = $1, age = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3")).
		WithArgs("Ana", nil, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.UpdateUserProfile(context.Background(), 3, []FieldChange{
		{Column: "first_name", Value: "Ana"},
		{Column: "age", Value: nil},
	})
	require.NoError(t, err)
}

func TestUpdateUserProfileRejectsUnknownColumn(t *testing.T) {
	r, _ := newMockRepo(t)
	err := r.UpdateUserProfile(context.Background(), 3, []FieldChange{{Column: "password_hash", Value: "x"}})
	assert.Error(t, err)
}

func TestCreateCategoryCollidingWithDefault(t *testing.T) {
	r, mock := newMockRepo(t)
	uid := int64(9)
	mock.ExpectQuery(q("INSERT INTO categories (name, color, icon, type, user_id, is_default)")).
		WithArgs("Food", "#FF0000", "utensils", "expense", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	err := r.CreateCategory(context.Background(), &models.Category{
		UserID: &uid, Name: "Food", Color: "#FF0000", Icon: "utensils", Type: "expense",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateCategoryUniqueViolation(t *testing.T) {
	r, mock := newMockRepo(t)
	uid := int64(9)
	mock.ExpectQuery(q("INSERT INTO categories")).WillReturnError(&pq.Error{Code: "23505"})

	err := r.CreateCategory(context.Background(), &models.Category{UserID: &uid, Name: "Pets", Type: "expense"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDeleteCategoryInUse(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(q("DELETE FROM categories c")).
		WithArgs(int64(4), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT EXISTS (SELECT 1 FROM categories")).
		WithArgs(int64(4), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	assert.ErrorIs(t, r.DeleteCategory(context.Background(), 4, 9), ErrInUse)
}

func TestDeleteCategoryAlreadyGone(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(q("DELETE FROM categories c")).
		WithArgs(int64(4), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT EXISTS (SELECT 1 FROM categories")).
		WithArgs(int64(4), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	assert.ErrorIs(t, r.DeleteCategory(context.Background(), 4, 9), ErrNotFound)
}

func TestUpdateCategoryGuard(t *testing.T) {
	uid := int64(9)
	tests := []struct {
		name   string
		exists bool
		want   error
	}{
		{"clashes with a default", true, ErrDuplicate},
		{"deleted meanwhile", false, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mock := newMockRepo(t)
			mock.ExpectQuery(q("UPDATE categories")).
				WithArgs("food", "#00FF00", "leaf", "expense", int64(4), int64(9)).
				WillReturnRows(sqlmock.NewRows([]string{"created_at"}))
			mock.ExpectQuery(q("SELECT EXISTS (SELECT 1 FROM categories")).
				WithArgs(int64(4), int64(9)).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			err := r.UpdateCategory(context.Background(), &models.Category{
				ID: 4, UserID: &uid, Name: "food", Color: "#00FF00", Icon: "leaf", Type: "expense",
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCategoryGuardsIgnoreCase(t *testing.T) {
	r, mock := newMockRepo(t)
	uid := int64(9)
	mock.ExpectQuery(q("WHERE is_default = TRUE AND lower(name) = lower($1) AND type = $4")).
		WithArgs("food", "#FF0000", "utensils", "expense", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))
	mock.ExpectQuery(q("WHERE lower(category) = lower($1) AND user_id = $2")).
		WithArgs("FOOD", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	err := r.CreateCategory(context.Background(), &models.Category{
		UserID: &uid, Name: "food", Color: "#FF0000", Icon: "utensils", Type: "expense",
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	n, err := r.CountCategoryUsage(context.Background(), 9, "FOOD")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDeleteCategory(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(q("DELETE FROM categories c")).
		WithArgs(int64(4), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, r.DeleteCategory(context.Background(), 4, 9))
}

func TestListTransactionsScopesToOwner(t *testing.T) {
	r, mock := newMockRepo(t)
	created := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q("FROM transactions WHERE user_id = $1 AND category = $2 ORDER BY date DESC, created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs(int64(2), "food", int64(50), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "type", "category", "description", "date", "created_at"}).
			AddRow(int64(1), int64(2), "40.10", "expense", "food", nil, created, created))

	txs, err := r.ListTransactions(context.Background(), 2, models.TransactionFilter{Category: "food"}, 50, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(2), txs[0].UserID)
	assert.Equal(t, "food", txs[0].Category)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("40.10")))
	assert.Nil(t, txs[0].Description)
	assert.Equal(t, "2024-01-05", txs[0].Date.String())
}

func TestUpdateTransactionNotOwned(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(q("UPDATE transactions")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	err := r.UpdateTransaction(context.Background(), &models.Transaction{ID: 1, UserID: 2})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTransactionNotOwned(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(q("DELETE FROM transactions WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, r.DeleteTransaction(context.Background(), 1, 2), ErrNotFound)
}

func TestTypeTotalsForMonth(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(q("WHERE user_id = $1 AND date >= $2 AND date < $3")).
		WithArgs(int64(2), "2024-02-01", "2024-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"type", "sum", "count"}).
			AddRow("income", "100.00", 1).
			AddRow("expense", "60.00", 2))

	stats, err := r.TypeTotals(context.Background(), 2, Period{Year: 2024, Month: 2})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 2, stats[1].Count)
	assert.True(t, stats[1].Total.Equal(decimal.NewFromInt(60)))
}

func TestMonthlyTypeTotals(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(q("EXTRACT(MONTH FROM date)::int AS month")).
		WithArgs(int64(2), "2024-01-01", "2025-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"month", "type", "sum"}).
			AddRow(1, "income", "10.50"))

	totals, err := r.MonthlyTypeTotals(context.Background(), 2, 2024)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 1, totals[0].Month)
}

func TestListCities(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(q("FROM cities WHERE country_id = $1 ORDER BY name")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "country_id", "name"}).
			AddRow(int64(1), int64(1), "Bogota").
			AddRow(int64(2), int64(1), "Cali"))

	cities, err := r.ListCities(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, cities, 2)
}

func TestPostgresDriverRegistered(t *testing.T) {
	assert.Contains(t, sql.Drivers(), "postgres")
}
