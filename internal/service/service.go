package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/repository"
	"github.com/Dan9191/finance-tracker/internal/utils"
	"github.com/sirupsen/logrus"
)

// Store is the data access the service needs; *repository.Repository satisfies it
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id int64, changes []repository.FieldChange) error
	SetProfilePicture(ctx context.Context, id int64, url string) error
	ListActiveUsers(ctx context.Context, from, to time.Time) ([]models.User, error)

	ListCategories(ctx context.Context, userID int64) ([]models.Category, error)
	FindCategory(ctx context.Context, id, userID int64) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	CountCategoryUsage(ctx context.Context, userID int64, name string) (int, error)
	DeleteCategory(ctx context.Context, id, userID int64) error

	ListTransactions(ctx context.Context, userID int64, f models.TransactionFilter, limit, offset int) ([]models.Transaction, error)
	CountTransactions(ctx context.Context, userID int64, f models.TransactionFilter) (int, error)
	ExportTransactions(ctx context.Context, userID int64, f models.TransactionFilter) ([]models.Transaction, error)
	TransactionsBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id, userID int64) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID int64) error

	TypeTotals(ctx context.Context, userID int64, p repository.Period) ([]models.TypeStat, error)
	ExpenseCategoryTotals(ctx context.Context, userID int64, p repository.Period) ([]models.CategoryStat, error)
	MonthlyTypeTotals(ctx context.Context, userID int64, year int) ([]models.MonthTypeTotal, error)

	ListCountries(ctx context.Context) ([]models.Country, error)
	ListCities(ctx context.Context, countryID int64) ([]models.City, error)
	ListNeighborhoods(ctx context.Context, cityID int64) ([]models.Neighborhood, error)
}

// Service handles business logic
type Service struct {
	repo   Store
	log    *logrus.Logger
	tokens *utils.TokenIssuer
	now    func() time.Time
}

// NewService initializes a new service
func NewService(repo Store, log *logrus.Logger, tokens *utils.TokenIssuer) *Service {
	return &Service{repo: repo, log: log, tokens: tokens, now: time.Now}
}

// translate turns repository failures into service errors. notFound is
// returned for missing rows so each caller can name what was missing.
func translate(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrTimeout):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
