package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/repository"
)

// CategoryInput carries the editable fields of a category
type CategoryInput struct {
	Name  string
	Color string
	Icon  string
	Type  string
}

// ListCategories returns the shared defaults followed by the user's own categories
func (s *Service) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, translate(err, ErrCategoryNotFound)
	}
	return categories, nil
}

// CreateCategory adds a category owned by the user
func (s *Service) CreateCategory(ctx context.Context, userID int64, in CategoryInput) (*models.Category, error) {
	owner := userID
	c := &models.Category{
		UserID: &owner,
		Name:   strings.TrimSpace(in.Name),
		Color:  in.Color,
		Icon:   in.Icon,
		Type:   in.Type,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, translate(err, ErrCategoryNotFound)
	}
	s.log.Infof("Category created for user %d: %s (%s)", userID, c.Name, c.Type)
	return c, nil
}

// UpdateCategory rewrites one of the user's own categories
func (s *Service) UpdateCategory(ctx context.Context, userID, id int64, in CategoryInput) (*models.Category, error) {
	c, err := s.mutableCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	c.Name = strings.TrimSpace(in.Name)
	c.Color = in.Color
	c.Icon = in.Icon
	c.Type = in.Type
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, translate(err, ErrCategoryNotFound)
	}
	s.log.Infof("Category %d updated for user %d", id, userID)
	return c, nil
}

// DeleteCategory removes one of the user's own categories when no
// transaction of the user still carries its name
func (s *Service) DeleteCategory(ctx context.Context, userID, id int64) error {
	c, err := s.mutableCategory(ctx, userID, id)
	if err != nil {
		return err
	}

	used, err := s.repo.CountCategoryUsage(ctx, userID, c.Name)
	if err != nil {
		return translate(err, ErrCategoryNotFound)
	}
	if used > 0 {
		return ErrCategoryInUse
	}

	if err := s.repo.DeleteCategory(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return ErrCategoryInUse
		}
		return translate(err, ErrCategoryNotFound)
	}
	s.log.Infof("Category %d deleted for user %d", id, userID)
	return nil
}

func (s *Service) mutableCategory(ctx context.Context, userID, id int64) (*models.Category, error) {
	c, err := s.repo.FindCategory(ctx, id, userID)
	if err != nil {
		return nil, translate(err, ErrCategoryNotFound)
	}
	if err := CheckCategoryMutable(c, userID); err != nil {
		return nil, err
	}
	return c, nil
}

// CheckCategoryMutable decides whether userID may change c. Defaults are
// forbidden; categories of other users look missing.
func CheckCategoryMutable(c *models.Category, userID int64) error {
	if c.IsDefault {
		return ErrDefaultCategory
	}
	if c.UserID == nil || *c.UserID != userID {
		return ErrCategoryNotFound
	}
	return nil
}
