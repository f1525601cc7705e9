package service

import (
	"context"

	"github.com/Dan9191/finance-tracker/internal/models"
)

var errGeoNotFound = classify(ErrNotFound, "location not found")

func (s *Service) Countries(ctx context.Context) ([]models.Country, error) {
	countries, err := s.repo.ListCountries(ctx)
	return countries, translate(err, errGeoNotFound)
}

func (s *Service) Cities(ctx context.Context, countryID int64) ([]models.City, error) {
	cities, err := s.repo.ListCities(ctx, countryID)
	return cities, translate(err, errGeoNotFound)
}

func (s *Service) Neighborhoods(ctx context.Context, cityID int64) ([]models.Neighborhood, error) {
	neighborhoods, err := s.repo.ListNeighborhoods(ctx, cityID)
	return neighborhoods, translate(err, errGeoNotFound)
}
