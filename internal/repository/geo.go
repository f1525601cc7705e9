package repository

import (
	"context"

	"github.com/Dan9191/finance-tracker/internal/models"
)

// ListCountries returns every country ordered by name
func (r *Repository) ListCountries(ctx context.Context) ([]models.Country, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, code FROM countries ORDER BY name`)
	if err != nil {
		return nil, r.wrap("list countries", err)
	}
	defer rows.Close()

	countries := []models.Country{}
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code); err != nil {
			return nil, r.wrap("scan country", err)
		}
		countries = append(countries, c)
	}
	return countries, r.rowsErr("list countries", rows.Err())
}

// ListCities returns the cities of a country ordered by name
func (r *Repository) ListCities(ctx context.Context, countryID int64) ([]models.City, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, country_id, name FROM cities WHERE country_id = $1 ORDER BY name`, countryID)
	if err != nil {
		return nil, r.wrap("list cities", err)
	}
	defer rows.Close()

	cities := []models.City{}
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.CountryID, &c.Name); err != nil {
			return nil, r.wrap("scan city", err)
		}
		cities = append(cities, c)
	}
	return cities, r.rowsErr("list cities", rows.Err())
}

// ListNeighborhoods returns the neighborhoods of a city ordered by name
func (r *Repository) ListNeighborhoods(ctx context.Context, cityID int64) ([]models.Neighborhood, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, city_id, name FROM neighborhoods WHERE city_id = $1 ORDER BY name`, cityID)
	if err != nil {
		return nil, r.wrap("list neighborhoods", err)
	}
	defer rows.Close()

	neighborhoods := []models.Neighborhood{}
	for rows.Next() {
		var n models.Neighborhood
		if err := rows.Scan(&n.ID, &n.CityID, &n.Name); err != nil {
			return nil, r.wrap("scan neighborhood", err)
		}
		neighborhoods = append(neighborhoods, n)
	}
	return neighborhoods, r.rowsErr("list neighborhoods", rows.Err())
}

func (r *Repository) rowsErr(op string, err error) error {
	if err != nil {
		return r.wrap(op, err)
	}
	return nil
}
