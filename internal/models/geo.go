package models

// Country is a geo lookup entry
type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// City belongs to a country
type City struct {
	ID        int64  `json:"id"`
	CountryID int64  `json:"country_id"`
	Name      string `json:"name"`
}

// Neighborhood belongs to a city
type Neighborhood struct {
	ID     int64  `json:"id"`
	CityID int64  `json:"city_id"`
	Name   string `json:"name"`
}
