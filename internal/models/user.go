package models

import "time"

// User represents a user in the system
type User struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"` // Not serialized
	FirstName         *string   `json:"first_name"`
	SecondName        *string   `json:"second_name"`
	FirstLastName     *string   `json:"first_last_name"`
	SecondLastName    *string   `json:"second_last_name"`
	Age               *int      `json:"age"`
	Nationality       *string   `json:"nationality"`
	Neighborhood      *string   `json:"neighborhood"`
	City              *string   `json:"city"`
	AddressLine       *string   `json:"address_line"`
	PostalCode        *string   `json:"postal_code"`
	Occupation        *string   `json:"occupation"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UserSummary is the short user shape returned by register and login
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public subset of the user
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Occupations accepted by the profile endpoint
const (
	OccupationStudent      = "student"
	OccupationEmployee     = "employee"
	OccupationSelfEmployed = "self_employed"
	OccupationUnemployed   = "unemployed"
	OccupationOther        = "other"
)

// ValidOccupation reports whether s is one of the known occupations
func ValidOccupation(s string) bool {
	switch s {
	case OccupationStudent, OccupationEmployee, OccupationSelfEmployed, OccupationUnemployed, OccupationOther:
		return true
	}
	return false
}
