package models

import "time"

// Category groups transactions. Default categories are shared by every user
// and have no owner.
type Category struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	Type      string    `json:"type"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}
