package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// ValidType reports whether t is income or expense
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// DateLayout is the calendar date format used on the wire and in reports
const DateLayout = "2006-01-02"

// Transaction represents a financial transaction
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"-"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description *string         `json:"description"`
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionFilter narrows transaction listings and exports.
// The date range applies only when both ends are set.
type TransactionFilter struct {
	Category  string
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
}

// Pagination describes one page of a listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total rows
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
