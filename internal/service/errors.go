package service

import (
	"errors"
	"strings"
)

// Error classes; the handler maps each to an HTTP status
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrDuplicateEmail = errors.New("email is already registered")
	ErrUnavailable    = errors.New("database unavailable")
)

// Specific failures, each carrying the message shown to the client
var (
	ErrUserNotFound        = classify(ErrNotFound, "user not found")
	ErrTransactionNotFound = classify(ErrNotFound, "transaction not found")
	ErrCategoryNotFound    = classify(ErrNotFound, "category not found")
	ErrNoTransactions      = classify(ErrNotFound, "no transactions to export")
	ErrNoExpenses          = classify(ErrNotFound, "no expenses recorded for this month")
	ErrDefaultCategory     = classify(ErrForbidden, "default categories cannot be modified")
	ErrCategoryExists      = classify(ErrConflict, "a category with this name and type already exists")
	ErrCategoryInUse       = classify(ErrConflict, "category is used by existing transactions")
	ErrInvalidCredentials  = classify(ErrUnauthorized, "invalid credentials")
)

type classifiedError struct {
	class error
	msg   string
}

func classify(class error, msg string) error {
	return &classifiedError{class: class, msg: msg}
}

func (e *classifiedError) Error() string { return e.msg }

func (e *classifiedError) Unwrap() error { return e.class }

// ValidationError lists field-level problems with a request
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func invalid(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
