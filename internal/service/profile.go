package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/repository"
)

// profileFields is the order in which profile changes are applied
var profileFields = []string{
	"first_name",
	"second_name",
	"first_last_name",
	"second_last_name",
	"age",
	"nationality",
	"neighborhood",
	"city",
	"address_line",
	"postal_code",
	"occupation",
}

// BuildProfileChanges turns a sparse profile request into column changes.
// Only keys present in raw are applied; unknown keys are ignored.
func BuildProfileChanges(raw map[string]json.RawMessage) ([]repository.FieldChange, error) {
	var (
		changes  []repository.FieldChange
		problems []string
	)
	for _, field := range profileFields {
		value, ok := raw[field]
		if !ok {
			continue
		}

		var (
			v       any
			problem string
		)
		switch field {
		case "age":
			v, problem = parseAge(value)
		case "occupation":
			v, problem = parseOccupation(value)
		default:
			v, problem = parseText(field, value)
		}
		if problem != "" {
			problems = append(problems, problem)
			continue
		}
		changes = append(changes, repository.FieldChange{Column: field, Value: v})
	}

	if len(problems) > 0 {
		return nil, invalid(problems...)
	}
	if len(changes) == 0 {
		return nil, invalid("no fields to update")
	}
	return changes, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// MaxAge is the oldest age a profile accepts
const MaxAge = 150

// parseAge accepts a positive integer as a JSON number or string; null and "" clear it
func parseAge(raw json.RawMessage) (any, string) {
	const msg = "age must be a positive integer"
	if isNull(raw) {
		return nil, ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, ""
		}
		return checkAge(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, msg
	}
	return checkAge(n.String())
}

func checkAge(s string) (any, string) {
	age, err := strconv.Atoi(s)
	if err != nil || age <= 0 {
		return nil, "age must be a positive integer"
	}
	if age > MaxAge {
		return nil, fmt.Sprintf("age must be at most %d", MaxAge)
	}
	return age, ""
}

func parseOccupation(raw json.RawMessage) (any, string) {
	const msg = "occupation must be one of student, employee, self_employed, unemployed, other"
	if isNull(raw) {
		return nil, ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, msg
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return models.OccupationOther, ""
	}
	if !models.ValidOccupation(s) {
		return nil, msg
	}
	return s, ""
}

func parseText(field string, raw json.RawMessage) (any, string) {
	if isNull(raw) {
		return nil, ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, field + " must be a string"
	}
	return s, ""
}

// UpdateProfile applies a sparse profile update and returns the stored user
func (s *Service) UpdateProfile(ctx context.Context, userID int64, raw map[string]json.RawMessage) (*models.User, error) {
	changes, err := BuildProfileChanges(raw)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUserProfile(ctx, userID, changes); err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	s.log.Infof("Profile updated for user %d: %d fields", userID, len(changes))
	return s.Profile(ctx, userID)
}

// SetProfilePicture records the public URL of an uploaded picture
func (s *Service) SetProfilePicture(ctx context.Context, userID int64, url string) error {
	if err := s.repo.SetProfilePicture(ctx, userID, url); err != nil {
		return translate(err, ErrUserNotFound)
	}
	s.log.Infof("Profile picture updated for user %d", userID)
	return nil
}
