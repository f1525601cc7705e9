package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// maxAmount is the largest value a NUMERIC(12,2) amount column holds
var maxAmount = decimal.RequireFromString("9999999999.99")

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// amounts and dates are validated in their wire form
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		switch value := field.Interface().(type) {
		case decimal.Decimal:
			return value.String()
		case models.Date:
			if value.IsZero() {
				return ""
			}
			return value.String()
		}
		return nil
	}, decimal.Decimal{}, models.Date{})

	mustRegister(v, "money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive() && d.Equal(d.Round(2))
	})
	mustRegister(v, "maxamount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.LessThanOrEqual(maxAmount)
	})
	mustRegister(v, "hexcolor6", func(fl validator.FieldLevel) bool {
		return hexColor.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// fieldErrors renders validation failures as one message per field
func fieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "money":
		return field + " must be a positive amount with at most 2 decimals"
	case "maxamount":
		return field + " must be at most " + maxAmount.StringFixed(2)
	case "hexcolor6":
		return field + " must be a color in #RRGGBB format"
	}
	return field + " is invalid"
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type transactionRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"money,maxamount"`
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Category    string          `json:"category" validate:"required,min=1,max=50"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Date        models.Date     `json:"date" validate:"required"`
}

type categoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=50"`
	Color string `json:"color" validate:"required,hexcolor6"`
	Icon  string `json:"icon" validate:"required,min=1,max=50"`
	Type  string `json:"type" validate:"required,oneof=income expense"`
}
