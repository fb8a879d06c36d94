package http

import (
	"errors"
	"reflect"
	"strings"

	"cryptoboost/internal/domain/funding"
	"cryptoboost/internal/domain/investment"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("crypto", func(fl validator.FieldLevel) bool {
		_, err := funding.ParseCrypto(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("plan", func(fl validator.FieldLevel) bool {
		_, err := investment.LookupPlan(fl.Field().String())
		return err == nil
	})
	// positive decimal carried as a string, so amounts never pass through float64
	_ = v.RegisterValidation("posdec", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && d.IsPositive()
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "crypto":
			out = append(out, FieldError{Field: field, Message: "must be one of BTC, ETH, SOL, USDT"})
		case "plan":
			out = append(out, FieldError{Field: field, Message: "must be one of starter, pro, expert"})
		case "posdec":
			out = append(out, FieldError{Field: field, Message: "must be a positive number"})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
