package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/zeus-03/pennytrail/internal/models"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("category", validateCategory)
	_ = v.RegisterValidation("category_filter", validateCategoryFilter)
	_ = v.RegisterValidation("time_range", validateTimeRange)
	_ = v.RegisterValidation("money_amount", validateMoneyAmount)
	_ = v.RegisterValidation("nonneg_amount", validateNonNegativeAmount)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateCategory accepts only the known category keys
func validateCategory(fl validator.FieldLevel) bool {
	return models.IsValidCategory(fl.Field().String())
}

// validateCategoryFilter additionally accepts "all" and empty for filter inputs
func validateCategoryFilter(fl validator.FieldLevel) bool {
	category := fl.Field().String()
	if category == "" || category == models.CategoryAll {
		return true
	}
	return models.IsValidCategory(category)
}

// validateTimeRange accepts the known time range keys plus empty
func validateTimeRange(fl validator.FieldLevel) bool {
	timeRange := fl.Field().String()
	if timeRange == "" {
		return true
	}
	return models.IsValidTimeRange(timeRange)
}

// validateMoneyAmount validates that a string amount parses as a decimal
// with at most 2 fractional digits
func validateMoneyAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}

	return amount.Exponent() >= -2
}

// validateNonNegativeAmount validates that a string amount parses as a
// decimal greater than or equal to zero
func validateNonNegativeAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}

	return !amount.IsNegative()
}
