package validation

import (
	"reflect"
	"regexp"
	"strings"

	"lendvault/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
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

	_ = v.RegisterValidation("account_number", validateAccountNumber)
	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("collateral_status", validateCollateralStatus)

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

// validateAccountNumber validates that an account number follows the expected
// format: 10 digits with a recognized prefix
func validateAccountNumber(fl validator.FieldLevel) bool {
	return models.ValidateAccountNumber(fl.Field().String())
}

// validateAmount validates that a string amount parses as a positive decimal
// with at most 2 decimal places
func validateAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}

	matched, _ := regexp.MatchString(`^\d+(\.\d{1,2})?$`, raw)
	if !matched {
		return false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return amount.GreaterThan(decimal.Zero)
}

// validateTransactionType validates that the value is one of the ledger's
// closed transaction type set
func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(strings.ToLower(fl.Field().String())).Valid()
}

// validateCollateralStatus validates that the value is a known collateral status
func validateCollateralStatus(fl validator.FieldLevel) bool {
	return models.IsValidCollateralStatus(strings.ToLower(fl.Field().String()))
}
