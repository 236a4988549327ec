package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Money columns are NUMERIC(14, 2).
const moneyScale = 2

var maxMoney = decimal.New(1, 12)

// checkMoney rejects amounts the ledger cannot store exactly.
func checkMoney(field string, v decimal.Decimal) error {
	switch {
	case !v.IsPositive():
		return invalid(field, "must be greater than 0")
	case !v.Equal(v.Truncate(moneyScale)):
		return invalid(field, "must have at most 2 decimal places")
	case v.GreaterThanOrEqual(maxMoney):
		return invalid(field, "must be less than "+maxMoney.String())
	}
	return nil
}

var (
	ErrConfirmationRequired = errors.New(`confirmation required: send confirm="DELETE ALL" to reset the ledger`)
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrGoogleLoginDisabled  = errors.New("google sign-in is not configured")
	ErrInvalidFileFormat    = errors.New("invalid file format. only .jpg, .jpeg, .png, .pdf, .webp are allowed")
	ErrFileSizeExceeded     = errors.New("file size exceeds limit")
	ErrExtractionFailed     = errors.New("receipt extraction failed")
	ErrAdvisoryUnavailable  = errors.New("advisory service unavailable")
)
