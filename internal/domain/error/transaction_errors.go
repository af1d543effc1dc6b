// Package error defines domain-specific errors for the finance tracker client.
package error

import "errors"

// Transaction domain errors.
var (
	// ErrInvalidTransactionType is returned when the transaction type is invalid.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrEmptyDescription is returned when the transaction description is empty.
	ErrEmptyDescription = errors.New("description is required")

	// ErrInvalidTransactionAmount is returned when the amount is not positive.
	ErrInvalidTransactionAmount = errors.New("amount must be greater than zero")

	// ErrEmptyCategory is returned when the transaction category is empty.
	ErrEmptyCategory = errors.New("category is required")

	// ErrInvalidTransactionDate is returned when the transaction date is missing or unparseable.
	ErrInvalidTransactionDate = errors.New("invalid transaction date")

	// ErrStaleAppend is returned when an append resolves after the store's
	// identity changed or the store was cleared; the append is dropped.
	ErrStaleAppend = errors.New("append discarded: store identity changed")
)

// ValidationErrorCode defines error codes for transaction validation errors.
// Format: TXN-XXYYYY where XX is category and YYYY is specific error.
type ValidationErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidTransactionType   ValidationErrorCode = "TXN-010001"
	ErrCodeEmptyDescription         ValidationErrorCode = "TXN-010002"
	ErrCodeInvalidTransactionAmount ValidationErrorCode = "TXN-010003"
	ErrCodeEmptyCategory            ValidationErrorCode = "TXN-010004"
	ErrCodeInvalidTransactionDate   ValidationErrorCode = "TXN-010005"
)

// ValidationError represents a transaction input validation error. Field
// names the offending input field; validation failures perform no I/O.
type ValidationError struct {
	Code    ValidationErrorCode
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(code ValidationErrorCode, field, message string, err error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
