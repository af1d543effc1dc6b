// Package error defines domain-specific errors for the finance tracker client.
package error

import "errors"

// Persistence domain errors.
var (
	// ErrDocumentDecode is returned when a stored document cannot be mapped
	// back to its entity.
	ErrDocumentDecode = errors.New("failed to decode document")
)

// PersistenceErrorCode defines error codes for document store failures.
// Format: STORE-XXYYYY where XX is category and YYYY is specific error.
type PersistenceErrorCode string

const (
	// Read errors (01XXXX)
	ErrCodeReadFailed     PersistenceErrorCode = "STORE-010001"
	ErrCodeDocumentDecode PersistenceErrorCode = "STORE-010002"

	// Write errors (02XXXX)
	ErrCodeWriteFailed PersistenceErrorCode = "STORE-020001"
)

// PersistenceError represents a document store failure. Failed writes never
// appear in local state; failed reads leave prior state untouched.
type PersistenceError struct {
	Code    PersistenceErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError with the given code and message.
func NewPersistenceError(code PersistenceErrorCode, message string, err error) *PersistenceError {
	return &PersistenceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
