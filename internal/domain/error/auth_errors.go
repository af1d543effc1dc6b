// Package error defines domain-specific errors for the finance tracker client.
package error

import "errors"

// Authentication and identity domain errors.
var (
	// ErrEmailAlreadyExists is returned when signing up with an existing email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when sign-in credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidEmail is returned when the provided email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword is returned when the password does not meet requirements.
	ErrWeakPassword = errors.New("password does not meet minimum requirements")

	// ErrUnauthenticated is returned when an operation requiring a signed-in
	// identity is invoked without one.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidToken is returned when a session token is invalid or malformed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a session token has expired.
	ErrExpiredToken = errors.New("token has expired")

	// ErrInvalidAssertion is returned when a federated sign-in assertion
	// cannot be verified.
	ErrInvalidAssertion = errors.New("invalid provider assertion")
)

// AuthErrorCode defines error codes for authentication errors.
// Format: AUTH-XXYYYY where XX is category and YYYY is specific error.
type AuthErrorCode string

const (
	// Sign-up errors (01XXXX)
	ErrCodeEmailExists  AuthErrorCode = "AUTH-010001"
	ErrCodeInvalidEmail AuthErrorCode = "AUTH-010002"
	ErrCodeWeakPassword AuthErrorCode = "AUTH-010003"

	// Sign-in errors (02XXXX)
	ErrCodeInvalidCredentials AuthErrorCode = "AUTH-020001"
	ErrCodeRateLimited        AuthErrorCode = "AUTH-020002"
	ErrCodeInvalidAssertion   AuthErrorCode = "AUTH-020003"

	// Session errors (03XXXX)
	ErrCodeInvalidToken    AuthErrorCode = "AUTH-030001"
	ErrCodeExpiredToken    AuthErrorCode = "AUTH-030002"
	ErrCodeMissingToken    AuthErrorCode = "AUTH-030003"
	ErrCodeUnauthenticated AuthErrorCode = "AUTH-030004"
)

// AuthError represents an authentication or identity error with code and message.
type AuthError struct {
	Code    AuthErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new AuthError with the given code and message.
func NewAuthError(code AuthErrorCode, message string, err error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
