package auth

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNotVerified         = errors.New("verify email first")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired OTP")
	ErrConflict            = errors.New("user already exists")
	ErrUpstream            = errors.New("identity provider rejected the request")
	ErrInternal            = errors.New("internal error")

	// password reset reports a wrong token and an expired one separately
	ErrInvalidOTP = errors.New("invalid OTP")
	ErrExpired    = errors.New("OTP expired")

	ErrMFARequired       = errors.New("authenticator code required")
	ErrInvalidMFACode    = errors.New("invalid authenticator code")
	ErrMFANotSetUp       = errors.New("authenticator app is not set up")
	ErrInvalidToken      = errors.New("invalid token")
	ErrMFAUnavailable    = errors.New("authenticator support is not configured")
	ErrAlreadyVerified   = errors.New("email already verified")
	ErrMFAAlreadyEnabled = errors.New("authenticator app is already enabled")
)

// ValidationError names the offending input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
