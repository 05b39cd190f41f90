package domain

import (
	"errors"
	"fmt"
)

// Validation failures, reported before any I/O.
var (
	ErrMissingField    = errors.New("username, email, and password are required")
	ErrUsernameLength  = errors.New("username must be between 3 and 20 characters")
	ErrUsernameCharset = errors.New("username may only contain letters, digits and underscores")
	ErrEmailFormat     = errors.New("email format is invalid")
	ErrPasswordLength  = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is reported by the hasher, not the validator: bcrypt
	// reads at most 72 bytes.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)

// Registration conflicts.
var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
	ErrAccountExists = errors.New("account already exists")
)

// Authentication failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoToken            = errors.New("no token provided")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrConfiguration      = errors.New("authentication is not configured")
)

// ErrAccountNotFound is returned by repositories; services never surface it
// from Login.
var ErrAccountNotFound = errors.New("account not found")

var (
	validationKinds   = []error{ErrMissingField, ErrUsernameLength, ErrUsernameCharset, ErrEmailFormat, ErrPasswordLength, ErrPasswordTooLong}
	registrationKinds = []error{ErrUsernameTaken, ErrEmailTaken, ErrAccountExists}
	authKinds         = []error{ErrInvalidCredentials, ErrNoToken, ErrTokenExpired, ErrTokenInvalid, ErrConfiguration}
)

// ValidationError names the offending field alongside the rule that failed.
// errors.Is(err, ErrUsernameLength) and friends match through Unwrap.
type ValidationError struct {
	Field string
	Kind  error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Kind)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// IsValidation reports whether err is one of the input validation kinds.
func IsValidation(err error) bool { return isOneOf(err, validationKinds) }

// IsRegistration reports whether err is a uniqueness conflict.
func IsRegistration(err error) bool { return isOneOf(err, registrationKinds) }

// IsAuth reports whether err is an authentication failure kind.
func IsAuth(err error) bool { return isOneOf(err, authKinds) }

func isOneOf(err error, kinds []error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
