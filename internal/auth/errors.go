package auth

import "errors"

// ErrUnauthorized is the category of every authentication failure.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an authenticated actor is denied an action.
var ErrForbidden = errors.New("forbidden")

// Specific authentication failures. Each matches ErrUnauthorized under errors.Is.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials error = &unauthorizedError{msg: "invalid credentials"}

	// ErrAccountDisabled is only reported after the password has verified.
	ErrAccountDisabled error = &unauthorizedError{msg: "account disabled"}

	// ErrTokenInvalid covers malformed, expired, mis-signed or mistyped tokens.
	ErrTokenInvalid error = &unauthorizedError{msg: "invalid token"}
)

type unauthorizedError struct {
	msg string
}

func (e *unauthorizedError) Error() string { return e.msg }

// Is lets errors.Is(err, ErrUnauthorized) match every specific failure.
func (e *unauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}
