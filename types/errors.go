package types

import "errors"

var (
	// ErrBadRequest is returned on missing or malformed input
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the resource conflicts (e.g. update of old revision)
	ErrConflict = errors.New("conflict")

	// ErrNotAuthorized is returned on missing or invalid credentials
	ErrNotAuthorized = errors.New("not authorized")

	// ErrMisconfigured is returned when a required operational secret or sender identity is missing
	ErrMisconfigured = errors.New("misconfigured")

	// ErrInternal (for unhandled exceptions)
	ErrInternal = errors.New("internal error")

	// ErrInvalidEmail is returned when the email is invalid
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidWalletAddress is returned when the wallet address is invalid
	ErrInvalidWalletAddress = errors.New("invalid wallet address")

	// ErrUserExists is returned when registering an email that already has a binding
	ErrUserExists = errors.New("user already exists")
)

// OTP challenge verification outcomes
var (
	ErrNoActiveCode    = errors.New("no_active_code")
	ErrCodeExpired     = errors.New("expired")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrTooManyAttempts = errors.New("too_many_attempts")
)

// signature workflow outcomes
var (
	ErrAlreadyCompleted = errors.New("already_completed")
	ErrAlreadyDecided   = errors.New("already_decided")
	ErrHashMismatch     = errors.New("document hash mismatch")
)

// session token validation outcomes
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)
