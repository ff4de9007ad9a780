package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Registration conflicts, refined from the store's uniqueness constraints
	ErrEmailTaken = errors.New("email already exists")
	ErrNameTaken  = errors.New("username already taken")

	// Verification flow errors
	ErrCodeInvalid      = errors.New("invalid verification code")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrEmailNotVerified = errors.New("email address not verified")

	// Throttling
	ErrRateLimited = errors.New("rate limit exceeded")

	// Stored credential is absent or not a recognizable bcrypt digest.
	// Treated as a data-integrity alarm, never as a user error.
	ErrCorruptCredential = errors.New("stored credential is corrupt")
)
