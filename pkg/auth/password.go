package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost matches the work factor the user table was populated with.
	// Raising it only affects newly hashed passwords.
	BcryptCost = 10

	MinPasswordLen = 6
	MaxPasswordLen = 72 // bcrypt input limit
)

// ErrHashingFailure wraps failures of the underlying bcrypt primitive so
// callers can tell them apart from a plain mismatch.
var ErrHashingFailure = errors.New("password hashing failed")

// HashPassword hashes a plaintext password with a random salt. Two calls with
// the same input produce different digests.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password cannot be empty", ErrHashingFailure)
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	return string(hashedBytes), nil
}

// ComparePassword recomputes the digest using the salt embedded in
// hashedPassword and compares in constant time. A malformed digest is
// reported as a mismatch, not a panic.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// IsBcryptDigest reports whether a stored credential looks like a bcrypt
// digest ("$2a$", "$2b$", "$2y$" prefixes). Anything else in the password
// column means the row was written by something other than HashPassword and
// authentication must fail closed.
func IsBcryptDigest(digest string) bool {
	return strings.HasPrefix(digest, "$2")
}
