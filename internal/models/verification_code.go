package models

import (
	"time"
)

// VerificationCode is the single active one-time code for an email address.
// The store keeps at most one row per email; issuing a new code replaces
// whatever was there before.
type VerificationCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"-"` // never expose the code
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired checks if the code has expired
func (c *VerificationCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
