package models

import (
	"time"
)

type User struct {
	ID            string
	Name          string // unique display name, case-sensitive
	Email         string // stored lower-cased and trimmed
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
