package models

import (
	"time"
)

type Product struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Type        string    `json:"type"`
	Stock       int       `json:"stock"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // "active", "inactive"
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
