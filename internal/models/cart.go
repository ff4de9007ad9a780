package models

import (
	"time"
)

// CartItem is one product line in a user's cart
type CartItem struct {
	UserID    string    `json:"-"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}
