package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/firststep/ecom/internal/auth"
	"github.com/firststep/ecom/internal/models"
	pkghttp "github.com/firststep/ecom/pkg/http"
	"github.com/go-chi/chi/v5"
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.CartItem, error)
	AddOrIncrement(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

// CartHandler handles the cart endpoints
type CartHandler struct {
	repo CartRepository
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(repo CartRepository) *CartHandler {
	return &CartHandler{repo: repo}
}

// AddToCartRequest represents the request body for adding a cart line
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// Get handles GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	items, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to get cart")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, items)
}

// Add handles POST /api/cart — inserts the line or bumps its quantity
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Missing productId")
		return
	}

	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	userID := auth.UserIDFromContext(r.Context())

	item, err := h.repo.AddOrIncrement(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Unknown product")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to update cart")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, item)
}

// Remove handles DELETE /api/cart/{productId}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.repo.Remove(r.Context(), userID, productID); err != nil {
		pkghttp.WriteInternalError(w, "Failed to remove item")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Item removed")
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.repo.Clear(r.Context(), userID); err != nil {
		pkghttp.WriteInternalError(w, "Failed to clear cart")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Cart cleared")
}
