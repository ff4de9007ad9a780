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

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id, userID string, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id, userID string) error
}

// ProductHandler handles the catalog endpoints
type ProductHandler struct {
	repo ProductRepository
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(repo ProductRepository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// ProductRequest represents the request body for creating or updating a product
type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Type        string  `json:"type"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

// List handles GET /api/items — the caller's own products, newest first
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	products, err := h.repo.ListByOwner(r.Context(), userID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to list products")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, products)
}

// Get handles GET /api/items/{id} — public product lookup
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Product not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to get product")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, product)
}

// Create handles POST /api/items
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	product := &models.Product{
		UserID:      auth.UserIDFromContext(r.Context()),
		Name:        req.Name,
		Price:       req.Price,
		Type:        req.Type,
		Stock:       req.Stock,
		Image:       req.Image,
		Description: req.Description,
		Status:      req.Status,
	}

	created, err := h.repo.Create(r.Context(), product)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to create product")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/items/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := auth.UserIDFromContext(r.Context())

	var req ProductRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	product := &models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Type:        req.Type,
		Stock:       req.Stock,
		Image:       req.Image,
		Description: req.Description,
		Status:      req.Status,
	}

	updated, err := h.repo.Update(r.Context(), id, userID, product)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Product not found or unauthorized")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to update product")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.repo.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Product not found or unauthorized")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to delete product")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Product deleted")
}
