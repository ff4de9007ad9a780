package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/firststep/ecom/internal/auth"
	"github.com/firststep/ecom/internal/models"
	"github.com/firststep/ecom/internal/services"
	pkghttp "github.com/firststep/ecom/pkg/http"
)

// UserServiceInterface defines the interface for profile operations
type UserServiceInterface interface {
	Get(ctx context.Context, userID string) (*services.UserSummary, error)
	ChangeName(ctx context.Context, userID, name string) (*services.UserSummary, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// UserHandler handles the authenticated profile endpoints
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateProfileRequest represents the request body for the username change
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// ChangePasswordRequest represents the request body for the password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// GetProfile handles GET /api/private/user
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	summary, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, summary)
}

// ChangePassword handles PATCH /api/private/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	userID := auth.UserIDFromContext(r.Context())

	if err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Current password is incorrect")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Server error")
		}
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Password updated")
}

// UpdateProfile handles PATCH /api/private/user
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Name is required")
		return
	}

	userID := auth.UserIDFromContext(r.Context())

	summary, err := h.service.ChangeName(r.Context(), userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNameTaken):
			pkghttp.WriteConflict(w, "Username already taken")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Name is required")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, summary)
}
