package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/firststep/ecom/internal/models"
	"github.com/firststep/ecom/internal/services"
	pkghttp "github.com/firststep/ecom/pkg/http"
)

// AuthServiceInterface defines the interface for the auth workflow
type AuthServiceInterface interface {
	SendCode(ctx context.Context, email, clientKey string) error
	VerifyCode(ctx context.Context, email, code string) error
	Register(ctx context.Context, name, email, password string) (*services.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
}

// AuthHandler handles the verification and credential endpoints
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// Request DTOs

// SendCodeRequest represents the request body for send-code
type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest represents the request body for verify-code
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SendCode handles POST /api/auth/send-code
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req SendCodeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Email is required")
		return
	}

	err := h.service.SendCode(r.Context(), req.Email, pkghttp.ClientIP(r))
	if err != nil {
		var rle *services.RateLimitedError
		if errors.As(err, &rle) {
			retryAfter := int(math.Ceil(rle.RetryAfter.Seconds()))
			pkghttp.WriteRateLimited(w, retryAfter, "Too many attempts. Try again in a minute.")
			return
		}
		pkghttp.WriteInternalError(w, "Email send failed")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Verification code sent")
}

// VerifyCode handles POST /api/auth/verify-code
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Email and code are required")
		return
	}

	if err := h.service.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, models.ErrCodeExpired):
			pkghttp.WriteBadRequest(w, "Verification code expired")
		case errors.Is(err, models.ErrCodeInvalid):
			pkghttp.WriteBadRequest(w, "Invalid or expired code")
		default:
			pkghttp.WriteInternalError(w, "Verification failed")
		}
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Email verified")
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteErrors(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmailNotVerified):
			pkghttp.WriteErrors(w, http.StatusBadRequest, "Email not verified. Please verify your email first.")
		case errors.Is(err, models.ErrEmailTaken):
			pkghttp.WriteConflict(w, "Email already exists")
		case errors.Is(err, models.ErrNameTaken):
			pkghttp.WriteConflict(w, "Username already taken")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Account already exists")
		default:
			pkghttp.WriteErrors(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteErrors(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			// One opaque message for unknown email and wrong password alike
			pkghttp.WriteUnauthorized(w, "Invalid email or password")
		default:
			// Includes corrupt stored credentials: an integrity alarm, not a user error
			pkghttp.WriteErrors(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}
