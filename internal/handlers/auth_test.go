package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/firststep/ecom/internal/models"
	"github.com/firststep/ecom/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ============================================================================
// SendCode
// ============================================================================

func TestSendCode_Success(t *testing.T) {
	var gotEmail string
	h := NewAuthHandler(&MockAuthService{
		SendCodeFunc: func(ctx context.Context, email, clientKey string) error {
			gotEmail = email
			return nil
		},
	})

	rec := postJSON(t, h.SendCode, "/api/auth/send-code", map[string]string{"email": "a@b.com"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Verification code sent", decodeBody(t, rec)["msg"])
	assert.Equal(t, "a@b.com", gotEmail)
}

func TestSendCode_MissingEmail(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{})

	rec := postJSON(t, h.SendCode, "/api/auth/send-code", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendCode_RateLimited(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		SendCodeFunc: func(ctx context.Context, email, clientKey string) error {
			return &services.RateLimitedError{RetryAfter: 30 * time.Second}
		},
	})

	rec := postJSON(t, h.SendCode, "/api/auth/send-code", map[string]string{"email": "a@b.com"})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	body := decodeBody(t, rec)
	assert.Equal(t, float64(30), body["retryAfter"])
}

func TestSendCode_DeliveryFailure(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		SendCodeFunc: func(ctx context.Context, email, clientKey string) error {
			return assert.AnError
		},
	})

	rec := postJSON(t, h.SendCode, "/api/auth/send-code", map[string]string{"email": "a@b.com"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Email send failed", decodeBody(t, rec)["msg"])
}

// ============================================================================
// VerifyCode
// ============================================================================

func TestVerifyCode_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{})

	rec := postJSON(t, h.VerifyCode, "/api/auth/verify-code",
		map[string]string{"email": "a@b.com", "code": "123456"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email verified", decodeBody(t, rec)["msg"])
}

func TestVerifyCode_Invalid(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		VerifyCodeFunc: func(ctx context.Context, email, code string) error {
			return models.ErrCodeInvalid
		},
	})

	rec := postJSON(t, h.VerifyCode, "/api/auth/verify-code",
		map[string]string{"email": "a@b.com", "code": "000000"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired code", decodeBody(t, rec)["msg"])
}

func TestVerifyCode_Expired(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		VerifyCodeFunc: func(ctx context.Context, email, code string) error {
			return models.ErrCodeExpired
		},
	})

	rec := postJSON(t, h.VerifyCode, "/api/auth/verify-code",
		map[string]string{"email": "a@b.com", "code": "123456"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Verification code expired", decodeBody(t, rec)["msg"])
}

func TestVerifyCode_MissingFields(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{})

	rec := postJSON(t, h.VerifyCode, "/api/auth/verify-code", map[string]string{"email": "a@b.com"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// Register
// ============================================================================

func TestRegister_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		RegisterFunc: func(ctx context.Context, name, email, password string) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				User:  &services.UserSummary{Name: name, Email: email},
				Token: "signed-token",
			}, nil
		},
	})

	rec := postJSON(t, h.Register, "/api/auth/register",
		map[string]string{"name": "alice", "email": "a@b.com", "password": "secret1"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "signed-token", body["token"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["name"])
	assert.Equal(t, "a@b.com", user["email"])
	assert.NotContains(t, user, "passwordHash")
}

func TestRegister_ValidationErrors(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{})

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"email": "a@b.com", "password": "secret1"}},
		{"invalid email", map[string]string{"name": "alice", "email": "not-an-email", "password": "secret1"}},
		{"short password", map[string]string{"name": "alice", "email": "a@b.com", "password": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Register, "/api/auth/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec), "errors")
		})
	}
}

func TestRegister_NotVerified(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		RegisterFunc: func(ctx context.Context, name, email, password string) (*services.AuthResponse, error) {
			return nil, models.ErrEmailNotVerified
		},
	})

	rec := postJSON(t, h.Register, "/api/auth/register",
		map[string]string{"name": "alice", "email": "a@b.com", "password": "secret1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_Conflicts(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"email taken", models.ErrEmailTaken, "Email already exists"},
		{"name taken", models.ErrNameTaken, "Username already taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&MockAuthService{
				RegisterFunc: func(ctx context.Context, name, email, password string) (*services.AuthResponse, error) {
					return nil, tt.err
				},
			})

			rec := postJSON(t, h.Register, "/api/auth/register",
				map[string]string{"name": "alice", "email": "a@b.com", "password": "secret1"})

			assert.Equal(t, http.StatusConflict, rec.Code)

			body := decodeBody(t, rec)
			errs, ok := body["errors"].([]any)
			require.True(t, ok)
			assert.Contains(t, errs, tt.msg)
		})
	}
}

// ============================================================================
// Login
// ============================================================================

func TestLogin_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				User:  &services.UserSummary{Name: "alice", Email: email},
				Token: "signed-token",
			}, nil
		},
	})

	rec := postJSON(t, h.Login, "/api/auth/login",
		map[string]string{"email": "a@b.com", "password": "secret1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed-token", decodeBody(t, rec)["token"])
}

func TestLogin_BadCredentials(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return nil, models.ErrUnauthorized
		},
	})

	rec := postJSON(t, h.Login, "/api/auth/login",
		map[string]string{"email": "a@b.com", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_CorruptCredentialIsServerError(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return nil, models.ErrCorruptCredential
		},
	})

	rec := postJSON(t, h.Login, "/api/auth/login",
		map[string]string{"email": "a@b.com", "password": "secret1"})

	// Data-integrity problems surface as a generic server error, never a 401
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	assert.Contains(t, errs, "Server error")
}

func TestLogin_ValidationError(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{})

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
