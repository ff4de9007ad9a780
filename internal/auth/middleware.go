package auth

import (
	"context"
	"net/http"
	"strings"

	pkghttp "github.com/firststep/ecom/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserIDContextKey is the key for the authenticated user id in context
	UserIDContextKey contextKey = "user_id"
)

// Middleware validates the Bearer token and injects the user id into context
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "Not authorized to access this route")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "Not authorized to access this route")
				return
			}

			userID, err := tm.Parse(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Not authorized to access this route")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id, or "" when the request
// did not pass through Middleware.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDContextKey).(string); ok {
		return id
	}
	return ""
}
