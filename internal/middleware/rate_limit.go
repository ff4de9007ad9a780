package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/firststep/ecom/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds per-IP rate limiting configuration for the HTTP edge.
// This is a coarse transport-level guard; the tighter per-client send budget
// is enforced separately in the auth service.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAuthRateLimit returns the rate limit config for auth endpoints
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteRateLimited(w, 60, "Too many requests. Try again later.")
		}),
	)
}
