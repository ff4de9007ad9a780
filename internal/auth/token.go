package auth

import (
	"fmt"
	"time"

	"github.com/firststep/ecom/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims carries the single claim downstream handlers need: the user id.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies stateless session tokens. There is no
// revocation list: a token stays valid until its expiry, and rotating the
// secret invalidates everything outstanding.
type TokenManager struct {
	secret      string
	tokenExpiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, tokenExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:      secret,
		tokenExpiry: tokenExpiry,
	}
}

// Issue creates a signed session token for the given user id
func (tm *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Parse verifies signature and expiry and returns the user id. Every failure
// mode (bad signature, malformed token, expiry) collapses into
// models.ErrUnauthorized so callers cannot leak which check failed.
func (tm *TokenManager) Parse(tokenString string) (string, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil || !token.Valid {
		return "", models.ErrUnauthorized
	}

	if claims.UserID == "" {
		return "", models.ErrUnauthorized
	}

	return claims.UserID, nil
}
