package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/firststep/ecom/internal/models"
)

// VerificationCodeRepository defines the interface for one-time code storage
type VerificationCodeRepository interface {
	Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*models.VerificationCode, error)
	GetByEmail(ctx context.Context, email string) (*models.VerificationCode, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// VerificationService manages the lifecycle of one-time email codes: issue,
// validate, consume, expire. Codes are 6 decimal digits; the protection comes
// from the short TTL plus send-side rate limiting, not from code entropy.
type VerificationService struct {
	codeRepo VerificationCodeRepository
	logger   *slog.Logger
	codeTTL  time.Duration
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(codeRepo VerificationCodeRepository, logger *slog.Logger, codeTTL time.Duration) *VerificationService {
	return &VerificationService{
		codeRepo: codeRepo,
		logger:   logger,
		codeTTL:  codeTTL,
	}
}

// NormalizeEmail lower-cases and trims an address; every code and user lookup
// goes through this so the verification key is stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue generates a fresh code for the email and stores it, superseding any
// previous code for the same address. The plaintext code is returned for
// out-of-band delivery.
func (s *VerificationService) Issue(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)

	code, err := generateCode()
	if err != nil {
		s.logger.Error("failed to generate verification code", slog.Any("error", err))
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	expiresAt := time.Now().Add(s.codeTTL)

	if _, err := s.codeRepo.Upsert(ctx, email, code, expiresAt); err != nil {
		s.logger.Error("failed to store verification code",
			slog.String("email", email),
			slog.Any("error", err))
		return "", err
	}

	s.logger.Info("verification code issued", slog.String("email", email))

	return code, nil
}

// Verify checks a submitted code against the stored one. A match consumes the
// code; an expired code is discarded and reported as models.ErrCodeExpired;
// anything else is models.ErrCodeInvalid.
func (s *VerificationService) Verify(ctx context.Context, email, submitted string) error {
	email = NormalizeEmail(email)
	submitted = strings.TrimSpace(submitted)

	record, err := s.codeRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrCodeInvalid
		}
		s.logger.Error("failed to look up verification code", slog.Any("error", err))
		return models.ErrInternalServer
	}

	// Exact string equality, no prefix or fuzzy matching
	if record.Code != submitted {
		return models.ErrCodeInvalid
	}

	if record.IsExpired() {
		if err := s.codeRepo.DeleteByEmail(ctx, email); err != nil {
			s.logger.Error("failed to delete expired code", slog.Any("error", err))
		}
		return models.ErrCodeExpired
	}

	// Single use: consume on success
	if err := s.codeRepo.DeleteByEmail(ctx, email); err != nil {
		s.logger.Error("failed to consume verification code", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("verification code accepted", slog.String("email", email))

	return nil
}

// HasPendingCode reports whether an unexpired code is still outstanding for
// the email. An expired leftover is discarded on sight: expiry returns the
// address to its starting state.
func (s *VerificationService) HasPendingCode(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)

	record, err := s.codeRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if record.IsExpired() {
		if err := s.codeRepo.DeleteByEmail(ctx, email); err != nil {
			s.logger.Error("failed to delete expired code", slog.Any("error", err))
		}
		return false, nil
	}

	return true, nil
}

// generateCode draws a 6-digit code uniformly from 000000-999999
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
