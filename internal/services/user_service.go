package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/firststep/ecom/internal/models"
	pkgauth "github.com/firststep/ecom/pkg/auth"
)

// UserService handles profile reads and the username-change operation
type UserService struct {
	userRepo UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo UserRepository, logger *slog.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Get returns the profile summary for a user id
func (s *UserService) Get(ctx context.Context, userID string) (*UserSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &UserSummary{Name: user.Name, Email: user.Email}, nil
}

// ChangeName updates the unique display name. The pre-check is advisory; the
// store's unique constraint decides races.
func (s *UserService) ChangeName(ctx context.Context, userID, name string) (*UserSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrBadRequest
	}

	if existing, err := s.userRepo.GetByName(ctx, name); err == nil {
		if existing.ID == userID {
			return &UserSummary{Name: existing.Name, Email: existing.Email}, nil
		}
		return nil, models.ErrNameTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check name uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.userRepo.UpdateName(ctx, userID, name)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNameTaken), errors.Is(err, models.ErrConflict):
			return nil, models.ErrNameTaken
		case errors.Is(err, models.ErrNotFound):
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update username", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("username changed", slog.String("user_id", userID))

	return &UserSummary{Name: user.Name, Email: user.Email}, nil
}

// ChangePassword swaps the stored credential after re-proving the current one.
// The wrong-current-password case is models.ErrUnauthorized so the handler can
// distinguish it from server faults.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !pkgauth.IsBcryptDigest(user.PasswordHash) {
		s.logger.Error("stored credential is not a bcrypt digest", slog.String("user_id", userID))
		return models.ErrCorruptCredential
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return models.ErrUnauthorized
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to update password", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password changed", slog.String("user_id", userID))

	return nil
}
