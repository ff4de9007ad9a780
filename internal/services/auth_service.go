package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firststep/ecom/internal/auth"
	"github.com/firststep/ecom/internal/models"
	pkgauth "github.com/firststep/ecom/pkg/auth"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	MarkEmailVerified(ctx context.Context, email string) error
	UpdateName(ctx context.Context, id, name string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// CodeVerifier is the slice of VerificationService the auth workflow consumes
type CodeVerifier interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, submitted string) error
	HasPendingCode(ctx context.Context, email string) (bool, error)
}

// RateLimiter admits or denies an attempt for a client key
type RateLimiter interface {
	Admit(key string) (bool, time.Duration)
}

// RateLimitedError carries the retry hint for a denied admission
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return models.ErrRateLimited }

// AuthService orchestrates the verification and credential flow: send-code,
// verify-code, register, login.
type AuthService struct {
	userRepo     UserRepository
	verification CodeVerifier
	emailService EmailService
	limiter      RateLimiter
	tm           *auth.TokenManager
	logger       *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo UserRepository,
	verification CodeVerifier,
	emailService EmailService,
	limiter RateLimiter,
	tm *auth.TokenManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		verification: verification,
		emailService: emailService,
		limiter:      limiter,
		tm:           tm,
		logger:       logger,
	}
}

// UserSummary is the identity shape echoed to clients. Never carries the hash.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is the payload returned by register and login
type AuthResponse struct {
	User  *UserSummary `json:"user"`
	Token string       `json:"token"`
}

// SendCode issues a verification code for the email and hands it to the
// notifier. The send budget is keyed by the requesting client, so one client
// cannot fan codes out across many addresses, and a throttled client never
// exhausts somebody else's budget. When delivery fails the already-persisted
// code stays valid, so a retry after the error is cheap.
func (s *AuthService) SendCode(ctx context.Context, email, clientKey string) error {
	email = NormalizeEmail(email)

	if allowed, retryAfter := s.limiter.Admit(clientKey); !allowed {
		s.logger.Info("send-code throttled",
			slog.String("email", email),
			slog.String("client", clientKey))
		return &RateLimitedError{RetryAfter: retryAfter}
	}

	code, err := s.verification.Issue(ctx, email)
	if err != nil {
		return models.ErrInternalServer
	}

	if err := s.emailService.SendVerificationCode(ctx, email, code); err != nil {
		s.logger.Error("verification email delivery failed",
			slog.String("email", email),
			slog.Any("error", err))
		return fmt.Errorf("email delivery failed: %w", err)
	}

	return nil
}

// VerifyCode validates and consumes a submitted code. On success an existing
// unverified account for that email is flipped to verified; with no account
// yet, the consumed code simply clears the way for registration.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) error {
	email = NormalizeEmail(email)

	if err := s.verification.Verify(ctx, email, code); err != nil {
		return err
	}

	if err := s.userRepo.MarkEmailVerified(ctx, email); err != nil {
		s.logger.Error("failed to update email verification flag",
			slog.String("email", email),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}

// Register creates an account for an email that has completed the code flow.
// The "no pending code" check stands in for "was verified": it holds because
// Verify deletes the code row on success.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	pending, err := s.verification.HasPendingCode(ctx, email)
	if err != nil {
		s.logger.Error("failed to check pending code", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if pending {
		return nil, models.ErrEmailNotVerified
	}

	// Fast-path uniqueness hints; the store constraints remain authoritative
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.userRepo.GetByName(ctx, name); err == nil {
		return nil, models.ErrNameTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check name uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Name:          name,
		Email:         email,
		PasswordHash:  hashedPassword,
		EmailVerified: true,
	}

	createdUser, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// A concurrent registration may have won the race past the pre-checks
		if errors.Is(err, models.ErrEmailTaken) || errors.Is(err, models.ErrNameTaken) || errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.Issue(createdUser.ID)
	if err != nil {
		s.logger.Error("failed to issue session token",
			slog.String("user_id", createdUser.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", createdUser.ID))

	return &AuthResponse{
		User:  &UserSummary{Name: createdUser.Name, Email: createdUser.Email},
		Token: token,
	}, nil
}

// Login verifies credentials and returns a session token. "No such user" and
// "wrong password" produce distinct internal log events but the same opaque
// error, so responses cannot be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: unknown email")
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Fail closed on anything that is not a bcrypt digest
	if !pkgauth.IsBcryptDigest(user.PasswordHash) {
		s.logger.Error("stored credential is not a bcrypt digest",
			slog.String("user_id", user.ID))
		return nil, models.ErrCorruptCredential
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: password mismatch", slog.String("user_id", user.ID))
		return nil, models.ErrUnauthorized
	}

	token, err := s.tm.Issue(user.ID)
	if err != nil {
		s.logger.Error("failed to issue session token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &AuthResponse{
		User:  &UserSummary{Name: user.Name, Email: user.Email},
		Token: token,
	}, nil
}
