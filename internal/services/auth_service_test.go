package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/firststep/ecom/internal/auth"
	"github.com/firststep/ecom/internal/models"
	"github.com/firststep/ecom/internal/ratelimit"
	pkgauth "github.com/firststep/ecom/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("auth-service-test-secret-123456", 24*time.Hour)
}

func newTestAuthService(userRepo UserRepository, codeRepo VerificationCodeRepository, email *MockEmailService, limiter RateLimiter) *AuthService {
	logger := slog.Default()
	if codeRepo == nil {
		codeRepo = NewInMemoryCodeRepository()
	}
	if email == nil {
		email = &MockEmailService{}
	}
	if limiter == nil {
		limiter = &MockRateLimiter{}
	}
	verification := NewVerificationService(codeRepo, logger, 15*time.Minute)
	return NewAuthService(userRepo, verification, email, limiter, newTestTokenManager(), logger)
}

// ============================================================================
// SendCode
// ============================================================================

func TestAuthService_SendCode_DeliversCode(t *testing.T) {
	email := &MockEmailService{}
	svc := newTestAuthService(&MockUserRepository{}, nil, email, nil)

	err := svc.SendCode(context.Background(), "A@B.Com", "1.2.3.4")
	require.NoError(t, err)

	require.Len(t, email.SentTo, 1)
	assert.Equal(t, "a@b.com", email.SentTo[0])
	assert.Regexp(t, `^\d{6}$`, email.SentCodes[0])
}

func TestAuthService_SendCode_RateLimited(t *testing.T) {
	email := &MockEmailService{}
	limiter := &MockRateLimiter{
		AdmitFunc: func(key string) (bool, time.Duration) {
			return false, 42 * time.Second
		},
	}
	svc := newTestAuthService(&MockUserRepository{}, nil, email, limiter)

	err := svc.SendCode(context.Background(), "a@b.com", "1.2.3.4")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrRateLimited)

	var rle *RateLimitedError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 42*time.Second, rle.RetryAfter)

	// Denied admissions never issue or send anything
	assert.Empty(t, email.SentTo)
}

func TestAuthService_SendCode_BudgetIsKeyedByClient(t *testing.T) {
	var admittedKeys []string
	limiter := &MockRateLimiter{
		AdmitFunc: func(key string) (bool, time.Duration) {
			admittedKeys = append(admittedKeys, key)
			return true, 0
		},
	}
	svc := newTestAuthService(&MockUserRepository{}, nil, nil, limiter)

	err := svc.SendCode(context.Background(), "a@b.com", "203.0.113.7")
	require.NoError(t, err)

	// The budget belongs to the requesting client, not the target address
	require.Equal(t, []string{"203.0.113.7"}, admittedKeys)
}

func TestAuthService_SendCode_ClientBudgetSpansAddresses(t *testing.T) {
	email := &MockEmailService{}
	limiter := ratelimit.New(60*time.Second, 3)
	defer limiter.Stop()
	svc := newTestAuthService(&MockUserRepository{}, nil, email, limiter)

	ctx := context.Background()

	// Distinct clients each spend their own budget against one address
	for _, client := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3", "198.51.100.4"} {
		require.NoError(t, svc.SendCode(ctx, "victim@example.com", client))
	}

	// One client rotating through addresses shares a single budget
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.SendCode(ctx, fmt.Sprintf("target%d@example.com", i), "192.0.2.9"))
	}
	err := svc.SendCode(ctx, "target3@example.com", "192.0.2.9")
	assert.ErrorIs(t, err, models.ErrRateLimited)
}

func TestAuthService_SendCode_DeliveryFailureKeepsCode(t *testing.T) {
	codeRepo := NewInMemoryCodeRepository()
	email := &MockEmailService{
		SendVerificationCodeFunc: func(ctx context.Context, e, c string) error {
			return errors.New("smtp unreachable")
		},
	}
	svc := newTestAuthService(&MockUserRepository{}, codeRepo, email, nil)

	err := svc.SendCode(context.Background(), "a@b.com", "1.2.3.4")
	require.Error(t, err)

	// The persisted code survives the delivery failure and stays usable
	record, err := codeRepo.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyCode(context.Background(), "a@b.com", record.Code))
}

// ============================================================================
// VerifyCode
// ============================================================================

func TestAuthService_VerifyCode_FlipsExistingUserFlag(t *testing.T) {
	var verifiedEmail string
	userRepo := &MockUserRepository{
		MarkEmailVerifiedFunc: func(ctx context.Context, email string) error {
			verifiedEmail = email
			return nil
		},
	}
	codeRepo := NewInMemoryCodeRepository()
	svc := newTestAuthService(userRepo, codeRepo, nil, nil)

	require.NoError(t, svc.SendCode(context.Background(), "a@b.com", "1.2.3.4"))
	record, err := codeRepo.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)

	require.NoError(t, svc.VerifyCode(context.Background(), "a@b.com", record.Code))
	assert.Equal(t, "a@b.com", verifiedEmail)
}

func TestAuthService_VerifyCode_PropagatesOutcome(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{}, nil, nil, nil)

	err := svc.VerifyCode(context.Background(), "a@b.com", "123456")
	assert.ErrorIs(t, err, models.ErrCodeInvalid)
}

// ============================================================================
// Register
// ============================================================================

func registerReadyService(t *testing.T, userRepo UserRepository) (*AuthService, *InMemoryCodeRepository) {
	t.Helper()
	codeRepo := NewInMemoryCodeRepository()
	svc := newTestAuthService(userRepo, codeRepo, nil, nil)
	return svc, codeRepo
}

func TestAuthService_Register_Success(t *testing.T) {
	var created *models.User
	userRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			created = user
			user.ID = "user123"
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return user, nil
		},
	}
	svc, _ := registerReadyService(t, userRepo)

	resp, err := svc.Register(context.Background(), "alice", "A@B.Com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "alice", resp.User.Name)
	assert.Equal(t, "a@b.com", resp.User.Email)
	assert.NotEmpty(t, resp.Token)

	require.NotNil(t, created)
	assert.True(t, created.EmailVerified)
	assert.True(t, pkgauth.IsBcryptDigest(created.PasswordHash))
	assert.NoError(t, pkgauth.ComparePassword(created.PasswordHash, "secret1"))

	// The token asserts the created identity
	userID, err := newTestTokenManager().Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user123", userID)
}

func TestAuthService_Register_PendingCodeBlocks(t *testing.T) {
	svc, codeRepo := registerReadyService(t, &MockUserRepository{})

	require.NoError(t, svc.SendCode(context.Background(), "a@b.com", "1.2.3.4"))

	resp, err := svc.Register(context.Background(), "alice", "a@b.com", "secret1")
	assert.ErrorIs(t, err, models.ErrEmailNotVerified)
	assert.Nil(t, resp)

	// Completing the verify step unblocks registration
	record, err := codeRepo.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyCode(context.Background(), "a@b.com", record.Code))

	userRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user123"
			return user, nil
		},
	}
	svc2 := newTestAuthService(userRepo, codeRepo, nil, nil)
	_, err = svc2.Register(context.Background(), "alice", "a@b.com", "secret1")
	assert.NoError(t, err)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	userRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: "existing", Email: email}, nil
		},
	}
	svc, _ := registerReadyService(t, userRepo)

	_, err := svc.Register(context.Background(), "alice", "a@b.com", "secret1")
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestAuthService_Register_NameTaken(t *testing.T) {
	userRepo := &MockUserRepository{
		GetByNameFunc: func(ctx context.Context, name string) (*models.User, error) {
			return &models.User{ID: "existing", Name: name}, nil
		},
	}
	svc, _ := registerReadyService(t, userRepo)

	_, err := svc.Register(context.Background(), "alice", "a@b.com", "secret1")
	assert.ErrorIs(t, err, models.ErrNameTaken)
}

func TestAuthService_Register_ConstraintRaceIsCanonical(t *testing.T) {
	// Pre-checks pass, then the store's unique constraint rejects the insert:
	// the constraint error is what the caller sees.
	userRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, models.ErrEmailTaken
		},
	}
	svc, _ := registerReadyService(t, userRepo)

	_, err := svc.Register(context.Background(), "alice", "a@b.com", "secret1")
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

// ============================================================================
// Login
// ============================================================================

func loginUserRepo(t *testing.T, password string) *MockUserRepository {
	t.Helper()
	digest, err := pkgauth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		ID:            "user123",
		Name:          "alice",
		Email:         "a@b.com",
		PasswordHash:  digest,
		EmailVerified: true,
	}

	return &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, models.ErrNotFound
		},
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newTestAuthService(loginUserRepo(t, "secret1"), nil, nil, nil)

	resp, err := svc.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.User.Name)
	assert.Equal(t, "a@b.com", resp.User.Email)

	userID, err := newTestTokenManager().Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user123", userID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := newTestAuthService(loginUserRepo(t, "secret1"), nil, nil, nil)

	resp, err := svc.Login(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, resp)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := newTestAuthService(loginUserRepo(t, "secret1"), nil, nil, nil)

	// Same opaque error as a wrong password
	resp, err := svc.Login(context.Background(), "nobody@b.com", "secret1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, resp)
}

func TestAuthService_Login_CorruptStoredCredential(t *testing.T) {
	userRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: "user123", Email: email, PasswordHash: "plaintext-oops"}, nil
		},
	}
	svc := newTestAuthService(userRepo, nil, nil, nil)

	resp, err := svc.Login(context.Background(), "a@b.com", "secret1")
	assert.ErrorIs(t, err, models.ErrCorruptCredential)
	assert.Nil(t, resp)
}

func TestAuthService_Login_NormalizesEmail(t *testing.T) {
	svc := newTestAuthService(loginUserRepo(t, "secret1"), nil, nil, nil)

	resp, err := svc.Login(context.Background(), "  A@B.COM ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", resp.User.Email)
}
