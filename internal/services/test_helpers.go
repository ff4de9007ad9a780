package services

import (
	"context"
	"time"

	"github.com/firststep/ecom/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc           func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*models.User, error)
	GetByNameFunc         func(ctx context.Context, name string) (*models.User, error)
	CreateFunc            func(ctx context.Context, user *models.User) (*models.User, error)
	MarkEmailVerifiedFunc func(ctx context.Context, email string) error
	UpdateNameFunc        func(ctx context.Context, id, name string) (*models.User, error)
	UpdatePasswordFunc    func(ctx context.Context, id, passwordHash string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, email string) error {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(ctx, email)
	}
	return nil
}

func (m *MockUserRepository) UpdateName(ctx context.Context, id, name string) (*models.User, error) {
	if m.UpdateNameFunc != nil {
		return m.UpdateNameFunc(ctx, id, name)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// MockCodeRepository implements VerificationCodeRepository for testing
type MockCodeRepository struct {
	UpsertFunc        func(ctx context.Context, email, code string, expiresAt time.Time) (*models.VerificationCode, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.VerificationCode, error)
	DeleteByEmailFunc func(ctx context.Context, email string) error
	DeleteExpiredFunc func(ctx context.Context) (int64, error)
}

func (m *MockCodeRepository) Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*models.VerificationCode, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, email, code, expiresAt)
	}
	return &models.VerificationCode{Email: email, Code: code, ExpiresAt: expiresAt, CreatedAt: time.Now()}, nil
}

func (m *MockCodeRepository) GetByEmail(ctx context.Context, email string) (*models.VerificationCode, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	if m.DeleteByEmailFunc != nil {
		return m.DeleteByEmailFunc(ctx, email)
	}
	return nil
}

func (m *MockCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// InMemoryCodeRepository is a map-backed VerificationCodeRepository used by
// tests exercising the full issue/verify lifecycle.
type InMemoryCodeRepository struct {
	codes map[string]*models.VerificationCode
}

func NewInMemoryCodeRepository() *InMemoryCodeRepository {
	return &InMemoryCodeRepository{codes: make(map[string]*models.VerificationCode)}
}

func (r *InMemoryCodeRepository) Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*models.VerificationCode, error) {
	record := &models.VerificationCode{Email: email, Code: code, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	r.codes[email] = record
	return record, nil
}

func (r *InMemoryCodeRepository) GetByEmail(ctx context.Context, email string) (*models.VerificationCode, error) {
	record, ok := r.codes[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return record, nil
}

func (r *InMemoryCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	delete(r.codes, email)
	return nil
}

func (r *InMemoryCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	for email, record := range r.codes {
		if record.IsExpired() {
			delete(r.codes, email)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored code rows
func (r *InMemoryCodeRepository) Count() int { return len(r.codes) }

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendVerificationCodeFunc func(ctx context.Context, email, code string) error

	SentTo    []string
	SentCodes []string
}

func (m *MockEmailService) SendVerificationCode(ctx context.Context, email, code string) error {
	m.SentTo = append(m.SentTo, email)
	m.SentCodes = append(m.SentCodes, code)
	if m.SendVerificationCodeFunc != nil {
		return m.SendVerificationCodeFunc(ctx, email, code)
	}
	return nil
}

// MockRateLimiter implements RateLimiter for testing
type MockRateLimiter struct {
	AdmitFunc func(key string) (bool, time.Duration)
}

func (m *MockRateLimiter) Admit(key string) (bool, time.Duration) {
	if m.AdmitFunc != nil {
		return m.AdmitFunc(key)
	}
	return true, 0
}
