package handlers

import (
	"context"

	"github.com/firststep/ecom/internal/models"
	"github.com/firststep/ecom/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	SendCodeFunc   func(ctx context.Context, email, clientKey string) error
	VerifyCodeFunc func(ctx context.Context, email, code string) error
	RegisterFunc   func(ctx context.Context, name, email, password string) (*services.AuthResponse, error)
	LoginFunc      func(ctx context.Context, email, password string) (*services.AuthResponse, error)
}

func (m *MockAuthService) SendCode(ctx context.Context, email, clientKey string) error {
	if m.SendCodeFunc != nil {
		return m.SendCodeFunc(ctx, email, clientKey)
	}
	return nil
}

func (m *MockAuthService) VerifyCode(ctx context.Context, email, code string) error {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, email, code)
	}
	return nil
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*services.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInternalServer
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetFunc            func(ctx context.Context, userID string) (*services.UserSummary, error)
	ChangeNameFunc     func(ctx context.Context, userID, name string) (*services.UserSummary, error)
	ChangePasswordFunc func(ctx context.Context, userID, currentPassword, newPassword string) error
}

func (m *MockUserService) Get(ctx context.Context, userID string) (*services.UserSummary, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) ChangeName(ctx context.Context, userID, name string) (*services.UserSummary, error) {
	if m.ChangeNameFunc != nil {
		return m.ChangeNameFunc(ctx, userID, name)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
	}
	return nil
}
