package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/firststep/ecom/internal/auth"
	"github.com/firststep/ecom/internal/database"
	"github.com/firststep/ecom/internal/handlers"
	middlewareCustom "github.com/firststep/ecom/internal/middleware"
	"github.com/firststep/ecom/internal/ratelimit"
	"github.com/firststep/ecom/internal/routes"
	"github.com/firststep/ecom/internal/services"
)

const (
	testJWTSecret   = "test-secret-32-characters-long-for-testing"
	testTokenExpiry = 24 * time.Hour
	testCodeTTL     = 15 * time.Minute
	testSendWindow  = 60 * time.Second
	testSendLimit   = 3
)

// CapturingEmailService records verification codes instead of delivering them
type CapturingEmailService struct {
	mu    sync.Mutex
	codes map[string][]string
}

func NewCapturingEmailService() *CapturingEmailService {
	return &CapturingEmailService{codes: make(map[string][]string)}
}

func (s *CapturingEmailService) SendVerificationCode(ctx context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[email] = append(s.codes[email], code)
	return nil
}

// LastCode returns the most recent code sent to the email
func (s *CapturingEmailService) LastCode(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := s.codes[email]
	if len(sent) == 0 {
		return ""
	}
	return sent[len(sent)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *CapturingEmailService
	TokenManager *auth.TokenManager
	sendLimiter  *ratelimit.Limiter
}

// NewTestServer initializes a complete HTTP server with real database and captured email
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo, codeRepo, productRepo, cartRepo := InitializeRepositories(db)

	emailService := NewCapturingEmailService()
	tokenManager := auth.NewTokenManager(testJWTSecret, testTokenExpiry)
	sendLimiter := ratelimit.New(testSendWindow, testSendLimit)

	verificationService := services.NewVerificationService(codeRepo, logger, testCodeTTL)
	authService := services.NewAuthService(userRepo, verificationService, emailService, sendLimiter, tokenManager, logger)
	userService := services.NewUserService(userRepo, logger)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productRepo)
	cartHandler := handlers.NewCartHandler(cartRepo)
	userHandler := handlers.NewUserHandler(userService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, authHandler, productHandler, cartHandler, userHandler, tokenManager)
	})

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		EmailService: emailService,
		TokenManager: tokenManager,
		sendLimiter:  sendLimiter,
	}
}

// Close shuts down the test server and its limiter janitor
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
	if ts.sendLimiter != nil {
		ts.sendLimiter.Stop()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a session token
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses the JSON response body into target
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
