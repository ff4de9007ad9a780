package routes

import (
	"github.com/firststep/ecom/internal/auth"
	"github.com/firststep/ecom/internal/handlers"
	"github.com/firststep/ecom/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	productHandler *handlers.ProductHandler,
	cartHandler *handlers.CartHandler,
	userHandler *handlers.UserHandler,
	tokenManager *auth.TokenManager,
) {
	// Per-IP rate limiting for the unauthenticated auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))
		r.Post("/auth/send-code", authHandler.SendCode)
		r.Post("/auth/verify-code", authHandler.VerifyCode)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
	})

	// Public product lookup
	router.Get("/items/{id}", productHandler.Get)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))

		r.Get("/items", productHandler.List)
		r.Post("/items", productHandler.Create)
		r.Put("/items/{id}", productHandler.Update)
		r.Delete("/items/{id}", productHandler.Delete)

		r.Get("/cart", cartHandler.Get)
		r.Post("/cart", cartHandler.Add)
		r.Delete("/cart/{productId}", cartHandler.Remove)
		r.Delete("/cart", cartHandler.Clear)

		r.Get("/private/user", userHandler.GetProfile)
		r.Patch("/private/user", userHandler.UpdateProfile)
		r.Patch("/private/password", userHandler.ChangePassword)
	})
}
