package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/zxdhiruu/Restroo/internal/auth"
	"github.com/zxdhiruu/Restroo/internal/middleware"
	"github.com/zxdhiruu/Restroo/internal/ratelimit"
)

// RouterConfig collects everything the router needs.
type RouterConfig struct {
	Auth          *AuthHandler
	Contact       *ContactHandler
	Subscriptions *SubscriptionHandler

	// AuthService backs the authentication middleware.
	AuthService *auth.Service

	// Limiter throttles the credential endpoints. Nil disables
	// throttling.
	Limiter ratelimit.Limiter

	// RateLimitPerMinute is the per-IP budget for throttled routes.
	RateLimitPerMinute int
}

// NewRouter assembles the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	requireAuth := middleware.Authenticate(cfg.AuthService, nil)

	var throttle func(http.Handler) http.Handler
	if cfg.Limiter != nil {
		throttle = ratelimit.Middleware(cfg.Limiter, &ratelimit.Config{
			Rate:   cfg.RateLimitPerMinute,
			Window: time.Minute,
		})
	} else {
		throttle = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusOK, "ok")
	})

	r.Route("/api/auth", func(r chi.Router) {
		// Credential endpoints carry the brute-force surface.
		r.Group(func(r chi.Router) {
			r.Use(throttle)
			r.Post("/signup", cfg.Auth.Signup)
			r.Post("/login", cfg.Auth.Login)
			r.Post("/forgot-password", cfg.Auth.ForgotPassword)
			r.Post("/reset-password", cfg.Auth.ResetPassword)
			r.Post("/google/exchange", cfg.Auth.GoogleExchange)
		})

		r.Get("/google", cfg.Auth.GoogleStart)
		r.Get("/google/callback", cfg.Auth.GoogleCallback)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", cfg.Auth.Me)
			r.Post("/logout", cfg.Auth.Logout)
		})
	})

	r.Post("/api/contact", cfg.Contact.Create)
	r.Get("/api/plans", cfg.Subscriptions.Plans)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/api/contact-requests", cfg.Contact.List)
		r.Post("/api/subscription/create", cfg.Subscriptions.Create)
		r.Get("/api/subscription", cfg.Subscriptions.Get)
	})

	return r
}
