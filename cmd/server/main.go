// Command server runs the Restroo marketing and account API.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zxdhiruu/Restroo/internal/auth"
	"github.com/zxdhiruu/Restroo/internal/config"
	"github.com/zxdhiruu/Restroo/internal/handlers"
	mailer "github.com/zxdhiruu/Restroo/internal/mail"
	"github.com/zxdhiruu/Restroo/internal/password"
	"github.com/zxdhiruu/Restroo/internal/plans"
	"github.com/zxdhiruu/Restroo/internal/ratelimit"
	"github.com/zxdhiruu/Restroo/internal/store"
	"github.com/zxdhiruu/Restroo/internal/store/memory"
	sqlstore "github.com/zxdhiruu/Restroo/internal/store/sql"
	"github.com/zxdhiruu/Restroo/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("store: migrating: %v", err)
	}
	cancel()

	tokens, err := token.NewService(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("token: %v", err)
	}

	var m mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPHost != "" {
		smtp, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:       cfg.SMTPHost,
			From:       cfg.SMTPFrom,
			Name:       cfg.SMTPName,
			SkipVerify: cfg.SMTPSkipVerify,
		})
		if err != nil {
			log.Fatalf("mail: %v", err)
		}
		m = smtp
	}

	hasher, err := password.ForAlgorithm(cfg.HashAlgorithm)
	if err != nil {
		log.Fatalf("password: %v", err)
	}

	authSvc, err := auth.NewService(auth.Config{
		Store:        st,
		Hasher:       hasher,
		Tokens:       tokens,
		Mailer:       m,
		ResetURLBase: cfg.FrontendURL + "/reset-password",
	})
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	var google *auth.Google
	if cfg.GoogleEnabled() {
		google = auth.NewGoogle(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		}, st)
	}

	catalog := plans.Default()
	if cfg.PlansFile != "" {
		catalog, err = plans.Load(cfg.PlansFile)
		if err != nil {
			log.Fatalf("plans: %v", err)
		}
	}

	limiter := newLimiter(cfg)
	defer limiter.Close()

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:               handlers.NewAuthHandler(authSvc, google, cfg.FrontendURL),
		Contact:            handlers.NewContactHandler(st, m, cfg.SMTPFrom),
		Subscriptions:      handlers.NewSubscriptionHandler(st, catalog, cfg.StripeSecretKey != ""),
		AuthService:        authSvc,
		Limiter:            limiter,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}

// openStore picks the store backend from configuration.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DatabaseDialect {
	case "memory":
		log.Println("Using in-memory store; data will not survive a restart")
		return memory.New(), nil
	default:
		return sqlstore.Open(sqlstore.Config{
			Dialect:     sqlstore.Dialect(cfg.DatabaseDialect),
			DSN:         cfg.DatabaseDSN,
			TablePrefix: cfg.DatabaseTablePrefix,
		})
	}
}

// newLimiter picks the rate limiter backend: Redis when configured,
// otherwise in-process.
func newLimiter(cfg *config.Config) ratelimit.Limiter {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return ratelimit.NewRedisLimiter(&ratelimit.RedisConfig{
			Client: client,
			Rate:   cfg.RateLimitPerMinute,
			Window: time.Minute,
		})
	}
	return ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)
}
