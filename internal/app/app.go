package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	_ "accountflow/docs"
	"accountflow/internal/config"
	"accountflow/internal/db"
	"accountflow/internal/handlers"
	"accountflow/internal/logging"
	"accountflow/internal/metrics"
	"accountflow/internal/middleware"
	"accountflow/internal/repositories"
	"accountflow/internal/routes"
	"accountflow/internal/services"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the router is built from.
type Deps struct {
	Users    repositories.UserRepository
	DB       handlers.Pinger // nil when running without a database
	Notifier services.Notifier
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer // nil disables /metrics

	BcryptCost int // zero means bcrypt.DefaultCost
}

// NewRouter wires services, handlers and middleware into a gin engine. The
// returned limiter must be stopped by the caller.
func NewRouter(cfg *config.Config, deps Deps) (*gin.Engine, *middleware.RateLimiter) {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Noop{}
	}

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, deps.BcryptCost)
	userService := services.NewUserService(deps.Users, authService, deps.Notifier, deps.Metrics, cfg.Auth.VerifyTokenTTL)
	resetService := services.NewPasswordResetService(deps.Users, authService, deps.Notifier, deps.Metrics, cfg.Auth.ResetTokenTTL)
	verificationService := services.NewVerificationService(deps.Users, deps.Metrics)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, handlers.CookieOptions{
		MaxAge: int(cfg.Auth.SessionTTL / time.Second),
		Secure: cfg.IsProduction(),
	})
	passwordHandler := handlers.NewPasswordHandler(resetService)
	verifyHandler := handlers.NewVerifyHandler(verificationService)
	userHandler := handlers.NewUserHandler(userService)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimit.RPS),
		Burst: cfg.RateLimit.Burst,
	})

	var metricsHandler http.Handler
	if deps.Gatherer != nil {
		metricsHandler = metrics.Handler(deps.Gatherer)
	}

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(deps.Metrics))
	router.Use(middleware.CORS())

	routes.SetupRoutes(
		router,
		authHandler,
		passwordHandler,
		verifyHandler,
		userHandler,
		limiter,
		middleware.SessionAuth(authService, handlers.SessionCookie),
		handlers.Health(deps.DB),
		metricsHandler,
	)
	return router, limiter
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests and pending emails.
func Run(ctx context.Context, cfg *config.Config) error {
	logging.Init(!cfg.IsProduction(), cfg.Log.SentryDSN)
	defer logging.Flush()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewCollector(reg)

	// === Store ===
	var (
		users  repositories.UserRepository
		pinger handlers.Pinger
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		slog.Warn("[app] using in-memory user store; data is lost on exit")
		users = repositories.NewMemoryUserRepository()
	default:
		conn, err := db.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer func() {
			if err := conn.Close(); err != nil {
				slog.Error("[app] close database", "error", err)
			}
		}()
		users = repositories.NewUserRepository(conn)
		pinger = conn
	}

	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
		cfg.App.Domain,
		rec,
	)

	router, limiter := NewRouter(cfg, Deps{
		Users:    users,
		DB:       pinger,
		Notifier: emailService,
		Metrics:  rec,
		Gatherer: reg,
	})
	defer limiter.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[app] listening", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	emailService.Wait()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
