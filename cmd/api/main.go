// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/grigoryblack/friendly-reminder/internal/admin"
	"github.com/grigoryblack/friendly-reminder/internal/auth"
	"github.com/grigoryblack/friendly-reminder/internal/booking"
	"github.com/grigoryblack/friendly-reminder/internal/config"
	"github.com/grigoryblack/friendly-reminder/internal/core"
	"github.com/grigoryblack/friendly-reminder/internal/course"
	"github.com/grigoryblack/friendly-reminder/internal/health"
	"github.com/grigoryblack/friendly-reminder/internal/mail"
	"github.com/grigoryblack/friendly-reminder/internal/middleware"
	"github.com/grigoryblack/friendly-reminder/internal/payment"
	"github.com/grigoryblack/friendly-reminder/internal/server"
	"github.com/grigoryblack/friendly-reminder/internal/session"
	"github.com/grigoryblack/friendly-reminder/internal/storage"
	"github.com/grigoryblack/friendly-reminder/internal/teacher"
	"github.com/grigoryblack/friendly-reminder/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := db.Migrate(); err != nil {
		return err
	}
	logger.Info("migrations applied")

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	sessionManager, err := session.NewManager(redis.Client, cfg.Session)
	if err != nil {
		return err
	}
	logger.Info("session manager initialized",
		"cookie_name", cfg.Session.CookieName,
		"ttl", cfg.Session.TTL,
	)

	mailer, err := mail.NewService(cfg.Mail)
	if err != nil {
		return err
	}
	logger.Info("mail service initialized", "provider", cfg.Mail.Provider)

	storageClient := storage.NewClient(cfg.Storage)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	teacherRepo := teacher.NewRepository(db.DB)
	teacherSvc := teacher.NewService(teacherRepo)
	teacherHandler := teacher.NewHandler(teacherSvc, userSvc)

	courseRepo := course.NewRepository(db.DB)
	courseSvc := course.NewService(courseRepo, teacherSvc)
	courseHandler := course.NewHandler(courseSvc)

	paymentRepo := payment.NewRepository(db.DB)

	bookingRepo := booking.NewRepository(db.DB)
	bookingSvc := booking.NewService(bookingRepo, courseSvc, paymentRepo)
	bookingHandler := booking.NewHandler(bookingSvc)

	authSvc := auth.NewService(userSvc, mailer, cfg.App.BaseURL)
	authHandler := auth.NewHandler(authSvc, sessionManager)

	storageHandler := storage.NewHandler(storageClient, cfg.Upload)

	healthHandler := health.NewHandler(db, redis)

	adminRepo := admin.NewRepository(db.DB)
	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Repo:       adminRepo,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(sessionManager)
	adminOnly := middleware.RequireRole(user.RoleAdmin)

	// Password-reset mail is unauthenticated and expensive, so it gets its
	// own hourly budget on top of the global limiter.
	resetLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerHour(
			cfg.RateLimit.ResetRequests,
			cfg.RateLimit.ResetBurst,
		),
		FailOpen: true,
	})

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, resetLimiter.Handler)
		userHandler.RegisterRoutes(r, authenticator)
		teacherHandler.RegisterRoutes(r, authenticator)
		courseHandler.RegisterRoutes(r, authenticator)
		bookingHandler.RegisterRoutes(r, authenticator)
		storageHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
