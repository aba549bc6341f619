// AngelaMos | 2026
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

	"github.com/carterperez-dev/commerce-api/internal/admin"
	"github.com/carterperez-dev/commerce-api/internal/auth"
	"github.com/carterperez-dev/commerce-api/internal/config"
	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/health"
	"github.com/carterperez-dev/commerce-api/internal/middleware"
	"github.com/carterperez-dev/commerce-api/internal/migrations"
	"github.com/carterperez-dev/commerce-api/internal/notify"
	"github.com/carterperez-dev/commerce-api/internal/permission"
	"github.com/carterperez-dev/commerce-api/internal/product"
	"github.com/carterperez-dev/commerce-api/internal/role"
	"github.com/carterperez-dev/commerce-api/internal/server"
	"github.com/carterperez-dev/commerce-api/internal/session"
	"github.com/carterperez-dev/commerce-api/internal/user"
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

	if err := migrations.Up(ctx, db.DB.DB); err != nil {
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

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	var mailer notify.Sender
	if cfg.SMTP.Enabled {
		smtp, smtpErr := notify.NewSMTPSender(cfg.SMTP)
		if smtpErr != nil {
			return smtpErr
		}
		mailer = smtp
		logger.Info("smtp sender initialized", "host", cfg.SMTP.Host)
	} else {
		mailer = notify.Disabled{}
		logger.Warn("mail delivery disabled")
	}

	store := session.NewRedisStore(redis.Client)

	userRepo := user.NewRepository(db.DB)
	permRepo := permission.NewRepository(db.DB)
	roleRepo := role.NewRepository(db.DB)

	sessions := session.NewManager(
		store,
		user.NewSessionSource(userRepo, permRepo),
		cfg.Cache.SessionTTL,
		cfg.Cache.PermissionTTL,
	)

	userSvc := user.NewService(
		db.DB,
		userRepo,
		roleRepo,
		sessions,
		mailer,
		cfg.App.BaseURL,
	)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	throttle := auth.NewThrottle(store, cfg.Throttle)
	lifecycle := auth.NewLifecycle(
		authRepo,
		userSvc,
		store,
		sessions,
		mailer,
		cfg.Reset,
		cfg.App.BaseURL,
	)
	authSvc := auth.NewService(
		userSvc,
		jwtManager,
		throttle,
		lifecycle,
		sessions,
		mailer,
		cfg.App.BaseURL,
		cfg.JWT.AccessTokenExpire,
	)
	authHandler := auth.NewHandler(authSvc)

	permHandler := permission.NewHandler(permission.NewService(permRepo, sessions))
	roleHandler := role.NewHandler(role.NewService(roleRepo, sessions))
	productHandler := product.NewHandler(
		product.NewService(product.NewRepository(db.DB), sessions),
	)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		CountKeys:  redis.CountKeys,
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
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RoleRateLimiter(
			redis.Client,
			middleware.DefaultRoleLimits,
		))

		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		permHandler.RegisterRoutes(r, authenticator)
		roleHandler.RegisterRoutes(r, authenticator)
		productHandler.RegisterRoutes(r, authenticator)
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
