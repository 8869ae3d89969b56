// Package main is the entry point for the metalstock API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"metalstock/internal/config"
	"metalstock/internal/domain/auth"
	v1 "metalstock/internal/infrastructure/http/v1"
	"metalstock/internal/infrastructure/metrics"
	"metalstock/internal/infrastructure/storage/postgres"
	"metalstock/internal/infrastructure/storage/postgres/auth_repo"
	"metalstock/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development || cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting metalstock server", "env", cfg.App.Env)

	// --- Database ---
	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			log.Fatalw("failed to migrate database", "error", err)
		}
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Postgres.DSN)
	poolCfg.MaxConns = cfg.Postgres.MaxConns
	poolCfg.MinConns = cfg.Postgres.MinConns
	poolCfg.StatementTimeout = cfg.Postgres.StatementTimeout
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool).WithStatementTimeout(cfg.Postgres.StatementTimeout)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.New()
		registry.RegisterPool(pool.Unwrap())
	}

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.Auth.AccessTokenTTL
	jwtService := auth.NewJWTService(jwtConfig)

	authConfig := auth.DefaultServiceConfig()
	authConfig.MaxLoginAttempts = cfg.Auth.MaxLoginAttempts
	authConfig.LockDuration = cfg.Auth.LockDuration
	authConfig.RefreshTokenExpiry = cfg.Auth.RefreshTokenTTL

	tokenRepo := auth_repo.NewTokenRepo(txManager)
	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		tokenRepo,
		txManager,
		jwtService,
		authConfig,
	)

	locale, err := language.Parse(cfg.Inventory.Locale)
	if err != nil {
		log.Warnw("invalid inventory locale, falling back to Russian", "locale", cfg.Inventory.Locale, "error", err)
		locale = language.Russian
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		DB:                 pool,
		TxManager:          txManager,
		Audit:              auditService,
		Metrics:            registry,
		Logger:             log,
		JWTValidator:       jwtService,
		AuthService:        authService,
		IdempotencyEnabled: cfg.Idempotency.Enabled,
		IdempotencyTTL:     cfg.Idempotency.TTL,
		InventoryLocale:    locale,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go runMaintenance(sweepCtx, maintenance{
		pool:        pool,
		tokens:      tokenRepo,
		idempotency: postgres.NewIdempotencyStore(txManager, cfg.Idempotency.TTL),
	}, time.Hour)

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

type maintenance struct {
	pool        *postgres.Pool
	tokens      *auth_repo.TokenRepo
	idempotency *postgres.IdempotencyStore
}

// runMaintenance purges expired refresh tokens and idempotency keys and logs
// pool stats on every tick until ctx is done.
func runMaintenance(ctx context.Context, m maintenance, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := m.tokens.CleanupExpiredTokens(ctx); err != nil {
				logger.Warn(ctx, "refresh token cleanup failed", "error", err)
			} else if removed > 0 {
				logger.Info(ctx, "refresh tokens cleaned up", "removed", removed)
			}

			if removed, err := m.idempotency.CleanupExpired(ctx); err != nil {
				logger.Warn(ctx, "idempotency key cleanup failed", "error", err)
			} else if removed > 0 {
				logger.Info(ctx, "idempotency keys cleaned up", "removed", removed)
			}

			postgres.LogPoolStats(ctx, m.pool.Unwrap())
		}
	}
}
