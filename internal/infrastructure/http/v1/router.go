// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"metalstock/internal/domain/audit"
	"metalstock/internal/domain/auth"
	"metalstock/internal/domain/catalogs/company"
	"metalstock/internal/domain/catalogs/material"
	"metalstock/internal/domain/catalogs/servicerate"
	"metalstock/internal/domain/ledger"
	"metalstock/internal/domain/reports"
	"metalstock/internal/domain/worklog"
	"metalstock/internal/infrastructure/http/v1/handlers"
	"metalstock/internal/infrastructure/http/v1/middleware"
	"metalstock/internal/infrastructure/metrics"
	"metalstock/internal/infrastructure/storage/postgres"
	"metalstock/internal/infrastructure/storage/postgres/catalog_repo"
	"metalstock/internal/infrastructure/storage/postgres/ledger_repo"
	"metalstock/internal/infrastructure/storage/postgres/report_repo"
	"metalstock/internal/infrastructure/storage/postgres/worklog_repo"
	"metalstock/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// DB is pinged by the readiness check
	DB handlers.Pinger

	// TxManager is shared by all repositories
	TxManager *postgres.TxManager

	// Audit records mutations inside their transactions and serves the history view
	Audit *postgres.AuditService

	// Metrics backs the /metrics endpoint and the ledger counters
	Metrics *metrics.Registry

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	// InventoryLocale orders names in the inventory view
	InventoryLocale language.Tag
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Metrics.Gatherer(), promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		if cfg.IdempotencyEnabled {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			protected.Use(middleware.Idempotency(postgres.NewIdempotencyStore(cfg.TxManager, ttl)))
		}

		registerCatalogRoutes(protected, cfg)
		registerLedgerRoutes(protected, cfg)
		registerWorkLogRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(handlers.NewBaseHandler(), cfg.AuthService)

	publicAuth := rg.Group("/auth")
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers reference catalog (справочник) endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- COMPANIES ---
	{
		repo := catalog_repo.NewCompanyRepo(cfg.TxManager)
		service := company.NewService(repo, cfg.TxManager, cfg.Audit)
		handler := handlers.NewCompanyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/companies"), handler)
	}

	// --- MATERIALS ---
	{
		repo := catalog_repo.NewMaterialRepo(cfg.TxManager)
		service := material.NewService(repo, cfg.TxManager, cfg.Audit)
		handler := handlers.NewMaterialHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/materials"), handler)
	}

	// --- SERVICE RATES ---
	{
		repo := catalog_repo.NewServiceRateRepo(cfg.TxManager)
		service := servicerate.NewService(repo, cfg.TxManager, cfg.Audit)
		handler := handlers.NewServiceRateHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/service-rates"), handler)
	}
}

// registerLedgerRoutes registers positions, movements and the inventory view.
func registerLedgerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	positionRepo := ledger_repo.NewPositionRepo(cfg.TxManager)
	movementRepo := ledger_repo.NewMovementRepo(cfg.TxManager)

	var ledgerMetrics ledger.Metrics
	if cfg.Metrics != nil {
		ledgerMetrics = cfg.Metrics
	}

	resolver := ledger.NewResolver(positionRepo, cfg.TxManager, cfg.Audit,
		ledger.WithResolverMetrics(ledgerMetrics))
	service := ledger.NewService(ledger.ServiceConfig{
		Positions: positionRepo,
		Movements: movementRepo,
		Resolver:  resolver,
		TxManager: cfg.TxManager,
		Recorder:  cfg.Audit,
		Metrics:   ledgerMetrics,
	})

	positionHandler := handlers.NewPositionHandler(baseHandler, service)
	positions := rg.Group("/positions")
	{
		positions.GET("", positionHandler.List)
		positions.GET("/:id", positionHandler.Get)
		positions.GET("/:id/balance", positionHandler.Balance)
	}

	inventoryHandler := handlers.NewInventoryHandler(baseHandler, service, cfg.InventoryLocale)
	inventory := rg.Group("/inventory")
	{
		inventory.GET("", inventoryHandler.Get)
		inventory.GET("/export", inventoryHandler.Export)
	}

	movementHandler := handlers.NewMovementHandler(baseHandler, service)
	movements := rg.Group("/movements")
	{
		movements.GET("", movementHandler.List)
		movements.POST("", movementHandler.Create)
		movements.POST("/check", movementHandler.Check)
		movements.PUT("/:id", movementHandler.Update)
		movements.DELETE("/:id", movementHandler.Delete)
	}
}

// registerWorkLogRoutes registers billable work endpoints.
func registerWorkLogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	repo := worklog_repo.NewRepo(cfg.TxManager)
	rates := catalog_repo.NewServiceRateRepo(cfg.TxManager)
	service := worklog.NewService(repo, rates, cfg.TxManager, cfg.Audit)
	handler := handlers.NewWorkLogHandler(handlers.NewBaseHandler(), service)

	workLogs := rg.Group("/work-logs")
	{
		workLogs.GET("", handler.List)
		workLogs.POST("", handler.Create)
		workLogs.PUT("/:id", handler.Update)
		workLogs.DELETE("/:id", handler.Delete)
	}
}

// registerReportRoutes registers the dashboard and the admin history view.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	reportService := reports.NewService(report_repo.NewReportRepo(cfg.TxManager))
	dashboardHandler := handlers.NewDashboardHandler(baseHandler, reportService)
	rg.GET("/dashboard", dashboardHandler.Get)

	auditHandler := handlers.NewAuditHandler(baseHandler, audit.NewService(cfg.Audit))
	rg.GET("/audit", middleware.RequireAdmin(), auditHandler.List)
}
