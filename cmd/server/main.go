package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeus-03/pennytrail/internal/config"
	"github.com/zeus-03/pennytrail/internal/database"
	"github.com/zeus-03/pennytrail/internal/handlers"
	"github.com/zeus-03/pennytrail/internal/localstore"
	"github.com/zeus-03/pennytrail/internal/middleware"
	"github.com/zeus-03/pennytrail/internal/repositories"
	"github.com/zeus-03/pennytrail/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	guestStore, err := localstore.Open(cfg.GuestStore.Path, cfg.GuestStore.Collection)
	if err != nil {
		logger.Error("failed to open guest store", "path", cfg.GuestStore.Path, "error", err)
		os.Exit(1)
	}
	defer guestStore.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	blacklistedTokenRepo := repositories.NewBlacklistedTokenRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)
	txRepo := repositories.NewTransactionRepository(db)

	// Services
	metrics := services.NewPrometheusMetrics()
	passwordService := services.NewPasswordService()
	tokenService := services.NewTokenService(&cfg.JWT)

	authService := services.NewAuthService(
		userRepo,
		refreshTokenRepo,
		auditRepo,
		blacklistedTokenRepo,
		passwordService,
		tokenService,
		metrics,
		logger,
	)

	txService := services.NewTransactionService(txRepo, auditRepo, metrics, logger)
	guestService := services.NewGuestService(guestStore, metrics, logger)

	extractor := services.NewExtractorClient(
		&cfg.Services,
		services.NewCircuitBreaker(services.DefaultCircuitBreakerConfig()),
		metrics,
		logger,
	)
	classifier := services.NewClassifierClient(
		&cfg.Services,
		services.NewCircuitBreaker(services.DefaultCircuitBreakerConfig()),
		metrics,
		logger,
	)

	syncService := services.NewEmailSyncService(
		userRepo,
		txRepo,
		auditRepo,
		extractor,
		classifier,
		metrics,
		cfg.Sync,
		logger,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userRepo)
	txHandler := handlers.NewTransactionHandler(txService, guestService)
	syncHandler := handlers.NewSyncHandler(syncService)
	healthHandler := handlers.NewHealthCheckHandler(db, extractor, classifier)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitPerSecond*2))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/guest-session", authHandler.GuestSession)
	auth.POST("/logout", authHandler.Logout)

	requireAuth := middleware.RequireAuth(tokenService, blacklistedTokenRepo)

	auth.GET("/me", authHandler.Me, requireAuth)

	api.GET("/categories", txHandler.GetCategories)

	transactions := api.Group("/transactions", requireAuth)
	transactions.GET("", txHandler.ListTransactions)
	transactions.POST("", txHandler.CreateTransaction)
	transactions.GET("/summary", txHandler.GetSummary)
	transactions.GET("/:id", txHandler.GetTransaction)
	transactions.PUT("/:id", txHandler.UpdateTransaction)
	transactions.DELETE("/:id", txHandler.DeleteTransaction)

	sync := api.Group("/email/sync", requireAuth, middleware.RequireConnectedAccount())
	sync.POST("", syncHandler.Sync)
	sync.GET("/status", syncHandler.Status)

	if cfg.IsDevelopment() {
		devHandler := handlers.NewDevHandler(txRepo)
		api.POST("/dev/seed", devHandler.SeedTransactions, requireAuth, middleware.RequireConnectedAccount())
	}

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("starting server", "addr", addr, "environment", cfg.Server.Environment)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// newLogger builds the process logger: JSON in production, text everywhere else.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
