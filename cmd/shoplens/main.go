package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shoplens/shoplens/internal/config"
	httpserver "github.com/shoplens/shoplens/internal/http"
	"github.com/shoplens/shoplens/internal/notification"
	"github.com/shoplens/shoplens/pkg/analytics"
	"github.com/shoplens/shoplens/pkg/auth"
	"github.com/shoplens/shoplens/pkg/cache"
	"github.com/shoplens/shoplens/pkg/repository"
	"github.com/shoplens/shoplens/pkg/shopify"
	"github.com/shoplens/shoplens/pkg/syncer"
	"github.com/shoplens/shoplens/pkg/webhook"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	tenantsRepo := repository.NewTenantsRepository(db)
	usersRepo := repository.NewUsersRepository(db)
	customersRepo := repository.NewCustomersRepository(db)
	productsRepo := repository.NewProductsRepository(db)
	ordersRepo := repository.NewOrdersRepository(db)

	// Open the cache
	cacheService, err := cache.New(cache.Config{
		Dir:             cfg.CacheDir,
		LocalMaxEntries: cfg.CacheLocalMax,
		LocalTTL:        cfg.CacheLocalTTL,
		SharedTTL:       cfg.CacheSharedTTL,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		os.Exit(1)
	}
	defer cacheService.Close()

	if cfg.CacheDir == "" {
		logger.Info("cache shared tier running in memory; set CACHE_DIR to persist it")
	}

	// Initialize services
	authService := auth.NewService(db, tenantsRepo, usersRepo)
	tokenService := auth.NewTokenService(auth.SessionConfig{
		JWTSecret:  []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		SessionTTL: cfg.SessionTTL,
	})
	otpStore := auth.NewOTPStore(auth.DefaultOTPTTL)

	shopifyClient := shopify.NewClient(
		shopify.WithAPIVersion(cfg.ShopifyAPIVersion),
		shopify.WithTimeout(cfg.ShopifyHTTPTimeout),
	)

	var fallback shopify.StoreConfig
	if cfg.HasFallbackStore() {
		fallback = shopify.StoreConfig{
			Domain:      cfg.ShopifyFallbackDomain,
			AccessToken: cfg.ShopifyFallbackToken,
		}
		logger.Info("fallback store configured", "shop_domain", fallback.Domain)
	}
	credResolver := shopify.NewCredentialResolver(tenantsRepo, fallback)

	syncService := syncer.New(
		shopifyClient,
		credResolver,
		customersRepo,
		productsRepo,
		ordersRepo,
		cacheService,
		logger,
		cfg.SyncPageLimit,
	)
	analyticsService := analytics.New(
		customersRepo,
		productsRepo,
		ordersRepo,
		cacheService,
		shopifyClient,
		credResolver,
		logger,
	)

	webhookQueue := webhook.NewQueue(webhook.DefaultQueueCapacity)
	webhookProcessor := webhook.NewProcessor(
		tenantsRepo,
		customersRepo,
		productsRepo,
		ordersRepo,
		cacheService,
		webhookQueue,
		logger,
	)

	// Initialize email service if configured
	var emailService *notification.EmailService
	if cfg.HasSMTP() {
		emailService = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		logger.Info("email service enabled")
	}

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:            logger,
		AuthService:       authService,
		TokenService:      tokenService,
		OTPStore:          otpStore,
		EmailService:      emailService,
		AnalyticsService:  analyticsService,
		SyncService:       syncService,
		WebhookProcessor:  webhookProcessor,
		CacheService:      cacheService,
		TenantsRepo:       tenantsRepo,
		UsersRepo:         usersRepo,
		CustomersRepo:     customersRepo,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		MaxRequestBody:    cfg.MaxRequestBody,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
