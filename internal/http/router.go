package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplens/shoplens/internal/http/features/authn"
	"github.com/shoplens/shoplens/internal/http/features/customers"
	"github.com/shoplens/shoplens/internal/http/features/dashboard"
	"github.com/shoplens/shoplens/internal/http/features/profile"
	"github.com/shoplens/shoplens/internal/http/features/syncing"
	"github.com/shoplens/shoplens/internal/http/features/webhooks"
	"github.com/shoplens/shoplens/internal/http/middleware"
	"github.com/shoplens/shoplens/internal/httputil"
	"github.com/shoplens/shoplens/internal/notification"
	"github.com/shoplens/shoplens/pkg/analytics"
	"github.com/shoplens/shoplens/pkg/auth"
	"github.com/shoplens/shoplens/pkg/cache"
	"github.com/shoplens/shoplens/pkg/repository"
	"github.com/shoplens/shoplens/pkg/syncer"
	"github.com/shoplens/shoplens/pkg/webhook"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	TokenService     *auth.TokenService
	OTPStore         *auth.OTPStore
	EmailService     *notification.EmailService
	AnalyticsService *analytics.Service
	SyncService      *syncer.Service
	WebhookProcessor *webhook.Processor
	CacheService     *cache.Service
	TenantsRepo      *repository.TenantsRepository
	UsersRepo        *repository.UsersRepository
	CustomersRepo    *repository.CustomersRepository

	RateLimitRequests int
	RateLimitWindow   time.Duration
	MaxRequestBody    int64
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBody))

	// Health check and metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.Logger)
	requireAuth := middleware.Auth(cfg.TokenService)

	// Authentication
	authnHandler := authn.NewHandler(
		cfg.Logger,
		cfg.AuthService,
		cfg.TokenService,
		cfg.OTPStore,
		cfg.EmailService,
		cfg.TenantsRepo,
		cfg.UsersRepo,
		cfg.CustomersRepo,
	)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/api/auth/register-tenant", authnHandler.Register)
		r.Post("/api/auth/login-tenant", authnHandler.Login)
		r.Post("/api/auth/request-otp", authnHandler.RequestPasscode)
		r.Post("/api/auth/verify-otp", authnHandler.VerifyPasscode)
	})

	// Webhooks are authenticated by the sender, not by a session.
	webhooksHandler := webhooks.NewHandler(cfg.Logger, cfg.WebhookProcessor)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["api"])
		r.Post("/api/webhooks/shopify", webhooksHandler.Receive)
		r.Get("/api/webhooks/check", webhooksHandler.Check)
	})

	// Profile
	profileHandler := profile.NewHandler(cfg.Logger, cfg.UsersRepo, cfg.TenantsRepo, cfg.CacheService)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(rateLimiters["api"])
		r.Get("/api/user/profile", profileHandler.Get)
		r.Put("/api/user/profile", profileHandler.UpdateCredentials)
	})

	// Analytics
	dashboardHandler := dashboard.NewHandler(cfg.Logger, cfg.AnalyticsService)
	customersHandler := customers.NewHandler(cfg.Logger, cfg.AnalyticsService)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(rateLimiters["api"])
		r.Get("/api/dashboard/{tenantID}", dashboardHandler.Stats)
		r.Get("/api/analytics/orders-by-date", dashboardHandler.OrdersByDate)
		r.Get("/api/analytics/top-customers", dashboardHandler.TopCustomers)
		r.Get("/api/analytics/sales-performance", dashboardHandler.SalesPerformance)
		r.Get("/api/analytics/customer-behavior", dashboardHandler.CustomerBehavior)
		r.Get("/api/analytics/product-performance", dashboardHandler.ProductPerformance)
		r.Get("/api/analytics/cart-abandonment", dashboardHandler.CartAbandonment)
		r.Get("/api/customers/list", customersHandler.List)
	})

	// Sync and cache management
	syncingHandler := syncing.NewHandler(cfg.Logger, cfg.SyncService, cfg.CacheService)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(rateLimiters["sync"])
		r.Post("/api/sync/all", syncingHandler.SyncAll)
		r.Post("/api/sync/customers", syncingHandler.SyncCustomers)
		r.Post("/api/sync/products", syncingHandler.SyncProducts)
		r.Post("/api/sync/orders", syncingHandler.SyncOrders)
		r.Get("/api/sync/test", syncingHandler.TestConnection)
	})
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(rateLimiters["api"])
		r.Get("/api/cache/stats", syncingHandler.CacheStats)
		r.Post("/api/cache/clear", syncingHandler.CacheClear)
	})

	return r
}
