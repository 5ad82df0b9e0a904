// Package dashboard implements the analytics read endpoints. Every query
// runs against the tenant carried by the verified session token; the only
// place a client-supplied tenant ID appears is the legacy dashboard path,
// and there it must match the token.
package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shoplens/shoplens/internal/http/middleware"
	"github.com/shoplens/shoplens/internal/httputil"
	"github.com/shoplens/shoplens/pkg/analytics"
	"github.com/shoplens/shoplens/pkg/domain"
)

// Handler handles analytics endpoints.
type Handler struct {
	logger    *slog.Logger
	analytics *analytics.Service
}

// NewHandler creates a new dashboard handler.
func NewHandler(logger *slog.Logger, analyticsSvc *analytics.Service) *Handler {
	return &Handler{logger: logger, analytics: analyticsSvc}
}

// Stats returns the headline dashboard numbers.
// GET /api/dashboard/{tenantID}
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// The path parameter is informational only; a mismatch with the
	// session's tenant is a cross-tenant access attempt.
	if param := chi.URLParam(r, "tenantID"); param != "" {
		requested, err := uuid.Parse(param)
		if err != nil || requested != tenantID {
			httputil.DomainError(w, domain.ErrTenantMismatch)
			return
		}
	}

	stats, err := h.analytics.DashboardStats(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("dashboard stats failed", "tenant_id", tenantID, "error", err)
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stats)
}

// OrdersByDate returns daily order volume.
// GET /api/analytics/orders-by-date?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) OrdersByDate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	start, err := parseDateParam(r, "start")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
		return
	}
	if end != nil {
		// Make the end date inclusive of its whole day.
		e := end.Add(24*time.Hour - time.Nanosecond)
		end = &e
	}

	rows, err := h.analytics.OrdersByDate(r.Context(), tenantID, start, end)
	if err != nil {
		h.logger.Error("orders by date failed", "tenant_id", tenantID, "error", err)
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rows)
}

// TopCustomers returns the highest spenders.
// GET /api/analytics/top-customers?limit=N
func (h *Handler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			httputil.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	rows, err := h.analytics.TopCustomers(r.Context(), tenantID, limit)
	if err != nil {
		h.logger.Error("top customers failed", "tenant_id", tenantID, "error", err)
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rows)
}

// SalesPerformance returns the monthly revenue breakdown.
// GET /api/analytics/sales-performance
func (h *Handler) SalesPerformance(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := h.analytics.SalesPerformance(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("sales performance failed", "tenant_id", tenantID, "error", err)
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rows)
}

// CustomerBehavior returns the monthly acquisition cohorts.
// GET /api/analytics/customer-behavior
func (h *Handler) CustomerBehavior(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := h.analytics.CustomerBehavior(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("customer behavior failed", "tenant_id", tenantID, "error", err)
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rows)
}

// ProductPerformance returns the per-product summary.
// GET /api/analytics/product-performance
func (h *Handler) ProductPerformance(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := h.analytics.ProductPerformance(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("product performance failed", "tenant_id", tenantID, "error", err)
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rows)
}

// CartAbandonment returns abandoned checkout analytics.
// GET /api/analytics/cart-abandonment
func (h *Handler) CartAbandonment(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.analytics.CartAbandonment(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("cart abandonment failed", "tenant_id", tenantID, "error", err)
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stats)
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
