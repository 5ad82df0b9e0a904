// Package customers implements the paginated customer list endpoint.
package customers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shoplens/shoplens/internal/http/middleware"
	"github.com/shoplens/shoplens/internal/httputil"
	"github.com/shoplens/shoplens/pkg/analytics"
	"github.com/shoplens/shoplens/pkg/domain"
)

// Handler handles customer list endpoints.
type Handler struct {
	logger    *slog.Logger
	analytics *analytics.Service
}

// NewHandler creates a new customers handler.
func NewHandler(logger *slog.Logger, analyticsSvc *analytics.Service) *Handler {
	return &Handler{logger: logger, analytics: analyticsSvc}
}

// ListResponse is one page of customers.
type ListResponse struct {
	Customers  []domain.CustomerListRow `json:"customers"`
	Pagination domain.Pagination        `json:"pagination"`
}

// List returns one page of the tenant's customers.
// GET /api/customers/list?search=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	rows, pagination, err := h.analytics.CustomerList(r.Context(), tenantID, q.Get("search"), page, limit)
	if err != nil {
		h.logger.Error("customer list failed", "tenant_id", tenantID, "error", err)
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ListResponse{Customers: rows, Pagination: pagination})
}
