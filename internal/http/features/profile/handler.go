// Package profile implements the authenticated user profile endpoints,
// including updating the tenant's store credentials.
package profile

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shoplens/shoplens/internal/http/middleware"
	"github.com/shoplens/shoplens/internal/httputil"
	"github.com/shoplens/shoplens/pkg/cache"
	"github.com/shoplens/shoplens/pkg/domain"
	"github.com/shoplens/shoplens/pkg/repository"
)

// Handler handles profile endpoints.
type Handler struct {
	logger  *slog.Logger
	users   *repository.UsersRepository
	tenants *repository.TenantsRepository
	cache   *cache.Service
}

// NewHandler creates a new profile handler.
func NewHandler(logger *slog.Logger, users *repository.UsersRepository, tenants *repository.TenantsRepository, cacheSvc *cache.Service) *Handler {
	return &Handler{logger: logger, users: users, tenants: tenants, cache: cacheSvc}
}

// ProfileResponse is the authenticated user's profile with store context.
type ProfileResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role"`
	StoreName  string `json:"storeName"`
	ShopDomain string `json:"shopDomain"`
	// TokenHint is the last four characters of the stored access token,
	// enough to recognize which token is configured without exposing it.
	TokenHint string `json:"tokenHint"`
}

// Get returns the authenticated user's profile.
// GET /api/user/profile
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	tenant, err := h.tenants.GetByID(r.Context(), user.TenantID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ProfileResponse{
		ID:         user.ID.String(),
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		StoreName:  tenant.Name,
		ShopDomain: tenant.ShopDomain,
		TokenHint:  tokenHint(tenant.AccessToken),
	})
}

// UpdateCredentialsRequest carries new store credentials.
type UpdateCredentialsRequest struct {
	ShopDomain  string `json:"shopDomain"`
	AccessToken string `json:"accessToken"`
}

// UpdateCredentials replaces the tenant's store credentials and clears its
// cached analytics so the next query reflects the new store.
// PUT /api/user/profile
func (h *Handler) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.GetRole(r.Context())
	if role != domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, "only admins can update store credentials")
		return
	}

	var req UpdateCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shopDomain := strings.TrimSpace(strings.ToLower(req.ShopDomain))
	accessToken := strings.TrimSpace(req.AccessToken)
	if shopDomain == "" || accessToken == "" {
		httputil.DomainError(w, domain.ErrMissingFields)
		return
	}
	if !domain.ValidShopDomain(shopDomain) {
		httputil.DomainError(w, domain.ErrInvalidShopDomain)
		return
	}

	if err := h.tenants.UpdateCredentials(r.Context(), tenantID, shopDomain, accessToken); err != nil {
		httputil.DomainError(w, err)
		return
	}

	h.cache.ClearTenant(tenantID)
	h.logger.Info("store credentials updated", "tenant_id", tenantID, "shop_domain", shopDomain)

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "store credentials updated"})
}

func tokenHint(token string) string {
	if len(token) <= 4 {
		return ""
	}
	return "..." + token[len(token)-4:]
}
