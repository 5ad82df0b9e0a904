// Package authn implements the authentication endpoints: store
// registration, password login and the emailed passcode flow.
package authn

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/internal/httputil"
	"github.com/shoplens/shoplens/internal/notification"
	"github.com/shoplens/shoplens/pkg/auth"
	"github.com/shoplens/shoplens/pkg/domain"
	"github.com/shoplens/shoplens/pkg/repository"
)

// RoleViewer is the role carried by passcode sessions that belong to a
// store customer rather than a dashboard user.
const RoleViewer = "VIEWER"

// Handler handles authentication endpoints.
type Handler struct {
	logger       *slog.Logger
	authService  *auth.Service
	tokens       *auth.TokenService
	otp          *auth.OTPStore
	emailService *notification.EmailService
	tenants      *repository.TenantsRepository
	users        *repository.UsersRepository
	customers    *repository.CustomersRepository
}

// NewHandler creates a new authentication handler. emailService may be nil;
// passcodes are then only logged, which is how development runs.
func NewHandler(
	logger *slog.Logger,
	authService *auth.Service,
	tokens *auth.TokenService,
	otp *auth.OTPStore,
	emailService *notification.EmailService,
	tenants *repository.TenantsRepository,
	users *repository.UsersRepository,
	customers *repository.CustomersRepository,
) *Handler {
	return &Handler{
		logger:       logger,
		authService:  authService,
		tokens:       tokens,
		otp:          otp,
		emailService: emailService,
		tenants:      tenants,
		users:        users,
		customers:    customers,
	}
}

// RegisterRequest represents a store registration request.
type RegisterRequest struct {
	StoreName   string `json:"storeName"`
	ShopDomain  string `json:"shopDomain"`
	AccessToken string `json:"accessToken"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

// LoginRequest represents a password login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the body returned by every successful authentication.
type SessionResponse struct {
	Token  string         `json:"token"`
	User   UserResponse   `json:"user"`
	Tenant TenantResponse `json:"tenant"`
}

// UserResponse is the user shape exposed over the API.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// TenantResponse is the tenant shape exposed over the API. The access
// token never appears here.
type TenantResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ShopDomain string `json:"shopDomain"`
}

// Register handles store registration.
// POST /api/auth/register-tenant
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, user, err := h.authService.RegisterTenant(r.Context(), auth.RegisterTenantInput{
		StoreName:     strings.TrimSpace(req.StoreName),
		ShopDomain:    strings.TrimSpace(strings.ToLower(req.ShopDomain)),
		AccessToken:   strings.TrimSpace(req.AccessToken),
		OwnerEmail:    strings.TrimSpace(strings.ToLower(req.Email)),
		OwnerPassword: req.Password,
		OwnerFirst:    strings.TrimSpace(req.FirstName),
		OwnerLast:     strings.TrimSpace(req.LastName),
	})
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	token, err := h.tokens.IssueToken(user)
	if err != nil {
		h.logger.Error("token issue failed after registration", "user_id", user.ID, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("store registered", "tenant_id", tenant.ID, "shop_domain", tenant.ShopDomain)
	httputil.JSON(w, http.StatusCreated, sessionResponse(token, user, tenant))
}

// Login handles password login.
// POST /api/auth/login-tenant
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, tenant, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	token, err := h.tokens.IssueToken(user)
	if err != nil {
		h.logger.Error("token issue failed after login", "user_id", user.ID, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, sessionResponse(token, user, tenant))
}

// PasscodeRequest represents a request for an emailed passcode.
type PasscodeRequest struct {
	Email      string `json:"email"`
	ShopDomain string `json:"shopDomain"`
}

// RequestPasscode issues a one-time passcode to a recognized email.
// POST /api/auth/request-otp
func (h *Handler) RequestPasscode(w http.ResponseWriter, r *http.Request) {
	var req PasscodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	shopDomain := strings.TrimSpace(strings.ToLower(req.ShopDomain))
	if email == "" || shopDomain == "" {
		httputil.Error(w, http.StatusBadRequest, "email and shopDomain are required")
		return
	}

	tenant, err := h.tenants.GetByShopDomain(r.Context(), shopDomain)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	if !h.emailRecognized(r, email, tenant) {
		httputil.DomainError(w, domain.ErrEmailNotRecognized)
		return
	}

	code, err := h.otp.Issue(email, tenant.ID)
	if err != nil {
		h.logger.Error("passcode generation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.emailService != nil {
		if err := h.emailService.SendPasscodeEmail(email, tenant.Name, code); err != nil {
			h.logger.Error("passcode email failed", "email", email, "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to send passcode")
			return
		}
	} else {
		h.logger.Info("passcode issued without email delivery", "email", email, "code", code)
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "passcode sent"})
}

// PasscodeVerifyRequest represents a passcode verification request.
type PasscodeVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyPasscode exchanges a valid passcode for a session token.
// POST /api/auth/verify-otp
func (h *Handler) VerifyPasscode(w http.ResponseWriter, r *http.Request) {
	var req PasscodeVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Code == "" {
		httputil.Error(w, http.StatusBadRequest, "email and code are required")
		return
	}

	tenantID, err := h.otp.Verify(email, req.Code)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	tenant, err := h.tenants.GetByID(r.Context(), tenantID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	// Dashboard users get their own identity back; store customers get a
	// read-only viewer session keyed by their customer record.
	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil || user.TenantID != tenantID {
		customer, found := h.findCustomer(r, tenantID, email)
		if !found {
			httputil.DomainError(w, domain.ErrEmailNotRecognized)
			return
		}
		user = &domain.User{
			ID:       customer.ID,
			TenantID: tenantID,
			Email:    customer.Email,
			Role:     RoleViewer,
		}
	}

	token, err := h.tokens.IssueToken(user)
	if err != nil {
		h.logger.Error("token issue failed after passcode verify", "email", email, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, sessionResponse(token, user, tenant))
}

func (h *Handler) emailRecognized(r *http.Request, email string, tenant *domain.Tenant) bool {
	if user, err := h.users.GetByEmail(r.Context(), email); err == nil && user.TenantID == tenant.ID {
		return true
	}
	_, found := h.findCustomer(r, tenant.ID, email)
	return found
}

func (h *Handler) findCustomer(r *http.Request, tenantID uuid.UUID, email string) (*domain.Customer, bool) {
	customer, err := h.customers.GetByEmail(r.Context(), tenantID, email)
	if err != nil {
		return nil, false
	}
	return customer, true
}

func sessionResponse(token string, user *domain.User, tenant *domain.Tenant) SessionResponse {
	return SessionResponse{
		Token: token,
		User: UserResponse{
			ID:        user.ID.String(),
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
		Tenant: TenantResponse{
			ID:         tenant.ID.String(),
			Name:       tenant.Name,
			ShopDomain: tenant.ShopDomain,
		},
	}
}
