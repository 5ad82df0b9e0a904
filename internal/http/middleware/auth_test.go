package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens/pkg/auth"
	"github.com/shoplens/shoplens/pkg/domain"
)

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService(auth.SessionConfig{
		JWTSecret:  []byte("test-secret"),
		Issuer:     "test",
		SessionTTL: time.Hour,
	})
}

func issueTestToken(t *testing.T, tokens *auth.TokenService, tenantID uuid.UUID) string {
	t.Helper()
	token, err := tokens.IssueToken(&domain.User{
		ID:       uuid.New(),
		TenantID: tenantID,
		Email:    "admin@example.com",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	return token
}

func TestAuthPopulatesContext(t *testing.T) {
	tokens := newTestTokenService()
	tenantID := uuid.New()
	token := issueTestToken(t, tokens, tenantID)

	var gotTenant uuid.UUID
	var gotRole string
	handler := Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant, _ = GetTenantID(r.Context())
		gotRole, _ = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotTenant != tenantID {
		t.Errorf("tenant in context = %s, want %s", gotTenant, tenantID)
	}
	if gotRole != domain.RoleAdmin {
		t.Errorf("role in context = %q, want %q", gotRole, domain.RoleAdmin)
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(newTestTokenService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(newTestTokenService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsTokenFromOtherSecret(t *testing.T) {
	other := auth.NewTokenService(auth.SessionConfig{
		JWTSecret:  []byte("different-secret"),
		Issuer:     "test",
		SessionTTL: time.Hour,
	})
	token := issueTestToken(t, other, uuid.New())

	handler := Auth(newTestTokenService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
