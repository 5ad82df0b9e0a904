package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
)

func newTestService() *TokenService {
	return NewTokenService(SessionConfig{
		JWTSecret:  []byte("test-secret"),
		Issuer:     "test",
		SessionTTL: time.Hour,
	})
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newTestService()
	user := &domain.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    "owner@example.com",
		Role:     domain.RoleAdmin,
	}

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if claims.Email != user.Email {
		t.Errorf("Email = %q, want %q", claims.Email, user.Email)
	}
	if claims.Role != domain.RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, domain.RoleAdmin)
	}

	userID, err := claims.ParseUserID()
	if err != nil || userID != user.ID {
		t.Errorf("ParseUserID() = %v, %v; want %v", userID, err, user.ID)
	}
	tenantID, err := claims.ParseTenantID()
	if err != nil || tenantID != user.TenantID {
		t.Errorf("ParseTenantID() = %v, %v; want %v", tenantID, err, user.TenantID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := newTestService().IssueToken(&domain.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	other := NewTokenService(SessionConfig{
		JWTSecret:  []byte("a-different-secret"),
		Issuer:     "test",
		SessionTTL: time.Hour,
	})
	if _, err := other.ValidateToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewTokenService(SessionConfig{
		JWTSecret:  []byte("test-secret"),
		Issuer:     "test",
		SessionTTL: -time.Minute,
	})

	token, err := svc.IssueToken(&domain.User{ID: uuid.New(), TenantID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := newTestService().ValidateToken("garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}
