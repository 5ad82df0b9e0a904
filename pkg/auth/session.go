package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
)

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionConfig holds token signing configuration.
type SessionConfig struct {
	JWTSecret  []byte
	Issuer     string
	SessionTTL time.Duration
}

// SessionClaims are the claims carried by a session token. TenantID is the
// only source of tenant scoping for protected endpoints.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

// TokenService issues and validates signed session tokens.
type TokenService struct {
	config SessionConfig
}

// NewTokenService creates a new token service.
func NewTokenService(config SessionConfig) *TokenService {
	if config.SessionTTL == 0 {
		config.SessionTTL = DefaultSessionTTL
	}
	return &TokenService{config: config}
}

// SessionTTL returns the configured token lifetime.
func (s *TokenService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

// IssueToken signs a session token for the user scoped to their tenant.
func (s *TokenService) IssueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.SessionTTL)),
			Issuer:    s.config.Issuer,
		},
		Email:    user.Email,
		TenantID: user.TenantID.String(),
		Role:     user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.config.JWTSecret)
}

// ValidateToken validates a session token and returns its claims.
func (s *TokenService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.JWTSecret, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// ParseTenantID parses the tenant ID claim.
func (c *SessionClaims) ParseTenantID() (uuid.UUID, error) {
	return uuid.Parse(c.TenantID)
}

// ParseUserID parses the subject claim.
func (c *SessionClaims) ParseUserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}
