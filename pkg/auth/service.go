package auth

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
	"github.com/shoplens/shoplens/pkg/repository"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterTenantInput carries everything needed to onboard a store and its
// owner account.
type RegisterTenantInput struct {
	StoreName     string
	ShopDomain    string
	AccessToken   string
	OwnerEmail    string
	OwnerPassword string
	OwnerFirst    string
	OwnerLast     string
}

// Service handles tenant registration and password login.
type Service struct {
	db      *sql.DB
	tenants *repository.TenantsRepository
	users   *repository.UsersRepository
}

// NewService creates a new auth service.
func NewService(db *sql.DB, tenants *repository.TenantsRepository, users *repository.UsersRepository) *Service {
	return &Service{db: db, tenants: tenants, users: users}
}

// RegisterTenant validates the input, then creates the tenant and its admin
// owner in one transaction. Each validation failure is a distinct sentinel
// so the handler can report the exact problem.
func (s *Service) RegisterTenant(ctx context.Context, in RegisterTenantInput) (*domain.Tenant, *domain.User, error) {
	if in.OwnerEmail == "" || in.OwnerPassword == "" || in.StoreName == "" || in.ShopDomain == "" || in.AccessToken == "" {
		return nil, nil, domain.ErrMissingFields
	}
	if !emailPattern.MatchString(in.OwnerEmail) {
		return nil, nil, domain.ErrInvalidEmail
	}
	if len(in.OwnerPassword) < minPasswordLen {
		return nil, nil, domain.ErrWeakPassword
	}
	if !domain.ValidShopDomain(in.ShopDomain) {
		return nil, nil, domain.ErrInvalidShopDomain
	}

	domainTaken, err := s.tenants.ExistsByShopDomain(ctx, in.ShopDomain)
	if err != nil {
		return nil, nil, err
	}
	if domainTaken {
		return nil, nil, domain.ErrTenantAlreadyExists
	}

	emailTaken, err := s.users.ExistsByEmail(ctx, in.OwnerEmail)
	if err != nil {
		return nil, nil, err
	}
	if emailTaken {
		return nil, nil, domain.ErrUserAlreadyExists
	}

	hash, err := HashPassword(in.OwnerPassword)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:          uuid.New(),
		Name:        in.StoreName,
		ShopDomain:  in.ShopDomain,
		AccessToken: in.AccessToken,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	user := &domain.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        strings.ToLower(in.OwnerEmail),
		PasswordHash: hash,
		FirstName:    in.OwnerFirst,
		LastName:     in.OwnerLast,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.tenants.CreateTx(ctx, tx, tenant); err != nil {
			return err
		}
		return s.users.CreateTx(ctx, tx, user)
	})
	if err != nil {
		return nil, nil, err
	}

	return tenant, user, nil
}

// Login verifies email and password and checks that both the user and its
// tenant are active. Returns the user and tenant on success.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *domain.Tenant, error) {
	if email == "" || password == "" {
		return nil, nil, domain.ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, nil, domain.ErrInvalidCredentials
	}

	tenant, err := s.tenants.GetByID(ctx, user.TenantID)
	if err != nil {
		return nil, nil, err
	}

	if !user.IsActive || !tenant.IsActive {
		return nil, nil, domain.ErrAccountInactive
	}

	return user, tenant, nil
}
