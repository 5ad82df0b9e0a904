package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
)

// TenantsRepository handles tenant data persistence.
type TenantsRepository struct {
	db *sql.DB
}

// NewTenantsRepository creates a new tenants repository.
func NewTenantsRepository(db *sql.DB) *TenantsRepository {
	return &TenantsRepository{db: db}
}

// Create creates a new tenant.
func (r *TenantsRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	return r.CreateTx(ctx, r.db, tenant)
}

// CreateTx creates a new tenant within a transaction.
func (r *TenantsRepository) CreateTx(ctx context.Context, q Querier, tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, shop_domain, access_token, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.ExecContext(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.ShopDomain,
		tenant.AccessToken,
		tenant.IsActive,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	return err
}

// GetByID retrieves a tenant by ID.
func (r *TenantsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `
		SELECT id, name, shop_domain, access_token, is_active, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByShopDomain retrieves a tenant by its store domain.
func (r *TenantsRepository) GetByShopDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, shop_domain, access_token, is_active, created_at, updated_at
		FROM tenants
		WHERE shop_domain = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, shopDomain))
}

// ExistsByShopDomain reports whether a tenant is registered for the domain.
func (r *TenantsRepository) ExistsByShopDomain(ctx context.Context, shopDomain string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tenants WHERE shop_domain = $1)`, shopDomain,
	).Scan(&exists)
	return exists, err
}

// UpdateCredentials updates the store domain and access token for a tenant.
func (r *TenantsRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, shopDomain, accessToken string) error {
	query := `
		UPDATE tenants
		SET shop_domain = $1, access_token = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, shopDomain, accessToken, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTenantNotFound
	}

	return nil
}

func (r *TenantsRepository) scanOne(row *sql.Row) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.ShopDomain,
		&tenant.AccessToken,
		&tenant.IsActive,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	return &tenant, nil
}
