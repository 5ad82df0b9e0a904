package shopify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
	"github.com/shoplens/shoplens/pkg/repository"
)

// CredentialResolver produces the store credentials for a tenant.
// Resolution order is the tenant's own stored credentials first, then the
// process-wide fallback store if one is configured.
type CredentialResolver struct {
	tenants *repository.TenantsRepository

	// Fallback is used when a tenant row carries no credentials. Both
	// fields must be set for the fallback to apply.
	Fallback StoreConfig
}

// NewCredentialResolver builds a resolver over the tenants repository.
func NewCredentialResolver(tenants *repository.TenantsRepository, fallback StoreConfig) *CredentialResolver {
	return &CredentialResolver{tenants: tenants, Fallback: fallback}
}

// Resolve returns the credentials to use for tenantID, or
// domain.ErrStoreConfigMissing when neither the tenant row nor the fallback
// provides a usable pair.
func (r *CredentialResolver) Resolve(ctx context.Context, tenantID uuid.UUID) (StoreConfig, error) {
	tenant, err := r.tenants.GetByID(ctx, tenantID)
	if err != nil && !errors.Is(err, domain.ErrTenantNotFound) {
		return StoreConfig{}, fmt.Errorf("resolve store credentials: %w", err)
	}

	if tenant != nil && tenant.IsActive && tenant.ShopDomain != "" && tenant.AccessToken != "" {
		return StoreConfig{Domain: tenant.ShopDomain, AccessToken: tenant.AccessToken}, nil
	}

	if r.Fallback.Domain != "" && r.Fallback.AccessToken != "" {
		return r.Fallback, nil
	}

	return StoreConfig{}, domain.ErrStoreConfigMissing
}
