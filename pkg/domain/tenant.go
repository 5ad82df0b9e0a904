package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tenant represents one connected commerce store. All synced data and every
// analytics query is partitioned by the tenant ID.
type Tenant struct {
	ID          uuid.UUID
	Name        string
	ShopDomain  string
	AccessToken string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidShopDomain reports whether domain looks like a Shopify store domain.
func ValidShopDomain(domain string) bool {
	return strings.HasSuffix(domain, ".myshopify.com") && len(domain) > len(".myshopify.com")
}
