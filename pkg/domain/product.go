package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product status values as stored locally.
const (
	ProductStatusActive = "ACTIVE"
	ProductStatusDraft  = "DRAFT"
)

// Product is a synced copy of a store product, keyed by
// (tenant ID, remote product ID). Price and inventory come from the
// product's first variant.
type Product struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	ShopifyProductID string
	Title            string
	Handle           string
	Vendor           string
	ProductType      string
	Price            float64
	CompareAtPrice   *float64
	Inventory        int
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
