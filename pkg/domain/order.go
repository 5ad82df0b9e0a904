package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order status values as stored locally.
const (
	OrderStatusOpen      = "OPEN"
	OrderStatusCancelled = "CANCELLED"
)

// Order is a synced copy of a store order, keyed by
// (tenant ID, remote order ID). CustomerID is nil when the order references
// a remote customer that has not been synced locally.
type Order struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	ShopifyOrderID    string
	CustomerID        *uuid.UUID
	OrderNumber       string
	TotalPrice        float64
	SubtotalPrice     float64
	TaxAmount         float64
	DiscountAmount    float64
	Currency          string
	FinancialStatus   string
	FulfillmentStatus string
	OrderStatus       string
	ProcessedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
