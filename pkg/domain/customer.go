package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a synced copy of a store customer, keyed by
// (tenant ID, remote customer ID).
type Customer struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	ShopifyCustomerID string
	Email             string
	FirstName         string
	LastName          string
	Phone             string
	TotalSpent        float64
	OrdersCount       int
	AcceptsMarketing  bool
	State             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DisplayName joins the name parts, falling back to the email address.
func (c *Customer) DisplayName() string {
	name := c.FirstName
	if c.LastName != "" {
		if name != "" {
			name += " "
		}
		name += c.LastName
	}
	if name == "" {
		return c.Email
	}
	return name
}
