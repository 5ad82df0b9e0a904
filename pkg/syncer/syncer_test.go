package syncer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/shoplens/pkg/domain"
	"github.com/shoplens/shoplens/pkg/shopify"
)

func TestCustomerFromRemote(t *testing.T) {
	tenantID := uuid.New()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	got := CustomerFromRemote(tenantID, shopify.Customer{
		ID:               101,
		Email:            "jane@example.com",
		FirstName:        "Jane",
		LastName:         "Doe",
		TotalSpent:       "150.75",
		OrdersCount:      4,
		AcceptsMarketing: true,
		State:            "enabled",
		CreatedAt:        created,
	})

	assert.Equal(t, tenantID, got.TenantID)
	assert.Equal(t, "101", got.ShopifyCustomerID)
	assert.Equal(t, 150.75, got.TotalSpent)
	assert.Equal(t, 4, got.OrdersCount)
	assert.True(t, got.AcceptsMarketing)
	assert.Equal(t, created, got.CreatedAt)
}

func TestProductFromRemoteUsesFirstVariant(t *testing.T) {
	got := ProductFromRemote(uuid.New(), shopify.Product{
		ID:     202,
		Title:  "Canvas Tote",
		Status: "active",
		Variants: []shopify.Variant{
			{Price: "29.99", CompareAtPrice: "39.99", InventoryQuantity: 12},
			{Price: "31.99", InventoryQuantity: 3},
		},
	})

	assert.Equal(t, "202", got.ShopifyProductID)
	assert.Equal(t, 29.99, got.Price)
	assert.Equal(t, 12, got.Inventory)
	require.NotNil(t, got.CompareAtPrice)
	assert.Equal(t, 39.99, *got.CompareAtPrice)
}

func TestProductFromRemoteWithoutVariants(t *testing.T) {
	got := ProductFromRemote(uuid.New(), shopify.Product{ID: 203, Title: "Gift Card"})

	assert.Equal(t, 0.0, got.Price)
	assert.Equal(t, 0, got.Inventory)
	assert.Nil(t, got.CompareAtPrice)
}

func TestOrderFromRemoteStatus(t *testing.T) {
	open := OrderFromRemote(uuid.New(), shopify.Order{ID: 301, Name: "#1001", TotalPrice: "10.00"})
	assert.Equal(t, domain.OrderStatusOpen, open.OrderStatus)
	assert.Equal(t, 10.0, open.TotalPrice)
	assert.Nil(t, open.CustomerID)

	cancelledAt := time.Now()
	cancelled := OrderFromRemote(uuid.New(), shopify.Order{ID: 302, CancelledAt: &cancelledAt})
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.OrderStatus)
}

func TestParseMoney(t *testing.T) {
	assert.Equal(t, 42.5, parseMoney("42.50"))
	assert.Equal(t, 0.0, parseMoney(""))
	assert.Equal(t, 0.0, parseMoney("not-a-number"))
}
