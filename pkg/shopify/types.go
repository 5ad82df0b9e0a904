package shopify

import "time"

// Customer is a Shopify Admin API customer record, limited to the fields
// consumed downstream.
type Customer struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Phone            string    `json:"phone"`
	TotalSpent       string    `json:"total_spent"`
	OrdersCount      int       `json:"orders_count"`
	AcceptsMarketing bool      `json:"accepts_marketing"`
	State            string    `json:"state"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Variant is the price-bearing part of a product.
type Variant struct {
	ID                int64  `json:"id"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compare_at_price"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// Product is a Shopify Admin API product record.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	Variants    []Variant `json:"variants"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderCustomer is the customer stub embedded in an order payload.
type OrderCustomer struct {
	ID int64 `json:"id"`
}

// Order is a Shopify Admin API order record.
type Order struct {
	ID                int64          `json:"id"`
	Name              string         `json:"name"`
	Customer          *OrderCustomer `json:"customer"`
	TotalPrice        string         `json:"total_price"`
	SubtotalPrice     string         `json:"subtotal_price"`
	TotalTax          string         `json:"total_tax"`
	TotalDiscounts    string         `json:"total_discounts"`
	Currency          string         `json:"currency"`
	FinancialStatus   string         `json:"financial_status"`
	FulfillmentStatus string         `json:"fulfillment_status"`
	ProcessedAt       *time.Time     `json:"processed_at"`
	CancelledAt       *time.Time     `json:"cancelled_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Checkout is an abandoned checkout record.
type Checkout struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	TotalPrice  string     `json:"total_price"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Shop is the store profile returned by shop.json, used for connectivity
// checks.
type Shop struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Plan  string `json:"plan_name"`
}
