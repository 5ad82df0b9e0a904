package domain

import "testing"

func TestValidShopDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   bool
	}{
		{"demo.myshopify.com", true},
		{"my-store-42.myshopify.com", true},
		{"demo.shopify.com", false},
		{"myshopify.com", false},
		{"", false},
		{"demo.myshopify.com.evil.com", false},
	}

	for _, tt := range tests {
		if got := ValidShopDomain(tt.domain); got != tt.want {
			t.Errorf("ValidShopDomain(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestCustomerDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		customer Customer
		want     string
	}{
		{"full name", Customer{FirstName: "Jane", LastName: "Doe", Email: "j@example.com"}, "Jane Doe"},
		{"first only", Customer{FirstName: "Jane", Email: "j@example.com"}, "Jane"},
		{"email fallback", Customer{Email: "j@example.com"}, "j@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.customer.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserFullName(t *testing.T) {
	u := User{FirstName: "Jane", LastName: "Doe"}
	if got := u.FullName(); got != "Jane Doe" {
		t.Errorf("FullName() = %q, want %q", got, "Jane Doe")
	}

	u = User{FirstName: "Jane"}
	if got := u.FullName(); got != "Jane" {
		t.Errorf("FullName() = %q, want %q", got, "Jane")
	}
}
