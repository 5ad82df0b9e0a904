package shopify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/shoplens/pkg/domain"
)

func TestGetCustomersRequestShape(t *testing.T) {
	var gotPath, gotToken, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"customers":[{"id":101,"email":"a@example.com","total_spent":"42.50","orders_count":3}]}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	store := StoreConfig{Domain: "demo.myshopify.com", AccessToken: "shpat_test"}

	customers, err := client.GetCustomers(context.Background(), store, 250)
	require.NoError(t, err)

	assert.Equal(t, "/admin/api/"+DefaultAPIVersion+"/customers.json", gotPath)
	assert.Equal(t, "shpat_test", gotToken)
	assert.Equal(t, "250", gotLimit)

	require.Len(t, customers, 1)
	assert.Equal(t, int64(101), customers[0].ID)
	assert.Equal(t, "42.50", customers[0].TotalSpent)
	assert.Equal(t, 3, customers[0].OrdersCount)
}

func TestGetOrdersIncludesAnyStatus(t *testing.T) {
	var gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStatus = r.URL.Query().Get("status")
		_, _ = w.Write([]byte(`{"orders":[{"id":7,"name":"#1001","customer":{"id":101},"total_price":"10.00"}]}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	orders, err := client.GetOrders(context.Background(), StoreConfig{}, 250)
	require.NoError(t, err)

	assert.Equal(t, "any", gotStatus)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Customer)
	assert.Equal(t, int64(101), orders[0].Customer.ID)
}

func TestGetShop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/"+DefaultAPIVersion+"/shop.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"shop":{"id":1,"name":"Demo Store","email":"owner@example.com"}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	shop, err := client.GetShop(context.Background(), StoreConfig{})
	require.NoError(t, err)
	assert.Equal(t, "Demo Store", shop.Name)
}

func TestRemoteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetShop(context.Background(), StoreConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemoteUnavailable))
}

func TestRemoteErrorConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetCheckouts(context.Background(), StoreConfig{}, 250)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemoteUnavailable))
}

func TestWithAPIVersion(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithAPIVersion("2023-10"))
	_, err := client.GetProducts(context.Background(), StoreConfig{}, 10)
	require.NoError(t, err)
	assert.Equal(t, "/admin/api/2023-10/products.json", gotPath)
}
