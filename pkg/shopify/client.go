// Package shopify is a minimal Shopify Admin REST API client covering the
// resources the sync pipeline and analytics service consume.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shoplens/shoplens/pkg/domain"
)

// DefaultAPIVersion is the Admin API version requested when none is
// configured.
const DefaultAPIVersion = "2024-01"

// DefaultTimeout bounds a single Admin API round trip.
const DefaultTimeout = 25 * time.Second

// StoreConfig is the per-store credential pair every request needs.
type StoreConfig struct {
	Domain      string
	AccessToken string
}

// Client talks to the Shopify Admin REST API. It is stateless with respect
// to stores: credentials are passed per call so one client serves every
// tenant.
type Client struct {
	httpClient *http.Client
	apiVersion string

	// baseURL overrides the store-derived URL. Tests point it at a stub
	// server.
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIVersion overrides the Admin API version segment.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithBaseURL routes every request to a fixed base URL instead of the
// store domain.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// NewClient builds an Admin API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		apiVersion: DefaultAPIVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) endpoint(store StoreConfig, resource string, query url.Values) string {
	base := c.baseURL
	if base == "" {
		base = "https://" + store.Domain
	}
	u := fmt.Sprintf("%s/admin/api/%s/%s.json", base, c.apiVersion, resource)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) get(ctx context.Context, store StoreConfig, resource string, query url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(store, resource, query), nil)
	if err != nil {
		return fmt.Errorf("build shopify request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", store.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrRemoteUnavailable, resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", domain.ErrRemoteUnavailable, resource, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode shopify %s response: %w", resource, err)
	}
	return nil
}

// GetShop fetches the store profile. Used as the connectivity check before
// a sync run.
func (c *Client) GetShop(ctx context.Context, store StoreConfig) (*Shop, error) {
	var out struct {
		Shop Shop `json:"shop"`
	}
	if err := c.get(ctx, store, "shop", nil, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

// GetCustomers fetches up to limit customers.
func (c *Client) GetCustomers(ctx context.Context, store StoreConfig, limit int) ([]Customer, error) {
	var out struct {
		Customers []Customer `json:"customers"`
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, store, "customers", q, &out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

// GetProducts fetches up to limit products.
func (c *Client) GetProducts(ctx context.Context, store StoreConfig, limit int) ([]Product, error) {
	var out struct {
		Products []Product `json:"products"`
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, store, "products", q, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// GetOrders fetches up to limit orders of any status.
func (c *Client) GetOrders(ctx context.Context, store StoreConfig, limit int) ([]Order, error) {
	var out struct {
		Orders []Order `json:"orders"`
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}, "status": {"any"}}
	if err := c.get(ctx, store, "orders", q, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// GetCheckouts fetches up to limit abandoned checkouts.
func (c *Client) GetCheckouts(ctx context.Context, store StoreConfig, limit int) ([]Checkout, error) {
	var out struct {
		Checkouts []Checkout `json:"checkouts"`
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, store, "checkouts", q, &out); err != nil {
		return nil, err
	}
	return out.Checkouts, nil
}
