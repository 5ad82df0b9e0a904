// Package syncer pulls customers, products and orders from the remote
// store into the local database. Each run fetches a single page per
// entity and upserts the records in bounded concurrent batches.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shoplens/shoplens/internal/metrics"
	"github.com/shoplens/shoplens/pkg/cache"
	"github.com/shoplens/shoplens/pkg/domain"
	"github.com/shoplens/shoplens/pkg/repository"
	"github.com/shoplens/shoplens/pkg/shopify"
)

// DefaultPageLimit is the per-entity fetch size when none is configured.
// One page per run keeps sync latency bounded; stores larger than a page
// converge over repeated runs.
const DefaultPageLimit = 250

const (
	customerBatchSize = 10
	productBatchSize  = 10
	orderBatchSize    = 5
)

// Result reports the outcome of syncing one entity type. Success is false
// only when the remote fetch itself failed; individual record failures are
// counted in Failed with Success still true.
type Result struct {
	Success bool   `json:"success"`
	Entity  string `json:"entity"`
	Synced  int    `json:"synced"`
	Total   int    `json:"total"`
	Failed  int    `json:"failed"`
}

// Summary is the outcome of a full sync run.
type Summary struct {
	Success bool     `json:"success"`
	Shop    string   `json:"shop"`
	Results []Result `json:"results"`
}

// Service orchestrates sync runs for all tenants.
type Service struct {
	client    *shopify.Client
	creds     *shopify.CredentialResolver
	customers *repository.CustomersRepository
	products  *repository.ProductsRepository
	orders    *repository.OrdersRepository
	cache     *cache.Service
	logger    *slog.Logger
	pageLimit int
}

// New builds a sync service. pageLimit of zero uses DefaultPageLimit.
func New(
	client *shopify.Client,
	creds *shopify.CredentialResolver,
	customers *repository.CustomersRepository,
	products *repository.ProductsRepository,
	orders *repository.OrdersRepository,
	cacheSvc *cache.Service,
	logger *slog.Logger,
	pageLimit int,
) *Service {
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	return &Service{
		client:    client,
		creds:     creds,
		customers: customers,
		products:  products,
		orders:    orders,
		cache:     cacheSvc,
		logger:    logger,
		pageLimit: pageLimit,
	}
}

// SyncCustomers pulls one page of customers and upserts them. Individual
// record failures are counted, not fatal.
func (s *Service) SyncCustomers(ctx context.Context, tenantID uuid.UUID) (Result, error) {
	store, err := s.creds.Resolve(ctx, tenantID)
	if err != nil {
		return Result{}, err
	}

	remote, err := s.client.GetCustomers(ctx, store, s.pageLimit)
	if err != nil {
		return Result{}, err
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(customerBatchSize)
	for _, rc := range remote {
		rc := rc
		g.Go(func() error {
			customer := CustomerFromRemote(tenantID, rc)
			if err := s.customers.Upsert(gctx, customer); err != nil {
				failed.Add(1)
				metrics.SyncRecords.WithLabelValues("customer", "failed").Inc()
				s.logger.Warn("customer upsert failed",
					"tenant_id", tenantID, "shopify_customer_id", customer.ShopifyCustomerID, "error", err)
				return nil
			}
			metrics.SyncRecords.WithLabelValues("customer", "synced").Inc()
			return nil
		})
	}
	_ = g.Wait()

	s.cache.ClearTenant(tenantID)
	return s.result("customers", tenantID, len(remote), int(failed.Load())), nil
}

// SyncProducts pulls one page of products and upserts them.
func (s *Service) SyncProducts(ctx context.Context, tenantID uuid.UUID) (Result, error) {
	store, err := s.creds.Resolve(ctx, tenantID)
	if err != nil {
		return Result{}, err
	}

	remote, err := s.client.GetProducts(ctx, store, s.pageLimit)
	if err != nil {
		return Result{}, err
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(productBatchSize)
	for _, rp := range remote {
		rp := rp
		g.Go(func() error {
			product := ProductFromRemote(tenantID, rp)
			if err := s.products.Upsert(gctx, product); err != nil {
				failed.Add(1)
				metrics.SyncRecords.WithLabelValues("product", "failed").Inc()
				s.logger.Warn("product upsert failed",
					"tenant_id", tenantID, "shopify_product_id", product.ShopifyProductID, "error", err)
				return nil
			}
			metrics.SyncRecords.WithLabelValues("product", "synced").Inc()
			return nil
		})
	}
	_ = g.Wait()

	s.cache.ClearTenant(tenantID)
	return s.result("products", tenantID, len(remote), int(failed.Load())), nil
}

// SyncOrders pulls one page of orders and upserts them, linking each to an
// already-synced customer where one matches. Orders whose customer is not
// known locally are stored unlinked rather than dropped.
func (s *Service) SyncOrders(ctx context.Context, tenantID uuid.UUID) (Result, error) {
	store, err := s.creds.Resolve(ctx, tenantID)
	if err != nil {
		return Result{}, err
	}

	remote, err := s.client.GetOrders(ctx, store, s.pageLimit)
	if err != nil {
		return Result{}, err
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(orderBatchSize)
	for _, ro := range remote {
		ro := ro
		g.Go(func() error {
			order := OrderFromRemote(tenantID, ro)
			order.CustomerID = s.resolveCustomer(gctx, tenantID, ro)
			if err := s.orders.Upsert(gctx, order); err != nil {
				failed.Add(1)
				metrics.SyncRecords.WithLabelValues("order", "failed").Inc()
				s.logger.Warn("order upsert failed",
					"tenant_id", tenantID, "shopify_order_id", order.ShopifyOrderID, "error", err)
				return nil
			}
			metrics.SyncRecords.WithLabelValues("order", "synced").Inc()
			return nil
		})
	}
	_ = g.Wait()

	s.cache.ClearTenant(tenantID)
	return s.result("orders", tenantID, len(remote), int(failed.Load())), nil
}

// SyncAll verifies connectivity, then syncs customers, products and orders
// in that order so orders can link to customers created in the same run.
func (s *Service) SyncAll(ctx context.Context, tenantID uuid.UUID) (*Summary, error) {
	store, err := s.creds.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	shop, err := s.client.GetShop(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("store connection check: %w", err)
	}

	summary := &Summary{Success: true, Shop: shop.Name}

	customers, err := s.SyncCustomers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	summary.Results = append(summary.Results, customers)

	products, err := s.SyncProducts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	summary.Results = append(summary.Results, products)

	orders, err := s.SyncOrders(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	summary.Results = append(summary.Results, orders)

	return summary, nil
}

// TestConnection checks that the tenant's credentials reach the store.
func (s *Service) TestConnection(ctx context.Context, tenantID uuid.UUID) (*shopify.Shop, error) {
	store, err := s.creds.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.client.GetShop(ctx, store)
}

func (s *Service) result(entity string, tenantID uuid.UUID, total, failed int) Result {
	res := Result{Success: true, Entity: entity, Synced: total - failed, Total: total, Failed: failed}
	s.logger.Info("sync finished",
		"tenant_id", tenantID, "entity", entity, "synced", res.Synced, "total", res.Total, "failed", res.Failed)
	return res
}

func (s *Service) resolveCustomer(ctx context.Context, tenantID uuid.UUID, ro shopify.Order) *uuid.UUID {
	if ro.Customer == nil {
		return nil
	}
	local, err := s.customers.GetByShopifyID(ctx, tenantID, strconv.FormatInt(ro.Customer.ID, 10))
	if err != nil {
		return nil
	}
	return &local.ID
}

// CustomerFromRemote maps a remote customer payload onto the local model.
func CustomerFromRemote(tenantID uuid.UUID, rc shopify.Customer) *domain.Customer {
	return &domain.Customer{
		ID:                uuid.New(),
		TenantID:          tenantID,
		ShopifyCustomerID: strconv.FormatInt(rc.ID, 10),
		Email:             rc.Email,
		FirstName:         rc.FirstName,
		LastName:          rc.LastName,
		Phone:             rc.Phone,
		TotalSpent:        parseMoney(rc.TotalSpent),
		OrdersCount:       rc.OrdersCount,
		AcceptsMarketing:  rc.AcceptsMarketing,
		State:             rc.State,
		CreatedAt:         rc.CreatedAt,
		UpdatedAt:         rc.UpdatedAt,
	}
}

// ProductFromRemote maps a remote product payload onto the local model.
// Price and inventory come from the first variant.
func ProductFromRemote(tenantID uuid.UUID, rp shopify.Product) *domain.Product {
	product := &domain.Product{
		ID:               uuid.New(),
		TenantID:         tenantID,
		ShopifyProductID: strconv.FormatInt(rp.ID, 10),
		Title:            rp.Title,
		Handle:           rp.Handle,
		Vendor:           rp.Vendor,
		ProductType:      rp.ProductType,
		Status:           rp.Status,
		CreatedAt:        rp.CreatedAt,
		UpdatedAt:        rp.UpdatedAt,
	}
	if len(rp.Variants) > 0 {
		v := rp.Variants[0]
		product.Price = parseMoney(v.Price)
		product.Inventory = v.InventoryQuantity
		if v.CompareAtPrice != "" {
			cap := parseMoney(v.CompareAtPrice)
			product.CompareAtPrice = &cap
		}
	}
	return product
}

// OrderFromRemote maps a remote order payload onto the local model. The
// customer link is left unset; callers resolve it against local data.
func OrderFromRemote(tenantID uuid.UUID, ro shopify.Order) *domain.Order {
	status := domain.OrderStatusOpen
	if ro.CancelledAt != nil {
		status = domain.OrderStatusCancelled
	}
	return &domain.Order{
		ID:                uuid.New(),
		TenantID:          tenantID,
		ShopifyOrderID:    strconv.FormatInt(ro.ID, 10),
		OrderNumber:       ro.Name,
		TotalPrice:        parseMoney(ro.TotalPrice),
		SubtotalPrice:     parseMoney(ro.SubtotalPrice),
		TaxAmount:         parseMoney(ro.TotalTax),
		DiscountAmount:    parseMoney(ro.TotalDiscounts),
		Currency:          ro.Currency,
		FinancialStatus:   ro.FinancialStatus,
		FulfillmentStatus: ro.FulfillmentStatus,
		OrderStatus:       status,
		ProcessedAt:       ro.ProcessedAt,
		CreatedAt:         ro.CreatedAt,
		UpdatedAt:         ro.UpdatedAt,
	}
}

func parseMoney(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
