// Package analytics computes the dashboard queries over synced data,
// fronted by the tenant-namespaced cache. Every query degrades to a
// zeroed result set for tenants with no data rather than erroring.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens/pkg/cache"
	"github.com/shoplens/shoplens/pkg/domain"
	"github.com/shoplens/shoplens/pkg/repository"
	"github.com/shoplens/shoplens/pkg/shopify"
)

// Query result lifetimes. Aggregates that change on every sync get short
// TTLs; slower-moving cohort views keep theirs longer.
const (
	dashboardTTL     = 5 * time.Minute
	ordersByDateTTL  = 10 * time.Minute
	topCustomersTTL  = 15 * time.Minute
	salesTTL         = 10 * time.Minute
	behaviorTTL      = 20 * time.Minute
	productPerfTTL   = 10 * time.Minute
	abandonmentTTL   = 10 * time.Minute
	fallbackTTL      = time.Minute
)

const (
	ordersByDateLimit   = 30
	defaultTopCustomers = 5
	salesMonths         = 12
	behaviorMonths      = 12
	productPerfLimit    = 10
	checkoutFetchLimit  = 250
	abandonmentDailyMax = 30
)

// Service answers dashboard analytics queries for one tenant at a time.
type Service struct {
	customers *repository.CustomersRepository
	products  *repository.ProductsRepository
	orders    *repository.OrdersRepository
	cache     *cache.Service
	client    *shopify.Client
	creds     *shopify.CredentialResolver
	logger    *slog.Logger

	// fetchAbandonment pulls the remote collections behind CartAbandonment.
	// Tests in this package replace it to avoid a live credential lookup.
	fetchAbandonment func(ctx context.Context, tenantID uuid.UUID) ([]shopify.Checkout, []shopify.Order, error)
}

// New builds the analytics service.
func New(
	customers *repository.CustomersRepository,
	products *repository.ProductsRepository,
	orders *repository.OrdersRepository,
	cacheSvc *cache.Service,
	client *shopify.Client,
	creds *shopify.CredentialResolver,
	logger *slog.Logger,
) *Service {
	s := &Service{
		customers: customers,
		products:  products,
		orders:    orders,
		cache:     cacheSvc,
		client:    client,
		creds:     creds,
		logger:    logger,
	}
	s.fetchAbandonment = s.fetchAbandonmentRemote
	return s
}

// DashboardStats returns the tenant's headline counts and revenue.
func (s *Service) DashboardStats(ctx context.Context, tenantID uuid.UUID) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if s.cache.Get(tenantID, "dashboard", nil, &stats) {
		return &stats, nil
	}

	customerCount, err := s.customers.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	productCount, err := s.products.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	totals, err := s.orders.TotalsByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("order totals: %w", err)
	}

	stats = domain.DashboardStats{
		TotalCustomers: customerCount,
		TotalProducts:  productCount,
		TotalOrders:    totals.Count,
		TotalRevenue:   round2(totals.Revenue),
	}
	s.cache.Set(tenantID, "dashboard", nil, stats, dashboardTTL)
	return &stats, nil
}

// OrdersByDate returns daily order volume within an optional date range,
// newest day first, capped at 30 rows.
func (s *Service) OrdersByDate(ctx context.Context, tenantID uuid.UUID, start, end *time.Time) ([]domain.OrdersByDateRow, error) {
	params := rangeParams(start, end)

	rows := []domain.OrdersByDateRow{}
	if s.cache.Get(tenantID, "orders_by_date", params, &rows) {
		return rows, nil
	}

	daily, err := s.orders.GroupByDate(ctx, tenantID, start, end, ordersByDateLimit)
	if err != nil {
		return nil, fmt.Errorf("orders by date: %w", err)
	}

	rows = make([]domain.OrdersByDateRow, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, domain.OrdersByDateRow{
			Date:       d.Date.Format("2006-01-02"),
			OrderCount: d.Count,
			Revenue:    round2(d.Revenue),
		})
	}
	s.cache.Set(tenantID, "orders_by_date", params, rows, ordersByDateTTL)
	return rows, nil
}

// TopCustomers returns the tenant's highest spenders. limit of zero or
// less uses the default of 5.
func (s *Service) TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.TopCustomer, error) {
	if limit <= 0 {
		limit = defaultTopCustomers
	}
	params := map[string]string{"limit": strconv.Itoa(limit)}

	rows := []domain.TopCustomer{}
	if s.cache.Get(tenantID, "top_customers", params, &rows) {
		return rows, nil
	}

	customers, err := s.customers.TopBySpend(ctx, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}

	rows = make([]domain.TopCustomer, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, domain.TopCustomer{
			ID:          c.ID.String(),
			Email:       c.Email,
			Name:        c.DisplayName(),
			TotalSpent:  round2(c.TotalSpent),
			OrdersCount: c.OrdersCount,
		})
	}
	s.cache.Set(tenantID, "top_customers", params, rows, topCustomersTTL)
	return rows, nil
}

// SalesPerformance returns twelve months of revenue breakdown, newest first.
func (s *Service) SalesPerformance(ctx context.Context, tenantID uuid.UUID) ([]domain.SalesPerformanceRow, error) {
	rows := []domain.SalesPerformanceRow{}
	if s.cache.Get(tenantID, "sales_performance", nil, &rows) {
		return rows, nil
	}

	monthly, err := s.orders.SalesByMonth(ctx, tenantID, salesMonths)
	if err != nil {
		return nil, fmt.Errorf("sales performance: %w", err)
	}

	rows = make([]domain.SalesPerformanceRow, 0, len(monthly))
	for _, m := range monthly {
		rows = append(rows, domain.SalesPerformanceRow{
			Period:       m.Period,
			GrossRevenue: round2(m.GrossRevenue),
			Discounts:    round2(m.Discounts),
			NetRevenue:   round2(m.GrossRevenue - m.Discounts),
			OrderCount:   m.OrderCount,
		})
	}
	s.cache.Set(tenantID, "sales_performance", nil, rows, salesTTL)
	return rows, nil
}

// CustomerBehavior returns monthly acquisition cohorts with per-cohort
// lifetime value. Months that acquired no customers report zero lifetime
// value instead of dividing by zero.
func (s *Service) CustomerBehavior(ctx context.Context, tenantID uuid.UUID) ([]domain.CustomerBehaviorRow, error) {
	rows := []domain.CustomerBehaviorRow{}
	if s.cache.Get(tenantID, "customer_behavior", nil, &rows) {
		return rows, nil
	}

	cohorts, err := s.customers.CohortsByMonth(ctx, tenantID, behaviorMonths)
	if err != nil {
		return nil, fmt.Errorf("customer behavior: %w", err)
	}

	rows = make([]domain.CustomerBehaviorRow, 0, len(cohorts))
	for _, c := range cohorts {
		ltv := 0.0
		if c.NewCustomers > 0 {
			ltv = round2(c.TotalSpent / float64(c.NewCustomers))
		}
		rows = append(rows, domain.CustomerBehaviorRow{
			Period:             c.Period,
			NewCustomers:       c.NewCustomers,
			ReturningCustomers: c.ReturningCustomers,
			TotalSpent:         round2(c.TotalSpent),
			LifetimeValue:      ltv,
		})
	}
	s.cache.Set(tenantID, "customer_behavior", nil, rows, behaviorTTL)
	return rows, nil
}

// ProductPerformance returns the tenant's products with current price and
// inventory. Units sold and per-product revenue stay zero until line items
// are synced.
func (s *Service) ProductPerformance(ctx context.Context, tenantID uuid.UUID) ([]domain.ProductPerformanceRow, error) {
	rows := []domain.ProductPerformanceRow{}
	if s.cache.Get(tenantID, "product_performance", nil, &rows) {
		return rows, nil
	}

	products, err := s.products.ListByTenant(ctx, tenantID, productPerfLimit)
	if err != nil {
		return nil, fmt.Errorf("product performance: %w", err)
	}

	rows = make([]domain.ProductPerformanceRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, domain.ProductPerformanceRow{
			Name:      p.Title,
			Inventory: p.Inventory,
		})
	}
	s.cache.Set(tenantID, "product_performance", nil, rows, productPerfTTL)
	return rows, nil
}

// CustomerList returns one page of the tenant's customers with optional
// search over email and name. List pages are not cached; the underlying
// query is cheap and the permutation space is large.
func (s *Service) CustomerList(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]domain.CustomerListRow, domain.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	customers, total, err := s.customers.Search(ctx, tenantID, search, (page-1)*limit, limit)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("customer list: %w", err)
	}

	rows := make([]domain.CustomerListRow, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, domain.CustomerListRow{
			ID:          c.ID.String(),
			Email:       c.Email,
			Name:        c.DisplayName(),
			TotalSpent:  round2(c.TotalSpent),
			OrdersCount: c.OrdersCount,
			JoinedDate:  c.CreatedAt.Format("2006-01-02"),
		})
	}

	totalPages := (total + limit - 1) / limit
	pagination := domain.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
	return rows, pagination, nil
}

// CartAbandonment aggregates the remote abandoned-checkout and completed-order
// collections. The checkouts endpoint only serves carts that were never
// completed, so completed volume comes from the orders endpoint. When either
// remote call fails the zeroed payload is cached for one minute so a flapping
// store does not hammer the API.
func (s *Service) CartAbandonment(ctx context.Context, tenantID uuid.UUID) (*domain.CartAbandonmentStats, error) {
	var stats domain.CartAbandonmentStats
	if s.cache.Get(tenantID, "cart_abandonment", nil, &stats) {
		return &stats, nil
	}

	checkouts, orders, err := s.fetchAbandonment(ctx, tenantID)
	if err != nil {
		s.logger.Warn("cart abandonment fetch failed, serving zeroed stats",
			"tenant_id", tenantID, "error", err)
		stats = domain.CartAbandonmentStats{Daily: []domain.CartAbandonmentDay{}}
		s.cache.Set(tenantID, "cart_abandonment", nil, stats, fallbackTTL)
		return &stats, nil
	}

	stats = buildAbandonmentStats(checkouts, orders)
	s.cache.Set(tenantID, "cart_abandonment", nil, stats, abandonmentTTL)
	return &stats, nil
}

func (s *Service) fetchAbandonmentRemote(ctx context.Context, tenantID uuid.UUID) ([]shopify.Checkout, []shopify.Order, error) {
	store, err := s.creds.Resolve(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	checkouts, err := s.client.GetCheckouts(ctx, store, checkoutFetchLimit)
	if err != nil {
		return nil, nil, err
	}
	orders, err := s.client.GetOrders(ctx, store, checkoutFetchLimit)
	if err != nil {
		return nil, nil, err
	}
	return checkouts, orders, nil
}

// buildAbandonmentStats treats every fetched checkout as abandoned and every
// fetched order as a completed checkout, so the rate is
// abandoned / (abandoned + completed).
func buildAbandonmentStats(checkouts []shopify.Checkout, orders []shopify.Order) domain.CartAbandonmentStats {
	type bucket struct {
		abandoned int
		completed int
		value     float64
	}
	days := map[string]*bucket{}
	dayFor := func(t time.Time) *bucket {
		day := t.Format("2006-01-02")
		b, ok := days[day]
		if !ok {
			b = &bucket{}
			days[day] = b
		}
		return b
	}

	summary := domain.CartAbandonmentSummary{}
	for _, c := range checkouts {
		b := dayFor(c.CreatedAt)
		b.abandoned++
		value := 0.0
		if v, err := strconv.ParseFloat(c.TotalPrice, 64); err == nil {
			value = v
		}
		b.value += value
		summary.TotalAbandoned++
		summary.AbandonedValue += value
	}
	for _, o := range orders {
		dayFor(o.CreatedAt).completed++
		summary.TotalCompleted++
	}

	summary.TotalStarted = summary.TotalAbandoned + summary.TotalCompleted
	summary.AbandonedValue = round2(summary.AbandonedValue)
	if summary.TotalStarted > 0 {
		summary.AbandonmentRate = round2(float64(summary.TotalAbandoned) / float64(summary.TotalStarted) * 100)
	}

	dates := make([]string, 0, len(days))
	for day := range days {
		dates = append(dates, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > abandonmentDailyMax {
		dates = dates[:abandonmentDailyMax]
	}

	daily := make([]domain.CartAbandonmentDay, 0, len(dates))
	for _, day := range dates {
		b := days[day]
		started := b.abandoned + b.completed
		rate := 0.0
		if started > 0 {
			rate = round2(float64(b.abandoned) / float64(started) * 100)
		}
		daily = append(daily, domain.CartAbandonmentDay{
			Date:                day,
			AbandonedCarts:      b.abandoned,
			CheckoutsStarted:    started,
			CheckoutsCompleted:  b.completed,
			AbandonmentRate:     rate,
			TotalValueAbandoned: round2(b.value),
		})
	}

	return domain.CartAbandonmentStats{Summary: summary, Daily: daily}
}

func rangeParams(start, end *time.Time) map[string]string {
	params := map[string]string{}
	if start != nil {
		params["start"] = start.Format("2006-01-02")
	}
	if end != nil {
		params["end"] = end.Format("2006-01-02")
	}
	return params
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
