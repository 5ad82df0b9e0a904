package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
)

// OrdersRepository handles synced order persistence.
type OrdersRepository struct {
	db *sql.DB
}

// NewOrdersRepository creates a new orders repository.
func NewOrdersRepository(db *sql.DB) *OrdersRepository {
	return &OrdersRepository{db: db}
}

// Upsert inserts or updates an order keyed by (tenant_id, shopify_order_id).
// CustomerID may be nil when the referenced customer is not synced locally.
func (r *OrdersRepository) Upsert(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, tenant_id, shopify_order_id, customer_id, order_number,
			total_price, subtotal_price, tax_amount, discount_amount, currency,
			financial_status, fulfillment_status, order_status, processed_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (tenant_id, shopify_order_id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			order_number = EXCLUDED.order_number,
			total_price = EXCLUDED.total_price,
			subtotal_price = EXCLUDED.subtotal_price,
			tax_amount = EXCLUDED.tax_amount,
			discount_amount = EXCLUDED.discount_amount,
			currency = EXCLUDED.currency,
			financial_status = EXCLUDED.financial_status,
			fulfillment_status = EXCLUDED.fulfillment_status,
			order_status = EXCLUDED.order_status,
			processed_at = EXCLUDED.processed_at,
			updated_at = NOW()
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.TenantID, o.ShopifyOrderID, o.CustomerID, o.OrderNumber,
		o.TotalPrice, o.SubtotalPrice, o.TaxAmount, o.DiscountAmount, o.Currency,
		o.FinancialStatus, o.FulfillmentStatus, o.OrderStatus, o.ProcessedAt,
		now, now,
	)
	return err
}

// OrderTotals holds tenant-wide order aggregates.
type OrderTotals struct {
	Count   int
	Revenue float64
}

// TotalsByTenant returns the order count and revenue sum for a tenant.
// A tenant with no orders yields zero values, not an error.
func (r *OrdersRepository) TotalsByTenant(ctx context.Context, tenantID uuid.UUID) (OrderTotals, error) {
	var totals OrderTotals
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_price), 0) FROM orders WHERE tenant_id = $1`,
		tenantID,
	).Scan(&totals.Count, &totals.Revenue)
	return totals, err
}

// DailyOrders is one day of order aggregates.
type DailyOrders struct {
	Date    time.Time
	Count   int
	Revenue float64
}

// GroupByDate groups a tenant's orders by creation date within an optional
// range, newest first, capped at limit rows.
func (r *OrdersRepository) GroupByDate(ctx context.Context, tenantID uuid.UUID, start, end *time.Time, limit int) ([]DailyOrders, error) {
	query := `
		SELECT created_at::date AS day, COUNT(*), COALESCE(SUM(total_price), 0)
		FROM orders
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		GROUP BY day
		ORDER BY day DESC
		LIMIT $4
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []DailyOrders
	for rows.Next() {
		var d DailyOrders
		if err := rows.Scan(&d.Date, &d.Count, &d.Revenue); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// MonthlySales is one month of revenue aggregates.
type MonthlySales struct {
	Period       string
	GrossRevenue float64
	Discounts    float64
	OrderCount   int
}

// SalesByMonth groups a tenant's orders by creation month, newest first,
// capped at months rows.
func (r *OrdersRepository) SalesByMonth(ctx context.Context, tenantID uuid.UUID, months int) ([]MonthlySales, error) {
	query := `
		SELECT to_char(created_at, 'YYYY-MM') AS period,
		       COALESCE(SUM(total_price), 0),
		       COALESCE(SUM(discount_amount), 0),
		       COUNT(*)
		FROM orders
		WHERE tenant_id = $1
		GROUP BY period
		ORDER BY period DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []MonthlySales
	for rows.Next() {
		var s MonthlySales
		if err := rows.Scan(&s.Period, &s.GrossRevenue, &s.Discounts, &s.OrderCount); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
