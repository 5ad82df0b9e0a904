package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
)

// CustomersRepository handles synced customer persistence.
type CustomersRepository struct {
	db *sql.DB
}

// NewCustomersRepository creates a new customers repository.
func NewCustomersRepository(db *sql.DB) *CustomersRepository {
	return &CustomersRepository{db: db}
}

// Upsert inserts or updates a customer keyed by (tenant_id, shopify_customer_id).
// The second write for the same key overwrites the first's fields.
func (r *CustomersRepository) Upsert(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO customers (
			id, tenant_id, shopify_customer_id, email, first_name, last_name,
			phone, total_spent, orders_count, accepts_marketing, state,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (tenant_id, shopify_customer_id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			total_spent = EXCLUDED.total_spent,
			orders_count = EXCLUDED.orders_count,
			accepts_marketing = EXCLUDED.accepts_marketing,
			state = EXCLUDED.state,
			updated_at = NOW()
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.TenantID, c.ShopifyCustomerID, c.Email, c.FirstName, c.LastName,
		c.Phone, c.TotalSpent, c.OrdersCount, c.AcceptsMarketing, c.State,
		now, now,
	)
	return err
}

// GetByShopifyID retrieves a customer by its remote ID within a tenant.
func (r *CustomersRepository) GetByShopifyID(ctx context.Context, tenantID uuid.UUID, shopifyCustomerID string) (*domain.Customer, error) {
	query := `
		SELECT id, tenant_id, shopify_customer_id, email, first_name, last_name,
		       phone, total_spent, orders_count, accepts_marketing, state,
		       created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND shopify_customer_id = $2
	`
	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, tenantID, shopifyCustomerID).Scan(
		&c.ID, &c.TenantID, &c.ShopifyCustomerID, &c.Email, &c.FirstName, &c.LastName,
		&c.Phone, &c.TotalSpent, &c.OrdersCount, &c.AcceptsMarketing, &c.State,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByEmail returns the tenant's customer with exactly this email.
func (r *CustomersRepository) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*domain.Customer, error) {
	query := `
		SELECT id, tenant_id, shopify_customer_id, email, first_name, last_name,
		       phone, total_spent, orders_count, accepts_marketing, state,
		       created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND LOWER(email) = LOWER($2)
	`
	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, tenantID, email).Scan(
		&c.ID, &c.TenantID, &c.ShopifyCustomerID, &c.Email, &c.FirstName, &c.LastName,
		&c.Phone, &c.TotalSpent, &c.OrdersCount, &c.AcceptsMarketing, &c.State,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CountByTenant returns the number of customers for a tenant.
func (r *CustomersRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE tenant_id = $1`, tenantID,
	).Scan(&count)
	return count, err
}

// TopBySpend returns a tenant's customers ordered by total spend descending.
func (r *CustomersRepository) TopBySpend(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.Customer, error) {
	query := `
		SELECT id, tenant_id, shopify_customer_id, email, first_name, last_name,
		       phone, total_spent, orders_count, accepts_marketing, state,
		       created_at, updated_at
		FROM customers
		WHERE tenant_id = $1
		ORDER BY total_spent DESC
		LIMIT $2
	`
	return r.queryMany(ctx, query, tenantID, limit)
}

// MonthlyCohort is one month of customer acquisition aggregates.
type MonthlyCohort struct {
	Period             string
	NewCustomers       int
	ReturningCustomers int
	TotalSpent         float64
}

// CohortsByMonth groups a tenant's customers by creation month, newest first,
// capped at months rows. A customer counts as returning when it has more than
// one order.
func (r *CustomersRepository) CohortsByMonth(ctx context.Context, tenantID uuid.UUID, months int) ([]MonthlyCohort, error) {
	query := `
		SELECT to_char(created_at, 'YYYY-MM') AS period,
		       COUNT(*) AS new_customers,
		       COUNT(*) FILTER (WHERE orders_count > 1) AS returning_customers,
		       COALESCE(SUM(total_spent), 0) AS total_spent
		FROM customers
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

	var cohorts []MonthlyCohort
	for rows.Next() {
		var c MonthlyCohort
		if err := rows.Scan(&c.Period, &c.NewCustomers, &c.ReturningCustomers, &c.TotalSpent); err != nil {
			return nil, err
		}
		cohorts = append(cohorts, c)
	}
	return cohorts, rows.Err()
}

// Search returns a page of a tenant's customers matching the search term on
// email or name parts, ordered by total spend, plus the total match count.
func (r *CustomersRepository) Search(ctx context.Context, tenantID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error) {
	where := `WHERE tenant_id = $1`
	args := []any{tenantID}
	if search != "" {
		where += ` AND (email ILIKE $2 OR first_name ILIKE $2 OR last_name ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM customers ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, shopify_customer_id, email, first_name, last_name,
		       phone, total_spent, orders_count, accepts_marketing, state,
		       created_at, updated_at
		FROM customers
		%s
		ORDER BY total_spent DESC
		OFFSET $%d LIMIT $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	customers, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *CustomersRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		err := rows.Scan(
			&c.ID, &c.TenantID, &c.ShopifyCustomerID, &c.Email, &c.FirstName, &c.LastName,
			&c.Phone, &c.TotalSpent, &c.OrdersCount, &c.AcceptsMarketing, &c.State,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
