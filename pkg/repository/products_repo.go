package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
)

// ProductsRepository handles synced product persistence.
type ProductsRepository struct {
	db *sql.DB
}

// NewProductsRepository creates a new products repository.
func NewProductsRepository(db *sql.DB) *ProductsRepository {
	return &ProductsRepository{db: db}
}

// Upsert inserts or updates a product keyed by (tenant_id, shopify_product_id).
func (r *ProductsRepository) Upsert(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (
			id, tenant_id, shopify_product_id, title, handle, vendor,
			product_type, price, compare_at_price, inventory, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (tenant_id, shopify_product_id) DO UPDATE SET
			title = EXCLUDED.title,
			handle = EXCLUDED.handle,
			vendor = EXCLUDED.vendor,
			product_type = EXCLUDED.product_type,
			price = EXCLUDED.price,
			compare_at_price = EXCLUDED.compare_at_price,
			inventory = EXCLUDED.inventory,
			status = EXCLUDED.status,
			updated_at = NOW()
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.TenantID, p.ShopifyProductID, p.Title, p.Handle, p.Vendor,
		p.ProductType, p.Price, p.CompareAtPrice, p.Inventory, p.Status,
		now, now,
	)
	return err
}

// CountByTenant returns the number of products for a tenant.
func (r *ProductsRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE tenant_id = $1`, tenantID,
	).Scan(&count)
	return count, err
}

// ListByTenant returns up to limit products for a tenant, newest first.
func (r *ProductsRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.Product, error) {
	query := `
		SELECT id, tenant_id, shopify_product_id, title, handle, vendor,
		       product_type, price, compare_at_price, inventory, status,
		       created_at, updated_at
		FROM products
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.TenantID, &p.ShopifyProductID, &p.Title, &p.Handle, &p.Vendor,
			&p.ProductType, &p.Price, &p.CompareAtPrice, &p.Inventory, &p.Status,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
