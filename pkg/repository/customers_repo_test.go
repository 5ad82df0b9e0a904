package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/shoplens/shoplens/pkg/domain"
)

const customerUpsertPattern = `INSERT INTO customers .+ ON CONFLICT \(tenant_id, shopify_customer_id\) DO UPDATE SET`

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCustomersUpsertSecondWriteWins(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomersRepository(db)

	tenantID := uuid.New()
	customer := &domain.Customer{
		ID:                uuid.New(),
		TenantID:          tenantID,
		ShopifyCustomerID: "9001",
		Email:             "first@example.com",
		TotalSpent:        10,
		OrdersCount:       1,
		State:             "enabled",
	}

	// Both writes for the same (tenant, remote id) key run the conflict
	// update, so the second one overwrites rather than duplicating.
	mock.ExpectExec(customerUpsertPattern).
		WithArgs(customer.ID, tenantID, "9001", "first@example.com", "", "", "",
			10.0, 1, false, "enabled", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(customerUpsertPattern).
		WithArgs(customer.ID, tenantID, "9001", "updated@example.com", "", "", "",
			250.0, 4, false, "enabled", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), customer); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	customer.Email = "updated@example.com"
	customer.TotalSpent = 250
	customer.OrdersCount = 4
	if err := repo.Upsert(context.Background(), customer); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCustomersGetByShopifyIDMiss(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomersRepository(db)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM customers WHERE tenant_id = \$1 AND shopify_customer_id = \$2`).
		WithArgs(tenantID, "404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByShopifyID(context.Background(), tenantID, "404")
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("err = %v, want ErrCustomerNotFound", err)
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		t.Fatal("customer miss must not report a user error")
	}
}

func customerRow(c *domain.Customer) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "shopify_customer_id", "email", "first_name", "last_name",
		"phone", "total_spent", "orders_count", "accepts_marketing", "state",
		"created_at", "updated_at",
	}).AddRow(
		c.ID, c.TenantID, c.ShopifyCustomerID, c.Email, c.FirstName, c.LastName,
		c.Phone, c.TotalSpent, c.OrdersCount, c.AcceptsMarketing, c.State,
		time.Now(), time.Now(),
	)
}

func TestCustomersGetByEmailExactMatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomersRepository(db)
	tenantID := uuid.New()

	want := &domain.Customer{
		ID:                uuid.New(),
		TenantID:          tenantID,
		ShopifyCustomerID: "42",
		Email:             "jane@example.com",
		FirstName:         "Jane",
	}

	// The lookup filters on the email column itself, so name matches
	// cannot shadow it.
	mock.ExpectQuery(`SELECT .+ FROM customers WHERE tenant_id = \$1 AND LOWER\(email\) = LOWER\(\$2\)`).
		WithArgs(tenantID, "jane@example.com").
		WillReturnRows(customerRow(want))

	got, err := repo.GetByEmail(context.Background(), tenantID, "jane@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Email != want.Email || got.ID != want.ID {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCustomersGetByEmailMiss(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomersRepository(db)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM customers WHERE tenant_id = \$1 AND LOWER\(email\) = LOWER\(\$2\)`).
		WithArgs(tenantID, "nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), tenantID, "nobody@example.com")
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("err = %v, want ErrCustomerNotFound", err)
	}
}
