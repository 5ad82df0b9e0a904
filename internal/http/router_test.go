package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/shoplens/shoplens/pkg/analytics"
	"github.com/shoplens/shoplens/pkg/auth"
	"github.com/shoplens/shoplens/pkg/cache"
	"github.com/shoplens/shoplens/pkg/domain"
	"github.com/shoplens/shoplens/pkg/repository"
	"github.com/shoplens/shoplens/pkg/shopify"
	"github.com/shoplens/shoplens/pkg/syncer"
	"github.com/shoplens/shoplens/pkg/webhook"
)

// scenarioEnv wires the full router over a mocked database and a stub
// store API, the way main assembles the real process.
type scenarioEnv struct {
	router http.Handler
	mock   sqlmock.Sqlmock
}

func newScenarioEnv(t *testing.T, remote http.HandlerFunc) *scenarioEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	remoteServer := httptest.NewServer(remote)
	t.Cleanup(remoteServer.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cacheSvc, err := cache.New(cache.Config{Logger: logger})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { cacheSvc.Close() })

	tenantsRepo := repository.NewTenantsRepository(db)
	usersRepo := repository.NewUsersRepository(db)
	customersRepo := repository.NewCustomersRepository(db)
	productsRepo := repository.NewProductsRepository(db)
	ordersRepo := repository.NewOrdersRepository(db)

	client := shopify.NewClient(shopify.WithBaseURL(remoteServer.URL))
	creds := shopify.NewCredentialResolver(tenantsRepo, shopify.StoreConfig{})
	tokens := auth.NewTokenService(auth.SessionConfig{
		JWTSecret:  []byte("scenario-secret"),
		Issuer:     "test",
		SessionTTL: time.Hour,
	})

	queue := webhook.NewQueue(0)

	router := NewRouter(RouterConfig{
		Logger:            logger,
		AuthService:       auth.NewService(db, tenantsRepo, usersRepo),
		TokenService:      tokens,
		OTPStore:          auth.NewOTPStore(auth.DefaultOTPTTL),
		AnalyticsService:  analytics.New(customersRepo, productsRepo, ordersRepo, cacheSvc, client, creds, logger),
		SyncService:       syncer.New(client, creds, customersRepo, productsRepo, ordersRepo, cacheSvc, logger, 0),
		WebhookProcessor:  webhook.NewProcessor(tenantsRepo, customersRepo, productsRepo, ordersRepo, cacheSvc, queue, logger),
		CacheService:      cacheSvc,
		TenantsRepo:       tenantsRepo,
		UsersRepo:         usersRepo,
		CustomersRepo:     customersRepo,
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		MaxRequestBody:    1 << 20,
	})

	return &scenarioEnv{router: router, mock: mock}
}

func (e *scenarioEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func activeTenantRows(id uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "shop_domain", "access_token", "is_active", "created_at", "updated_at",
	}).AddRow(id, "Demo Store", "demo.myshopify.com", "shpat_test", true, time.Now(), time.Now())
}

func (e *scenarioEnv) expectDashboardQueries(customers, products int) {
	e.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers WHERE tenant_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(customers))
	e.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products WHERE tenant_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(products))
	e.mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(total_price\), 0\) FROM orders WHERE tenant_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(0, 0.0))
}

// The onboarding path end to end: register a store, log in, see an empty
// dashboard, sync customers, see the dashboard reflect the synced data.
func TestRegisterLoginSyncDashboardScenario(t *testing.T) {
	env := newScenarioEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"customers": []shopify.Customer{
			{ID: 1, Email: "buyer@example.com", TotalSpent: "99.00", OrdersCount: 3},
		}})
	})

	// Register: uniqueness checks, then tenant and owner in one transaction.
	env.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM tenants WHERE shop_domain = \$1\)`).
		WithArgs("demo.myshopify.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	env.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE email = \$1\)`).
		WithArgs("owner@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	env.mock.ExpectBegin()
	env.mock.ExpectExec(`INSERT INTO tenants`).WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	w := env.do(t, http.MethodPost, "/api/auth/register-tenant", "", map[string]string{
		"storeName":   "Demo Store",
		"shopDomain":  "demo.myshopify.com",
		"accessToken": "shpat_test",
		"email":       "owner@example.com",
		"password":    "secret123",
		"firstName":   "Olive",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	var registered struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Tenant struct {
			ID string `json:"id"`
		} `json:"tenant"`
	}
	decodeBody(t, w, &registered)
	tenantID := uuid.MustParse(registered.Tenant.ID)
	userID := uuid.MustParse(registered.User.ID)

	// Login with the registered credentials.
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	env.mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("owner@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "email", "password_hash", "first_name", "last_name",
			"role", "is_active", "created_at", "updated_at",
		}).AddRow(userID, tenantID, "owner@example.com", hash, "Olive", "",
			"ADMIN", true, time.Now(), time.Now()))
	env.mock.ExpectQuery(`SELECT .+ FROM tenants WHERE id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(activeTenantRows(tenantID))

	w = env.do(t, http.MethodPost, "/api/auth/login-tenant", "", map[string]string{
		"email":    "owner@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}

	var session struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &session)
	if session.Token == "" {
		t.Fatal("login returned no token")
	}

	// The dashboard starts empty.
	env.expectDashboardQueries(0, 0)
	w = env.do(t, http.MethodGet, "/api/dashboard/"+tenantID.String(), session.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body %s", w.Code, w.Body.String())
	}
	var empty struct {
		TotalCustomers int `json:"totalCustomers"`
	}
	decodeBody(t, w, &empty)
	if empty.TotalCustomers != 0 {
		t.Fatalf("empty dashboard customers = %d, want 0", empty.TotalCustomers)
	}

	// Sync pulls the store's customer and clears the cached dashboard.
	env.mock.ExpectQuery(`SELECT .+ FROM tenants WHERE id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(activeTenantRows(tenantID))
	env.mock.ExpectExec(`INSERT INTO customers`).WillReturnResult(sqlmock.NewResult(0, 1))

	w = env.do(t, http.MethodPost, "/api/sync/customers", session.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sync status = %d, body %s", w.Code, w.Body.String())
	}
	var syncResult struct {
		Success bool `json:"success"`
		Synced  int  `json:"synced"`
		Total   int  `json:"total"`
	}
	decodeBody(t, w, &syncResult)
	if !syncResult.Success || syncResult.Synced != 1 || syncResult.Total != 1 {
		t.Fatalf("sync result = %+v, want success with 1 of 1", syncResult)
	}

	// The dashboard now reflects the synced customer.
	env.expectDashboardQueries(1, 0)
	w = env.do(t, http.MethodGet, "/api/dashboard/"+tenantID.String(), session.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body %s", w.Code, w.Body.String())
	}
	var populated struct {
		TotalCustomers int `json:"totalCustomers"`
	}
	decodeBody(t, w, &populated)
	if populated.TotalCustomers != 1 {
		t.Fatalf("synced dashboard customers = %d, want 1", populated.TotalCustomers)
	}

	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Upstream failures on sync endpoints come back as 200 with success:false,
// so dashboard pollers read the outcome from the payload.
func TestSyncEndpointReportsUpstreamFailureInPayload(t *testing.T) {
	env := newScenarioEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	tenantID := uuid.New()
	token := issueScenarioToken(t, env, tenantID)

	env.mock.ExpectQuery(`SELECT .+ FROM tenants WHERE id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(activeTenantRows(tenantID))

	w := env.do(t, http.MethodPost, "/api/sync/customers", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with failure payload", w.Code)
	}

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeBody(t, w, &result)
	if result.Success {
		t.Fatal("success = true for a failed upstream fetch")
	}
	if result.Error == "" {
		t.Fatal("failure payload carries no error message")
	}
}

func issueScenarioToken(t *testing.T, env *scenarioEnv, tenantID uuid.UUID) string {
	t.Helper()

	tokens := auth.NewTokenService(auth.SessionConfig{
		JWTSecret:  []byte("scenario-secret"),
		Issuer:     "test",
		SessionTTL: time.Hour,
	})
	token, err := tokens.IssueToken(&domain.User{
		ID:       uuid.New(),
		TenantID: tenantID,
		Email:    "owner@example.com",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
