package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shoplens/shoplens/internal/metrics"
	"github.com/shoplens/shoplens/pkg/cache"
	"github.com/shoplens/shoplens/pkg/domain"
	"github.com/shoplens/shoplens/pkg/repository"
	"github.com/shoplens/shoplens/pkg/shopify"
	"github.com/shoplens/shoplens/pkg/syncer"
)

// Processor applies incoming webhook payloads to the local database and
// invalidates the affected tenant's cache.
type Processor struct {
	tenants   *repository.TenantsRepository
	customers *repository.CustomersRepository
	products  *repository.ProductsRepository
	orders    *repository.OrdersRepository
	cache     *cache.Service
	queue     *Queue
	logger    *slog.Logger
}

// NewProcessor builds a webhook processor.
func NewProcessor(
	tenants *repository.TenantsRepository,
	customers *repository.CustomersRepository,
	products *repository.ProductsRepository,
	orders *repository.OrdersRepository,
	cacheSvc *cache.Service,
	queue *Queue,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		tenants:   tenants,
		customers: customers,
		products:  products,
		orders:    orders,
		cache:     cacheSvc,
		queue:     queue,
		logger:    logger,
	}
}

// Queue exposes the event log for the check endpoint.
func (p *Processor) Queue() *Queue {
	return p.queue
}

// Process records the delivery and applies the payload. Deliveries for
// unknown stores or topics are acknowledged and logged, never errored, so
// the sender does not retry them forever.
func (p *Processor) Process(ctx context.Context, topic, shopDomain string, payload []byte) Event {
	metrics.WebhookEvents.WithLabelValues(metricTopic(topic)).Inc()

	tenant, err := p.tenants.GetByShopDomain(ctx, shopDomain)
	if err != nil {
		note := "unknown store, ignored"
		if !errors.Is(err, domain.ErrTenantNotFound) {
			note = "tenant lookup failed"
			p.logger.Error("webhook tenant lookup failed", "shop_domain", shopDomain, "error", err)
		}
		return p.queue.Record(topic, shopDomain, note)
	}

	if err := p.apply(ctx, tenant, topic, payload); err != nil {
		p.logger.Error("webhook apply failed",
			"tenant_id", tenant.ID, "topic", topic, "error", err)
		return p.queue.Record(topic, shopDomain, "apply failed: "+err.Error())
	}

	p.cache.ClearTenant(tenant.ID)
	return p.queue.Record(topic, shopDomain, "")
}

// metricTopic restricts the metric label to the handled topic set. The topic
// header is sender-controlled, so anything else is bucketed as "other" to
// keep label cardinality bounded.
func metricTopic(topic string) string {
	switch topic {
	case "customers/create", "customers/update",
		"products/create", "products/update",
		"orders/create", "orders/updated", "orders/paid":
		return topic
	default:
		return "other"
	}
}

func (p *Processor) apply(ctx context.Context, tenant *domain.Tenant, topic string, payload []byte) error {
	switch topic {
	case "customers/create", "customers/update":
		var rc shopify.Customer
		if err := json.Unmarshal(payload, &rc); err != nil {
			return fmt.Errorf("decode customer payload: %w", err)
		}
		return p.customers.Upsert(ctx, syncer.CustomerFromRemote(tenant.ID, rc))

	case "products/create", "products/update":
		var rp shopify.Product
		if err := json.Unmarshal(payload, &rp); err != nil {
			return fmt.Errorf("decode product payload: %w", err)
		}
		return p.products.Upsert(ctx, syncer.ProductFromRemote(tenant.ID, rp))

	case "orders/create", "orders/updated", "orders/paid":
		var ro shopify.Order
		if err := json.Unmarshal(payload, &ro); err != nil {
			return fmt.Errorf("decode order payload: %w", err)
		}
		order := syncer.OrderFromRemote(tenant.ID, ro)
		if ro.Customer != nil {
			if local, err := p.customers.GetByShopifyID(ctx, tenant.ID, strconv.FormatInt(ro.Customer.ID, 10)); err == nil {
				order.CustomerID = &local.ID
			}
		}
		return p.orders.Upsert(ctx, order)

	default:
		p.logger.Info("webhook topic not handled", "tenant_id", tenant.ID, "topic", topic)
		return nil
	}
}
