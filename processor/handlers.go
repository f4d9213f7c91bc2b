package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-commerce-webhooks/core"
	"github.com/goliatone/go-commerce-webhooks/notify"
	glog "github.com/goliatone/go-logger/glog"
)

const DefaultLowStockThreshold = 5

// Handlers implements the six Shopify topics against the domain stores.
// Notifications are best effort: a sink failure is logged and never turns a
// successfully persisted job into a retry.
type Handlers struct {
	customers core.CustomerStore
	products  core.ProductStore
	orders    core.OrderStore
	inventory core.InventoryStore
	notifier  core.Notifier
	logger    core.Logger

	lowStockThreshold int
}

type HandlersOption func(*Handlers)

func WithHandlersNotifier(notifier core.Notifier) HandlersOption {
	return func(h *Handlers) {
		if notifier != nil {
			h.notifier = notifier
		}
	}
}

func WithHandlersLogger(logger core.Logger) HandlersOption {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithLowStockThreshold(threshold int) HandlersOption {
	return func(h *Handlers) {
		if threshold > 0 {
			h.lowStockThreshold = threshold
		}
	}
}

func NewHandlers(stores core.StoreProvider, options ...HandlersOption) (*Handlers, error) {
	if stores == nil {
		return nil, fmt.Errorf("processor: store provider is required")
	}
	_, logger := glog.Resolve("webhook-handlers", nil, nil)
	h := &Handlers{
		customers:         stores.CustomerStore(),
		products:          stores.ProductStore(),
		orders:            stores.OrderStore(),
		inventory:         stores.InventoryStore(),
		notifier:          notify.Nop{},
		logger:            logger,
		lowStockThreshold: DefaultLowStockThreshold,
	}
	for _, option := range options {
		if option != nil {
			option(h)
		}
	}
	if h.customers == nil || h.products == nil || h.orders == nil || h.inventory == nil {
		return nil, fmt.Errorf("processor: store provider is missing domain stores")
	}
	return h, nil
}

// RegisterAll binds every supported topic on the registry.
func (h *Handlers) RegisterAll(registry *Registry) error {
	if h == nil {
		return fmt.Errorf("processor: handlers are not configured")
	}
	if registry == nil {
		return fmt.Errorf("processor: registry is required")
	}
	bindings := map[string]HandlerFunc{
		core.TopicOrdersCreate:    h.HandleOrderCreate,
		core.TopicOrdersUpdated:   h.HandleOrderUpdate,
		core.TopicProductsCreate:  h.HandleProductCreate,
		core.TopicProductsUpdate:  h.HandleProductUpdate,
		core.TopicInventoryUpdate: h.HandleInventoryUpdate,
		core.TopicCustomersCreate: h.HandleCustomerCreate,
	}
	for topic, handler := range bindings {
		if err := registry.Register(topic, handler); err != nil {
			return err
		}
	}
	return nil
}

// HandleOrderCreate upserts the order's customer first so the order row can
// reference it, then upserts the order and emits the new_order envelope.
func (h *Handlers) HandleOrderCreate(ctx context.Context, job core.WebhookJob) error {
	var payload core.OrderPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("processor: decode order payload: %w", err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("processor: order payload is missing id")
	}

	customerID := ""
	if payload.Customer != nil && payload.Customer.ID != 0 {
		customer, err := h.customers.Upsert(ctx, payload.Customer.ToUpsertInput())
		if err != nil {
			return fmt.Errorf("processor: upsert order customer: %w", err)
		}
		customerID = customer.ID
	}

	order, err := h.orders.Upsert(ctx, payload.ToUpsertInput(customerID))
	if err != nil {
		return fmt.Errorf("processor: upsert order: %w", err)
	}

	h.sendNotification(ctx, notify.NewOrder(payload), "job_id", job.ID)
	h.logger.Info("order ingested",
		"job_id", job.ID,
		"order_id", order.ShopifyOrderID,
		"order_number", order.OrderNumber,
	)
	return nil
}

// HandleOrderUpdate patches the stored order's financial and fulfillment
// status. An order this system has never seen is skipped, not an error:
// Shopify replays updates for orders created before the integration existed.
// The status envelope only fires on paid or fulfilled.
func (h *Handlers) HandleOrderUpdate(ctx context.Context, job core.WebhookJob) error {
	var payload core.OrderPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("processor: decode order payload: %w", err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("processor: order payload is missing id")
	}

	shopifyOrderID := strconv.FormatInt(payload.ID, 10)
	order, found, err := h.orders.UpdateStatus(ctx, shopifyOrderID, payload.FinancialStatus, payload.FulfillmentStatus)
	if err != nil {
		return fmt.Errorf("processor: update order status: %w", err)
	}
	if !found {
		h.logger.Debug("order update skipped, order unknown", "job_id", job.ID, "order_id", shopifyOrderID)
		return nil
	}

	financial := strings.TrimSpace(strings.ToLower(payload.FinancialStatus))
	fulfillment := strings.TrimSpace(strings.ToLower(payload.FulfillmentStatus))
	if financial == "paid" || fulfillment == "fulfilled" {
		h.sendNotification(ctx, notify.OrderStatusUpdate(payload), "job_id", job.ID)
	}
	h.logger.Info("order status updated",
		"job_id", job.ID,
		"order_id", order.ShopifyOrderID,
		"financial_status", order.FinancialStatus,
		"fulfillment_status", order.FulfillmentStatus,
	)
	return nil
}

func (h *Handlers) HandleProductCreate(ctx context.Context, job core.WebhookJob) error {
	product, payload, err := h.upsertProduct(ctx, job)
	if err != nil {
		return err
	}
	h.sendNotification(ctx, notify.NewProduct(payload), "job_id", job.ID)
	h.logger.Info("product ingested", "job_id", job.ID, "product_id", product.ShopifyProductID)
	return nil
}

// HandleProductUpdate converges the product row; updates carry no envelope.
func (h *Handlers) HandleProductUpdate(ctx context.Context, job core.WebhookJob) error {
	product, _, err := h.upsertProduct(ctx, job)
	if err != nil {
		return err
	}
	h.logger.Info("product updated", "job_id", job.ID, "product_id", product.ShopifyProductID)
	return nil
}

func (h *Handlers) upsertProduct(ctx context.Context, job core.WebhookJob) (core.Product, core.ProductPayload, error) {
	var payload core.ProductPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return core.Product{}, payload, fmt.Errorf("processor: decode product payload: %w", err)
	}
	if payload.ID == 0 {
		return core.Product{}, payload, fmt.Errorf("processor: product payload is missing id")
	}
	product, err := h.products.Upsert(ctx, payload.ToUpsertInput())
	if err != nil {
		return core.Product{}, payload, fmt.Errorf("processor: upsert product: %w", err)
	}
	return product, payload, nil
}

// HandleInventoryUpdate records the new level and raises a low stock alert
// when the available count is at or below the threshold.
func (h *Handlers) HandleInventoryUpdate(ctx context.Context, job core.WebhookJob) error {
	var payload core.InventoryLevelPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("processor: decode inventory payload: %w", err)
	}
	if payload.InventoryItemID == 0 {
		return fmt.Errorf("processor: inventory payload is missing inventory item id")
	}

	level, err := h.inventory.UpsertLevel(ctx,
		strconv.FormatInt(payload.InventoryItemID, 10),
		strconv.FormatInt(payload.LocationID, 10),
		payload.Available,
	)
	if err != nil {
		return fmt.Errorf("processor: upsert inventory level: %w", err)
	}

	if payload.Available <= h.threshold() {
		h.sendNotification(ctx, notify.LowStockAlert(payload), "job_id", job.ID)
	}
	h.logger.Info("inventory level updated",
		"job_id", job.ID,
		"inventory_item_id", level.InventoryItemID,
		"available", level.Available,
	)
	return nil
}

func (h *Handlers) HandleCustomerCreate(ctx context.Context, job core.WebhookJob) error {
	var payload core.CustomerPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("processor: decode customer payload: %w", err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("processor: customer payload is missing id")
	}

	customer, err := h.customers.Upsert(ctx, payload.ToUpsertInput())
	if err != nil {
		return fmt.Errorf("processor: upsert customer: %w", err)
	}

	h.sendNotification(ctx, notify.NewCustomer(payload), "job_id", job.ID)
	h.logger.Info("customer ingested", "job_id", job.ID, "customer_id", customer.ShopifyCustomerID)
	return nil
}

func (h *Handlers) sendNotification(ctx context.Context, n core.Notification, args ...any) {
	if h == nil || h.notifier == nil {
		return
	}
	if err := h.notifier.Send(ctx, n); err != nil {
		fields := append([]any{"type", n.Type, "error", err.Error()}, args...)
		h.logger.Warn("notification delivery failed", fields...)
	}
}

func (h *Handlers) threshold() int {
	if h != nil && h.lowStockThreshold > 0 {
		return h.lowStockThreshold
	}
	return DefaultLowStockThreshold
}
