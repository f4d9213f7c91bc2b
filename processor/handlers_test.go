package processor

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/goliatone/go-commerce-webhooks/core"
	"github.com/goliatone/go-commerce-webhooks/notify"
)

type fakeStores struct {
	customers fakeCustomerStore
	products  fakeProductStore
	orders    fakeOrderStore
	inventory fakeInventoryStore
}

func (s *fakeStores) JobStore() core.JobStore               { return nil }
func (s *fakeStores) CustomerStore() core.CustomerStore     { return &s.customers }
func (s *fakeStores) ProductStore() core.ProductStore       { return &s.products }
func (s *fakeStores) OrderStore() core.OrderStore           { return &s.orders }
func (s *fakeStores) InventoryStore() core.InventoryStore   { return &s.inventory }
func (s *fakeStores) WebhookLogStore() core.WebhookLogStore { return nil }

type fakeCustomerStore struct {
	upserts []core.UpsertCustomerInput
}

func (s *fakeCustomerStore) Upsert(ctx context.Context, in core.UpsertCustomerInput) (core.Customer, error) {
	s.upserts = append(s.upserts, in)
	return core.Customer{ID: "cust-" + in.ShopifyCustomerID, ShopifyCustomerID: in.ShopifyCustomerID, Email: in.Email}, nil
}

func (s *fakeCustomerStore) GetByShopifyID(ctx context.Context, id string) (core.Customer, bool, error) {
	return core.Customer{}, false, nil
}

type fakeProductStore struct {
	upserts []core.UpsertProductInput
}

func (s *fakeProductStore) Upsert(ctx context.Context, in core.UpsertProductInput) (core.Product, error) {
	s.upserts = append(s.upserts, in)
	return core.Product{ID: "prod-" + in.ShopifyProductID, ShopifyProductID: in.ShopifyProductID, Title: in.Title}, nil
}

func (s *fakeProductStore) GetByShopifyID(ctx context.Context, id string) (core.Product, bool, error) {
	return core.Product{}, false, nil
}

type fakeOrderStore struct {
	upserts       []core.UpsertOrderInput
	statusUpdates []string
	known         map[string]core.Order
}

func (s *fakeOrderStore) Upsert(ctx context.Context, in core.UpsertOrderInput) (core.Order, error) {
	s.upserts = append(s.upserts, in)
	return core.Order{ID: "ord-" + in.ShopifyOrderID, ShopifyOrderID: in.ShopifyOrderID, OrderNumber: in.OrderNumber, CustomerID: in.CustomerID}, nil
}

func (s *fakeOrderStore) UpdateStatus(ctx context.Context, shopifyOrderID string, financial string, fulfillment string) (core.Order, bool, error) {
	s.statusUpdates = append(s.statusUpdates, shopifyOrderID)
	order, ok := s.known[shopifyOrderID]
	if !ok {
		return core.Order{}, false, nil
	}
	if financial != "" {
		order.FinancialStatus = financial
	}
	if fulfillment != "" {
		order.FulfillmentStatus = fulfillment
	}
	return order, true, nil
}

func (s *fakeOrderStore) GetByShopifyID(ctx context.Context, id string) (core.Order, bool, error) {
	order, ok := s.known[id]
	return order, ok, nil
}

type fakeInventoryStore struct {
	levels []core.InventoryLevel
}

func (s *fakeInventoryStore) UpsertLevel(ctx context.Context, itemID string, locationID string, available int) (core.InventoryLevel, error) {
	level := core.InventoryLevel{ID: "inv-" + itemID, InventoryItemID: itemID, LocationID: locationID, Available: available}
	s.levels = append(s.levels, level)
	return level, nil
}

func (s *fakeInventoryStore) ListLowStock(ctx context.Context, threshold int, limit int) ([]core.InventoryLevel, error) {
	return nil, nil
}

type captureNotifier struct {
	sent []core.Notification
}

func (n *captureNotifier) Send(ctx context.Context, notification core.Notification) error {
	n.sent = append(n.sent, notification)
	return nil
}

func newTestHandlers(t *testing.T, stores *fakeStores, options ...HandlersOption) (*Handlers, *captureNotifier) {
	t.Helper()
	sink := &captureNotifier{}
	options = append([]HandlersOption{WithHandlersNotifier(sink)}, options...)
	handlers, err := NewHandlers(stores, options...)
	if err != nil {
		t.Fatalf("new handlers: %v", err)
	}
	return handlers, sink
}

func jobWithPayload(t *testing.T, topic string, payload any) core.WebhookJob {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return core.WebhookJob{ID: "job-1", Topic: topic, SourceID: "wh-1", Payload: raw}
}

func TestHandleOrderCreateUpsertsCustomerThenOrder(t *testing.T) {
	stores := &fakeStores{}
	handlers, sink := newTestHandlers(t, stores)

	payload := core.OrderPayload{
		ID:         5001,
		Name:       "#1001",
		Email:      "buyer@example.com",
		TotalPrice: "42.50",
		Currency:   "USD",
		LineItems:  []core.OrderLineItemPayload{{ID: 1, Title: "Mug", Quantity: 1, Price: "42.50"}},
		Customer:   &core.CustomerPayload{ID: 77, Email: "buyer@example.com", FirstName: "Ada", LastName: "Byron"},
	}
	job := jobWithPayload(t, core.TopicOrdersCreate, payload)

	if err := handlers.HandleOrderCreate(context.Background(), job); err != nil {
		t.Fatalf("handle order create: %v", err)
	}
	if len(stores.customers.upserts) != 1 {
		t.Fatalf("expected customer upsert, got %d", len(stores.customers.upserts))
	}
	if len(stores.orders.upserts) != 1 {
		t.Fatalf("expected order upsert, got %d", len(stores.orders.upserts))
	}
	if got := stores.orders.upserts[0].CustomerID; got != "cust-77" {
		t.Fatalf("expected order linked to upserted customer, got %q", got)
	}
	if len(sink.sent) != 1 || sink.sent[0].Type != notify.TypeNewOrder {
		t.Fatalf("expected one new_order envelope, got %+v", sink.sent)
	}
}

func TestHandleOrderCreateWithoutCustomer(t *testing.T) {
	stores := &fakeStores{}
	handlers, _ := newTestHandlers(t, stores)

	job := jobWithPayload(t, core.TopicOrdersCreate, core.OrderPayload{ID: 5002, Name: "#1002"})
	if err := handlers.HandleOrderCreate(context.Background(), job); err != nil {
		t.Fatalf("handle order create: %v", err)
	}
	if len(stores.customers.upserts) != 0 {
		t.Fatalf("expected no customer upsert, got %d", len(stores.customers.upserts))
	}
	if len(stores.orders.upserts) != 1 {
		t.Fatalf("expected order upsert, got %d", len(stores.orders.upserts))
	}
}

func TestHandleOrderUpdateNotifiesOnlyOnPaidOrFulfilled(t *testing.T) {
	cases := []struct {
		name        string
		financial   string
		fulfillment string
		wantSent    bool
	}{
		{name: "paid", financial: "paid", wantSent: true},
		{name: "fulfilled", fulfillment: "fulfilled", wantSent: true},
		{name: "pending payment", financial: "pending", wantSent: false},
		{name: "partial fulfillment", fulfillment: "partial", wantSent: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stores := &fakeStores{}
			stores.orders.known = map[string]core.Order{
				"5001": {ID: "ord-5001", ShopifyOrderID: "5001", OrderNumber: "#1001"},
			}
			handlers, sink := newTestHandlers(t, stores)

			payload := core.OrderPayload{ID: 5001, Name: "#1001", FinancialStatus: tc.financial, FulfillmentStatus: tc.fulfillment}
			job := jobWithPayload(t, core.TopicOrdersUpdated, payload)
			if err := handlers.HandleOrderUpdate(context.Background(), job); err != nil {
				t.Fatalf("handle order update: %v", err)
			}

			if tc.wantSent {
				if len(sink.sent) != 1 || sink.sent[0].Type != notify.TypeOrderStatusUpdate {
					t.Fatalf("expected order_status_update envelope, got %+v", sink.sent)
				}
			} else if len(sink.sent) != 0 {
				t.Fatalf("expected no envelope, got %+v", sink.sent)
			}
		})
	}
}

func TestHandleOrderUpdateUnknownOrderIsNoop(t *testing.T) {
	stores := &fakeStores{}
	handlers, sink := newTestHandlers(t, stores)

	payload := core.OrderPayload{ID: 9999, FinancialStatus: "paid"}
	job := jobWithPayload(t, core.TopicOrdersUpdated, payload)
	if err := handlers.HandleOrderUpdate(context.Background(), job); err != nil {
		t.Fatalf("handle order update: %v", err)
	}
	if len(sink.sent) != 0 {
		t.Fatalf("expected no envelope for unknown order, got %+v", sink.sent)
	}
}

func TestHandleProductCreateNotifiesUpdateDoesNot(t *testing.T) {
	stores := &fakeStores{}
	handlers, sink := newTestHandlers(t, stores)

	payload := core.ProductPayload{ID: 301, Title: "Mug", Handle: "mug", Status: "active"}
	if err := handlers.HandleProductCreate(context.Background(), jobWithPayload(t, core.TopicProductsCreate, payload)); err != nil {
		t.Fatalf("handle product create: %v", err)
	}
	if len(sink.sent) != 1 || sink.sent[0].Type != notify.TypeNewProduct {
		t.Fatalf("expected new_product envelope, got %+v", sink.sent)
	}
	body, ok := sink.sent[0].Body.(notify.ProductBody)
	if !ok || body.ID != 301 || body.Title != "Mug" {
		t.Fatalf("expected envelope to carry the decoded product, got %+v", sink.sent[0].Body)
	}

	if err := handlers.HandleProductUpdate(context.Background(), jobWithPayload(t, core.TopicProductsUpdate, payload)); err != nil {
		t.Fatalf("handle product update: %v", err)
	}
	if len(sink.sent) != 1 {
		t.Fatalf("expected no envelope for product update, got %+v", sink.sent)
	}
	if len(stores.products.upserts) != 2 {
		t.Fatalf("expected 2 product upserts, got %d", len(stores.products.upserts))
	}
}

func TestHandleInventoryUpdateLowStockGate(t *testing.T) {
	cases := []struct {
		available int
		wantSent  bool
	}{
		{available: 0, wantSent: true},
		{available: 5, wantSent: true},
		{available: 6, wantSent: false},
		{available: 20, wantSent: false},
	}

	for _, tc := range cases {
		t.Run(strconv.Itoa(tc.available), func(t *testing.T) {
			stores := &fakeStores{}
			handlers, sink := newTestHandlers(t, stores)

			payload := core.InventoryLevelPayload{InventoryItemID: 88, LocationID: 9, Available: tc.available}
			job := jobWithPayload(t, core.TopicInventoryUpdate, payload)
			if err := handlers.HandleInventoryUpdate(context.Background(), job); err != nil {
				t.Fatalf("handle inventory update: %v", err)
			}

			if len(stores.inventory.levels) != 1 {
				t.Fatalf("expected level upsert, got %d", len(stores.inventory.levels))
			}
			if tc.wantSent {
				if len(sink.sent) != 1 || sink.sent[0].Type != notify.TypeLowStockAlert {
					t.Fatalf("expected low_stock_alert envelope, got %+v", sink.sent)
				}
			} else if len(sink.sent) != 0 {
				t.Fatalf("expected no envelope at %d available, got %+v", tc.available, sink.sent)
			}
		})
	}
}

func TestHandleCustomerCreate(t *testing.T) {
	stores := &fakeStores{}
	handlers, sink := newTestHandlers(t, stores)

	payload := core.CustomerPayload{ID: 42, Email: "new@example.com", FirstName: "Grace", LastName: "Hopper", AcceptsMarketing: true}
	job := jobWithPayload(t, core.TopicCustomersCreate, payload)
	if err := handlers.HandleCustomerCreate(context.Background(), job); err != nil {
		t.Fatalf("handle customer create: %v", err)
	}
	if len(stores.customers.upserts) != 1 {
		t.Fatalf("expected customer upsert, got %d", len(stores.customers.upserts))
	}
	if len(sink.sent) != 1 || sink.sent[0].Type != notify.TypeNewCustomer {
		t.Fatalf("expected new_customer envelope, got %+v", sink.sent)
	}
	body, ok := sink.sent[0].Body.(notify.CustomerBody)
	if !ok {
		t.Fatalf("expected CustomerBody, got %T", sink.sent[0].Body)
	}
	if body.Name != "Grace Hopper" || !body.AcceptsMarketing {
		t.Fatalf("unexpected customer body: %+v", body)
	}
}

func TestHandlersRejectMalformedPayloads(t *testing.T) {
	stores := &fakeStores{}
	handlers, _ := newTestHandlers(t, stores)
	bad := core.WebhookJob{ID: "job-1", Payload: json.RawMessage(`{not json`)}

	ctx := context.Background()
	if err := handlers.HandleOrderCreate(ctx, bad); err == nil {
		t.Fatal("expected error for malformed order payload")
	}
	if err := handlers.HandleProductCreate(ctx, bad); err == nil {
		t.Fatal("expected error for malformed product payload")
	}
	if err := handlers.HandleCustomerCreate(ctx, bad); err == nil {
		t.Fatal("expected error for malformed customer payload")
	}
}

func TestRegisterAllBindsEveryTopic(t *testing.T) {
	stores := &fakeStores{}
	handlers, _ := newTestHandlers(t, stores)

	registry := NewRegistry()
	if err := handlers.RegisterAll(registry); err != nil {
		t.Fatalf("register all: %v", err)
	}

	want := []string{
		core.TopicCustomersCreate,
		core.TopicInventoryUpdate,
		core.TopicOrdersCreate,
		core.TopicOrdersUpdated,
		core.TopicProductsCreate,
		core.TopicProductsUpdate,
	}
	got := registry.Topics()
	if len(got) != len(want) {
		t.Fatalf("expected %d topics, got %v", len(want), got)
	}
	for i, topic := range want {
		if got[i] != topic {
			t.Fatalf("expected topic %q at %d, got %q", topic, i, got[i])
		}
	}

	if err := handlers.RegisterAll(registry); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

var _ core.StoreProvider = (*fakeStores)(nil)
