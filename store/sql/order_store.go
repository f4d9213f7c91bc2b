package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-commerce-webhooks/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type OrderStore struct {
	db   *bun.DB
	repo repository.Repository[*orderRecord]
	now  func() time.Time
}

func NewOrderStore(db *bun.DB) (*OrderStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*orderRecord](db, orderHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid order repository wiring: %w", err)
		}
	}
	return &OrderStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *OrderStore) Upsert(ctx context.Context, in core.UpsertOrderInput) (core.Order, error) {
	if s == nil || s.db == nil {
		return core.Order{}, fmt.Errorf("sqlstore: order store is not configured")
	}
	shopifyID := strings.TrimSpace(in.ShopifyOrderID)
	if shopifyID == "" {
		return core.Order{}, fmt.Errorf("sqlstore: shopify order id is required")
	}

	now := s.now()
	createdAt := in.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	record := &orderRecord{
		ID:                uuid.NewString(),
		ShopifyOrderID:    shopifyID,
		OrderNumber:       strings.TrimSpace(in.OrderNumber),
		CustomerEmail:     strings.TrimSpace(in.CustomerEmail),
		CustomerName:      strings.TrimSpace(in.CustomerName),
		TotalPrice:        in.TotalPrice,
		Currency:          strings.TrimSpace(in.Currency),
		FinancialStatus:   strings.TrimSpace(in.FinancialStatus),
		FulfillmentStatus: strings.TrimSpace(in.FulfillmentStatus),
		ShippingAddress:   append([]byte(nil), in.ShippingAddress...),
		BillingAddress:    append([]byte(nil), in.BillingAddress...),
		CreatedAt:         createdAt,
		UpdatedAt:         now,
		SyncedAt:          now,
	}
	if trimmed := strings.TrimSpace(in.CustomerID); trimmed != "" {
		record.CustomerID = &trimmed
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (shopify_order_id) DO UPDATE").
		Set("order_number = EXCLUDED.order_number").
		Set("customer_id = COALESCE(EXCLUDED.customer_id, o.customer_id)").
		Set("customer_email = EXCLUDED.customer_email").
		Set("customer_name = EXCLUDED.customer_name").
		Set("total_price = EXCLUDED.total_price").
		Set("currency = EXCLUDED.currency").
		Set("financial_status = EXCLUDED.financial_status").
		Set("fulfillment_status = EXCLUDED.fulfillment_status").
		Set("shipping_address = EXCLUDED.shipping_address").
		Set("billing_address = EXCLUDED.billing_address").
		Set("updated_at = EXCLUDED.updated_at").
		Set("synced_at = EXCLUDED.synced_at").
		Exec(ctx)
	if err != nil {
		return core.Order{}, err
	}

	order, _, err := s.GetByShopifyID(ctx, shopifyID)
	return order, err
}

// UpdateStatus patches the two status columns, keeping the stored value when
// the incoming one is blank. Rows affected answers whether the order exists.
func (s *OrderStore) UpdateStatus(ctx context.Context, shopifyOrderID string, financialStatus string, fulfillmentStatus string) (core.Order, bool, error) {
	if s == nil || s.db == nil {
		return core.Order{}, false, fmt.Errorf("sqlstore: order store is not configured")
	}
	shopifyOrderID = strings.TrimSpace(shopifyOrderID)
	if shopifyOrderID == "" {
		return core.Order{}, false, fmt.Errorf("sqlstore: shopify order id is required")
	}

	result, err := s.db.NewUpdate().
		Model((*orderRecord)(nil)).
		Set("financial_status = COALESCE(NULLIF(?, ''), financial_status)", strings.TrimSpace(financialStatus)).
		Set("fulfillment_status = COALESCE(NULLIF(?, ''), fulfillment_status)", strings.TrimSpace(fulfillmentStatus)).
		Set("updated_at = ?", s.now()).
		Where("shopify_order_id = ?", shopifyOrderID).
		Exec(ctx)
	if err != nil {
		return core.Order{}, false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return core.Order{}, false, err
	}
	if affected == 0 {
		return core.Order{}, false, nil
	}

	order, found, err := s.GetByShopifyID(ctx, shopifyOrderID)
	if err != nil {
		return core.Order{}, false, err
	}
	return order, found, nil
}

func (s *OrderStore) GetByShopifyID(ctx context.Context, shopifyOrderID string) (core.Order, bool, error) {
	if s == nil || s.db == nil {
		return core.Order{}, false, fmt.Errorf("sqlstore: order store is not configured")
	}
	shopifyOrderID = strings.TrimSpace(shopifyOrderID)
	if shopifyOrderID == "" {
		return core.Order{}, false, fmt.Errorf("sqlstore: shopify order id is required")
	}
	record := &orderRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.shopify_order_id = ?", shopifyOrderID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Order{}, false, nil
		}
		return core.Order{}, false, err
	}
	return orderRecordToDomain(record), true, nil
}

func orderRecordToDomain(record *orderRecord) core.Order {
	if record == nil {
		return core.Order{}
	}
	order := core.Order{
		ID:                record.ID,
		ShopifyOrderID:    record.ShopifyOrderID,
		OrderNumber:       record.OrderNumber,
		CustomerEmail:     record.CustomerEmail,
		CustomerName:      record.CustomerName,
		TotalPrice:        record.TotalPrice,
		Currency:          record.Currency,
		FinancialStatus:   record.FinancialStatus,
		FulfillmentStatus: record.FulfillmentStatus,
		ShippingAddress:   append([]byte(nil), record.ShippingAddress...),
		BillingAddress:    append([]byte(nil), record.BillingAddress...),
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
		SyncedAt:          record.SyncedAt,
	}
	if record.CustomerID != nil {
		order.CustomerID = strings.TrimSpace(*record.CustomerID)
	}
	return order
}

var _ core.OrderStore = (*OrderStore)(nil)
