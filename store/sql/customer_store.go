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

// CustomerStore converges customer rows keyed by the upstream Shopify id.
// Replayed deliveries land on the same row via the conflict clause.
type CustomerStore struct {
	db   *bun.DB
	repo repository.Repository[*customerRecord]
	now  func() time.Time
}

func NewCustomerStore(db *bun.DB) (*CustomerStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*customerRecord](db, customerHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid customer repository wiring: %w", err)
		}
	}
	return &CustomerStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *CustomerStore) Upsert(ctx context.Context, in core.UpsertCustomerInput) (core.Customer, error) {
	if s == nil || s.db == nil {
		return core.Customer{}, fmt.Errorf("sqlstore: customer store is not configured")
	}
	shopifyID := strings.TrimSpace(in.ShopifyCustomerID)
	if shopifyID == "" {
		return core.Customer{}, fmt.Errorf("sqlstore: shopify customer id is required")
	}

	now := s.now()
	createdAt := in.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	record := &customerRecord{
		ID:                uuid.NewString(),
		ShopifyCustomerID: shopifyID,
		Email:             strings.TrimSpace(in.Email),
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Phone:             strings.TrimSpace(in.Phone),
		AcceptsMarketing:  in.AcceptsMarketing,
		TotalSpent:        in.TotalSpent,
		OrdersCount:       in.OrdersCount,
		Tags:              copyTags(in.Tags),
		CreatedAt:         createdAt,
		UpdatedAt:         now,
		SyncedAt:          now,
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (shopify_customer_id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("first_name = EXCLUDED.first_name").
		Set("last_name = EXCLUDED.last_name").
		Set("phone = EXCLUDED.phone").
		Set("accepts_marketing = EXCLUDED.accepts_marketing").
		Set("total_spent = EXCLUDED.total_spent").
		Set("orders_count = EXCLUDED.orders_count").
		Set("tags = EXCLUDED.tags").
		Set("updated_at = EXCLUDED.updated_at").
		Set("synced_at = EXCLUDED.synced_at").
		Exec(ctx)
	if err != nil {
		return core.Customer{}, err
	}

	customer, _, err := s.GetByShopifyID(ctx, shopifyID)
	return customer, err
}

func (s *CustomerStore) GetByShopifyID(ctx context.Context, shopifyCustomerID string) (core.Customer, bool, error) {
	if s == nil || s.db == nil {
		return core.Customer{}, false, fmt.Errorf("sqlstore: customer store is not configured")
	}
	shopifyCustomerID = strings.TrimSpace(shopifyCustomerID)
	if shopifyCustomerID == "" {
		return core.Customer{}, false, fmt.Errorf("sqlstore: shopify customer id is required")
	}
	record := &customerRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.shopify_customer_id = ?", shopifyCustomerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Customer{}, false, nil
		}
		return core.Customer{}, false, err
	}
	return customerRecordToDomain(record), true, nil
}

func customerRecordToDomain(record *customerRecord) core.Customer {
	if record == nil {
		return core.Customer{}
	}
	return core.Customer{
		ID:                record.ID,
		ShopifyCustomerID: record.ShopifyCustomerID,
		Email:             record.Email,
		FirstName:         record.FirstName,
		LastName:          record.LastName,
		Phone:             record.Phone,
		AcceptsMarketing:  record.AcceptsMarketing,
		TotalSpent:        record.TotalSpent,
		OrdersCount:       record.OrdersCount,
		Tags:              copyTags(record.Tags),
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
		SyncedAt:          record.SyncedAt,
	}
}

func copyTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return append([]string(nil), tags...)
}

var _ core.CustomerStore = (*CustomerStore)(nil)
