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

type ProductStore struct {
	db   *bun.DB
	repo repository.Repository[*productRecord]
	now  func() time.Time
}

func NewProductStore(db *bun.DB) (*ProductStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*productRecord](db, productHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid product repository wiring: %w", err)
		}
	}
	return &ProductStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *ProductStore) Upsert(ctx context.Context, in core.UpsertProductInput) (core.Product, error) {
	if s == nil || s.db == nil {
		return core.Product{}, fmt.Errorf("sqlstore: product store is not configured")
	}
	shopifyID := strings.TrimSpace(in.ShopifyProductID)
	if shopifyID == "" {
		return core.Product{}, fmt.Errorf("sqlstore: shopify product id is required")
	}

	now := s.now()
	createdAt := in.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	record := &productRecord{
		ID:               uuid.NewString(),
		ShopifyProductID: shopifyID,
		Title:            strings.TrimSpace(in.Title),
		Handle:           strings.TrimSpace(in.Handle),
		Description:      in.Description,
		ProductType:      strings.TrimSpace(in.ProductType),
		Vendor:           strings.TrimSpace(in.Vendor),
		Status:           strings.TrimSpace(in.Status),
		Tags:             copyTags(in.Tags),
		CreatedAt:        createdAt,
		UpdatedAt:        now,
		SyncedAt:         now,
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (shopify_product_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("handle = EXCLUDED.handle").
		Set("description = EXCLUDED.description").
		Set("product_type = EXCLUDED.product_type").
		Set("vendor = EXCLUDED.vendor").
		Set("status = EXCLUDED.status").
		Set("tags = EXCLUDED.tags").
		Set("updated_at = EXCLUDED.updated_at").
		Set("synced_at = EXCLUDED.synced_at").
		Exec(ctx)
	if err != nil {
		return core.Product{}, err
	}

	product, _, err := s.GetByShopifyID(ctx, shopifyID)
	return product, err
}

func (s *ProductStore) GetByShopifyID(ctx context.Context, shopifyProductID string) (core.Product, bool, error) {
	if s == nil || s.db == nil {
		return core.Product{}, false, fmt.Errorf("sqlstore: product store is not configured")
	}
	shopifyProductID = strings.TrimSpace(shopifyProductID)
	if shopifyProductID == "" {
		return core.Product{}, false, fmt.Errorf("sqlstore: shopify product id is required")
	}
	record := &productRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.shopify_product_id = ?", shopifyProductID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Product{}, false, nil
		}
		return core.Product{}, false, err
	}
	return productRecordToDomain(record), true, nil
}

func productRecordToDomain(record *productRecord) core.Product {
	if record == nil {
		return core.Product{}
	}
	return core.Product{
		ID:               record.ID,
		ShopifyProductID: record.ShopifyProductID,
		Title:            record.Title,
		Handle:           record.Handle,
		Description:      record.Description,
		ProductType:      record.ProductType,
		Vendor:           record.Vendor,
		Status:           record.Status,
		Tags:             copyTags(record.Tags),
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
		SyncedAt:         record.SyncedAt,
	}
}

var _ core.ProductStore = (*ProductStore)(nil)
