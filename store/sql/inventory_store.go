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

// InventoryStore keeps one row per (inventory item, location) pair; updates
// overwrite the available count in place.
type InventoryStore struct {
	db   *bun.DB
	repo repository.Repository[*inventoryLevelRecord]
	now  func() time.Time
}

func NewInventoryStore(db *bun.DB) (*InventoryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*inventoryLevelRecord](db, inventoryLevelHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid inventory repository wiring: %w", err)
		}
	}
	return &InventoryStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *InventoryStore) UpsertLevel(ctx context.Context, inventoryItemID string, locationID string, available int) (core.InventoryLevel, error) {
	if s == nil || s.db == nil {
		return core.InventoryLevel{}, fmt.Errorf("sqlstore: inventory store is not configured")
	}
	inventoryItemID = strings.TrimSpace(inventoryItemID)
	locationID = strings.TrimSpace(locationID)
	if inventoryItemID == "" || locationID == "" {
		return core.InventoryLevel{}, fmt.Errorf("sqlstore: inventory item id and location id are required")
	}

	record := &inventoryLevelRecord{
		ID:              uuid.NewString(),
		InventoryItemID: inventoryItemID,
		LocationID:      locationID,
		Available:       available,
		UpdatedAt:       s.now(),
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (inventory_item_id, location_id) DO UPDATE").
		Set("available = EXCLUDED.available").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return core.InventoryLevel{}, err
	}

	stored := &inventoryLevelRecord{}
	err = s.db.NewSelect().
		Model(stored).
		Where("?TableAlias.inventory_item_id = ?", inventoryItemID).
		Where("?TableAlias.location_id = ?", locationID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.InventoryLevel{}, fmt.Errorf("sqlstore: inventory level missing after upsert")
		}
		return core.InventoryLevel{}, err
	}
	return inventoryRecordToDomain(stored), nil
}

func (s *InventoryStore) ListLowStock(ctx context.Context, threshold int, limit int) ([]core.InventoryLevel, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: inventory store is not configured")
	}
	if threshold < 0 {
		threshold = 0
	}
	if limit <= 0 {
		limit = 50
	}
	var records []inventoryLevelRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.available <= ?", threshold).
		Order("available ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	levels := make([]core.InventoryLevel, 0, len(records))
	for i := range records {
		levels = append(levels, inventoryRecordToDomain(&records[i]))
	}
	return levels, nil
}

func inventoryRecordToDomain(record *inventoryLevelRecord) core.InventoryLevel {
	if record == nil {
		return core.InventoryLevel{}
	}
	return core.InventoryLevel{
		ID:              record.ID,
		InventoryItemID: record.InventoryItemID,
		LocationID:      record.LocationID,
		Available:       record.Available,
		UpdatedAt:       record.UpdatedAt,
	}
}

var _ core.InventoryStore = (*InventoryStore)(nil)
