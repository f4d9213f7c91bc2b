package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-commerce-webhooks/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WebhookLogStore is the append-only ledger of processing attempts. It is
// intentionally separate from webhook_jobs so history survives queue
// cleanup.
type WebhookLogStore struct {
	db   *bun.DB
	repo repository.Repository[*webhookLogRecord]
	now  func() time.Time
}

func NewWebhookLogStore(db *bun.DB) (*WebhookLogStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*webhookLogRecord](db, webhookLogHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid webhook log repository wiring: %w", err)
		}
	}
	return &WebhookLogStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *WebhookLogStore) Record(ctx context.Context, entry core.WebhookLogEntry) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: webhook log store is not configured")
	}
	topic := strings.TrimSpace(entry.Topic)
	if topic == "" {
		return fmt.Errorf("sqlstore: webhook log topic is required")
	}
	processedAt := entry.ProcessedAt.UTC()
	if processedAt.IsZero() {
		processedAt = s.now()
	}
	record := &webhookLogRecord{
		ID:           uuid.NewString(),
		Topic:        topic,
		SourceID:     strings.TrimSpace(entry.SourceID),
		Status:       string(entry.Status),
		ErrorMessage: strings.TrimSpace(entry.ErrorMessage),
		RetryCount:   entry.RetryCount,
		ProcessedAt:  processedAt,
	}
	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *WebhookLogStore) List(ctx context.Context, limit int) ([]core.WebhookLogEntry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: webhook log store is not configured")
	}
	if limit <= 0 {
		limit = 100
	}
	var records []webhookLogRecord
	err := s.db.NewSelect().
		Model(&records).
		Order("processed_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]core.WebhookLogEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, core.WebhookLogEntry{
			ID:           record.ID,
			Topic:        record.Topic,
			SourceID:     record.SourceID,
			Status:       core.WebhookLogStatus(record.Status),
			ErrorMessage: record.ErrorMessage,
			RetryCount:   record.RetryCount,
			ProcessedAt:  record.ProcessedAt,
		})
	}
	return entries, nil
}

func (s *WebhookLogStore) Stats(ctx context.Context, since time.Time) ([]core.WebhookStat, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: webhook log store is not configured")
	}
	var rows []struct {
		Topic         string    `bun:"topic"`
		Status        string    `bun:"status"`
		Count         int       `bun:"count"`
		LastProcessed time.Time `bun:"last_processed"`
	}
	err := s.db.NewSelect().
		Model((*webhookLogRecord)(nil)).
		ColumnExpr("?TableAlias.topic AS topic").
		ColumnExpr("?TableAlias.status AS status").
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("MAX(?TableAlias.processed_at) AS last_processed").
		Where("?TableAlias.processed_at >= ?", since.UTC()).
		GroupExpr("?TableAlias.topic, ?TableAlias.status").
		OrderExpr("topic ASC, status ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	stats := make([]core.WebhookStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, core.WebhookStat{
			Topic:         row.Topic,
			Status:        core.WebhookLogStatus(row.Status),
			Count:         row.Count,
			LastProcessed: row.LastProcessed,
		})
	}
	return stats, nil
}

var _ core.WebhookLogStore = (*WebhookLogStore)(nil)
