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

// JobStore persists webhook jobs. State transitions are single guarded
// statements: each UPDATE re-checks the expected current status so two
// workers racing the same row cannot both win.
type JobStore struct {
	db   *bun.DB
	repo repository.Repository[*webhookJobRecord]
	now  func() time.Time
}

func NewJobStore(db *bun.DB) (*JobStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*webhookJobRecord](db, webhookJobHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid webhook job repository wiring: %w", err)
		}
	}
	return &JobStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *JobStore) Insert(ctx context.Context, in core.EnqueueJobInput) (core.WebhookJob, error) {
	if s == nil || s.repo == nil {
		return core.WebhookJob{}, fmt.Errorf("sqlstore: job store is not configured")
	}
	topic := strings.TrimSpace(in.Topic)
	sourceID := strings.TrimSpace(in.SourceID)
	if topic == "" || sourceID == "" {
		return core.WebhookJob{}, fmt.Errorf("sqlstore: job topic and source id are required")
	}
	maxRetries := in.MaxRetries
	if maxRetries <= 0 {
		maxRetries = core.DefaultMaxRetries
	}

	now := s.now()
	record := &webhookJobRecord{
		ID:         uuid.NewString(),
		Topic:      topic,
		SourceID:   sourceID,
		Payload:    append([]byte(nil), in.Payload...),
		Status:     string(core.JobStatusPending),
		RetryCount: 0,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return core.WebhookJob{}, err
	}
	return jobRecordToDomain(record), nil
}

// ClaimNext atomically moves the oldest eligible pending job to processing.
// The inner SELECT orders by created_at and the outer UPDATE re-checks the
// pending status, so concurrent claimers get distinct rows on both postgres
// and sqlite.
func (s *JobStore) ClaimNext(ctx context.Context) (core.WebhookJob, bool, error) {
	if s == nil || s.db == nil {
		return core.WebhookJob{}, false, fmt.Errorf("sqlstore: job store is not configured")
	}
	now := s.now()
	var records []webhookJobRecord
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		query := `
WITH claimed AS (
	SELECT id
	FROM webhook_jobs
	WHERE status = ?
	  AND (next_retry_at IS NULL OR next_retry_at <= ?)
	ORDER BY created_at ASC
	LIMIT 1
)
UPDATE webhook_jobs
SET status = ?, updated_at = ?
WHERE id IN (SELECT id FROM claimed)
  AND status = ?
RETURNING
	id,
	topic,
	source_id,
	payload,
	status,
	retry_count,
	max_retries,
	next_retry_at,
	last_error,
	created_at,
	updated_at,
	processed_at
`
		return tx.NewRaw(
			query,
			string(core.JobStatusPending),
			now,
			string(core.JobStatusProcessing),
			now,
			string(core.JobStatusPending),
		).Scan(ctx, &records)
	})
	if err != nil {
		return core.WebhookJob{}, false, err
	}
	if len(records) == 0 {
		return core.WebhookJob{}, false, nil
	}
	return jobRecordToDomain(&records[0]), true, nil
}

func (s *JobStore) Get(ctx context.Context, id string) (core.WebhookJob, error) {
	if s == nil || s.db == nil {
		return core.WebhookJob{}, fmt.Errorf("sqlstore: job store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.WebhookJob{}, fmt.Errorf("sqlstore: job id is required")
	}
	record := &webhookJobRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.WebhookJob{}, core.ErrJobNotFound
		}
		return core.WebhookJob{}, err
	}
	return jobRecordToDomain(record), nil
}

// MarkCompleted only matches processing rows, which makes a duplicate call a
// no-op rather than a double transition.
func (s *JobStore) MarkCompleted(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: job store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sqlstore: job id is required")
	}
	now := s.now()
	_, err := s.db.NewUpdate().
		Model((*webhookJobRecord)(nil)).
		Set("status = ?", string(core.JobStatusCompleted)).
		Set("processed_at = ?", now).
		Set("next_retry_at = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", string(core.JobStatusProcessing)).
		Exec(ctx)
	return err
}

func (s *JobStore) Reschedule(ctx context.Context, id string, cause string, retryCount int, nextRetryAt time.Time) (core.WebhookJob, error) {
	if s == nil || s.db == nil {
		return core.WebhookJob{}, fmt.Errorf("sqlstore: job store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.WebhookJob{}, fmt.Errorf("sqlstore: job id is required")
	}
	_, err := s.db.NewUpdate().
		Model((*webhookJobRecord)(nil)).
		Set("status = ?", string(core.JobStatusPending)).
		Set("retry_count = ?", retryCount).
		Set("last_error = ?", strings.TrimSpace(cause)).
		Set("next_retry_at = ?", nextRetryAt.UTC()).
		Set("updated_at = ?", s.now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.WebhookJob{}, err
	}
	return s.Get(ctx, id)
}

func (s *JobStore) DeadLetter(ctx context.Context, id string, cause string, retryCount int) (core.WebhookJob, error) {
	if s == nil || s.db == nil {
		return core.WebhookJob{}, fmt.Errorf("sqlstore: job store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.WebhookJob{}, fmt.Errorf("sqlstore: job id is required")
	}
	_, err := s.db.NewUpdate().
		Model((*webhookJobRecord)(nil)).
		Set("status = ?", string(core.JobStatusDeadLetter)).
		Set("retry_count = ?", retryCount).
		Set("last_error = ?", strings.TrimSpace(cause)).
		Set("next_retry_at = NULL").
		Set("updated_at = ?", s.now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.WebhookJob{}, err
	}
	return s.Get(ctx, id)
}

// ResetForRetry requeues a job parked in failed or dead_letter. The guarded
// UPDATE reports via rows affected whether anything moved; jobs in any other
// state are left alone.
func (s *JobStore) ResetForRetry(ctx context.Context, id string) (core.WebhookJob, bool, error) {
	if s == nil || s.db == nil {
		return core.WebhookJob{}, false, fmt.Errorf("sqlstore: job store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.WebhookJob{}, false, fmt.Errorf("sqlstore: job id is required")
	}
	result, err := s.db.NewUpdate().
		Model((*webhookJobRecord)(nil)).
		Set("status = ?", string(core.JobStatusPending)).
		Set("next_retry_at = NULL").
		Set("updated_at = ?", s.now()).
		Where("id = ?", id).
		Where("status IN (?, ?)", string(core.JobStatusFailed), string(core.JobStatusDeadLetter)).
		Exec(ctx)
	if err != nil {
		return core.WebhookJob{}, false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return core.WebhookJob{}, false, err
	}
	job, err := s.Get(ctx, id)
	if err != nil {
		return core.WebhookJob{}, false, err
	}
	return job, affected > 0, nil
}

func (s *JobStore) ListFailed(ctx context.Context, limit int) ([]core.WebhookJob, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: job store is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	var records []webhookJobRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.status IN (?, ?)", string(core.JobStatusFailed), string(core.JobStatusDeadLetter)).
		Order("updated_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	jobs := make([]core.WebhookJob, 0, len(records))
	for i := range records {
		jobs = append(jobs, jobRecordToDomain(&records[i]))
	}
	return jobs, nil
}

func (s *JobStore) Stats(ctx context.Context, since time.Time) ([]core.QueueStat, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: job store is not configured")
	}
	var rows []struct {
		Topic      string  `bun:"topic"`
		Status     string  `bun:"status"`
		Count      int     `bun:"count"`
		AvgRetries float64 `bun:"avg_retries"`
	}
	err := s.db.NewSelect().
		Model((*webhookJobRecord)(nil)).
		ColumnExpr("?TableAlias.topic AS topic").
		ColumnExpr("?TableAlias.status AS status").
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("AVG(?TableAlias.retry_count) AS avg_retries").
		Where("?TableAlias.created_at >= ?", since.UTC()).
		GroupExpr("?TableAlias.topic, ?TableAlias.status").
		OrderExpr("topic ASC, status ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	stats := make([]core.QueueStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, core.QueueStat{
			Topic:      row.Topic,
			Status:     core.JobStatus(row.Status),
			Count:      row.Count,
			AvgRetries: row.AvgRetries,
		})
	}
	return stats, nil
}

func (s *JobStore) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: job store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*webhookJobRecord)(nil)).
		Where("status = ?", string(core.JobStatusCompleted)).
		Where("processed_at IS NOT NULL").
		Where("processed_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func jobRecordToDomain(record *webhookJobRecord) core.WebhookJob {
	if record == nil {
		return core.WebhookJob{}
	}
	job := core.WebhookJob{
		ID:         record.ID,
		Topic:      record.Topic,
		SourceID:   record.SourceID,
		Payload:    append([]byte(nil), record.Payload...),
		Status:     core.JobStatus(record.Status),
		RetryCount: record.RetryCount,
		MaxRetries: record.MaxRetries,
		LastError:  record.LastError,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	if record.NextRetryAt != nil {
		value := *record.NextRetryAt
		job.NextRetryAt = &value
	}
	if record.ProcessedAt != nil {
		value := *record.ProcessedAt
		job.ProcessedAt = &value
	}
	return job
}

var _ core.JobStore = (*JobStore)(nil)
