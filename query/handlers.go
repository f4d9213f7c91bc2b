package query

import (
	"context"
	"time"

	"github.com/goliatone/go-commerce-webhooks/core"
	"github.com/goliatone/go-commerce-webhooks/processor"
)

type JobReader interface {
	Get(ctx context.Context, id string) (core.WebhookJob, error)
}

type QueueReader interface {
	FailedJobs(ctx context.Context, limit int) ([]core.WebhookJob, error)
	Stats(ctx context.Context) ([]core.QueueStat, error)
}

type InventoryReader interface {
	ListLowStock(ctx context.Context, threshold int, limit int) ([]core.InventoryLevel, error)
}

type WebhookLogReader interface {
	List(ctx context.Context, limit int) ([]core.WebhookLogEntry, error)
	Stats(ctx context.Context, since time.Time) ([]core.WebhookStat, error)
}

type GetJobQuery struct {
	reader JobReader
}

func NewGetJobQuery(reader JobReader) *GetJobQuery {
	return &GetJobQuery{reader: reader}
}

func (q *GetJobQuery) Query(ctx context.Context, msg GetJobMessage) (core.WebhookJob, error) {
	if q == nil || q.reader == nil {
		return core.WebhookJob{}, queryDependencyError("query: job reader is required")
	}
	return q.reader.Get(ctx, msg.JobID)
}

type ListFailedJobsQuery struct {
	reader QueueReader
}

func NewListFailedJobsQuery(reader QueueReader) *ListFailedJobsQuery {
	return &ListFailedJobsQuery{reader: reader}
}

func (q *ListFailedJobsQuery) Query(ctx context.Context, msg ListFailedJobsMessage) ([]core.WebhookJob, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: queue reader is required")
	}
	return q.reader.FailedJobs(ctx, msg.Limit)
}

type QueueStatsQuery struct {
	reader QueueReader
}

func NewQueueStatsQuery(reader QueueReader) *QueueStatsQuery {
	return &QueueStatsQuery{reader: reader}
}

func (q *QueueStatsQuery) Query(ctx context.Context, _ QueueStatsMessage) ([]core.QueueStat, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: queue reader is required")
	}
	return q.reader.Stats(ctx)
}

type ListLowStockQuery struct {
	reader InventoryReader
}

func NewListLowStockQuery(reader InventoryReader) *ListLowStockQuery {
	return &ListLowStockQuery{reader: reader}
}

func (q *ListLowStockQuery) Query(ctx context.Context, msg ListLowStockMessage) ([]core.InventoryLevel, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: inventory reader is required")
	}
	threshold := msg.Threshold
	if threshold <= 0 {
		threshold = processor.DefaultLowStockThreshold
	}
	return q.reader.ListLowStock(ctx, threshold, msg.Limit)
}

type WebhookStatsQuery struct {
	reader WebhookLogReader
}

func NewWebhookStatsQuery(reader WebhookLogReader) *WebhookStatsQuery {
	return &WebhookStatsQuery{reader: reader}
}

func (q *WebhookStatsQuery) Query(ctx context.Context, msg WebhookStatsMessage) ([]core.WebhookStat, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: webhook log reader is required")
	}
	since := msg.Since
	if since.IsZero() {
		since = time.Now().UTC().Add(-24 * time.Hour)
	}
	return q.reader.Stats(ctx, since)
}

type ListWebhookEventsQuery struct {
	reader WebhookLogReader
}

func NewListWebhookEventsQuery(reader WebhookLogReader) *ListWebhookEventsQuery {
	return &ListWebhookEventsQuery{reader: reader}
}

func (q *ListWebhookEventsQuery) Query(ctx context.Context, msg ListWebhookEventsMessage) ([]core.WebhookLogEntry, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: webhook log reader is required")
	}
	return q.reader.List(ctx, msg.Limit)
}
