package query

import (
	"fmt"
	"strings"
	"time"
)

const (
	TypeGetJob        = "webhooks.query.job.get"
	TypeListFailed    = "webhooks.query.jobs.list_failed"
	TypeQueueStats    = "webhooks.query.queue.stats"
	TypeListLowStock  = "webhooks.query.inventory.low_stock"
	TypeWebhookStats  = "webhooks.query.log.stats"
	TypeWebhookEvents = "webhooks.query.log.list"
)

type GetJobMessage struct {
	JobID string
}

func (GetJobMessage) Type() string { return TypeGetJob }

func (m GetJobMessage) Validate() error {
	if strings.TrimSpace(m.JobID) == "" {
		return fmt.Errorf("query: job id is required")
	}
	return nil
}

type ListFailedJobsMessage struct {
	Limit int
}

func (ListFailedJobsMessage) Type() string { return TypeListFailed }

func (m ListFailedJobsMessage) Validate() error {
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}

type QueueStatsMessage struct{}

func (QueueStatsMessage) Type() string { return TypeQueueStats }

func (QueueStatsMessage) Validate() error { return nil }

// ListLowStockMessage filters inventory at or below Threshold. Zero applies
// the processor's default threshold.
type ListLowStockMessage struct {
	Threshold int
	Limit     int
}

func (ListLowStockMessage) Type() string { return TypeListLowStock }

func (m ListLowStockMessage) Validate() error {
	if m.Threshold < 0 {
		return fmt.Errorf("query: threshold must be >= 0")
	}
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}

type WebhookStatsMessage struct {
	Since time.Time
}

func (WebhookStatsMessage) Type() string { return TypeWebhookStats }

func (WebhookStatsMessage) Validate() error { return nil }

type ListWebhookEventsMessage struct {
	Limit int
}

func (ListWebhookEventsMessage) Type() string { return TypeWebhookEvents }

func (m ListWebhookEventsMessage) Validate() error {
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}
