package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-commerce-webhooks/core"
)

var (
	_ gocmd.Querier[GetJobMessage, core.WebhookJob]                   = (*GetJobQuery)(nil)
	_ gocmd.Querier[ListFailedJobsMessage, []core.WebhookJob]         = (*ListFailedJobsQuery)(nil)
	_ gocmd.Querier[QueueStatsMessage, []core.QueueStat]              = (*QueueStatsQuery)(nil)
	_ gocmd.Querier[ListLowStockMessage, []core.InventoryLevel]       = (*ListLowStockQuery)(nil)
	_ gocmd.Querier[WebhookStatsMessage, []core.WebhookStat]          = (*WebhookStatsQuery)(nil)
	_ gocmd.Querier[ListWebhookEventsMessage, []core.WebhookLogEntry] = (*ListWebhookEventsQuery)(nil)
)
