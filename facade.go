package commercewebhooks

import (
	"fmt"

	webhookscommand "github.com/goliatone/go-commerce-webhooks/command"
	"github.com/goliatone/go-commerce-webhooks/core"
	webhooksquery "github.com/goliatone/go-commerce-webhooks/query"
)

type Commands struct {
	RetryJob       *webhookscommand.RetryJobCommand
	Cleanup        *webhookscommand.CleanupCommand
	StartProcessor *webhookscommand.StartProcessorCommand
	StopProcessor  *webhookscommand.StopProcessorCommand
}

type Queries struct {
	GetJob            *webhooksquery.GetJobQuery
	ListFailedJobs    *webhooksquery.ListFailedJobsQuery
	QueueStats        *webhooksquery.QueueStatsQuery
	ListLowStock      *webhooksquery.ListLowStockQuery
	WebhookStats      *webhooksquery.WebhookStatsQuery
	ListWebhookEvents *webhooksquery.ListWebhookEventsQuery
}

// Facade bundles the admin command and query surface around an already wired
// queue, processor, and store provider.
type Facade struct {
	queue     core.JobQueue
	processor webhookscommand.ProcessorControlService
	stores    core.StoreProvider
	commands  Commands
	queries   Queries
}

func NewFacade(
	queue core.JobQueue,
	processor webhookscommand.ProcessorControlService,
	stores core.StoreProvider,
) (*Facade, error) {
	if queue == nil {
		return nil, fmt.Errorf("commercewebhooks: job queue is required")
	}
	if processor == nil {
		return nil, fmt.Errorf("commercewebhooks: processor is required")
	}
	if stores == nil {
		return nil, fmt.Errorf("commercewebhooks: store provider is required")
	}

	facade := &Facade{
		queue:     queue,
		processor: processor,
		stores:    stores,
	}
	facade.commands = Commands{
		RetryJob:       webhookscommand.NewRetryJobCommand(queue),
		Cleanup:        webhookscommand.NewCleanupCommand(queue),
		StartProcessor: webhookscommand.NewStartProcessorCommand(processor),
		StopProcessor:  webhookscommand.NewStopProcessorCommand(processor),
	}
	facade.queries = Queries{
		GetJob:            webhooksquery.NewGetJobQuery(stores.JobStore()),
		ListFailedJobs:    webhooksquery.NewListFailedJobsQuery(queue),
		QueueStats:        webhooksquery.NewQueueStatsQuery(queue),
		ListLowStock:      webhooksquery.NewListLowStockQuery(stores.InventoryStore()),
		WebhookStats:      webhooksquery.NewWebhookStatsQuery(stores.WebhookLogStore()),
		ListWebhookEvents: webhooksquery.NewListWebhookEventsQuery(stores.WebhookLogStore()),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Queue() core.JobQueue {
	if f == nil {
		return nil
	}
	return f.queue
}

func (f *Facade) Stores() core.StoreProvider {
	if f == nil {
		return nil
	}
	return f.stores
}
