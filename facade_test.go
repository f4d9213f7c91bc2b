package commercewebhooks

import (
	"context"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"
	webhookscommand "github.com/goliatone/go-commerce-webhooks/command"
	"github.com/goliatone/go-commerce-webhooks/core"
	webhooksquery "github.com/goliatone/go-commerce-webhooks/query"
)

type fakeFacadeQueue struct {
	retried []string
	cleaned []time.Duration
	failed  []core.WebhookJob
	stats   []core.QueueStat
}

func (q *fakeFacadeQueue) Enqueue(_ context.Context, in core.EnqueueJobInput) (core.WebhookJob, error) {
	return core.WebhookJob{Topic: in.Topic, SourceID: in.SourceID, Status: core.JobStatusPending}, nil
}

func (q *fakeFacadeQueue) Dequeue(context.Context) (core.WebhookJob, bool, error) {
	return core.WebhookJob{}, false, nil
}

func (q *fakeFacadeQueue) MarkCompleted(context.Context, string) error { return nil }

func (q *fakeFacadeQueue) MarkFailed(_ context.Context, id string, cause string) (core.WebhookJob, error) {
	return core.WebhookJob{ID: id, LastError: cause}, nil
}

func (q *fakeFacadeQueue) RetryJob(_ context.Context, id string) (core.WebhookJob, bool, error) {
	q.retried = append(q.retried, id)
	return core.WebhookJob{ID: id, Status: core.JobStatusPending}, true, nil
}

func (q *fakeFacadeQueue) FailedJobs(context.Context, int) ([]core.WebhookJob, error) {
	return q.failed, nil
}

func (q *fakeFacadeQueue) Stats(context.Context) ([]core.QueueStat, error) {
	return q.stats, nil
}

func (q *fakeFacadeQueue) Cleanup(_ context.Context, olderThan time.Duration) (int, error) {
	q.cleaned = append(q.cleaned, olderThan)
	return 3, nil
}

type fakeProcessorControl struct {
	running bool
}

func (p *fakeProcessorControl) Start(context.Context) error {
	p.running = true
	return nil
}

func (p *fakeProcessorControl) Stop(context.Context) error {
	p.running = false
	return nil
}

type fakeFacadeStores struct {
	jobs      core.JobStore
	inventory core.InventoryStore
	logs      core.WebhookLogStore
}

func (s fakeFacadeStores) JobStore() core.JobStore               { return s.jobs }
func (s fakeFacadeStores) CustomerStore() core.CustomerStore     { return nil }
func (s fakeFacadeStores) ProductStore() core.ProductStore       { return nil }
func (s fakeFacadeStores) OrderStore() core.OrderStore           { return nil }
func (s fakeFacadeStores) InventoryStore() core.InventoryStore   { return s.inventory }
func (s fakeFacadeStores) WebhookLogStore() core.WebhookLogStore { return s.logs }

type fakeFacadeJobStore struct {
	core.JobStore
	job core.WebhookJob
}

func (s fakeFacadeJobStore) Get(_ context.Context, id string) (core.WebhookJob, error) {
	if id != s.job.ID {
		return core.WebhookJob{}, core.ErrJobNotFound
	}
	return s.job, nil
}

type fakeFacadeInventoryStore struct {
	levels []core.InventoryLevel
}

func (s fakeFacadeInventoryStore) UpsertLevel(_ context.Context, _ string, _ string, _ int) (core.InventoryLevel, error) {
	return core.InventoryLevel{}, nil
}

func (s fakeFacadeInventoryStore) ListLowStock(context.Context, int, int) ([]core.InventoryLevel, error) {
	return s.levels, nil
}

type fakeFacadeLogStore struct {
	entries []core.WebhookLogEntry
	stats   []core.WebhookStat
}

func (s fakeFacadeLogStore) Record(context.Context, core.WebhookLogEntry) error { return nil }

func (s fakeFacadeLogStore) List(context.Context, int) ([]core.WebhookLogEntry, error) {
	return s.entries, nil
}

func (s fakeFacadeLogStore) Stats(context.Context, time.Time) ([]core.WebhookStat, error) {
	return s.stats, nil
}

func newTestFacade(t *testing.T, queue *fakeFacadeQueue, control *fakeProcessorControl) *Facade {
	t.Helper()
	stores := fakeFacadeStores{
		jobs:      fakeFacadeJobStore{job: core.WebhookJob{ID: "job-1", Topic: core.TopicOrdersCreate}},
		inventory: fakeFacadeInventoryStore{levels: []core.InventoryLevel{{InventoryItemID: "808", Available: 2}}},
		logs: fakeFacadeLogStore{
			entries: []core.WebhookLogEntry{{Topic: core.TopicOrdersCreate, Status: core.WebhookLogSuccess}},
			stats:   []core.WebhookStat{{Topic: core.TopicOrdersCreate, Status: core.WebhookLogSuccess, Count: 1}},
		},
	}
	facade, err := NewFacade(queue, control, stores)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	return facade
}

func TestNewFacade_RequiresDependencies(t *testing.T) {
	queue := &fakeFacadeQueue{}
	control := &fakeProcessorControl{}
	stores := fakeFacadeStores{}

	if _, err := NewFacade(nil, control, stores); err == nil {
		t.Fatalf("expected missing queue error")
	}
	if _, err := NewFacade(queue, nil, stores); err == nil {
		t.Fatalf("expected missing processor error")
	}
	if _, err := NewFacade(queue, control, nil); err == nil {
		t.Fatalf("expected missing stores error")
	}
}

func TestFacadeCommands_WiredToQueueAndProcessor(t *testing.T) {
	queue := &fakeFacadeQueue{}
	control := &fakeProcessorControl{}
	facade := newTestFacade(t, queue, control)
	commands := facade.Commands()

	collector := gocmd.NewResult[webhookscommand.RetryJobResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := commands.RetryJob.Execute(ctx, webhookscommand.RetryJobMessage{JobID: "job-9"}); err != nil {
		t.Fatalf("execute retry: %v", err)
	}
	if len(queue.retried) != 1 || queue.retried[0] != "job-9" {
		t.Fatalf("expected retry call for job-9, got %v", queue.retried)
	}
	result, ok := collector.Load()
	if !ok || !result.Requeued {
		t.Fatalf("expected requeued result, got ok=%v result=%#v", ok, result)
	}

	if err := commands.Cleanup.Execute(context.Background(), webhookscommand.CleanupMessage{OlderThan: time.Hour}); err != nil {
		t.Fatalf("execute cleanup: %v", err)
	}
	if len(queue.cleaned) != 1 || queue.cleaned[0] != time.Hour {
		t.Fatalf("expected cleanup with 1h retention, got %v", queue.cleaned)
	}

	if err := commands.StartProcessor.Execute(context.Background(), webhookscommand.StartProcessorMessage{}); err != nil {
		t.Fatalf("execute start: %v", err)
	}
	if !control.running {
		t.Fatalf("expected processor running after start command")
	}
	if err := commands.StopProcessor.Execute(context.Background(), webhookscommand.StopProcessorMessage{}); err != nil {
		t.Fatalf("execute stop: %v", err)
	}
	if control.running {
		t.Fatalf("expected processor stopped after stop command")
	}
}

func TestFacadeQueries_WiredToStores(t *testing.T) {
	queue := &fakeFacadeQueue{
		failed: []core.WebhookJob{{ID: "job-2", Status: core.JobStatusDeadLetter}},
		stats:  []core.QueueStat{{Topic: core.TopicOrdersCreate, Status: core.JobStatusPending, Count: 4}},
	}
	facade := newTestFacade(t, queue, &fakeProcessorControl{})
	queries := facade.Queries()

	job, err := queries.GetJob.Query(context.Background(), webhooksquery.GetJobMessage{JobID: "job-1"})
	if err != nil {
		t.Fatalf("get job query: %v", err)
	}
	if job.Topic != core.TopicOrdersCreate {
		t.Fatalf("unexpected job: %#v", job)
	}

	failed, err := queries.ListFailedJobs.Query(context.Background(), webhooksquery.ListFailedJobsMessage{Limit: 10})
	if err != nil {
		t.Fatalf("failed jobs query: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != "job-2" {
		t.Fatalf("unexpected failed jobs: %#v", failed)
	}

	stats, err := queries.QueueStats.Query(context.Background(), webhooksquery.QueueStatsMessage{})
	if err != nil {
		t.Fatalf("queue stats query: %v", err)
	}
	if len(stats) != 1 || stats[0].Count != 4 {
		t.Fatalf("unexpected queue stats: %#v", stats)
	}

	levels, err := queries.ListLowStock.Query(context.Background(), webhooksquery.ListLowStockMessage{Threshold: 5})
	if err != nil {
		t.Fatalf("low stock query: %v", err)
	}
	if len(levels) != 1 || levels[0].InventoryItemID != "808" {
		t.Fatalf("unexpected low stock levels: %#v", levels)
	}

	webhookStats, err := queries.WebhookStats.Query(context.Background(), webhooksquery.WebhookStatsMessage{})
	if err != nil {
		t.Fatalf("webhook stats query: %v", err)
	}
	if len(webhookStats) != 1 || webhookStats[0].Count != 1 {
		t.Fatalf("unexpected webhook stats: %#v", webhookStats)
	}

	events, err := queries.ListWebhookEvents.Query(context.Background(), webhooksquery.ListWebhookEventsMessage{Limit: 10})
	if err != nil {
		t.Fatalf("webhook events query: %v", err)
	}
	if len(events) != 1 || events[0].Status != core.WebhookLogSuccess {
		t.Fatalf("unexpected webhook events: %#v", events)
	}
}
