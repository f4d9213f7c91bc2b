package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// JobStore is the durable persistence collaborator beneath the queue. Every
// method is a single atomic statement (or transaction) against the job table;
// the store performs no retry policy of its own.
type JobStore interface {
	Insert(ctx context.Context, in EnqueueJobInput) (WebhookJob, error)

	// ClaimNext atomically selects the oldest eligible pending job, moves it
	// to processing, and returns it. The claim must be safe under concurrent
	// callers across processes: at most one caller wins a given row. The
	// false return is the normal idle signal, not an error.
	ClaimNext(ctx context.Context) (WebhookJob, bool, error)

	Get(ctx context.Context, id string) (WebhookJob, error)

	// MarkCompleted transitions processing -> completed and stamps
	// processed_at. Matching only processing rows makes a repeat call a no-op.
	MarkCompleted(ctx context.Context, id string) error

	// Reschedule returns a job to pending with updated retry bookkeeping and
	// an eligibility time in the future.
	Reschedule(ctx context.Context, id string, cause string, retryCount int, nextRetryAt time.Time) (WebhookJob, error)

	// DeadLetter parks a job terminally after retry exhaustion.
	DeadLetter(ctx context.Context, id string, cause string, retryCount int) (WebhookJob, error)

	// ResetForRetry moves a failed or dead-lettered job back to pending and
	// clears its eligibility time. The false return means the job was not in
	// a retryable state and nothing was mutated.
	ResetForRetry(ctx context.Context, id string) (WebhookJob, bool, error)

	ListFailed(ctx context.Context, limit int) ([]WebhookJob, error)
	Stats(ctx context.Context, since time.Time) ([]QueueStat, error)
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// JobQueue is the lifecycle authority over webhook jobs: the only component
// allowed to decide state transitions. Consumed by the processor and by the
// admin command/query surface.
type JobQueue interface {
	Enqueue(ctx context.Context, in EnqueueJobInput) (WebhookJob, error)
	Dequeue(ctx context.Context) (WebhookJob, bool, error)
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, cause string) (WebhookJob, error)
	RetryJob(ctx context.Context, id string) (WebhookJob, bool, error)
	FailedJobs(ctx context.Context, limit int) ([]WebhookJob, error)
	Stats(ctx context.Context) ([]QueueStat, error)
	Cleanup(ctx context.Context, olderThan time.Duration) (int, error)
}

// RetrySchedule yields the delay applied before attempt retryCount becomes
// eligible again. retryCount is the post-increment failure count, so the
// first failure asks for NextDelay(1).
type RetrySchedule interface {
	NextDelay(retryCount int) time.Duration
}

// Notification is the typed envelope sent to the outbound sink. Entity names
// the JSON key carrying the body ("order", "product", "inventory", ...).
type Notification struct {
	Type   string
	Entity string
	Body   any
}

// Notifier delivers envelopes to the automation sink. Delivery is best
// effort: callers log a returned error and move on, they never let it decide
// a job's fate.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type CustomerStore interface {
	Upsert(ctx context.Context, in UpsertCustomerInput) (Customer, error)
	GetByShopifyID(ctx context.Context, shopifyCustomerID string) (Customer, bool, error)
}

type ProductStore interface {
	Upsert(ctx context.Context, in UpsertProductInput) (Product, error)
	GetByShopifyID(ctx context.Context, shopifyProductID string) (Product, bool, error)
}

type OrderStore interface {
	Upsert(ctx context.Context, in UpsertOrderInput) (Order, error)

	// UpdateStatus patches financial/fulfillment status on an existing order;
	// empty arguments leave the stored value untouched. The false return
	// means no order row exists for the upstream id.
	UpdateStatus(ctx context.Context, shopifyOrderID string, financialStatus string, fulfillmentStatus string) (Order, bool, error)

	GetByShopifyID(ctx context.Context, shopifyOrderID string) (Order, bool, error)
}

type InventoryStore interface {
	UpsertLevel(ctx context.Context, inventoryItemID string, locationID string, available int) (InventoryLevel, error)
	ListLowStock(ctx context.Context, threshold int, limit int) ([]InventoryLevel, error)
}

type WebhookLogStore interface {
	Record(ctx context.Context, entry WebhookLogEntry) error
	List(ctx context.Context, limit int) ([]WebhookLogEntry, error)
	Stats(ctx context.Context, since time.Time) ([]WebhookStat, error)
}

// StoreProvider is what a repository factory yields after wiring.
type StoreProvider interface {
	JobStore() JobStore
	CustomerStore() CustomerStore
	ProductStore() ProductStore
	OrderStore() OrderStore
	InventoryStore() InventoryStore
	WebhookLogStore() WebhookLogStore
}

// InboundRequest is a provider-delivery as seen by the inbound surface,
// decoupled from any specific HTTP framework.
type InboundRequest struct {
	Headers  map[string]string
	Body     []byte
	Metadata map[string]any
}

type InboundResult struct {
	Accepted   bool
	StatusCode int
	Metadata   map[string]any
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string)         {}
func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// JobExecutionMessage and JobNackOptions are the queue-runtime contracts the
// gojob adapter maps onto go-job. They keep core free of the go-job types.
type JobExecutionMessage struct {
	JobID          string
	Topic          string
	SourceID       string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}
