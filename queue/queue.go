package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-commerce-webhooks/core"
	"github.com/goliatone/go-commerce-webhooks/notify"
	glog "github.com/goliatone/go-logger/glog"
)

const defaultStatsWindow = 24 * time.Hour

// Queue is the sole authority over webhook job state transitions. Store
// errors propagate to callers uncaught: swallowing a persistence failure
// here would silently lose jobs.
type Queue struct {
	store       core.JobStore
	schedule    core.RetrySchedule
	notifier    core.Notifier
	logger      core.Logger
	maxRetries  int
	statsWindow time.Duration
	now         func() time.Time
}

type Option func(*Queue)

func WithSchedule(schedule core.RetrySchedule) Option {
	return func(q *Queue) {
		if schedule != nil {
			q.schedule = schedule
		}
	}
}

func WithNotifier(notifier core.Notifier) Option {
	return func(q *Queue) {
		if notifier != nil {
			q.notifier = notifier
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

func WithMaxRetries(maxRetries int) Option {
	return func(q *Queue) {
		if maxRetries > 0 {
			q.maxRetries = maxRetries
		}
	}
}

func WithStatsWindow(window time.Duration) Option {
	return func(q *Queue) {
		if window > 0 {
			q.statsWindow = window
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

func New(store core.JobStore, options ...Option) (*Queue, error) {
	if store == nil {
		return nil, fmt.Errorf("queue: job store is required")
	}
	q := &Queue{
		store:       store,
		schedule:    core.DefaultRetrySchedule(),
		notifier:    notify.Nop{},
		maxRetries:  core.DefaultMaxRetries,
		statsWindow: defaultStatsWindow,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, option := range options {
		if option != nil {
			option(q)
		}
	}
	if q.logger == nil {
		_, q.logger = glog.Resolve("webhook-queue", nil, nil)
	}
	return q, nil
}

// Enqueue creates a new pending job. Duplicate deliveries create duplicate
// jobs on purpose: convergence is the handlers' upsert contract, not a
// queue-level dedupe.
func (q *Queue) Enqueue(ctx context.Context, in core.EnqueueJobInput) (core.WebhookJob, error) {
	if q == nil || q.store == nil {
		return core.WebhookJob{}, fmt.Errorf("queue: queue is not configured")
	}
	in.Topic = strings.TrimSpace(in.Topic)
	in.SourceID = strings.TrimSpace(in.SourceID)
	if in.Topic == "" {
		return core.WebhookJob{}, fmt.Errorf("queue: topic is required")
	}
	if in.SourceID == "" {
		return core.WebhookJob{}, fmt.Errorf("queue: source id is required")
	}
	if in.MaxRetries <= 0 {
		in.MaxRetries = q.maxRetries
	}
	job, err := q.store.Insert(ctx, in)
	if err != nil {
		return core.WebhookJob{}, err
	}
	q.logInfo(ctx, "webhook job enqueued", map[string]any{
		"job_id":    job.ID,
		"topic":     job.Topic,
		"source_id": job.SourceID,
	})
	return job, nil
}

// Dequeue claims the oldest eligible pending job. The false return is the
// normal idle signal.
func (q *Queue) Dequeue(ctx context.Context) (core.WebhookJob, bool, error) {
	if q == nil || q.store == nil {
		return core.WebhookJob{}, false, fmt.Errorf("queue: queue is not configured")
	}
	return q.store.ClaimNext(ctx)
}

// MarkCompleted finishes a claimed job. Safe to call twice: the store only
// matches rows still in processing.
func (q *Queue) MarkCompleted(ctx context.Context, id string) error {
	if q == nil || q.store == nil {
		return fmt.Errorf("queue: queue is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("queue: job id is required")
	}
	return q.store.MarkCompleted(ctx, id)
}

// MarkFailed records a handler failure, then either reschedules the job per
// the backoff table or parks it in dead_letter once the incremented retry
// count reaches the ceiling. The dead-letter alert is best effort; its own
// failure never fails the transition.
func (q *Queue) MarkFailed(ctx context.Context, id string, cause string) (core.WebhookJob, error) {
	if q == nil || q.store == nil {
		return core.WebhookJob{}, fmt.Errorf("queue: queue is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.WebhookJob{}, fmt.Errorf("queue: job id is required")
	}
	job, err := q.store.Get(ctx, id)
	if err != nil {
		return core.WebhookJob{}, err
	}

	retryCount := job.RetryCount + 1
	if retryCount < job.MaxRetries {
		nextRetryAt := q.now().Add(q.schedule.NextDelay(retryCount))
		updated, err := q.store.Reschedule(ctx, id, cause, retryCount, nextRetryAt)
		if err != nil {
			return core.WebhookJob{}, err
		}
		q.logInfo(ctx, "webhook job rescheduled", map[string]any{
			"job_id":        updated.ID,
			"topic":         updated.Topic,
			"retry_count":   updated.RetryCount,
			"next_retry_at": nextRetryAt,
			"error":         cause,
		})
		return updated, nil
	}

	updated, err := q.store.DeadLetter(ctx, id, cause, retryCount)
	if err != nil {
		return core.WebhookJob{}, err
	}
	q.logError(ctx, "webhook job moved to dead letter queue", map[string]any{
		"job_id":      updated.ID,
		"topic":       updated.Topic,
		"source_id":   updated.SourceID,
		"retry_count": updated.RetryCount,
		"error":       cause,
	})
	if alertErr := q.notifier.Send(ctx, notify.DeadLetter(updated)); alertErr != nil {
		q.logError(ctx, "dead letter alert delivery failed", map[string]any{
			"job_id": updated.ID,
			"error":  alertErr.Error(),
		})
	}
	return updated, nil
}

// RetryJob is the manual operator action. It only applies to jobs at rest in
// failed or dead_letter; anything else is a guarded no-op, not an error.
func (q *Queue) RetryJob(ctx context.Context, id string) (core.WebhookJob, bool, error) {
	if q == nil || q.store == nil {
		return core.WebhookJob{}, false, fmt.Errorf("queue: queue is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.WebhookJob{}, false, fmt.Errorf("queue: job id is required")
	}
	job, reset, err := q.store.ResetForRetry(ctx, id)
	if err != nil {
		return core.WebhookJob{}, false, err
	}
	if reset {
		q.logInfo(ctx, "webhook job manually requeued", map[string]any{
			"job_id": job.ID,
			"topic":  job.Topic,
		})
	}
	return job, reset, nil
}

func (q *Queue) FailedJobs(ctx context.Context, limit int) ([]core.WebhookJob, error) {
	if q == nil || q.store == nil {
		return nil, fmt.Errorf("queue: queue is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	return q.store.ListFailed(ctx, limit)
}

func (q *Queue) Stats(ctx context.Context) ([]core.QueueStat, error) {
	if q == nil || q.store == nil {
		return nil, fmt.Errorf("queue: queue is not configured")
	}
	return q.store.Stats(ctx, q.now().Add(-q.statsWindow))
}

// Cleanup removes completed jobs processed before the retention window.
// Housekeeping only; correctness never depends on it.
func (q *Queue) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	if q == nil || q.store == nil {
		return 0, fmt.Errorf("queue: queue is not configured")
	}
	if olderThan <= 0 {
		olderThan = 7 * 24 * time.Hour
	}
	removed, err := q.store.DeleteCompletedBefore(ctx, q.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		q.logInfo(ctx, "completed webhook jobs cleaned up", map[string]any{
			"removed": removed,
		})
	}
	return removed, nil
}

func (q *Queue) logInfo(ctx context.Context, message string, fields map[string]any) {
	q.logWithLevel(ctx, "info", message, fields)
}

func (q *Queue) logError(ctx context.Context, message string, fields map[string]any) {
	q.logWithLevel(ctx, "error", message, fields)
}

func (q *Queue) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if q == nil || q.logger == nil {
		return
	}
	logger := q.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(core.FieldsLogger); ok {
		logger = fieldsLogger.WithFields(core.CloneFields(fields))
	}
	args := core.FlattenFields(fields)
	switch level {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

var _ core.JobQueue = (*Queue)(nil)
