package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-commerce-webhooks/core"
	glog "github.com/goliatone/go-logger/glog"
)

const DefaultPollInterval = 5 * time.Second

// Processor drains the queue on a fixed interval. Each instance owns its poll
// loop; draining is guarded so overlapping ticks on one instance collapse to
// a single pass. Cross-instance safety comes from the queue's atomic claim,
// not from this guard.
type Processor struct {
	queue    core.JobQueue
	registry *Registry
	logs     core.WebhookLogStore
	logger   core.Logger
	metrics  core.MetricsRecorder

	pollInterval time.Duration
	now          func() time.Time

	draining atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type ProcessorOption func(*Processor)

func WithPollInterval(interval time.Duration) ProcessorOption {
	return func(p *Processor) {
		if interval > 0 {
			p.pollInterval = interval
		}
	}
}

func WithWebhookLog(logs core.WebhookLogStore) ProcessorOption {
	return func(p *Processor) {
		p.logs = logs
	}
}

func WithLogger(logger core.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(metrics core.MetricsRecorder) ProcessorOption {
	return func(p *Processor) {
		if metrics != nil {
			p.metrics = metrics
		}
	}
}

func WithNow(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

func New(queue core.JobQueue, registry *Registry, options ...ProcessorOption) (*Processor, error) {
	if queue == nil {
		return nil, fmt.Errorf("processor: job queue is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("processor: registry is required")
	}
	_, logger := glog.Resolve("webhook-processor", nil, nil)
	p := &Processor{
		queue:        queue,
		registry:     registry,
		logger:       logger,
		metrics:      core.NopMetricsRecorder{},
		pollInterval: DefaultPollInterval,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, option := range options {
		if option != nil {
			option(p)
		}
	}
	return p, nil
}

// Start launches the poll loop: one immediate drain, then one per interval.
// Calling Start on a running processor is a no-op.
func (p *Processor) Start(ctx context.Context) error {
	if p == nil || p.queue == nil {
		return fmt.Errorf("processor: processor is not configured")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(loopCtx, p.done)
	p.logger.Info("processor started", "poll_interval", p.pollInterval.String(), "topics", p.registry.Topics())
	return nil
}

// Stop halts polling and waits for an in-flight drain to hand back its
// current job. Idempotent.
func (p *Processor) Stop(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		p.logger.Info("processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Processor) Running() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Processor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if _, err := p.ProcessPending(ctx); err != nil {
		p.logger.Error("drain failed", "error", err.Error())
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.ProcessPending(ctx); err != nil {
				p.logger.Error("drain failed", "error", err.Error())
			}
		}
	}
}

// ProcessPending claims and processes jobs until the queue reports empty,
// returning the number of jobs handled. If a drain is already in progress on
// this instance the call returns immediately.
func (p *Processor) ProcessPending(ctx context.Context) (int, error) {
	if p == nil || p.queue == nil {
		return 0, fmt.Errorf("processor: processor is not configured")
	}
	if !p.draining.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer p.draining.Store(false)

	processed := 0
	for {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}

		job, ok, err := p.queue.Dequeue(ctx)
		if err != nil {
			return processed, err
		}
		if !ok {
			return processed, nil
		}
		p.processJob(ctx, job)
		processed++
	}
}

// processJob dispatches one claimed job. Failures never escape: they become
// a MarkFailed transition so the drain keeps moving.
func (p *Processor) processJob(ctx context.Context, job core.WebhookJob) {
	started := p.now()

	handler, ok := p.registry.Resolve(job.Topic)
	if !ok {
		p.failJob(ctx, job, fmt.Errorf("processor: no handler registered for topic %q", job.Topic))
		return
	}

	if err := handler.Handle(ctx, job); err != nil {
		p.failJob(ctx, job, err)
		return
	}

	if err := p.queue.MarkCompleted(ctx, job.ID); err != nil {
		p.logger.Error("mark completed failed", "job_id", job.ID, "error", err.Error())
		return
	}

	p.metrics.IncCounter(ctx, "webhook_jobs_processed", 1, map[string]string{"topic": job.Topic, "outcome": "success"})
	p.metrics.ObserveHistogram(ctx, "webhook_job_duration_seconds", p.now().Sub(started).Seconds(), map[string]string{"topic": job.Topic})
	p.recordLog(ctx, job, core.WebhookLogSuccess, "")
	p.logger.Info("webhook job processed", "job_id", job.ID, "topic", job.Topic)
}

func (p *Processor) failJob(ctx context.Context, job core.WebhookJob, cause error) {
	updated, err := p.queue.MarkFailed(ctx, job.ID, cause.Error())
	if err != nil {
		p.logger.Error("mark failed errored", "job_id", job.ID, "error", err.Error())
		return
	}

	outcome := core.WebhookLogRetry
	if updated.Status == core.JobStatusDeadLetter {
		outcome = core.WebhookLogFailed
	}
	p.metrics.IncCounter(ctx, "webhook_jobs_processed", 1, map[string]string{"topic": job.Topic, "outcome": string(outcome)})
	p.recordLog(ctx, updated, outcome, cause.Error())
	p.logger.Warn("webhook job failed",
		"job_id", job.ID,
		"topic", job.Topic,
		"retry_count", updated.RetryCount,
		"status", string(updated.Status),
		"error", cause.Error(),
	)
}

// recordLog appends to the webhook history ledger. Best effort: the queue
// transition already happened, history must not undo it.
func (p *Processor) recordLog(ctx context.Context, job core.WebhookJob, status core.WebhookLogStatus, message string) {
	if p.logs == nil {
		return
	}
	entry := core.WebhookLogEntry{
		Topic:        job.Topic,
		SourceID:     job.SourceID,
		Status:       status,
		ErrorMessage: message,
		RetryCount:   job.RetryCount,
		ProcessedAt:  p.now(),
	}
	if err := p.logs.Record(ctx, entry); err != nil {
		p.logger.Warn("webhook log record failed", "job_id", job.ID, "error", err.Error())
	}
}
