package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-commerce-webhooks/adapters/gologger"
	"github.com/goliatone/go-commerce-webhooks/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

const (
	JobIDProcessWebhook = "webhooks.process"
	JobIDCleanup        = "webhooks.cleanup"
)

// Parameter keys carrying webhook routing data through the go-job message,
// which has no first-class topic or source id fields.
const (
	paramTopic    = "topic"
	paramSourceID = "source_id"
)

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) NormalizeAttempt(opts core.JobNackOptions, attempt int) core.JobNackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// ToExecutionMessage maps a webhook runtime message to go-job. Topic and
// source id travel in the parameter map.
func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	parameters := copyAnyMap(msg.Parameters)
	if topic := strings.TrimSpace(msg.Topic); topic != "" {
		parameters[paramTopic] = topic
	}
	if sourceID := strings.TrimSpace(msg.SourceID); sourceID != "" {
		parameters[paramSourceID] = sourceID
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		Parameters:     parameters,
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

// FromExecutionMessage maps a go-job message into the webhook contract,
// lifting topic and source id back out of the parameters.
func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	parameters := copyAnyMap(msg.Parameters)
	out := &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
	if topic, ok := parameters[paramTopic].(string); ok {
		out.Topic = strings.TrimSpace(topic)
		delete(parameters, paramTopic)
	}
	if sourceID, ok := parameters[paramSourceID].(string); ok {
		out.SourceID = strings.TrimSpace(sourceID)
		delete(parameters, paramSourceID)
	}
	out.Parameters = parameters
	return out
}

// ToNackOptions maps webhook nack options to go-job. The requeue and
// dead-letter flags collapse into a single disposition; dead-letter wins when
// both are set, and neither flag means a terminal failure.
func ToNackOptions(opts core.JobNackOptions) queue.NackOptions {
	disposition := queue.NackDispositionFailed
	switch {
	case opts.DeadLetter:
		disposition = queue.NackDispositionDeadLetter
	case opts.Requeue:
		disposition = queue.NackDispositionRetry
	}
	return queue.NackOptions{
		Disposition: disposition,
		Delay:       opts.Delay,
		Reason:      opts.Reason,
	}
}

// FromNackOptions maps go-job nack options to the webhook contract. The
// failed and canceled dispositions both land as terminal non-dead-letter.
func FromNackOptions(opts queue.NackOptions) core.JobNackOptions {
	return core.JobNackOptions{
		Delay:      opts.Delay,
		Requeue:    opts.Disposition == queue.NackDispositionRetry,
		DeadLetter: opts.Disposition == queue.NackDispositionDeadLetter,
		Reason:     opts.Reason,
	}
}

type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
	logger   job.Logger
}

type EnqueuerOption func(*EnqueuerAdapter)

func WithEnqueueLogger(logger job.Logger) EnqueuerOption {
	return func(a *EnqueuerAdapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer, options ...EnqueuerOption) *EnqueuerAdapter {
	adapter := &EnqueuerAdapter{enqueuer: enqueuer}
	for _, option := range options {
		if option != nil {
			option(adapter)
		}
	}
	if adapter.logger == nil {
		_, _, _, adapter.logger = gologger.ResolveForJob("gojob", nil, nil)
	}
	return adapter
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	receipt, err := a.enqueuer.Enqueue(ctx, ToExecutionMessage(msg))
	if err != nil {
		a.logger.Error("enqueue handoff failed", "job_id", msg.JobID, "topic", msg.Topic, "error", err.Error())
		return err
	}
	a.logger.Debug("enqueue handoff accepted", "job_id", msg.JobID, "dispatch_id", receipt.DispatchID)
	return nil
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var _ core.JobEnqueuer = (*EnqueuerAdapter)(nil)
