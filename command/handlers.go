package command

import (
	"context"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-commerce-webhooks/core"
)

type QueueMutatingService interface {
	RetryJob(ctx context.Context, id string) (core.WebhookJob, bool, error)
	Cleanup(ctx context.Context, olderThan time.Duration) (int, error)
}

type ProcessorControlService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// RetryJobResult reports the outcome of a manual requeue. Requeued is false
// when the job was not in a retryable state and nothing was mutated.
type RetryJobResult struct {
	Job      core.WebhookJob
	Requeued bool
}

type CleanupResult struct {
	Removed int
}

type RetryJobCommand struct {
	service QueueMutatingService
}

func NewRetryJobCommand(service QueueMutatingService) *RetryJobCommand {
	return &RetryJobCommand{service: service}
}

func (c *RetryJobCommand) Execute(ctx context.Context, msg RetryJobMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: queue service is required")
	}
	job, requeued, err := c.service.RetryJob(ctx, msg.JobID)
	if err != nil {
		return err
	}
	storeResult(ctx, RetryJobResult{Job: job, Requeued: requeued})
	return nil
}

type CleanupCommand struct {
	service QueueMutatingService
}

func NewCleanupCommand(service QueueMutatingService) *CleanupCommand {
	return &CleanupCommand{service: service}
}

func (c *CleanupCommand) Execute(ctx context.Context, msg CleanupMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: queue service is required")
	}
	removed, err := c.service.Cleanup(ctx, msg.OlderThan)
	if err != nil {
		return err
	}
	storeResult(ctx, CleanupResult{Removed: removed})
	return nil
}

type StartProcessorCommand struct {
	service ProcessorControlService
}

func NewStartProcessorCommand(service ProcessorControlService) *StartProcessorCommand {
	return &StartProcessorCommand{service: service}
}

func (c *StartProcessorCommand) Execute(ctx context.Context, _ StartProcessorMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: processor control service is required")
	}
	return c.service.Start(ctx)
}

type StopProcessorCommand struct {
	service ProcessorControlService
}

func NewStopProcessorCommand(service ProcessorControlService) *StopProcessorCommand {
	return &StopProcessorCommand{service: service}
}

func (c *StopProcessorCommand) Execute(ctx context.Context, _ StopProcessorMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: processor control service is required")
	}
	return c.service.Stop(ctx)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
