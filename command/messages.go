package command

import (
	"fmt"
	"strings"
	"time"
)

const (
	TypeRetryJob       = "webhooks.command.job.retry"
	TypeCleanup        = "webhooks.command.jobs.cleanup"
	TypeStartProcessor = "webhooks.command.processor.start"
	TypeStopProcessor  = "webhooks.command.processor.stop"
)

type RetryJobMessage struct {
	JobID string
}

func (RetryJobMessage) Type() string { return TypeRetryJob }

func (m RetryJobMessage) Validate() error {
	if strings.TrimSpace(m.JobID) == "" {
		return fmt.Errorf("command: job id is required")
	}
	return nil
}

// CleanupMessage removes completed jobs older than OlderThan. Zero keeps the
// queue's default retention window.
type CleanupMessage struct {
	OlderThan time.Duration
}

func (CleanupMessage) Type() string { return TypeCleanup }

func (m CleanupMessage) Validate() error {
	if m.OlderThan < 0 {
		return fmt.Errorf("command: retention window must be >= 0")
	}
	return nil
}

type StartProcessorMessage struct{}

func (StartProcessorMessage) Type() string { return TypeStartProcessor }

func (StartProcessorMessage) Validate() error { return nil }

type StopProcessorMessage struct{}

func (StopProcessorMessage) Type() string { return TypeStopProcessor }

func (StopProcessorMessage) Validate() error { return nil }
