package webhooks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-commerce-webhooks/core"
	glog "github.com/goliatone/go-logger/glog"
)

// Receiver admits inbound deliveries: verify the signature, resolve topic
// and source id, enqueue a job. A delivery that fails verification is
// rejected before anything is persisted. Acceptance acknowledges receipt
// only; processing outcome is the queue's business.
type Receiver struct {
	queue    core.JobQueue
	verifier Verifier
	logger   core.Logger
}

type ReceiverOption func(*Receiver)

func WithReceiverLogger(logger core.Logger) ReceiverOption {
	return func(r *Receiver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewReceiver(queue core.JobQueue, verifier Verifier, options ...ReceiverOption) (*Receiver, error) {
	if queue == nil {
		return nil, fmt.Errorf("webhooks: job queue is required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("webhooks: verifier is required")
	}
	_, logger := glog.Resolve("webhook-receiver", nil, nil)
	r := &Receiver{
		queue:    queue,
		verifier: verifier,
		logger:   logger,
	}
	for _, option := range options {
		if option != nil {
			option(r)
		}
	}
	return r, nil
}

func (r *Receiver) Receive(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if r == nil || r.queue == nil {
		return core.InboundResult{}, fmt.Errorf("webhooks: receiver is not configured")
	}

	if err := r.verifier.Verify(ctx, req); err != nil {
		r.logger.Warn("webhook delivery rejected", "error", err.Error())
		return core.InboundResult{
			Accepted:   false,
			StatusCode: http.StatusUnauthorized,
			Metadata:   map[string]any{"rejected": true},
		}, err
	}

	topic, err := ExtractTopic(req)
	if err != nil {
		return core.InboundResult{
			Accepted:   false,
			StatusCode: http.StatusBadRequest,
		}, err
	}

	sourceID, err := ExtractSourceID(topic, req)
	if err != nil {
		return core.InboundResult{
			Accepted:   false,
			StatusCode: http.StatusBadRequest,
		}, err
	}

	job, err := r.queue.Enqueue(ctx, core.EnqueueJobInput{
		Topic:    topic,
		SourceID: sourceID,
		Payload:  req.Body,
	})
	if err != nil {
		return core.InboundResult{}, err
	}

	r.logger.Info("webhook delivery accepted",
		"job_id", job.ID,
		"topic", topic,
		"source_id", sourceID,
		"shop_domain", strings.TrimSpace(HeaderValue(req.Headers, HeaderShopifyDomain)),
	)
	return core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Metadata: map[string]any{
			"job_id":    job.ID,
			"topic":     topic,
			"source_id": sourceID,
		},
	}, nil
}
