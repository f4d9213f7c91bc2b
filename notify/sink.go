package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-commerce-webhooks/core"
	glog "github.com/goliatone/go-logger/glog"
)

const defaultTimeout = 10 * time.Second

// Nop drops every envelope. It is the default sink when no webhook URL is
// configured.
type Nop struct{}

func (Nop) Send(context.Context, core.Notification) error { return nil }

// WebhookSink posts envelopes to an external automation endpoint as JSON:
//
//	{"type": "new_order", "order": {...}}
//
// Delivery is fire and forget. A non-2xx response or transport failure is
// reported to the caller for logging and never retried.
type WebhookSink struct {
	url    string
	client *http.Client
	logger core.Logger
}

type SinkOption func(*WebhookSink)

func WithHTTPClient(client *http.Client) SinkOption {
	return func(s *WebhookSink) {
		if client != nil {
			s.client = client
		}
	}
}

func WithTimeout(timeout time.Duration) SinkOption {
	return func(s *WebhookSink) {
		if timeout > 0 {
			s.client = &http.Client{Timeout: timeout}
		}
	}
}

func WithLogger(logger core.Logger) SinkOption {
	return func(s *WebhookSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewWebhookSink(url string, options ...SinkOption) (*WebhookSink, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("notify: webhook url is required")
	}
	sink := &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, option := range options {
		if option != nil {
			option(sink)
		}
	}
	if sink.logger == nil {
		_, sink.logger = glog.Resolve("notify-sink", nil, nil)
	}
	return sink, nil
}

func (s *WebhookSink) Send(ctx context.Context, n core.Notification) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sink is not configured")
	}
	body, err := EncodeEnvelope(n)
	if err != nil {
		return fmt.Errorf("notify: encode %q envelope: %w", n.Type, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post %q envelope: %w", n.Type, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notify: sink rejected %q envelope with status %d", n.Type, resp.StatusCode)
	}
	s.logger.Debug("notification delivered", "type", n.Type)
	return nil
}

// EncodeEnvelope renders the outbound JSON body with the entity body keyed by
// the envelope's entity name.
func EncodeEnvelope(n core.Notification) ([]byte, error) {
	entity := strings.TrimSpace(n.Entity)
	if entity == "" {
		return nil, fmt.Errorf("envelope entity is required")
	}
	payload := map[string]any{
		"type": n.Type,
		entity: n.Body,
	}
	return json.Marshal(payload)
}

var _ core.Notifier = Nop{}
var _ core.Notifier = (*WebhookSink)(nil)
