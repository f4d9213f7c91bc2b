package processor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-commerce-webhooks/core"
)

// Handler processes one claimed job. A nil error acknowledges the job; any
// error sends it through the retry policy.
type Handler interface {
	Handle(ctx context.Context, job core.WebhookJob) error
}

type HandlerFunc func(ctx context.Context, job core.WebhookJob) error

func (f HandlerFunc) Handle(ctx context.Context, job core.WebhookJob) error {
	return f(ctx, job)
}

// Registry maps webhook topics to handlers. Registration is explicit and
// duplicate registrations are rejected so a misconfigured wiring fails at
// startup instead of silently shadowing a handler.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(topic string, handler Handler) error {
	if r == nil {
		return fmt.Errorf("processor: registry is not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fmt.Errorf("processor: topic is required")
	}
	if handler == nil {
		return fmt.Errorf("processor: handler is required for topic %q", topic)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[topic]; exists {
		return fmt.Errorf("processor: handler already registered for topic %q", topic)
	}
	r.handlers[topic] = handler
	return nil
}

func (r *Registry) Resolve(topic string) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[strings.TrimSpace(topic)]
	return handler, ok
}

func (r *Registry) Topics() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}
