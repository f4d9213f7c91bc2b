package core

import (
	"encoding/json"
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusDeadLetter JobStatus = "dead_letter"
)

// IsTerminal reports whether a job in this status never transitions again
// without manual intervention.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusDeadLetter
}

const (
	TopicOrdersCreate    = "orders/create"
	TopicOrdersUpdated   = "orders/updated"
	TopicProductsCreate  = "products/create"
	TopicProductsUpdate  = "products/update"
	TopicInventoryUpdate = "inventory_levels/update"
	TopicCustomersCreate = "customers/create"
)

const DefaultMaxRetries = 5

// WebhookJob is one unit of webhook work tracked through the queue.
//
// SourceID is the upstream Shopify entity id the payload concerns. It is a
// correlation key, not a uniqueness key: duplicate deliveries for the same
// source id are expected and handlers converge via upserts.
type WebhookJob struct {
	ID          string
	Topic       string
	SourceID    string
	Payload     json.RawMessage
	Status      JobStatus
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time
}

type EnqueueJobInput struct {
	Topic      string
	SourceID   string
	Payload    json.RawMessage
	MaxRetries int
}

// QueueStat is one row of the grouped queue statistics: jobs per
// (topic, status) over the stats window, with the mean retry count.
type QueueStat struct {
	Topic      string
	Status     JobStatus
	Count      int
	AvgRetries float64
}

type WebhookLogStatus string

const (
	WebhookLogSuccess WebhookLogStatus = "success"
	WebhookLogFailed  WebhookLogStatus = "failed"
	WebhookLogRetry   WebhookLogStatus = "retry"
)

// WebhookLogEntry records the outcome of one processing attempt, kept
// separately from the queue row so history survives job cleanup.
type WebhookLogEntry struct {
	ID           string
	Topic        string
	SourceID     string
	Status       WebhookLogStatus
	ErrorMessage string
	RetryCount   int
	ProcessedAt  time.Time
}

type WebhookStat struct {
	Topic         string
	Status        WebhookLogStatus
	Count         int
	LastProcessed time.Time
}

type Customer struct {
	ID                string
	ShopifyCustomerID string
	Email             string
	FirstName         string
	LastName          string
	Phone             string
	AcceptsMarketing  bool
	TotalSpent        float64
	OrdersCount       int
	Tags              []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	SyncedAt          time.Time
}

type Product struct {
	ID               string
	ShopifyProductID string
	Title            string
	Handle           string
	Description      string
	ProductType      string
	Vendor           string
	Status           string
	Tags             []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	SyncedAt         time.Time
}

type Order struct {
	ID                string
	ShopifyOrderID    string
	OrderNumber       string
	CustomerID        string
	CustomerEmail     string
	CustomerName      string
	TotalPrice        float64
	Currency          string
	FinancialStatus   string
	FulfillmentStatus string
	ShippingAddress   json.RawMessage
	BillingAddress    json.RawMessage
	CreatedAt         time.Time
	UpdatedAt         time.Time
	SyncedAt          time.Time
}

type InventoryLevel struct {
	ID              string
	InventoryItemID string
	LocationID      string
	Available       int
	UpdatedAt       time.Time
}

type UpsertCustomerInput struct {
	ShopifyCustomerID string
	Email             string
	FirstName         string
	LastName          string
	Phone             string
	AcceptsMarketing  bool
	TotalSpent        float64
	OrdersCount       int
	Tags              []string
	CreatedAt         time.Time
}

type UpsertProductInput struct {
	ShopifyProductID string
	Title            string
	Handle           string
	Description      string
	ProductType      string
	Vendor           string
	Status           string
	Tags             []string
	CreatedAt        time.Time
}

type UpsertOrderInput struct {
	ShopifyOrderID    string
	OrderNumber       string
	CustomerID        string
	CustomerEmail     string
	CustomerName      string
	TotalPrice        float64
	Currency          string
	FinancialStatus   string
	FulfillmentStatus string
	ShippingAddress   json.RawMessage
	BillingAddress    json.RawMessage
	CreatedAt         time.Time
}
