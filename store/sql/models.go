package sqlstore

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

type webhookJobRecord struct {
	bun.BaseModel `bun:"table:webhook_jobs,alias:wj"`

	ID          string          `bun:"id,pk"`
	Topic       string          `bun:"topic,notnull"`
	SourceID    string          `bun:"source_id,notnull"`
	Payload     json.RawMessage `bun:"payload,type:jsonb,notnull"`
	Status      string          `bun:"status,notnull"`
	RetryCount  int             `bun:"retry_count,notnull"`
	MaxRetries  int             `bun:"max_retries,notnull"`
	NextRetryAt *time.Time      `bun:"next_retry_at,nullzero"`
	LastError   string          `bun:"last_error"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	ProcessedAt *time.Time      `bun:"processed_at,nullzero"`
}

type customerRecord struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID                string    `bun:"id,pk"`
	ShopifyCustomerID string    `bun:"shopify_customer_id,notnull"`
	Email             string    `bun:"email,notnull"`
	FirstName         string    `bun:"first_name"`
	LastName          string    `bun:"last_name"`
	Phone             string    `bun:"phone"`
	AcceptsMarketing  bool      `bun:"accepts_marketing,notnull"`
	TotalSpent        float64   `bun:"total_spent,notnull"`
	OrdersCount       int       `bun:"orders_count,notnull"`
	Tags              []string  `bun:"tags,type:jsonb,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SyncedAt          time.Time `bun:"synced_at,nullzero,notnull"`
}

type productRecord struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID               string    `bun:"id,pk"`
	ShopifyProductID string    `bun:"shopify_product_id,notnull"`
	Title            string    `bun:"title,notnull"`
	Handle           string    `bun:"handle,notnull"`
	Description      string    `bun:"description"`
	ProductType      string    `bun:"product_type"`
	Vendor           string    `bun:"vendor"`
	Status           string    `bun:"status,notnull"`
	Tags             []string  `bun:"tags,type:jsonb,notnull"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SyncedAt         time.Time `bun:"synced_at,nullzero,notnull"`
}

type orderRecord struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID                string          `bun:"id,pk"`
	ShopifyOrderID    string          `bun:"shopify_order_id,notnull"`
	OrderNumber       string          `bun:"order_number,notnull"`
	CustomerID        *string         `bun:"customer_id"`
	CustomerEmail     string          `bun:"customer_email"`
	CustomerName      string          `bun:"customer_name"`
	TotalPrice        float64         `bun:"total_price,notnull"`
	Currency          string          `bun:"currency"`
	FinancialStatus   string          `bun:"financial_status"`
	FulfillmentStatus string          `bun:"fulfillment_status"`
	ShippingAddress   json.RawMessage `bun:"shipping_address,type:jsonb"`
	BillingAddress    json.RawMessage `bun:"billing_address,type:jsonb"`
	CreatedAt         time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SyncedAt          time.Time       `bun:"synced_at,nullzero,notnull"`
}

type inventoryLevelRecord struct {
	bun.BaseModel `bun:"table:inventory_levels,alias:il"`

	ID              string    `bun:"id,pk"`
	InventoryItemID string    `bun:"inventory_item_id,notnull"`
	LocationID      string    `bun:"location_id,notnull"`
	Available       int       `bun:"available,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type webhookLogRecord struct {
	bun.BaseModel `bun:"table:webhook_logs,alias:wl"`

	ID           string    `bun:"id,pk"`
	Topic        string    `bun:"topic,notnull"`
	SourceID     string    `bun:"source_id,notnull"`
	Status       string    `bun:"status,notnull"`
	ErrorMessage string    `bun:"error_message"`
	RetryCount   int       `bun:"retry_count,notnull"`
	ProcessedAt  time.Time `bun:"processed_at,nullzero,notnull"`
}
