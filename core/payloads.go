package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Shopify webhook payload shapes. Field names follow the Shopify Admin API
// wire format; only the fields the handlers consume are declared, the rest of
// the body passes through as the job's raw payload.

type CustomerPayload struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone"`
	AcceptsMarketing bool   `json:"accepts_marketing"`
	TotalSpent       string `json:"total_spent"`
	OrdersCount      int    `json:"orders_count"`
	Tags             string `json:"tags"`
	CreatedAt        string `json:"created_at"`
}

type OrderLineItemPayload struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type OrderPayload struct {
	ID                int64                  `json:"id"`
	Name              string                 `json:"name"`
	Email             string                 `json:"email"`
	TotalPrice        string                 `json:"total_price"`
	Currency          string                 `json:"currency"`
	FinancialStatus   string                 `json:"financial_status"`
	FulfillmentStatus string                 `json:"fulfillment_status"`
	LineItems         []OrderLineItemPayload `json:"line_items"`
	Customer          *CustomerPayload       `json:"customer"`
	ShippingAddress   json.RawMessage        `json:"shipping_address"`
	BillingAddress    json.RawMessage        `json:"billing_address"`
	CreatedAt         string                 `json:"created_at"`
}

type ProductPayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	BodyHTML    string `json:"body_html"`
	ProductType string `json:"product_type"`
	Vendor      string `json:"vendor"`
	Status      string `json:"status"`
	Tags        string `json:"tags"`
	CreatedAt   string `json:"created_at"`
}

type InventoryLevelPayload struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       int   `json:"available"`
}

func (p CustomerPayload) ToUpsertInput() UpsertCustomerInput {
	return UpsertCustomerInput{
		ShopifyCustomerID: strconv.FormatInt(p.ID, 10),
		Email:             strings.TrimSpace(p.Email),
		FirstName:         strings.TrimSpace(p.FirstName),
		LastName:          strings.TrimSpace(p.LastName),
		Phone:             strings.TrimSpace(p.Phone),
		AcceptsMarketing:  p.AcceptsMarketing,
		TotalSpent:        ParseMoney(p.TotalSpent),
		OrdersCount:       p.OrdersCount,
		Tags:              SplitTags(p.Tags),
		CreatedAt:         ParseShopifyTime(p.CreatedAt),
	}
}

func (p CustomerPayload) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

func (p ProductPayload) ToUpsertInput() UpsertProductInput {
	return UpsertProductInput{
		ShopifyProductID: strconv.FormatInt(p.ID, 10),
		Title:            strings.TrimSpace(p.Title),
		Handle:           strings.TrimSpace(p.Handle),
		Description:      p.BodyHTML,
		ProductType:      strings.TrimSpace(p.ProductType),
		Vendor:           strings.TrimSpace(p.Vendor),
		Status:           strings.TrimSpace(p.Status),
		Tags:             SplitTags(p.Tags),
		CreatedAt:        ParseShopifyTime(p.CreatedAt),
	}
}

func (p OrderPayload) ToUpsertInput(customerID string) UpsertOrderInput {
	in := UpsertOrderInput{
		ShopifyOrderID:    strconv.FormatInt(p.ID, 10),
		OrderNumber:       strings.TrimSpace(p.Name),
		CustomerID:        strings.TrimSpace(customerID),
		CustomerEmail:     strings.TrimSpace(p.Email),
		TotalPrice:        ParseMoney(p.TotalPrice),
		Currency:          strings.TrimSpace(p.Currency),
		FinancialStatus:   strings.TrimSpace(p.FinancialStatus),
		FulfillmentStatus: strings.TrimSpace(p.FulfillmentStatus),
		ShippingAddress:   p.ShippingAddress,
		BillingAddress:    p.BillingAddress,
		CreatedAt:         ParseShopifyTime(p.CreatedAt),
	}
	if p.Customer != nil {
		in.CustomerName = p.Customer.FullName()
	}
	return in
}

// SplitTags normalizes Shopify's comma-joined tag string into a slice,
// dropping empty segments.
func SplitTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseMoney parses Shopify's string-encoded decimal amounts; malformed or
// empty values map to zero, matching at-least-once tolerant ingestion.
func ParseMoney(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

// ParseShopifyTime parses the RFC3339 timestamps Shopify emits; a missing or
// malformed value falls back to the current UTC time.
func ParseShopifyTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC()
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Now().UTC()
	}
	return parsed.UTC()
}
