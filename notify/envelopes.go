package notify

import (
	"strconv"

	"github.com/goliatone/go-commerce-webhooks/core"
)

const (
	TypeNewOrder          = "new_order"
	TypeOrderStatusUpdate = "order_status_update"
	TypeNewProduct        = "new_product"
	TypeLowStockAlert     = "low_stock_alert"
	TypeNewCustomer       = "new_customer"
	TypeWebhookDeadLetter = "webhook_dead_letter"
)

type OrderBody struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	Customer string `json:"customer"`
	Total    string `json:"total"`
	Items    int    `json:"items"`
}

type OrderStatusBody struct {
	ID                int64  `json:"id"`
	Number            string `json:"number"`
	Customer          string `json:"customer"`
	FinancialStatus   string `json:"financialStatus"`
	FulfillmentStatus string `json:"fulfillmentStatus"`
}

type ProductBody struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Status string `json:"status"`
}

type InventoryBody struct {
	InventoryItemID string `json:"inventoryItemId"`
	LocationID      string `json:"locationId"`
	Available       int    `json:"available"`
}

type CustomerBody struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	AcceptsMarketing bool   `json:"acceptsMarketing"`
}

type DeadLetterBody struct {
	ID         string `json:"id"`
	Topic      string `json:"topic"`
	SourceID   string `json:"sourceId"`
	RetryCount int    `json:"retryCount"`
	LastError  string `json:"lastError"`
}

func NewOrder(payload core.OrderPayload) core.Notification {
	return core.Notification{
		Type:   TypeNewOrder,
		Entity: "order",
		Body: OrderBody{
			ID:       payload.ID,
			Number:   payload.Name,
			Customer: payload.Email,
			Total:    payload.TotalPrice,
			Items:    len(payload.LineItems),
		},
	}
}

func OrderStatusUpdate(payload core.OrderPayload) core.Notification {
	return core.Notification{
		Type:   TypeOrderStatusUpdate,
		Entity: "order",
		Body: OrderStatusBody{
			ID:                payload.ID,
			Number:            payload.Name,
			Customer:          payload.Email,
			FinancialStatus:   payload.FinancialStatus,
			FulfillmentStatus: payload.FulfillmentStatus,
		},
	}
}

func NewProduct(payload core.ProductPayload) core.Notification {
	return core.Notification{
		Type:   TypeNewProduct,
		Entity: "product",
		Body: ProductBody{
			ID:     payload.ID,
			Title:  payload.Title,
			Handle: payload.Handle,
			Status: payload.Status,
		},
	}
}

func LowStockAlert(payload core.InventoryLevelPayload) core.Notification {
	return core.Notification{
		Type:   TypeLowStockAlert,
		Entity: "inventory",
		Body: InventoryBody{
			InventoryItemID: strconv.FormatInt(payload.InventoryItemID, 10),
			LocationID:      strconv.FormatInt(payload.LocationID, 10),
			Available:       payload.Available,
		},
	}
}

func NewCustomer(payload core.CustomerPayload) core.Notification {
	return core.Notification{
		Type:   TypeNewCustomer,
		Entity: "customer",
		Body: CustomerBody{
			ID:               payload.ID,
			Email:            payload.Email,
			Name:             payload.FullName(),
			AcceptsMarketing: payload.AcceptsMarketing,
		},
	}
}

func DeadLetter(job core.WebhookJob) core.Notification {
	return core.Notification{
		Type:   TypeWebhookDeadLetter,
		Entity: "job",
		Body: DeadLetterBody{
			ID:         job.ID,
			Topic:      job.Topic,
			SourceID:   job.SourceID,
			RetryCount: job.RetryCount,
			LastError:  job.LastError,
		},
	}
}
