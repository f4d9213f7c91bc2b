package webhooks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-commerce-webhooks/core"
)

const (
	HeaderShopifyHMAC      = "X-Shopify-Hmac-Sha256"
	HeaderShopifyTopic     = "X-Shopify-Topic"
	HeaderShopifyWebhookID = "X-Shopify-Webhook-Id"
	HeaderShopifyDomain    = "X-Shopify-Shop-Domain"
)

// NewShopifyVerifier builds the verifier for Shopify's signing scheme: the
// base64-encoded HMAC-SHA256 of the raw body under the shared app secret.
func NewShopifyVerifier(secret string) HeaderHMACVerifier {
	return HeaderHMACVerifier{
		Header:   HeaderShopifyHMAC,
		Secret:   strings.TrimSpace(secret),
		Encoding: "base64",
	}
}

// ExtractTopic reads the webhook topic Shopify names in its header.
func ExtractTopic(req core.InboundRequest) (string, error) {
	topic := strings.TrimSpace(HeaderValue(req.Headers, HeaderShopifyTopic))
	if topic == "" {
		return "", fmt.Errorf("webhooks: %s header is required", HeaderShopifyTopic)
	}
	return topic, nil
}

// ExtractSourceID resolves the upstream entity id a delivery concerns. The
// payload's own id wins; inventory payloads key on inventory_item_id. The
// delivery id header is the fallback so a sparse payload still correlates.
func ExtractSourceID(topic string, req core.InboundRequest) (string, error) {
	var probe struct {
		ID              int64 `json:"id"`
		InventoryItemID int64 `json:"inventory_item_id"`
	}
	_ = json.Unmarshal(req.Body, &probe)

	if strings.TrimSpace(topic) == core.TopicInventoryUpdate && probe.InventoryItemID != 0 {
		return strconv.FormatInt(probe.InventoryItemID, 10), nil
	}
	if probe.ID != 0 {
		return strconv.FormatInt(probe.ID, 10), nil
	}
	if deliveryID := strings.TrimSpace(HeaderValue(req.Headers, HeaderShopifyWebhookID)); deliveryID != "" {
		return deliveryID, nil
	}
	return "", fmt.Errorf("webhooks: unable to resolve source id for delivery")
}
