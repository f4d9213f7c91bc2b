// Package webhooks is the inbound edge: it authenticates Shopify deliveries
// with the shared-secret HMAC signature and turns accepted requests into
// queued jobs. Nothing here processes payloads; rejection happens before a
// job ever exists.
package webhooks
