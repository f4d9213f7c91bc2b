// Package notify builds and delivers the outbound automation envelopes the
// webhook handlers emit: new orders, status changes, new products and
// customers, low stock alerts, and dead-lettered jobs. Sinks are best effort;
// a failed delivery is logged by the caller and never affects job state.
package notify
