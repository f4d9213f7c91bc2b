// Package queue owns the webhook job lifecycle. All status transitions flow
// through it: pending -> processing -> completed, or back to pending with a
// scheduled retry, or to dead_letter once retries are exhausted. The durable
// store underneath provides the atomic claim; this package provides the
// policy.
package queue
