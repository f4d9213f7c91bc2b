// Package processor drains the webhook job queue. A Processor polls on a
// fixed interval, claims pending jobs one at a time, and dispatches each to
// the handler registered for its topic. Handler failures are contained per
// job: the job is marked failed and the drain moves on.
package processor
