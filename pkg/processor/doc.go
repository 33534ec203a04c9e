// Package processor drives synchronization of the customer aggregate
// against the remote payment gateway.
//
// # Overview
//
// The gateway is an abstract collaborator with four operations: load,
// save, cancel-subscription and refund-transaction. Every entry point
// follows the same shape: hold a snapshot of the last-persisted state,
// make the remote call, and only on success reconcile the confirmation
// into local state and persist it. A failed call changes nothing locally;
// the snapshot stays available so the caller can inspect and retry.
//
// Reconciliation moves entity state forward only — initial and changed
// entities become saved when the gateway confirms them, saved entities
// are never downgraded, and intentionally local entities never
// participate.
//
// # Concurrency
//
// Operations act on one in-memory aggregate at a time. The remote call is
// a long-latency suspension point; between snapshot and reconciliation no
// other mutation of the same aggregate may be accepted. That single-writer
// discipline belongs to the caller — this package supplies the snapshot
// primitive, not a lock.
//
// # Related Packages
//
//   - pkg/customer: the aggregate and its change tracking
//   - pkg/billing: counts coupon redemptions confirmed here
//   - pkg/storage: the local persistence the orchestrator writes through
package processor
