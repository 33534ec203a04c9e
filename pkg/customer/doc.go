// Package customer models the billing customer aggregate: the customer
// record itself plus the addresses, payment methods, subscriptions,
// transactions and discounts it exclusively owns.
//
// # Overview
//
// The aggregate is the unit of consistency against the remote payment
// gateway. Every entity carries a ProcessorItem marker describing how it
// relates to the gateway copy (initial, saved, changed, local). The package
// is pure state: it knows how to diff itself against a snapshot, select the
// current subscription and validate internal references, but performs no
// I/O. Orchestration against the gateway lives in pkg/processor.
//
// # Variants
//
// Payment methods, transactions and discounts are tagged unions. Each
// variant carries a "__t" discriminator on the wire and is decoded through
// an explicit Registry constructed once at process start — there is no
// global type registry.
//
// # Change tracking
//
// A shadow copy of the aggregate is taken with TakeSnapshot after every
// load or confirmed sync. MarkChanged diffs the live aggregate against that
// copy and promotes remotely-known entities to the changed state. Entities
// without a processor id are creations and are never marked changed.
//
// # Related Packages
//
//   - pkg/billing: subscription factory and discount engine
//   - pkg/processor: gateway synchronization
//   - pkg/storage: persistence of the aggregate document
package customer
