// Package billing implements the subscription purchase flow on top of the
// customer aggregate: the plan catalog, the subscription factory and the
// discount engine.
//
// # Overview
//
// Adding a subscription partitions the customer's valid, non-trial
// subscriptions by tier. Subscriptions at or above the new tier must
// finish before the new one starts (no double-billing an entitlement the
// customer already paid for), so they push the first billing date out.
// Lower-tier subscriptions are refundable on upgrade: exactly one of them
// — the one paid furthest into the future — yields a proration credit.
//
// # Discounts
//
// Two discount variants exist. The previous-subscription discount credits
// the remaining paid value of a superseded subscription. The coupon
// discount applies an external coupon after eligibility checks
// (redemption budget, start/expiry window, non-zero computed amount).
// Ineligibility is a normal nil outcome, never an error.
//
// Coupon redemptions are counted at confirmation time by pkg/processor —
// a coupon attached to a draft that never syncs costs nothing.
//
// # Related Packages
//
//   - pkg/customer: the aggregate the factory mutates
//   - pkg/processor: confirms discounts and counts redemptions
//   - pkg/storage: Postgres-backed coupon repository
package billing
