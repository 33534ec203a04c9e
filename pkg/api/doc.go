// Package api exposes the customer and billing operations over HTTP.
//
// # Overview
//
// The server owns a gorilla/mux router and wires customer CRUD, gateway
// synchronization and coupon management onto it. Handlers stay thin: they
// parse the request, call into pkg/billing and pkg/processor, and map
// domain errors onto status codes.
//
// # Routes
//
// All routes live under the /api/v1 prefix. Customer aggregate:
//
//	POST   /customers
//	GET    /customers
//	GET    /customers/{id}
//	PUT    /customers/{id}
//	DELETE /customers/{id}
//
// Gateway synchronization:
//
//	POST /customers/{id}/load
//	POST /customers/{id}/sync
//	POST /customers/{id}/subscriptions
//	POST /customers/{id}/subscriptions/{subId}/cancel
//	POST /customers/{id}/transactions/{txId}/refund
//
// Billing:
//
//	GET    /plans
//	GET    /coupons
//	POST   /coupons
//	GET    /coupons/{id}
//	DELETE /coupons/{id}
//
// # Error Mapping
//
// Domain errors surface as conventional status codes: validation failures
// are 400, unknown records 404, dangling references 409, and gateway
// failures 502.
//
// # Related Packages
//
//   - pkg/processor: the sync operations behind /load, /sync, cancel, refund
//   - pkg/billing: plan catalog, subscription factory, coupons
//   - pkg/storage: aggregate and coupon persistence
package api
