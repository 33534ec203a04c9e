// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for JSON encoding/decoding, error responses,
// parameter parsing, validation, and common HTTP middleware patterns.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteSuccess(w, data)
//	httputil.WriteCreated(w, resource)
//	httputil.WriteRawJSON(w, http.StatusOK, document)
//
// Error responses:
//
//	httputil.WriteError(w, http.StatusBadRequest, err)
//	httputil.WriteBadRequest(w, "Invalid input")
//	httputil.WriteConflict(w, "dangling reference")
//	httputil.WriteBadGateway(w, "gateway unreachable")
//
// # Request Parsing
//
// JSON parsing:
//
//	var req addSubscriptionRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// Path and query parameters:
//
//	id, ok := httputil.ParsePathStringOrError(w, r, "id")
//	limit, err := httputil.ParseQueryInt(r, "limit", 100)
//
// # Middleware
//
// Recovery, content type enforcement and body limits compose with Chain:
//
//	handler := httputil.Chain(
//		httputil.RecoveryMiddleware(logger),
//		httputil.ContentTypeMiddleware,
//		httputil.MaxBytesMiddleware(1<<20),
//	)(router)
//
// # Related Packages
//
//   - pkg/api: the HTTP surface built on these helpers
package httputil
