package api

import (
	"errors"
	"net/http"

	"github.com/enhancv/go-subscriptions/pkg/billing"
	"github.com/enhancv/go-subscriptions/pkg/customer"
	"github.com/enhancv/go-subscriptions/pkg/httputil"
	"github.com/enhancv/go-subscriptions/pkg/processor"
	"github.com/enhancv/go-subscriptions/pkg/storage"
)

// writeDomainError maps domain errors onto status codes. Anything
// unrecognized is a 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *customer.ValidationError
	var consistencyErr *customer.ConsistencyError
	var gatewayErr *processor.GatewayError

	switch {
	case errors.As(err, &validationErr):
		httputil.WriteBadRequest(w, validationErr.Error())
	case errors.As(err, &consistencyErr):
		httputil.WriteConflict(w, consistencyErr.Error())
	case errors.Is(err, storage.ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, billing.ErrCouponNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.As(err, &gatewayErr):
		httputil.WriteBadGateway(w, gatewayErr.Error())
	default:
		s.logger.WithError(err).Error("unexpected error")
		httputil.WriteInternalError(w, err)
	}
}
