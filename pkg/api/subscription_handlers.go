package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/enhancv/go-subscriptions/pkg/httputil"
)

type addSubscriptionRequest struct {
	PlanID          string    `json:"planId"`
	PaymentMethodID string    `json:"paymentMethodId"`
	CouponID        string    `json:"couponId"`
	ActiveDate      time.Time `json:"activeDate"`
}

// addSubscription handles POST /customers/{id}/subscriptions. The new
// subscription is created locally and immediately pushed to the gateway.
func (s *Server) addSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req addSubscriptionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.PlanID, "planId") {
		return
	}

	plan, ok := s.catalog.Plan(req.PlanID)
	if !ok {
		httputil.WriteBadRequest(w, "unknown plan: "+req.PlanID)
		return
	}

	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	paymentMethod := c.DefaultPaymentMethod()
	if req.PaymentMethodID != "" {
		paymentMethod = c.PaymentMethodByID(req.PaymentMethodID)
		if paymentMethod == nil {
			httputil.WriteConflict(w, "unknown payment method: "+req.PaymentMethodID)
			return
		}
	}

	sub := s.factory.AddSubscription(c, plan, paymentMethod, req.ActiveDate)
	if req.CouponID != "" {
		if _, err := s.factory.RedeemCoupon(r.Context(), sub, req.CouponID, req.ActiveDate); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	synced, err := s.sync.SaveProcessor(r.Context(), c)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeCustomer(w, http.StatusCreated, synced)
}

// cancelSubscription handles POST /customers/{id}/subscriptions/{subId}/cancel
func (s *Server) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	subID, ok := httputil.ParsePathStringOrError(w, r, "subId")
	if !ok {
		return
	}

	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	canceled, err := s.sync.CancelProcessor(r.Context(), c, subID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeCustomer(w, http.StatusOK, canceled)
}

type refundTransactionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// refundTransaction handles POST /customers/{id}/transactions/{txId}/refund.
// A zero amount requests a full refund.
func (s *Server) refundTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	txID, ok := httputil.ParsePathStringOrError(w, r, "txId")
	if !ok {
		return
	}

	var req refundTransactionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Amount.IsNegative() {
		httputil.WriteBadRequest(w, "amount must not be negative")
		return
	}

	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	refunded, err := s.sync.RefundProcessor(r.Context(), c, txID, req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeCustomer(w, http.StatusOK, refunded)
}
