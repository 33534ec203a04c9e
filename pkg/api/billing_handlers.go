package api

import (
	"net/http"

	"github.com/enhancv/go-subscriptions/pkg/billing"
	"github.com/enhancv/go-subscriptions/pkg/httputil"
)

// listPlans handles GET /plans
func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.catalog.Plans())
}

// createCoupon handles POST /coupons
func (s *Server) createCoupon(w http.ResponseWriter, r *http.Request) {
	var coupon billing.Coupon
	if !httputil.ParseJSONOrError(w, r, &coupon) {
		return
	}
	if !httputil.RequireNonEmpty(w, coupon.ID, "id") {
		return
	}
	if coupon.UsedCountMax <= 0 {
		httputil.WriteBadRequest(w, "usedCountMax must be positive")
		return
	}

	if err := s.coupons.Put(r.Context(), &coupon); err != nil {
		s.writeDomainError(w, err)
		return
	}

	httputil.WriteCreated(w, coupon)
}

// listCoupons handles GET /coupons
func (s *Server) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := s.coupons.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	httputil.WriteSuccess(w, coupons)
}

// getCoupon handles GET /coupons/{id}
func (s *Server) getCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	coupon, err := s.coupons.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	httputil.WriteSuccess(w, coupon)
}

// deleteCoupon handles DELETE /coupons/{id}
func (s *Server) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.coupons.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
