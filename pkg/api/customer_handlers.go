package api

import (
	"context"
	"net/http"
	"time"

	"github.com/enhancv/go-subscriptions/pkg/async"
	"github.com/enhancv/go-subscriptions/pkg/customer"
	"github.com/enhancv/go-subscriptions/pkg/httputil"
)

// writeCustomer serializes the aggregate through the registry so the
// tagged union variants carry their discriminators.
func (s *Server) writeCustomer(w http.ResponseWriter, status int, c *customer.Customer) {
	document, err := s.registry.EncodeCustomer(c)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteRawJSON(w, status, document)
}

// refreshCustomerGauge updates the customer count gauge off the request
// path.
func (s *Server) refreshCustomerGauge() {
	if s.metrics == nil {
		return
	}
	async.SafeGo(context.Background(), s.svcLog, 5*time.Second, "customer gauge refresh", func(ctx context.Context) error {
		_, total, err := s.store.List(ctx, 1, 0)
		if err != nil {
			return err
		}
		s.metrics.CustomersTotal.Set(float64(total))
		return nil
	})
}

type createCustomerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IPAddress string `json:"ipAddress"`
}

// createCustomer handles POST /customers
func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	c := customer.New(req.Name, req.Email)
	c.Phone = req.Phone
	c.IPAddress = req.IPAddress

	if err := c.Validate(); err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.store.Put(r.Context(), c); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.refreshCustomerGauge()
	s.writeCustomer(w, http.StatusCreated, c)
}

// listCustomers handles GET /customers
func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.ParseQueryInt(r, "limit", 100)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	offset, err := httputil.ParseQueryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	ids, total, err := s.store.List(r.Context(), limit, offset)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"customers": ids,
		"total":     total,
	})
}

// getCustomer handles GET /customers/{id}
func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeCustomer(w, http.StatusOK, c)
}

type updateCustomerRequest struct {
	Name                   *string `json:"name"`
	Email                  *string `json:"email"`
	Phone                  *string `json:"phone"`
	IPAddress              *string `json:"ipAddress"`
	DefaultPaymentMethodID *string `json:"defaultPaymentMethodId"`
}

// updateCustomer handles PUT /customers/{id}. Only identity fields are
// mutable here; entities change through the sync operations.
func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req updateCustomerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.IPAddress != nil {
		c.IPAddress = *req.IPAddress
	}
	if req.DefaultPaymentMethodID != nil {
		c.DefaultPaymentMethodID = *req.DefaultPaymentMethodID
	}

	if err := c.Validate(); err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.store.Put(r.Context(), c); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeCustomer(w, http.StatusOK, c)
}

// deleteCustomer handles DELETE /customers/{id}
func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.refreshCustomerGauge()
	httputil.WriteNoContent(w)
}

// loadCustomer handles POST /customers/{id}/load
func (s *Server) loadCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	loaded, err := s.sync.LoadProcessor(r.Context(), c)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeCustomer(w, http.StatusOK, loaded)
}

// syncCustomer handles POST /customers/{id}/sync
func (s *Server) syncCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	synced, err := s.sync.SaveProcessor(r.Context(), c)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeCustomer(w, http.StatusOK, synced)
}
