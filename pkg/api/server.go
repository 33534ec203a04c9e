package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/enhancv/go-subscriptions/pkg/billing"
	"github.com/enhancv/go-subscriptions/pkg/customer"
	"github.com/enhancv/go-subscriptions/pkg/httputil"
	"github.com/enhancv/go-subscriptions/pkg/observability"
	"github.com/enhancv/go-subscriptions/pkg/processor"
	"github.com/enhancv/go-subscriptions/pkg/storage"
)

// Config carries the server dependencies.
type Config struct {
	Store    storage.CustomerStore
	Coupons  storage.CouponStore
	Catalog  *billing.Catalog
	Factory  *billing.Factory
	Sync     *processor.Sync
	Registry *customer.Registry

	// Logger is the request-level logger; a default is created when nil.
	Logger *logrus.Logger
	// ServiceLogger backs panic recovery; a default is created when nil.
	ServiceLogger *observability.Logger
	// Metrics may be nil to disable HTTP instrumentation.
	Metrics *observability.Metrics
}

// Server represents our API server
type Server struct {
	store    storage.CustomerStore
	coupons  storage.CouponStore
	catalog  *billing.Catalog
	factory  *billing.Factory
	sync     *processor.Sync
	registry *customer.Registry
	router   *mux.Router
	logger   *logrus.Logger
	svcLog   *observability.Logger
	metrics  *observability.Metrics
}

// NewServer creates a new API server
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("customer store is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Sync == nil {
		return nil, fmt.Errorf("sync is required")
	}
	if cfg.Factory == nil {
		return nil, fmt.Errorf("subscription factory is required")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("plan catalog is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.ServiceLogger == nil {
		cfg.ServiceLogger = observability.NewLogger(observability.InfoLevel, nil)
	}

	s := &Server{
		store:    cfg.Store,
		coupons:  cfg.Coupons,
		catalog:  cfg.Catalog,
		factory:  cfg.Factory,
		sync:     cfg.Sync,
		registry: cfg.Registry,
		router:   mux.NewRouter(),
		logger:   cfg.Logger,
		svcLog:   cfg.ServiceLogger,
		metrics:  cfg.Metrics,
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	r := s.router.PathPrefix("/api/v1").Subrouter()

	// Customer routes
	r.HandleFunc("/customers", s.createCustomer).Methods("POST")
	r.HandleFunc("/customers", s.listCustomers).Methods("GET")
	r.HandleFunc("/customers/{id}", s.getCustomer).Methods("GET")
	r.HandleFunc("/customers/{id}", s.updateCustomer).Methods("PUT")
	r.HandleFunc("/customers/{id}", s.deleteCustomer).Methods("DELETE")

	// Gateway synchronization routes
	r.HandleFunc("/customers/{id}/load", s.loadCustomer).Methods("POST")
	r.HandleFunc("/customers/{id}/sync", s.syncCustomer).Methods("POST")
	r.HandleFunc("/customers/{id}/subscriptions", s.addSubscription).Methods("POST")
	r.HandleFunc("/customers/{id}/subscriptions/{subId}/cancel", s.cancelSubscription).Methods("POST")
	r.HandleFunc("/customers/{id}/transactions/{txId}/refund", s.refundTransaction).Methods("POST")

	// Billing routes
	r.HandleFunc("/plans", s.listPlans).Methods("GET")
	if s.coupons != nil {
		r.HandleFunc("/coupons", s.createCoupon).Methods("POST")
		r.HandleFunc("/coupons", s.listCoupons).Methods("GET")
		r.HandleFunc("/coupons/{id}", s.getCoupon).Methods("GET")
		r.HandleFunc("/coupons/{id}", s.deleteCoupon).Methods("DELETE")
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return httputil.Chain(
		httputil.RecoveryMiddleware(s.svcLog),
		s.loggingMiddleware,
		s.metricsMiddleware,
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(1<<20),
	)(s.router)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// loggingMiddleware writes one access log line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := httputil.WrapResponseWriter(w)

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rw.StatusCode,
			"duration": time.Since(start).String(),
			"remote":   r.RemoteAddr,
		}).Info("request handled")
	})
}

// metricsMiddleware records request counts and latency per route.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := httputil.WrapResponseWriter(w)

		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		s.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, fmt.Sprint(rw.StatusCode)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
