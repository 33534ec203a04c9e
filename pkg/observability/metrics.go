package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus metric family the service exports.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Gateway synchronization metrics
	SyncOperationsTotal *prometheus.CounterVec
	SyncDuration        *prometheus.HistogramVec

	// Store metrics
	StoreOperationsTotal *prometheus.CounterVec
	StoreErrorsTotal     *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business metrics
	CouponRedemptionsTotal prometheus.Counter
	CouponsActive          prometheus.Gauge
	CustomersTotal         prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metric families on the given
// registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscriptions_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "subscriptions_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SyncOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscriptions_sync_operations_total",
				Help: "Gateway synchronization operations by outcome",
			},
			[]string{"operation", "status"},
		),
		SyncDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "subscriptions_sync_duration_seconds",
				Help:    "Gateway synchronization duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscriptions_store_operations_total",
				Help: "Local store operations",
			},
			[]string{"operation"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscriptions_store_errors_total",
				Help: "Local store operation failures",
			},
			[]string{"operation"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscriptions_cache_hits_total",
				Help: "Cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscriptions_cache_misses_total",
				Help: "Cache misses by cache name",
			},
			[]string{"cache"},
		),
		CouponRedemptionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "subscriptions_coupon_redemptions_total",
				Help: "Coupon redemptions confirmed by the gateway",
			},
		),
		CouponsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "subscriptions_coupons_active",
				Help: "Coupons currently inside their redemption window",
			},
		),
		CustomersTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "subscriptions_customers_total",
				Help: "Customer aggregates in the local store",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SyncOperationsTotal,
		m.SyncDuration,
		m.StoreOperationsTotal,
		m.StoreErrorsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CouponRedemptionsTotal,
		m.CouponsActive,
		m.CustomersTotal,
	)

	return m
}

// Handler serves the metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSync records one gateway operation.
func (m *Metrics) ObserveSync(operation, status string, elapsed time.Duration) {
	m.SyncOperationsTotal.WithLabelValues(operation, status).Inc()
	m.SyncDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
