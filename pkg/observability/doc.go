// Package observability provides the structured logger, Prometheus
// metrics and health checks shared by the service.
//
// # Logging
//
// Logger wraps stdlib slog with JSON output and leveled helpers:
//
//	logger := observability.NewLogger(observability.InfoLevel, nil)
//	logger.WithField("customer_id", id).Info("aggregate synced")
//
// # Metrics
//
// NewMetrics registers every metric family on a caller-owned registry, so
// tests can use isolated registries:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.SyncOperationsTotal.WithLabelValues("save", "success").Inc()
//
// # Health
//
// HealthChecker aggregates named dependency probes behind /healthz and
// /readyz handlers.
package observability
