package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// HealthChecker aggregates named dependency probes for liveness and
// readiness endpoints.
type HealthChecker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// NewHealthChecker creates a checker with a per-probe timeout.
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthChecker{
		checks:  make(map[string]CheckFunc),
		timeout: timeout,
	}
}

// Register adds a named probe.
func (h *HealthChecker) Register(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Check runs every probe and returns the per-probe failures.
func (h *HealthChecker) Check(ctx context.Context) map[string]error {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	failures := make(map[string]error)
	for name, check := range checks {
		probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
		if err := check(probeCtx); err != nil {
			failures[name] = err
		}
		cancel()
	}
	return failures
}

// LivenessHandler always reports ok; it answers "is the process up".
func (h *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// ReadinessHandler reports 503 with per-probe details when any dependency
// is failing.
func (h *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failures := h.Check(r.Context())

		status := http.StatusOK
		body := map[string]interface{}{"status": "ready"}
		if len(failures) > 0 {
			status = http.StatusServiceUnavailable
			details := make(map[string]string, len(failures))
			for name, err := range failures {
				details[name] = err.Error()
			}
			body = map[string]interface{}{"status": "degraded", "failures": details}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
