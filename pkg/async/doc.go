// Package async provides safe concurrent execution primitives for background tasks.
//
// # Overview
//
// This package handles goroutine lifecycle management with panic recovery, timeout
// enforcement, context cancellation, and error logging.
//
// # Key Functions
//
// SafeGo: Execute function in goroutine with safety features
//
//	async.SafeGo(ctx, logger, 30*time.Second, "gauge refresh", func(ctx context.Context) error {
//		// Task code with automatic panic recovery and timeout
//		return refreshGauges(ctx)
//	})
//
// # Features
//
// Panic Recovery: Captures panics with stack traces
// Timeout Enforcement: Per-task timeouts
// Context Cancellation: Respects context cancellation
//
// # Use Cases
//
// Metric gauge refreshes, cache fills, scheduled sweeps
//
// # Related Packages
//
//   - pkg/api: Uses SafeGo to refresh gauges after writes
package async
