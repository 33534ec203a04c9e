package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/enhancv/go-subscriptions/pkg/observability"
)

// SafeGo executes a function in a goroutine with:
// - Context cancellation support
// - Panic recovery
// - Timeout enforcement
// - Error logging
//
// Use this instead of bare `go func()` to prevent goroutine leaks and crashes.
//
// Example:
//
//	async.SafeGo(r.Context(), logger, 5*time.Second, "customer gauge refresh", func(ctx context.Context) error {
//	    return refreshGauge(ctx)
//	})
func SafeGo(parentCtx context.Context, logger *observability.Logger, timeout time.Duration, taskName string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(parentCtx, timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in background task",
					"task", taskName,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()))
			}
		}()

		if err := fn(ctx); err != nil {
			// Caller decides whether the failure is critical; here it is
			// only recorded.
			logger.WithError(err).Warn("background task failed", "task", taskName)
		}
	}()
}

// SafeGoNoError is like SafeGo but for functions that don't return errors.
// Still provides panic recovery and context support.
func SafeGoNoError(parentCtx context.Context, logger *observability.Logger, timeout time.Duration, taskName string, fn func(context.Context)) {
	SafeGo(parentCtx, logger, timeout, taskName, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}
