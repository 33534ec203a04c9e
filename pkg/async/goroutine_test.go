package async

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/enhancv/go-subscriptions/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func TestSafeGo_Success(t *testing.T) {
	ctx := context.Background()
	executed := atomic.Bool{}

	SafeGo(ctx, testLogger(), 1*time.Second, "test task", func(ctx context.Context) error {
		executed.Store(true)
		return nil
	})

	// Wait for goroutine to complete
	time.Sleep(100 * time.Millisecond)

	if !executed.Load() {
		t.Error("SafeGo did not execute function")
	}
}

func TestSafeGo_WithError(t *testing.T) {
	ctx := context.Background()
	executed := atomic.Bool{}

	SafeGo(ctx, testLogger(), 1*time.Second, "test task", func(ctx context.Context) error {
		executed.Store(true)
		return errors.New("test error")
	})

	// Wait for goroutine to complete
	time.Sleep(100 * time.Millisecond)

	if !executed.Load() {
		t.Error("SafeGo did not execute function despite error")
	}
	// Error should be logged but not crash
}

func TestSafeGo_Timeout(t *testing.T) {
	ctx := context.Background()
	started := atomic.Bool{}
	completed := atomic.Bool{}

	SafeGo(ctx, testLogger(), 50*time.Millisecond, "test task", func(ctx context.Context) error {
		started.Store(true)
		select {
		case <-time.After(200 * time.Millisecond):
			completed.Store(true)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	time.Sleep(300 * time.Millisecond)

	if !started.Load() {
		t.Error("SafeGo did not start function")
	}
	if completed.Load() {
		t.Error("SafeGo did not enforce timeout")
	}
}

func TestSafeGo_PanicRecovery(t *testing.T) {
	ctx := context.Background()

	SafeGo(ctx, testLogger(), 1*time.Second, "test task", func(ctx context.Context) error {
		panic("deliberate panic")
	})

	// The panic must be recovered inside the goroutine; reaching this
	// point without crashing is the assertion.
	time.Sleep(100 * time.Millisecond)
}

func TestSafeGoNoError(t *testing.T) {
	ctx := context.Background()
	executed := atomic.Bool{}

	SafeGoNoError(ctx, testLogger(), 1*time.Second, "test task", func(ctx context.Context) {
		executed.Store(true)
	})

	time.Sleep(100 * time.Millisecond)

	if !executed.Load() {
		t.Error("SafeGoNoError did not execute function")
	}
}
