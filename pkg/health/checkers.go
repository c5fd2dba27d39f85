package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// Pinger is the slice of a connection pool the database check needs.
// *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseCheck returns a readiness check that pings the database.
func DatabaseCheck(db Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return errors.Wrap(err, "ping database")
		}
		return nil
	}
}

// GoroutineCountCheck returns a liveness check that fails when the goroutine
// count exceeds threshold, a cheap proxy for goroutine leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("%d goroutines, threshold %d", n, threshold)
		}
		return nil
	}
}

// HeapAllocCheck returns a liveness check that fails when live heap
// allocations exceed maxBytes.
func HeapAllocCheck(maxBytes uint64) CheckFunc {
	return func(_ context.Context) error {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if ms.HeapAlloc > maxBytes {
			return errors.Errorf("heap alloc %d bytes, threshold %d", ms.HeapAlloc, maxBytes)
		}
		return nil
	}
}
