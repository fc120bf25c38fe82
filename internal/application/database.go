package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"thirdcoast.systems/mediafetch/internal/config"
	"thirdcoast.systems/mediafetch/internal/history"
)

var (
	dbOpenBackoffBase  = 1 * time.Second
	dbOpenBackoffScale = 1.618

	openHistory = history.Open
)

func backoff(attempt int) time.Duration {
	return time.Duration(float64(dbOpenBackoffBase) * math.Pow(dbOpenBackoffScale, float64(attempt)))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OpenHistoryWithRetry opens the history database and waits for it to answer
// a ping, backing off between attempts. At least one attempt is made.
func OpenHistoryWithRetry(ctx context.Context, conf config.Config) (*history.Store, error) {
	driver := history.Driver(conf.DatabaseDriver)
	attempts := max(conf.DatabaseRetries, 1)

	var store *history.Store
	var lastErr error

	slog.Info("Connecting to history database", "driver", driver)
	for i := 0; i < attempts; i++ {
		s, err := openHistory(ctx, driver, conf.DatabaseDSN)
		if err == nil {
			store = s
			break
		}
		lastErr = err

		wait := backoff(i)
		slog.Warn("Failed to open history database, retrying", "attempt", i+1, "backoff", wait, "error", err)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	if store == nil {
		return nil, fmt.Errorf("failed to open history database after %d attempts: %w", attempts, lastErr)
	}

	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
		err := store.Ping(pingCtx)
		cancel()
		if err == nil {
			slog.Info("Pinged history database", "driver", driver)
			return store, nil
		}
		lastErr = err

		wait := backoff(i)
		slog.Warn("Failed to ping history database, retrying", "attempt", i+1, "backoff", wait, "error", err)
		if err := sleep(ctx, wait); err != nil {
			store.Close()
			return nil, err
		}
	}

	store.Close()
	return nil, fmt.Errorf("failed to ping history database after %d attempts: %w", attempts, lastErr)
}
