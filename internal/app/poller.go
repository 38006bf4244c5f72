package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/foldline/foldline/internal/logging"
	"github.com/foldline/foldline/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// HealthChecker is satisfied by *backend.Connector. Health returns nil when
// the backend is healthy and the cause otherwise.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// StartPoller launches a background goroutine that checks backend health and
// records each result in store. Failed checks back off exponentially. The
// returned channel is closed once the goroutine exits after ctx is done.
func StartPoller(ctx context.Context, store *state.Store, checker HealthChecker, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger = logging.OrNop(logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			failures := checkOnce(ctx, store, checker, logger)
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
	return done
}

// checkOnce runs one health check and returns the consecutive failure count.
func checkOnce(ctx context.Context, store *state.Store, checker HealthChecker, logger *zap.Logger) int {
	wasOffline := store.Snapshot().IsOffline()
	err := checker.Health(ctx)
	if ctx.Err() != nil {
		return store.Snapshot().ConsecutiveFailures
	}
	store.Update(err == nil, err)

	snap := store.Snapshot()
	switch {
	case wasOffline && !snap.IsOffline():
		logger.Info("backend back online", zap.Int("port", snap.Port))
	case !wasOffline && snap.IsOffline():
		logger.Warn("backend offline", zap.Int("port", snap.Port), zap.Int("failures", snap.ConsecutiveFailures))
	}
	return snap.ConsecutiveFailures
}

// calculateBackoff doubles interval per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	if failures >= 16 {
		return maxBackoff
	}
	backoff := interval << failures
	if backoff <= 0 || backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}

// WaitHealthy checks checker every interval until it reports healthy or ctx
// is done.
func WaitHealthy(ctx context.Context, checker HealthChecker, interval time.Duration) error {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := checker.Health(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("backend did not become healthy: %w", errors.Join(ctx.Err(), err))
		case <-ticker.C:
		}
	}
}
