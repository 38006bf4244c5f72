package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/foldline/foldline/internal/backend"
	"github.com/foldline/foldline/internal/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeChecker struct {
	healthy atomic.Bool
	calls   atomic.Int32
}

func (f *fakeChecker) Health(ctx context.Context) error {
	f.calls.Add(1)
	if f.healthy.Load() {
		return nil
	}
	return backend.ErrUnhealthy
}

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second},
		{"many failures capped", 10, 30 * time.Second},
		{"shift overflow capped", 80, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 64; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff || got <= 0 {
			t.Errorf("calculateBackoff(%d, %v) = %v, outside (0, %v]", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestStartPoller_RecordsHealthAndStops(t *testing.T) {
	checker := &fakeChecker{}
	checker.healthy.Store(true)
	store := &state.Store{}

	ctx, cancel := context.WithCancel(context.Background())
	done := StartPoller(ctx, store, checker, 10*time.Millisecond, nil)

	deadline := time.Now().Add(2 * time.Second)
	for checker.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	snap := store.Snapshot()
	if !snap.HasCheck || !snap.Healthy {
		t.Fatalf("snapshot = %#v, want healthy check recorded", snap)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestStartPoller_CountsFailures(t *testing.T) {
	checker := &fakeChecker{}
	store := &state.Store{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartPoller(ctx, store, checker, time.Millisecond, nil)

	deadline := time.Now().Add(2 * time.Second)
	for !store.Snapshot().IsOffline() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !store.Snapshot().IsOffline() {
		t.Fatalf("store never went offline: %#v", store.Snapshot())
	}
	if err := store.Snapshot().LastError; !errors.Is(err, backend.ErrUnhealthy) {
		t.Fatalf("LastError = %v, want the health check cause", err)
	}

	checker.healthy.Store(true)
	for store.Snapshot().IsOffline() && time.Now().Before(deadline.Add(2*time.Second)) {
		time.Sleep(time.Millisecond)
	}
	if store.Snapshot().IsOffline() {
		t.Fatalf("store did not recover: %#v", store.Snapshot())
	}

	cancel()
	<-done
}

func TestWaitHealthy(t *testing.T) {
	checker := &fakeChecker{}
	go func() {
		time.Sleep(20 * time.Millisecond)
		checker.healthy.Store(true)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := WaitHealthy(ctx, checker, 5*time.Millisecond); err != nil {
		t.Fatalf("WaitHealthy returned error: %v", err)
	}
}

func TestWaitHealthy_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := WaitHealthy(ctx, &fakeChecker{}, 5*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitHealthy error = %v, want deadline exceeded", err)
	}
	if !errors.Is(err, backend.ErrUnhealthy) {
		t.Fatalf("WaitHealthy error = %v, want the last check cause", err)
	}
}
