package state

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestStore_HealthyUpdate(t *testing.T) {
	var s Store
	s.SetPort(8500)

	before := time.Now()
	s.Update(true, nil)

	snap := s.Snapshot()
	if snap.Port != 8500 {
		t.Fatalf("Port = %d, want 8500", snap.Port)
	}
	if !snap.Healthy || !snap.HasCheck {
		t.Fatalf("snapshot = %#v, want healthy with a check recorded", snap)
	}
	if snap.LastChecked.Before(before) || snap.LastHealthy.Before(before) {
		t.Fatalf("timestamps not updated: %#v", snap)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestStore_FailureKeepsLastHealthy(t *testing.T) {
	var s Store
	s.Update(true, nil)
	prev := s.Snapshot()

	origErr := errors.New("boom")
	s.Update(false, origErr)

	snap := s.Snapshot()
	if snap.Healthy {
		t.Fatalf("Healthy = true after failure")
	}
	if !snap.LastHealthy.Equal(prev.LastHealthy) {
		t.Fatalf("LastHealthy changed on failure: got %v want %v", snap.LastHealthy, prev.LastHealthy)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("cloned error should still wrap the original")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() || snap.HasCheck {
		t.Fatalf("zero snapshot = %#v", snap)
	}

	s.Update(false, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	s.Update(false, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", snap.ConsecutiveFailures)
	}
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil for a plain false result", snap.LastError)
	}

	s.Update(true, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("snapshot after success = %#v, want counter reset", snap)
	}
}
