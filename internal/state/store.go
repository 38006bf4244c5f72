package state

import (
	"fmt"
	"sync"
	"time"
)

// offlineThreshold is the number of consecutive failed health checks after which the
// backend is considered offline.
const offlineThreshold = 2

// Snapshot represents the latest backend health observation.
type Snapshot struct {
	Port                int
	Healthy             bool
	HasCheck            bool
	LastChecked         time.Time
	LastHealthy         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has failed multiple health checks in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= offlineThreshold
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetPort records the port the backend was started on.
func (s *Store) SetPort(port int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Port = port
}

// Update records the outcome of one health check. err may carry detail for an
// unhealthy result; it is ignored when healthy is true.
func (s *Store) Update(healthy bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.snapshot.HasCheck = true
	s.snapshot.LastChecked = now
	s.snapshot.Healthy = healthy

	if healthy {
		s.snapshot.LastHealthy = now
		s.snapshot.LastError = nil
		s.snapshot.ConsecutiveFailures = 0
		return
	}
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
