// Package state holds the latest backend health observation.
//
// # Overview
//
// The health poller (package app) writes one Update per health check; CLI commands
// and status output read Snapshot. Store is safe for concurrent use and
// usable as a zero value.
//
// # Update Semantics
//
//	store.Update(true, nil)
//	→ Healthy = true, LastHealthy = now, LastError = nil, ConsecutiveFailures = 0
//
//	store.Update(false, err)
//	→ Healthy = false, LastError = err, ConsecutiveFailures++
//	→ LastHealthy unchanged
//
// Both record LastChecked = now.
//
// IsOffline reports two or more consecutive failures, so a single dropped
// check does not flip the status.
//
// # Copies
//
// Snapshot returns a value copy. The error is re-wrapped so callers never
// share the stored instance; errors.Is still matches the original.
package state
