// Package app provides the orchestration layer for the Foldline shell.
//
// # Overview
//
// This package wires together configuration, the host process supervisor,
// the backend connector and the health store. It is the composition root
// used by every CLI command that needs a running backend.
//
// # Components
//
//   - app.go: Session (Open/Start/Close) and Run
//   - poller.go: background health poller, backoff, WaitHealthy
//
// # Data Flow
//
//	┌──────────────┐
//	│   Open()     │ Wire everything, start nothing
//	└──────┬───────┘
//	       ├─────> config.Load()          Read foldline config
//	       ├─────> host.NewSupervisor()   Process owner
//	       ├─────> backend.NewConnector() Loopback HTTP client
//	       └─────> state.Store{}          Health snapshot
//
//	┌──────────────┐
//	│   Start()    │
//	└──────┬───────┘
//	       ├─────> Connector.Initialize() Spawn backend, cache port
//	       └─────> WaitHealthy()          Poll until /status answers
//
//	Run(): Start() → StartPoller() → wait for ctx → Close()
//
// # Polling Behavior
//
// The poller calls Connector.Health at the configured interval
// (default 2 seconds). Each consecutive failure doubles the delay up to 30
// seconds; the first success resets it. Transitions into and out of the
// offline state (two consecutive failures) are logged once.
//
// # Error Handling
//
// Fatal (returned from Run):
//   - configuration errors
//   - the host failing to start the backend
//
// Logged and tolerated:
//   - the backend not becoming healthy within health_timeout
//   - failed health checks while polling
//
// # Usage Example
//
//	session, err := app.Open(app.Options{Logger: logger})
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//	if _, err := session.Start(ctx); err != nil {
//		return err
//	}
//	status, err := backend.FetchStatus(ctx, session.Connector)
package app
