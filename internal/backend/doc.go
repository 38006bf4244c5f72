// Package backend provides the connector between the Foldline shell and the
// local backend process.
//
// # Overview
//
// The backend is a separate process started on demand by the host runtime
// (see package host). The connector asks the host to start it once, caches
// the TCP port the host reports, and then talks to the backend over plain
// HTTP on the loopback interface.
//
// # Lifecycle
//
// A Connector has two states:
//
//	Uninitialized ──Initialize() ok──> Connected(port)
//
// Connected is terminal for the lifetime of the value. There is no teardown
// or reconnect path; the port never changes once cached.
//
//   - Initialize: memoized. The first successful call caches the port. Later
//     calls return it without contacting the host. Concurrent first calls
//     share a single in-flight start request (singleflight). A failed start
//     caches nothing and returns the host's error unchanged, so the next
//     call retries.
//   - BaseURL, Get, Post: only valid when Connected. Called earlier they
//     return ErrUninitialized.
//   - CheckHealth: valid in both states, never fails.
//   - Health: CheckHealth with the cause kept, for the health store.
//
// # Requests
//
// Request URLs are built as "http://127.0.0.1:<port>" + path. The path is
// appended verbatim, including any query string; callers encode their own
// queries (the typed helpers in types.go do this with url.Values).
//
// Every request carries:
//   - Accept: application/json
//   - User-Agent: foldline/0.1 (WithUserAgent overrides it)
//   - X-Request-ID: a fresh UUID, for correlating with backend logs
//
// POST requests additionally carry Content-Type: application/json and the
// JSON encoding of the body. An empty map encodes to {}.
//
// # Error Handling
//
//   - ErrUninitialized: request issued before a successful Initialize
//   - host errors: returned from Initialize as-is
//   - *StatusError: non-2xx response, message "API error: <status text>"
//   - transport errors: returned as produced by net/http (*url.Error)
//   - decode errors: returned as produced by encoding/json
//
// CheckHealth collapses every failure, as well as the uninitialized state,
// into false. Health keeps them apart: ErrUninitialized, ErrUnhealthy for an
// explicit false from the host, or the host's own error.
//
// A response body is read in full and must hold exactly one JSON value;
// trailing data is a decode error.
//
// # Usage Example
//
//	conn := backend.NewConnector(supervisor, backend.WithLogger(logger))
//	if _, err := conn.Initialize(ctx); err != nil {
//		return fmt.Errorf("start backend: %w", err)
//	}
//	status, err := backend.FetchStatus(ctx, conn)
//
// # Testing Considerations
//
// The Host interface is small enough to fake inline. Use WithHTTPClient with
// a custom RoundTripper to assert exact request URLs for a fixed port, or an
// httptest.Server and a fake host that reports the server's port for full
// round trips.
package backend
