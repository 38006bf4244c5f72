// Package host implements the privileged runtime capabilities the backend
// connector relies on: launching the backend process, reporting its port,
// probing its health, and stopping it.
//
// In dev mode the backend runs as "python3 backend/main.py --port N"; a
// release build runs the bundled "bin/python_backend --port N". The port is
// drawn at random from the configured range. Child output is appended to
// the backend log file so it can be read with package logtail.
//
// A Supervisor manages at most one child. StartBackend returns the running
// child's port instead of spawning a second one.
package host
