// Package config loads the Foldline shell configuration.
//
// # Overview
//
// The shell needs to know how to launch the backend process and where to put
// its output. Everything has a default, so no file is required.
//
// # Resolution Order
//
//  1. Defaults (Default)
//  2. ~/.config/foldline/config.toml, or the path passed to Load
//  3. FOLDLINE_* environment variables
//
// Empty or whitespace-only values in the file or environment leave the
// previous value in place.
//
// # TOML Format
//
//	dev_mode = false
//	python = "python3"
//	backend_script = "backend/main.py"
//	backend_binary = "bin/python_backend"
//	port_min = 8000
//	port_max = 9000
//	log_dir = "~/.local/share/foldline/logs"
//	data_root = "~/.local/share/foldline/data"
//	health_timeout = 15
//
// health_timeout is in seconds.
//
// # Environment Overrides
//
//   - FOLDLINE_DEV_MODE
//   - FOLDLINE_PYTHON
//   - FOLDLINE_BACKEND_SCRIPT
//   - FOLDLINE_BACKEND_BINARY
//   - FOLDLINE_LOG_DIR
//   - FOLDLINE_DATA_ROOT
//
// # Launch Command
//
// In dev mode the backend is run as "<python> <backend_script> --port N".
// Otherwise the bundled binary is run as "<backend_binary> --port N".
// BackendCommand returns everything except the port flag.
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML parse failures ("parse
// config: ..."), malformed environment values ("parse env: ...") and an
// invalid port range. A missing file is not an error.
package config
