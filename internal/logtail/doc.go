// Package logtail reads and follows the backend log file.
//
// # Overview
//
// The host supervisor redirects the backend's stdout and stderr into
// <log_dir>/backend.log. This package backs the `foldline logs` command:
// it prints the tail of that file and can keep streaming new lines.
//
// # Reading
//
// Read extracts the last maxLines from a file with a ring buffer of size
// maxLines, so memory stays O(maxLines) regardless of file size:
//
//	lines, err := logtail.Read(cfg.BackendLogPath(), 200)
//
// A missing file is not an error; it yields no lines. A non-positive
// maxLines returns the whole file.
//
// # Following
//
// Follow watches the log directory with fsnotify and hands each complete
// appended line to a callback until the context is cancelled. Partial
// writes are buffered until their newline arrives. When the file is
// recreated or truncated (a fresh backend start), reading restarts at
// offset zero.
//
// # Levels
//
// LevelOf recognises the severity token in python logging and uvicorn
// output. Rendering the level is left to the ui package.
package logtail
