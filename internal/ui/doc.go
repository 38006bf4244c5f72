// Package ui renders Foldline's terminal output.
//
// Two palettes exist, one per theme preference (light and dark), both
// derived from the nightfox family. Styles carries the pre-built lipgloss
// styles used by the CLI to render the backend status line, highlight log
// severities and decorate the file picker.
package ui
