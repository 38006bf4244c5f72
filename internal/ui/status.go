package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foldline/foldline/internal/backend"
	"github.com/foldline/foldline/internal/state"
)

// StatusView is everything the status line shows.
type StatusView struct {
	Snapshot state.Snapshot
	Status   *backend.StatusResponse
	LogPath  string
	Width    int
}

// RenderStatus renders a one-line summary of backend health and data coverage.
func (s Styles) RenderStatus(v StatusView) string {
	sep := "  "
	parts := []string{s.Logo.Render("foldline")}

	snap := v.Snapshot
	switch {
	case !snap.HasCheck:
		parts = append(parts, s.WarningText.Bold(true).Render("Connecting to backend..."))
	case snap.Healthy:
		parts = append(parts, s.SuccessText.Render(fmt.Sprintf("ONLINE :%d", snap.Port)))
	default:
		label := classifyConnectionError(snap.LastError)
		if label == "" {
			label = "UNHEALTHY"
		}
		parts = append(parts, s.DangerText.Render("BACKEND "+label))
		if snap.IsOffline() {
			parts = append(parts, s.WarningText.Bold(true).Render("Retrying..."))
		}
		if !snap.LastChecked.IsZero() {
			parts = append(parts, s.MutedText.Render(snap.LastChecked.Format("15:04:05")))
		}
		if v.LogPath != "" {
			parts = append(parts, s.FaintText.Render("logs")+" "+s.MutedText.Render(truncateMiddle(v.LogPath, 50)))
		}
	}

	if st := v.Status; st != nil && snap.Healthy {
		if !st.DBInitialized {
			parts = append(parts, s.WarningText.Render("database not initialized"))
		} else {
			start, end := st.DateRange()
			parts = append(parts, s.Text.Render(formatRange(start, end)))
		}
		if n := len(st.AvailableMetrics); n > 0 {
			parts = append(parts, s.AccentText.Render(fmt.Sprintf("%d metrics", n)))
		}
	}

	line := strings.Join(parts, sep)
	if v.Width > 0 {
		return s.Header.Width(v.Width).Render(line)
	}
	return line
}

func formatRange(start, end time.Time) string {
	if start.IsZero() && end.IsZero() {
		return "no data"
	}
	return start.Format("2006-01-02") + " → " + end.Format("2006-01-02")
}

func classifyConnectionError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	case errors.Is(err, backend.ErrUninitialized):
		return "NOT STARTED"
	case errors.Is(err, backend.ErrUnhealthy):
		return "OFFLINE"
	default:
		return "ERROR"
	}
}

func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 5 {
		return string(runes[:max])
	}
	// Keep more of the end (file name) than the start
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return string(runes[:startLen]) + "..." + string(runes[len(runes)-endLen:])
}
