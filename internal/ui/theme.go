package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/foldline/foldline/internal/logtail"
	"github.com/foldline/foldline/internal/prefs"
)

// Theme defines the colors used for terminal output.
type Theme struct {
	Name prefs.Theme

	Surface string
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Logo   lipgloss.Style
	Header lipgloss.Style
}

// LevelStyle returns the style for a backend log severity.
func (s Styles) LevelStyle(level logtail.Level) lipgloss.Style {
	switch level {
	case logtail.LevelCritical, logtail.LevelError:
		return s.DangerText
	case logtail.LevelWarning:
		return s.WarningText
	case logtail.LevelInfo:
		return s.InfoText
	case logtail.LevelDebug:
		return s.FaintText
	default:
		return s.Text
	}
}

// HighlightLine renders the severity token of a backend log line.
func (s Styles) HighlightLine(line string) string {
	level := logtail.LevelOf(line)
	if level == logtail.LevelNone {
		return line
	}
	token := string(level)
	idx := strings.Index(line, token)
	if idx < 0 {
		// WARN and FATAL map onto longer level names.
		return s.LevelStyle(level).Render(line)
	}
	return line[:idx] + s.LevelStyle(level).Render(token) + line[idx+len(token):]
}

// ThemeFor returns the palette for a light or dark preference. Unknown values
// fall back to dark.
func ThemeFor(name prefs.Theme) Theme {
	if name == prefs.Light {
		return lightTheme()
	}
	return darkTheme()
}

func darkTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: prefs.Dark,

		Surface: "#192330", // bg1
		Text:    "#cdcecf", // fg1
		Muted:   "#738091", // comment
		Faint:   "#71839b", // fg3
		Accent:  "#719cd6", // blue
		Success: "#81b29a", // green
		Warning: "#dbc074", // yellow
		Danger:  "#c94f6d", // red
		Info:    "#63cdcf", // cyan
	}
}

func lightTheme() Theme {
	// Dayfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: prefs.Light,

		Surface: "#e4dcd4", // bg1
		Text:    "#3d2b5a", // fg1
		Muted:   "#837a72", // comment
		Faint:   "#643f61", // fg3
		Accent:  "#2848a9", // blue
		Success: "#396847", // green
		Warning: "#ac5402", // yellow
		Danger:  "#a5222f", // red
		Info:    "#287980", // cyan
	}
}
