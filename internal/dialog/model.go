package dialog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foldline/foldline/internal/ui"
)

// model wraps a filepicker with a title, cancel keys and, for folder
// pickers, a key that accepts the directory currently shown.
type model struct {
	picker   filepicker.Model
	opts     Options
	styles   ui.Styles
	selected string
	notice   string

	cancelled bool
}

func newModel(opts Options) (model, error) {
	dir, err := startDir(opts.StartDir)
	if err != nil {
		return model{}, err
	}
	fp := filepicker.New()
	configurePicker(&fp, opts, dir)

	theme := ui.ThemeFor(opts.Theme)
	styles := theme.Styles()
	fp.Styles = pickerStyles(theme)

	return model{picker: fp, opts: opts, styles: styles}, nil
}

func pickerStyles(t ui.Theme) filepicker.Styles {
	s := filepicker.DefaultStyles()
	s.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	s.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true)
	s.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info))
	s.File = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text))
	s.DisabledFile = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	s.DisabledCursor = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	s.EmptyDirectory = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)).PaddingLeft(2).SetString("No files here.")
	return s
}

func (m model) Init() tea.Cmd {
	return m.picker.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		case ".":
			if m.opts.DirsOnly {
				m.selected = m.picker.CurrentDirectory
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.selected = path
		return m, tea.Quit
	}
	if didSelect, path := m.picker.DidSelectDisabledFile(msg); didSelect {
		m.notice = fmt.Sprintf("%s cannot be selected here", path)
		return m, cmd
	}
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Logo.Render(m.opts.Title))
	b.WriteString("\n")
	b.WriteString(m.styles.MutedText.Render(m.picker.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(m.styles.WarningText.Render(m.notice))
		b.WriteString("\n")
	}
	hint := "enter open/select · esc cancel"
	if m.opts.DirsOnly {
		hint = "enter open · . use this folder · esc cancel"
	}
	b.WriteString(m.styles.FaintText.Render(hint))
	return b.String()
}
