package dialog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/foldline/foldline/internal/prefs"
)

// Options describe one picker invocation.
type Options struct {
	Title        string
	StartDir     string   // empty uses the home directory
	AllowedTypes []string // file suffixes, e.g. ".zip"
	DirsOnly     bool
	Theme        prefs.Theme
}

// Picker asks the user for a path. ok is false when the user cancelled.
type Picker interface {
	Open(ctx context.Context, opts Options) (path string, ok bool, err error)
}

// TerminalPicker runs a bubbletea file picker on the terminal.
type TerminalPicker struct {
	In  io.Reader
	Out io.Writer
}

// Open implements Picker.
func (p TerminalPicker) Open(ctx context.Context, opts Options) (string, bool, error) {
	m, err := newModel(opts)
	if err != nil {
		return "", false, err
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if p.In != nil {
		progOpts = append(progOpts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		progOpts = append(progOpts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(m, progOpts...).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", false, ctxErr
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return "", false, fmt.Errorf("run picker: %w", err)
	}
	result, _ := final.(model)
	if result.cancelled || result.selected == "" {
		return "", false, nil
	}
	return result.selected, true, nil
}

// SelectGarminExport asks for a Garmin data export archive.
func SelectGarminExport(ctx context.Context, p Picker, opts Options) (string, bool, error) {
	if opts.Title == "" {
		opts.Title = "Select Garmin export (.zip)"
	}
	opts.AllowedTypes = []string{".zip"}
	opts.DirsOnly = false
	return p.Open(ctx, opts)
}

// SelectFitFolder asks for a folder of FIT files.
func SelectFitFolder(ctx context.Context, p Picker, opts Options) (string, bool, error) {
	if opts.Title == "" {
		opts.Title = "Select FIT folder"
	}
	opts.AllowedTypes = nil
	opts.DirsOnly = true
	return p.Open(ctx, opts)
}

// SelectDataRoot asks for the directory the backend stores its data in.
func SelectDataRoot(ctx context.Context, p Picker, opts Options) (string, bool, error) {
	if opts.Title == "" {
		opts.Title = "Select data folder"
	}
	opts.AllowedTypes = nil
	opts.DirsOnly = true
	return p.Open(ctx, opts)
}

func startDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
		dir = home
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve start dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("open start dir: %w", err)
	}
	if !info.IsDir() {
		return filepath.Dir(abs), nil
	}
	return abs, nil
}

func configurePicker(fp *filepicker.Model, opts Options, dir string) {
	fp.CurrentDirectory = dir
	fp.AllowedTypes = opts.AllowedTypes
	fp.DirAllowed = opts.DirsOnly
	fp.FileAllowed = !opts.DirsOnly
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.Height = 15
}
