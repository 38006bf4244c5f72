// Package prefs handles Foldline user preferences persistence and the
// light/dark theme store. Preferences are stored in
// ~/.config/foldline/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/foldline/foldline/internal/config"
)

// Theme is the colour scheme of the shell.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(value string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(value))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", value)
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Prefs holds user preferences for Foldline. An empty Theme means none was
// stored.
type Prefs struct {
	Theme Theme `toml:"theme,omitempty"`
}

const defaultPrefsPath = "~/.config/foldline/prefs.toml"

// Load reads preferences from the given path. Missing or unreadable files
// yield empty Prefs.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Prefs{}, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Prefs{}, nil // Missing is normal; anything else degrades to defaults
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Prefs{}, nil // Graceful degradation
	}

	var prefs Prefs
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{}, nil // Graceful degradation
	}
	if theme, err := ParseTheme(string(prefs.Theme)); err == nil {
		prefs.Theme = theme
	} else {
		prefs.Theme = ""
	}
	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// SystemTheme reports the system colour preference. It is a variable so
// tests can pin it.
var SystemTheme = func() Theme {
	if lipgloss.HasDarkBackground() {
		return Dark
	}
	return Light
}

// ThemeStore holds the current theme and persists every change.
type ThemeStore struct {
	path string

	mu      sync.RWMutex
	current Theme
}

// NewThemeStore returns a store backed by path (empty uses ~/.config/foldline/prefs.toml). The
// store starts as Light until Initialize is called.
func NewThemeStore(path string) *ThemeStore {
	return &ThemeStore{path: path, current: Light}
}

// Initialize loads the stored theme, falling back to the system preference.
func (s *ThemeStore) Initialize() Theme {
	p, _ := Load(s.path)
	theme := p.Theme
	if theme == "" {
		theme = SystemTheme()
	}
	if theme == "" {
		theme = Light
	}

	s.mu.Lock()
	s.current = theme
	s.mu.Unlock()
	return theme
}

// Current returns the active theme.
func (s *ThemeStore) Current() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set persists theme and makes it current.
func (s *ThemeStore) Set(theme Theme) error {
	parsed, err := ParseTheme(string(theme))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := Save(s.path, Prefs{Theme: parsed}); err != nil {
		return err
	}
	s.current = parsed
	return nil
}

// Toggle switches between light and dark and returns the new theme.
func (s *ThemeStore) Toggle() (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Opposite()
	if err := Save(s.path, Prefs{Theme: next}); err != nil {
		return s.current, err
	}
	s.current = next
	return next, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(defaultPrefsPath)
	}
	return config.ExpandPath(path)
}
