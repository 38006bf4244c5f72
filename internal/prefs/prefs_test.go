package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func pinSystemTheme(t *testing.T, theme Theme) {
	t.Helper()
	orig := SystemTheme
	SystemTheme = func() Theme { return theme }
	t.Cleanup(func() { SystemTheme = orig })
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "" {
		t.Fatalf("Theme = %q, want empty", p.Theme)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "foldline")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"Dark\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != Dark {
		t.Fatalf("Theme = %q, want %q", p.Theme, Dark)
	}
}

func TestLoad_UnknownThemeIsDropped(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"Dracula\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "" {
		t.Fatalf("Theme = %q, want empty", p.Theme)
	}
}

func TestLoad_InvalidTOMLIsEmpty(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "" {
		t.Fatalf("Theme = %q, want empty", p.Theme)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	if err := Save(prefsFile, Prefs{Theme: Dark}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Theme != Dark {
		t.Fatalf("Theme = %q, want %q", loaded.Theme, Dark)
	}
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{"light", Light, false},
		{" DARK ", Dark, false},
		{"", "", true},
		{"sepia", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTheme(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseTheme(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestThemeStore_InitializePrefersStoredValue(t *testing.T) {
	pinSystemTheme(t, Dark)
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := Save(prefsFile, Prefs{Theme: Light}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	s := NewThemeStore(prefsFile)
	if got := s.Initialize(); got != Light {
		t.Fatalf("Initialize = %q, want %q", got, Light)
	}
	if s.Current() != Light {
		t.Fatalf("Current = %q, want %q", s.Current(), Light)
	}
}

func TestThemeStore_InitializeFallsBackToSystem(t *testing.T) {
	pinSystemTheme(t, Dark)
	s := NewThemeStore(filepath.Join(t.TempDir(), "prefs.toml"))

	if got := s.Initialize(); got != Dark {
		t.Fatalf("Initialize = %q, want system %q", got, Dark)
	}
}

func TestThemeStore_SetAndTogglePersist(t *testing.T) {
	pinSystemTheme(t, Light)
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	s := NewThemeStore(prefsFile)
	s.Initialize()

	if err := s.Set(Dark); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if p, _ := Load(prefsFile); p.Theme != Dark {
		t.Fatalf("stored theme = %q, want %q", p.Theme, Dark)
	}

	next, err := s.Toggle()
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if next != Light || s.Current() != Light {
		t.Fatalf("Toggle = %q (current %q), want %q", next, s.Current(), Light)
	}
	if p, _ := Load(prefsFile); p.Theme != Light {
		t.Fatalf("stored theme = %q, want %q", p.Theme, Light)
	}

	if err := s.Set("purple"); err == nil {
		t.Fatalf("Set(purple) returned nil error")
	}
	if s.Current() != Light {
		t.Fatalf("Current changed after rejected Set: %q", s.Current())
	}
}
