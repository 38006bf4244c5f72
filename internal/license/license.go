// Package license persists the local license activation flag.
//
// Only the activation state is modelled: whether a key was entered, which
// one, and when. Nothing here validates keys.
package license

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/foldline/foldline/internal/config"
)

const defaultLicensePath = "~/.config/foldline/license.toml"

// State is the persisted activation record.
type State struct {
	IsActivated bool       `toml:"is_activated"`
	LicenseKey  string     `toml:"license_key,omitempty"`
	ActivatedAt *time.Time `toml:"activated_at,omitempty"`
}

// Store guards State and mirrors it to disk.
type Store struct {
	path string
	now  func() time.Time

	mu    sync.RWMutex
	state State
}

// Open loads the store at path (empty uses the default location). A missing
// or unreadable file yields a deactivated store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultLicensePath
	}
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve license path: %w", err)
	}
	s := &Store{path: resolved, now: time.Now}
	s.state = load(resolved)
	return s, nil
}

func load(path string) State {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return State{}
	}
	var st State
	if err := toml.Unmarshal(bytes, &st); err != nil {
		return State{}
	}
	if !st.IsActivated {
		return State{}
	}
	return st
}

// State returns a copy of the current activation record.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.ActivatedAt != nil {
		at := *st.ActivatedAt
		st.ActivatedAt = &at
	}
	return st
}

// IsActivated reports the entitlement flag.
func (s *Store) IsActivated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsActivated
}

// Activate records key as the active license and persists it.
func (s *Store) Activate(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("license key is empty")
	}
	at := s.now().UTC().Truncate(time.Second)
	next := State{IsActivated: true, LicenseKey: key, ActivatedAt: &at}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := save(s.path, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Deactivate clears the license and removes the file.
func (s *Store) Deactivate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove license: %w", err)
	}
	s.state = State{}
	return nil
}

func save(path string, st State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create license dir: %w", err)
	}
	bytes, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal license: %w", err)
	}
	if err := os.WriteFile(path, bytes, 0o600); err != nil {
		return fmt.Errorf("write license: %w", err)
	}
	return nil
}

// MaskedKey hides all but the last four characters of key.
func MaskedKey(key string) string {
	runes := []rune(key)
	if len(runes) < 4 {
		return "****"
	}
	return "••••-••••-••••-" + string(runes[len(runes)-4:])
}
