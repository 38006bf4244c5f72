package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures how the shell locates and launches the backend.
type Config struct {
	DevMode       bool
	Python        string
	BackendScript string
	BackendBinary string
	PortMin       int
	PortMax       int
	LogDir        string
	DataRoot      string
	HealthTimeout time.Duration
}

const (
	defaultConfigPath    = "~/.config/foldline/config.toml"
	defaultLogDir        = "~/.local/share/foldline/logs"
	defaultDataRoot      = "~/.local/share/foldline/data"
	defaultBackendScript = "backend/main.py"
	defaultPortMin       = 8000
	defaultPortMax       = 9000
	defaultHealthTimeout = 15 * time.Second
)

// envOverrides are applied on top of the file. Unset variables leave the
// file value in place.
type envOverrides struct {
	DevMode       *bool  `env:"FOLDLINE_DEV_MODE"`
	Python        string `env:"FOLDLINE_PYTHON"`
	BackendScript string `env:"FOLDLINE_BACKEND_SCRIPT"`
	BackendBinary string `env:"FOLDLINE_BACKEND_BINARY"`
	LogDir        string `env:"FOLDLINE_LOG_DIR"`
	DataRoot      string `env:"FOLDLINE_DATA_ROOT"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Python:        defaultPython(),
		BackendScript: defaultBackendScript,
		BackendBinary: defaultBackendBinary(),
		PortMin:       defaultPortMin,
		PortMax:       defaultPortMax,
		LogDir:        mustExpand(defaultLogDir),
		DataRoot:      mustExpand(defaultDataRoot),
		HealthTimeout: defaultHealthTimeout,
	}
}

// Load locates and parses the foldline config, falling back to defaults when
// missing, then applies FOLDLINE_* environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		if err := parseFile(file, &cfg); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseFile(r io.Reader, cfg *Config) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		DevMode       bool   `toml:"dev_mode"`
		Python        string `toml:"python"`
		BackendScript string `toml:"backend_script"`
		BackendBinary string `toml:"backend_binary"`
		PortMin       int    `toml:"port_min"`
		PortMax       int    `toml:"port_max"`
		LogDir        string `toml:"log_dir"`
		DataRoot      string `toml:"data_root"`
		HealthTimeout int    `toml:"health_timeout"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	cfg.DevMode = raw.DevMode
	setString(&cfg.Python, raw.Python)
	setString(&cfg.BackendScript, raw.BackendScript)
	setString(&cfg.BackendBinary, raw.BackendBinary)
	if raw.PortMin > 0 {
		cfg.PortMin = raw.PortMin
	}
	if raw.PortMax > 0 {
		cfg.PortMax = raw.PortMax
	}
	if dir := strings.TrimSpace(raw.LogDir); dir != "" {
		cfg.LogDir = mustExpand(dir)
	}
	if root := strings.TrimSpace(raw.DataRoot); root != "" {
		cfg.DataRoot = mustExpand(root)
	}
	if raw.HealthTimeout > 0 {
		cfg.HealthTimeout = time.Duration(raw.HealthTimeout) * time.Second
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if overrides.DevMode != nil {
		cfg.DevMode = *overrides.DevMode
	}
	setString(&cfg.Python, overrides.Python)
	setString(&cfg.BackendScript, overrides.BackendScript)
	setString(&cfg.BackendBinary, overrides.BackendBinary)
	if dir := strings.TrimSpace(overrides.LogDir); dir != "" {
		cfg.LogDir = mustExpand(dir)
	}
	if root := strings.TrimSpace(overrides.DataRoot); root != "" {
		cfg.DataRoot = mustExpand(root)
	}
	return nil
}

// Validate checks the port range.
func (c Config) Validate() error {
	if c.PortMin < 1 || c.PortMax > 65535 {
		return fmt.Errorf("port range %d-%d outside 1-65535", c.PortMin, c.PortMax)
	}
	if c.PortMin >= c.PortMax {
		return fmt.Errorf("port_min %d must be below port_max %d", c.PortMin, c.PortMax)
	}
	return nil
}

// BackendLogPath returns the file the backend's output is appended to.
func (c Config) BackendLogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/backend.log")
	}
	return filepath.Join(c.LogDir, "backend.log")
}

// BackendCommand returns the executable and arguments that launch the backend
// on port, without the port flag itself.
func (c Config) BackendCommand() (string, []string) {
	if c.DevMode {
		return c.Python, []string{c.BackendScript}
	}
	return c.BackendBinary, nil
}

func defaultPython() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

func defaultBackendBinary() string {
	if runtime.GOOS == "windows" {
		return filepath.Join("bin", "python_backend.exe")
	}
	return filepath.Join("bin", "python_backend")
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
