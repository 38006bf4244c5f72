package host

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foldline/foldline/internal/backend"
	"github.com/foldline/foldline/internal/config"
)

const (
	healthTimeout = 2 * time.Second
	stopTimeout   = 5 * time.Second
)

// ErrNotStarted is returned by BackendPort when no backend is running.
var ErrNotStarted = errors.New("backend not started")

// Ensure Supervisor implements backend.Host at compile time.
var _ backend.Host = (*Supervisor)(nil)

// Supervisor owns the backend child process.
type Supervisor struct {
	cfg  config.Config
	log  *zap.Logger
	http *http.Client

	pickPort   func(min, max int) int
	newCommand func(name string, args ...string) *exec.Cmd

	mu   sync.Mutex
	cmd  *exec.Cmd
	port int
	done chan struct{}
}

// Option customises a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the logger for process lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Supervisor) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithHTTPClient replaces the client used by CheckBackendHealth.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Supervisor) {
		if client != nil {
			s.http = client
		}
	}
}

// NewSupervisor builds a Supervisor that launches the backend described by cfg.
func NewSupervisor(cfg config.Config, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:        cfg,
		log:        zap.NewNop(),
		http:       &http.Client{Timeout: healthTimeout},
		pickPort:   randomPort,
		newCommand: exec.Command,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartBackend launches the backend on a random port from the configured
// range and returns that port. A backend that is already running is reused.
func (s *Supervisor) StartBackend(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return s.port, nil
	}

	port := s.pickPort(s.cfg.PortMin, s.cfg.PortMax)
	name, args := s.cfg.BackendCommand()
	args = append(append([]string(nil), args...), "--port", strconv.Itoa(port))

	logFile, err := openLog(s.cfg.BackendLogPath())
	if err != nil {
		return 0, fmt.Errorf("failed to start backend: %w", err)
	}

	cmd := s.newCommand(name, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		s.log.Error("Failed to start backend process", zap.String("command", name), zap.Error(err))
		return 0, fmt.Errorf("failed to start backend: %w", err)
	}

	done := make(chan struct{})
	s.cmd, s.port, s.done = cmd, port, done
	s.log.Info("Backend process started",
		zap.Int("port", port),
		zap.Int("pid", cmd.Process.Pid),
		zap.String("command", name),
	)

	go s.wait(cmd, logFile, done)
	return port, nil
}

func (s *Supervisor) wait(cmd *exec.Cmd, logFile *os.File, done chan struct{}) {
	err := cmd.Wait()
	_ = logFile.Close()

	s.mu.Lock()
	if s.cmd == cmd {
		s.cmd, s.port, s.done = nil, 0, nil
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("Backend process exited", zap.Int("pid", cmd.Process.Pid), zap.Error(err))
	} else {
		s.log.Info("Backend process exited", zap.Int("pid", cmd.Process.Pid))
	}
	close(done)
}

// StopBackend kills the backend if one is running.
func (s *Supervisor) StopBackend() error {
	s.mu.Lock()
	cmd, done := s.cmd, s.done
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop backend: %w", err)
	}

	select {
	case <-done:
	case <-time.After(stopTimeout):
		return fmt.Errorf("failed to stop backend: pid %d did not exit", cmd.Process.Pid)
	}
	s.log.Info("Backend process stopped")
	return nil
}

// BackendPort returns the port of the running backend.
func (s *Supervisor) BackendPort() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return 0, ErrNotStarted
	}
	return s.port, nil
}

// CheckBackendHealth pings /status on the loopback port. Transport failures
// report false rather than an error.
func (s *Supervisor) CheckBackendHealth(ctx context.Context, port int) (bool, error) {
	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return false, nil
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299, nil
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open backend log: %w", err)
	}
	return file, nil
}

// randomPort returns a port in [min, max).
func randomPort(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.IntN(max-min)
}
