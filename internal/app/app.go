package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foldline/foldline/internal/backend"
	"github.com/foldline/foldline/internal/config"
	"github.com/foldline/foldline/internal/host"
	"github.com/foldline/foldline/internal/logging"
	"github.com/foldline/foldline/internal/state"
)

// Options configure a Foldline session.
type Options struct {
	ConfigPath string
	PollEvery  time.Duration // zero uses default
	Logger     *zap.Logger
	UserAgent  string // empty keeps the connector default

	// Host replaces the process supervisor, mainly for tests.
	Host backend.Host
}

// stopper is implemented by hosts that can shut the backend down.
type stopper interface {
	StopBackend() error
}

// Session bundles the configured host, connector and health store.
type Session struct {
	Config    config.Config
	Host      backend.Host
	Connector *backend.Connector
	Store     *state.Store

	log       *zap.Logger
	pollEvery time.Duration
}

// Open loads configuration and wires the session without starting anything.
func Open(opts Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.OrNop(opts.Logger)

	h := opts.Host
	if h == nil {
		h = host.NewSupervisor(cfg, host.WithLogger(logger.Named("host")))
	}

	connectorOpts := []backend.Option{backend.WithLogger(logger.Named("backend"))}
	if opts.UserAgent != "" {
		connectorOpts = append(connectorOpts, backend.WithUserAgent(opts.UserAgent))
	}

	pollEvery := opts.PollEvery
	if pollEvery <= 0 {
		pollEvery = defaultPollInterval
	}

	return &Session{
		Config:    cfg,
		Host:      h,
		Connector: backend.NewConnector(h, connectorOpts...),
		Store:     &state.Store{},
		log:       logger,
		pollEvery: pollEvery,
	}, nil
}

// Start initializes the connector and waits until the backend answers its
// health check, bounded by the configured health timeout.
func (s *Session) Start(ctx context.Context) (int, error) {
	port, err := s.Connector.Initialize(ctx)
	if err != nil {
		return 0, err
	}
	s.Store.SetPort(port)

	timeout := s.Config.HealthTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := WaitHealthy(waitCtx, s.Connector, 250*time.Millisecond); err != nil {
		s.Store.Update(false, err)
		return port, err
	}
	s.Store.Update(true, nil)
	s.applyDataRoot(ctx)
	return port, nil
}

// applyDataRoot sends the configured data root to a freshly healthy backend.
// A rejection is logged; the backend keeps its previous root.
func (s *Session) applyDataRoot(ctx context.Context) {
	root := strings.TrimSpace(s.Config.DataRoot)
	if root == "" {
		return
	}
	resp, err := backend.SetDataRoot(ctx, s.Connector, root)
	switch {
	case err != nil:
		s.log.Warn("set data root", zap.String("data_root", root), zap.Error(err))
	case !resp.Success:
		s.log.Warn("backend rejected data root", zap.String("data_root", root), zap.String("message", resp.Message))
	default:
		s.log.Debug("data root applied", zap.String("data_root", root))
	}
}

// Close stops the backend if the host supports it.
func (s *Session) Close() error {
	if st, ok := s.Host.(stopper); ok {
		return st.StopBackend()
	}
	return nil
}

// Run starts the backend, polls its health until ctx is cancelled, then stops
// it.
func Run(ctx context.Context, opts Options) error {
	session, err := Open(opts)
	if err != nil {
		return err
	}

	port, startErr := session.Start(ctx)
	if startErr != nil && port == 0 {
		return fmt.Errorf("start backend: %w", startErr)
	}
	if startErr != nil {
		session.log.Warn("backend not healthy yet", zap.Int("port", port), zap.Error(startErr))
	} else {
		session.log.Info("backend ready", zap.Int("port", port))
	}

	done := StartPoller(ctx, session.Store, session.Connector, session.pollEvery, session.log.Named("poller"))
	<-ctx.Done()
	<-done

	if err := session.Close(); err != nil {
		return fmt.Errorf("stop backend: %w", err)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}
