package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Host is the privileged runtime that owns the backend process.
// It is implemented by *host.Supervisor and can be faked in tests.
type Host interface {
	StartBackend(ctx context.Context) (int, error)
	CheckBackendHealth(ctx context.Context, port int) (bool, error)
}

// Requester defines the request surface UI code depends on.
type Requester interface {
	Get(ctx context.Context, path string, dest any) error
	Post(ctx context.Context, path string, body, dest any) error
}

// Ensure Connector implements Requester at compile time.
var _ Requester = (*Connector)(nil)

// ErrUninitialized is returned by request operations issued before a
// successful Initialize.
var ErrUninitialized = errors.New("backend not initialized")

// ErrUnhealthy is reported by Health when the host says the backend is not
// answering.
var ErrUnhealthy = errors.New("backend unhealthy")

const (
	loopbackHost     = "127.0.0.1"
	defaultUserAgent = "foldline/0.1"
	startKey         = "start_backend"
)

// StatusError reports a response whose status was not 2xx.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "API error: " + e.Status
}

// Connector talks to the local backend process over loopback HTTP. The port is
// negotiated once through the Host and never changes afterwards.
type Connector struct {
	host      Host
	http      *http.Client
	log       *zap.Logger
	userAgent string

	mu    sync.RWMutex
	port  int
	start singleflight.Group
}

// Option customises a Connector.
type Option func(*Connector)

// WithHTTPClient replaces the HTTP client used for Get and Post.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the logger used for bootstrap diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connector) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Connector) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewConnector builds an uninitialized Connector bound to host.
func NewConnector(host Host, opts ...Option) *Connector {
	c := &Connector{
		host:      host,
		http:      &http.Client{},
		log:       zap.NewNop(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Port returns the cached backend port, if any.
func (c *Connector) Port() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.port, c.port > 0
}

// Initialize asks the host to start the backend and caches the port it
// reports. Once a port is cached it is returned without contacting the host.
// Concurrent first calls share a single start request. A failed start leaves
// the connector uninitialized and returns the host's error as-is.
func (c *Connector) Initialize(ctx context.Context) (int, error) {
	if port, ok := c.Port(); ok {
		return port, nil
	}
	if c.host == nil {
		return 0, fmt.Errorf("connector has no host")
	}

	v, err, _ := c.start.Do(startKey, func() (any, error) {
		if port, ok := c.Port(); ok {
			return port, nil
		}
		port, err := c.host.StartBackend(ctx)
		if err != nil {
			c.log.Error("Failed to start backend", zap.Error(err))
			return 0, err
		}
		if port <= 0 || port > 65535 {
			err := fmt.Errorf("host reported invalid backend port %d", port)
			c.log.Error("Failed to start backend", zap.Error(err))
			return 0, err
		}

		c.mu.Lock()
		c.port = port
		c.mu.Unlock()

		c.log.Info(fmt.Sprintf("Backend started on port %d", port), zap.Int("port", port))
		return port, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// BaseURL returns http://127.0.0.1:<port> for the cached port.
func (c *Connector) BaseURL() (string, error) {
	port, ok := c.Port()
	if !ok {
		return "", ErrUninitialized
	}
	return "http://" + loopbackHost + ":" + strconv.Itoa(port), nil
}

// Get issues a GET against BaseURL()+path and decodes the JSON response into
// dest. The path is appended verbatim, so callers own any query encoding.
func (c *Connector) Get(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

// Post sends body as JSON to BaseURL()+path and decodes the JSON response
// into dest.
func (c *Connector) Post(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload, dest)
}

// CheckHealth reports whether the backend answers right now. It never fails:
// an uninitialized connector or any host error yields false.
func (c *Connector) CheckHealth(ctx context.Context) bool {
	if err := c.Health(ctx); err != nil {
		c.log.Debug("backend health check failed", zap.Error(err))
		return false
	}
	return true
}

// Health is CheckHealth with the cause kept: nil when healthy, otherwise
// ErrUninitialized, ErrUnhealthy or the host's error.
func (c *Connector) Health(ctx context.Context) error {
	port, ok := c.Port()
	if !ok || c.host == nil {
		return ErrUninitialized
	}
	healthy, err := c.host.CheckBackendHealth(ctx, port)
	if err != nil {
		return err
	}
	if !healthy {
		return ErrUnhealthy
	}
	return nil
}

func (c *Connector) do(ctx context.Context, method, path string, payload []byte, dest any) error {
	base, err := c.BaseURL()
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, Status: statusText(resp)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if dest == nil {
		var discard json.RawMessage
		dest = &discard
	}
	// Unmarshal rejects trailing data after the first value.
	return json.Unmarshal(data, dest)
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// GetJSON is a typed convenience over Requester.Get.
func GetJSON[T any](ctx context.Context, r Requester, path string) (T, error) {
	var out T
	if err := r.Get(ctx, path, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// PostJSON is a typed convenience over Requester.Post.
func PostJSON[T any](ctx context.Context, r Requester, path string, body any) (T, error) {
	var out T
	if err := r.Post(ctx, path, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
