package weaviate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	wvt "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//
// ──────────────────────────────────────────────────────────────
//   WEAVIATE CLIENT
// ──────────────────────────────────────────────────────────────
//
// Wrapper over the official Go client covering the endpoints needed to move
// a collection between schema generations: schema CRUD, object listing and
// creation, and backup restore. Results are converted to this package's
// types so callers never see the generated models.
//

// Logger defines the logging contract used by this package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Client talks to a single Weaviate instance.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	client     *wvt.Client
	logger     Logger
}

// NewClient constructs a Client and, unless disabled, checks that the server
// reports ready.
//
// Example:
//
//	client, err := weaviate.NewClient(weaviate.FromEndpoint("http://localhost:8080"), log)
func NewClient(cfg *Config, logger Logger) (*Client, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("[Weaviate] endpoint cannot be empty")
	}

	u, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("[Weaviate] invalid endpoint %q: %w", cfg.Endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[Weaviate] invalid endpoint %q: want scheme://host[:port]", cfg.Endpoint)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	c := &Client{
		endpoint: u.Scheme + "://" + u.Host,
		apiKey:   cfg.ApiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &loggingTransport{
				base:   otelhttp.NewTransport(http.DefaultTransport),
				logger: logger,
			},
		},
		logger: logger,
	}

	headers := map[string]string{}
	if cfg.ApiKey != "" {
		headers["Authorization"] = "Bearer " + cfg.ApiKey
	}
	c.client, err = wvt.NewClient(wvt.Config{
		Host:             u.Host,
		Scheme:           u.Scheme,
		Headers:          headers,
		ConnectionClient: c.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("[Weaviate] failed to create client: %w", err)
	}

	logger.Info("Connecting to Weaviate", nil, map[string]interface{}{
		"endpoint": c.endpoint,
		"auth":     c.apiKey != "",
	})

	if !cfg.SkipHealthCheck {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Ready(ctx); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Endpoint returns the base URL this client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ready checks GET /v1/.well-known/ready.
func (c *Client) Ready(ctx context.Context) error {
	ok, err := c.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, apiError(http.MethodGet, "/v1/.well-known/ready", err))
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotReady, c.endpoint)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// loggingTransport logs every request at debug level. The wrapped transport
// injects the trace context of the request into its headers.
type loggingTransport struct {
	base   http.RoundTripper
	logger Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	fields := map[string]interface{}{
		"method":      req.Method,
		"path":        req.URL.Path,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		t.logger.Debug("Weaviate request failed", err, fields)
		return nil, err
	}
	fields["status"] = resp.StatusCode
	t.logger.Debug("Weaviate request", nil, fields)
	return resp, nil
}
