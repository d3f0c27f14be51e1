package triton

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Aleph-Alpha/image-embedder/v1/observability"
)

// Logger defines the logging operations used by the Triton client.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=triton
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Client talks to a KServe v2 / Triton server over HTTP using the binary
// tensor extension. It implements embedding.Backend and is safe for
// concurrent use.
type Client struct {
	baseURL    string
	cfg        Config
	httpClient *http.Client
	logger     Logger
	observer   observability.Observer
}

// NewClient creates a Client for the server at cfg.URL.
//
// The HTTP transport is instrumented with OpenTelemetry, so the trace
// context of the calling span is propagated to the server.
//
// Example:
//
//	client, err := triton.NewClient(triton.Config{
//	    URL:          "localhost:8000",
//	    ModelVersion: "1",
//	}, log)
//	if err != nil {
//	    return err
//	}
func NewClient(cfg Config, logger Logger) (*Client, error) {
	base, err := normalizeURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	logger.Info("Triton client configured", nil, map[string]interface{}{
		"url":           base,
		"model_version": cfg.ModelVersion,
		"timeout":       cfg.Timeout.String(),
	})

	return &Client{
		baseURL: base,
		cfg:     cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}, nil
}

// WithObserver attaches an observer that is notified about every inference
// call. It must be called before the client is used concurrently.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// normalizeURL turns "host:port" into "http://host:port" and strips
// trailing slashes.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("triton: missing server URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("triton: invalid server URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("triton: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("triton: invalid server URL %q: missing host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
