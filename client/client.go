package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/brojonat/shyft/service/metrics"
	"github.com/brojonat/shyft/service/retry"
)

// Client is the HTTP client for the Shyft transaction API. It is immutable
// after New and safe for concurrent use.
type Client struct {
	cfg     *config
	baseURL *url.URL
	retrier *retry.Retrier
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a client authenticated with apiKey. Without options it targets
// mainnet-beta at "confirmed" commitment, retrying up to 3 times with delays
// between 500ms and 1s.
func New(apiKey string, opts ...Option) (*Client, error) {
	cfg := defaultConfig(apiKey)
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validHeaderValue(apiKey); err != nil {
		return nil, &ConfigError{Field: "api key", Err: err}
	}
	baseURL, err := url.Parse(cfg.baseURL)
	if err != nil {
		return nil, &ConfigError{Field: "base url", Err: err}
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, &ConfigError{Field: "base url", Err: fmt.Errorf("%q is not an absolute URL", cfg.baseURL)}
	}
	if cfg.timeout <= 0 {
		return nil, &ConfigError{Field: "timeout", Err: fmt.Errorf("must be positive, got %v", cfg.timeout)}
	}
	if err := cfg.policy.Validate(); err != nil {
		return nil, &ConfigError{Field: "retry policy", Err: err}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	c := &Client{
		cfg:     cfg,
		baseURL: baseURL,
		logger:  logger,
		metrics: cfg.metrics,
	}

	httpClient := newHTTPClient(cfg, func(next http.RoundTripper) http.RoundTripper {
		return metrics.InstrumentRoundTripper(cfg.metrics, next)
	})
	c.retrier = retry.New(bufferBody(httpClient), &cfg.policy, retry.WithOnRetry(c.onRetry))

	logger.Debug("shyft client created",
		"base_url", baseURL.String(),
		"network", cfg.network,
		"commitment", cfg.commitment,
		"api_key", cfg.apiKey,
		"max_retries", cfg.policy.MaxRetries,
	)
	return c, nil
}

// Network returns the network sent with every request.
func (c *Client) Network() Network { return c.cfg.network }

// Commitment returns the commitment level sent with every request.
func (c *Client) Commitment() Commitment { return c.cfg.commitment }

// do executes call through the retry policy and maps the final response.
func do[T any](ctx context.Context, c *Client, call apiCall) (T, error) {
	var zero T

	req, err := c.newRequest(ctx, call)
	if err != nil {
		return zero, err
	}

	endpoint := metrics.EndpointLabel(req.URL.Path)
	c.logger.DebugContext(ctx, "calling shyft API",
		"method", req.Method,
		"endpoint", endpoint,
	)

	res, err := c.retrier.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "shyft API request failed",
			"method", req.Method,
			"endpoint", endpoint,
			"attempts", res.Attempts,
			"error", err,
		)
		return zero, &TransportError{
			Method:   req.Method,
			Endpoint: endpoint,
			Attempts: res.Attempts,
			Err:      err,
		}
	}

	result, err := decodeResponse[T](res.Response, res.Attempts)
	if err != nil {
		c.logger.WarnContext(ctx, "shyft API returned an error",
			"method", req.Method,
			"endpoint", endpoint,
			"status", res.Response.StatusCode,
			"attempts", res.Attempts,
			"error", err,
		)
		return zero, err
	}
	return result, nil
}

// onRetry logs and records every retry scheduled by the policy.
func (c *Client) onRetry(e retry.Event) {
	endpoint := metrics.EndpointLabel(e.Request.URL.Path)
	reason := "transport"
	if e.Err == nil {
		reason = "status_" + strconv.Itoa(e.StatusCode)
	}

	c.logger.WarnContext(e.Request.Context(), "retrying shyft API request",
		"endpoint", endpoint,
		"attempt", e.Attempt+1,
		"reason", reason,
		"error", e.Err,
		"backoff_ms", e.Delay.Milliseconds(),
	)
	if c.metrics != nil {
		c.metrics.RecordRetry(endpoint, reason)
	}
}

// observe records operation metrics once a facade call completes.
func (c *Client) observe(operation string, seconds float64, count int, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordOperation(operation, err, seconds)
	if err == nil {
		c.metrics.RecordTransactionsReturned(operation, count)
	}
}
