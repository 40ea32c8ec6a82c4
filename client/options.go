package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/brojonat/shyft/service/metrics"
	"github.com/brojonat/shyft/service/retry"
)

// Network selects the Solana cluster queried by the API.
type Network string

const (
	NetworkMainnet Network = "mainnet-beta"
	NetworkDevnet  Network = "devnet"
	NetworkTestnet Network = "testnet"
)

// ParseNetwork converts a string to a Network.
func ParseNetwork(s string) (Network, error) {
	switch n := Network(s); n {
	case NetworkMainnet, NetworkDevnet, NetworkTestnet:
		return n, nil
	case "mainnet":
		return NetworkMainnet, nil
	default:
		return "", fmt.Errorf("unknown network %q (want mainnet-beta, devnet or testnet)", s)
	}
}

// Commitment is the ledger commitment level used when answering queries.
type Commitment string

const (
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// ParseCommitment converts a string to a Commitment.
func ParseCommitment(s string) (Commitment, error) {
	switch c := Commitment(s); c {
	case CommitmentConfirmed, CommitmentFinalized:
		return c, nil
	default:
		return "", fmt.Errorf("unknown commitment %q (want confirmed or finalized)", s)
	}
}

// Defaults applied by New.
const (
	DefaultBaseURL          = "https://api.shyft.to/sol/v1/"
	DefaultTimeout          = 10 * time.Second
	DefaultMinRetryInterval = 500 * time.Millisecond
	DefaultMaxRetryInterval = 1000 * time.Millisecond
	DefaultMaxRetries       = 3
	DefaultNetwork          = NetworkMainnet
	DefaultCommitment       = CommitmentConfirmed
)

// config holds the client configuration. It is never mutated after New returns.
type config struct {
	apiKey     secret
	baseURL    string
	network    Network
	commitment Commitment
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	policy     retry.Policy
}

func defaultConfig(apiKey string) *config {
	return &config{
		apiKey:     secret(apiKey),
		baseURL:    DefaultBaseURL,
		network:    DefaultNetwork,
		commitment: DefaultCommitment,
		timeout:    DefaultTimeout,
		policy:     *retry.DefaultPolicy(),
	}
}

// Option configures the client.
type Option func(*config)

// WithMinRetryInterval sets the delay before the first retry.
func WithMinRetryInterval(d time.Duration) Option {
	return func(c *config) {
		c.policy.MinInterval = d
	}
}

// WithMaxRetryInterval caps the delay between retries.
func WithMaxRetryInterval(d time.Duration) Option {
	return func(c *config) {
		c.policy.MaxInterval = d
	}
}

// WithMaxRetries sets how many times a failed request is re-issued.
func WithMaxRetries(n int) Option {
	return func(c *config) {
		c.policy.MaxRetries = n
	}
}

// WithRetryPolicy replaces the whole retry policy. Interval and retry options
// applied afterwards still take effect.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithNetwork sets the network sent with every request.
func WithNetwork(n Network) Option {
	return func(c *config) {
		c.network = n
	}
}

// WithCommitment sets the commitment level sent with every request.
func WithCommitment(cm Commitment) Option {
	return func(c *config) {
		c.commitment = cm
	}
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-attempt request timeout. A client passed through
// WithHTTPClient keeps its own Timeout when it has one.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped to
// add authentication and metrics; the client value itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}
