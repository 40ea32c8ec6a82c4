package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/brojonat/shyft/client"
	"github.com/joho/godotenv"
)

// DefaultLogLevel is used when LOG_LEVEL is unset.
const DefaultLogLevel = "info"

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	LogLevel string

	// Shyft API configuration
	APIKey     string
	BaseURL    string
	Network    client.Network
	Commitment client.Commitment
	Timeout    time.Duration

	// Retry configuration
	MinRetryInterval time.Duration
	MaxRetryInterval time.Duration
	MaxRetries       int
}

// LoadDotEnv loads environment variables from the given .env files, defaulting
// to ".env" in the working directory. Missing files are skipped and variables
// already present in the environment are never overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	return LoadWithOverrides(nil)
}

// LoadWithOverrides is like Load, but a non-empty value in overrides takes
// precedence over the environment variable of the same name.
func LoadWithOverrides(overrides map[string]string) (*Config, error) {
	env := source(overrides)
	cfg := &Config{}
	var errs []error

	cfg.LogLevel = env.getOrDefault("LOG_LEVEL", DefaultLogLevel)

	cfg.APIKey = env.get("SHYFT_API_KEY")
	if cfg.APIKey == "" {
		errs = append(errs, fmt.Errorf("SHYFT_API_KEY is required"))
	}
	cfg.BaseURL = env.getOrDefault("SHYFT_BASE_URL", client.DefaultBaseURL)

	network, err := client.ParseNetwork(env.getOrDefault("SHYFT_NETWORK", string(client.DefaultNetwork)))
	if err != nil {
		errs = append(errs, fmt.Errorf("SHYFT_NETWORK: %w", err))
	}
	cfg.Network = network

	commitment, err := client.ParseCommitment(env.getOrDefault("SHYFT_COMMITMENT", string(client.DefaultCommitment)))
	if err != nil {
		errs = append(errs, fmt.Errorf("SHYFT_COMMITMENT: %w", err))
	}
	cfg.Commitment = commitment

	timeout, err := env.duration("SHYFT_TIMEOUT", client.DefaultTimeout.String())
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.Timeout = timeout
	}

	minInterval, err := env.duration("SHYFT_MIN_RETRY_INTERVAL", client.DefaultMinRetryInterval.String())
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.MinRetryInterval = minInterval
	}

	maxInterval, err := env.duration("SHYFT_MAX_RETRY_INTERVAL", client.DefaultMaxRetryInterval.String())
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.MaxRetryInterval = maxInterval
	}

	maxRetries, err := env.integer("SHYFT_MAX_RETRIES", client.DefaultMaxRetries)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.MaxRetries = maxRetries
	}

	if len(errs) == 0 {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	// Return all validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("APIKey is required"))
	}

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("Timeout must be positive"))
	}

	if c.MinRetryInterval <= 0 {
		errs = append(errs, fmt.Errorf("MinRetryInterval must be positive"))
	}

	if c.MinRetryInterval > c.MaxRetryInterval {
		errs = append(errs, fmt.Errorf("MinRetryInterval (%v) cannot be greater than MaxRetryInterval (%v)",
			c.MinRetryInterval, c.MaxRetryInterval))
	}

	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("MaxRetries cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// ClientOptions converts the configuration into client options. Network and
// commitment are only set when present so a zero Config keeps client defaults.
func (c *Config) ClientOptions() []client.Option {
	opts := []client.Option{
		client.WithMinRetryInterval(c.MinRetryInterval),
		client.WithMaxRetryInterval(c.MaxRetryInterval),
		client.WithMaxRetries(c.MaxRetries),
	}
	if c.BaseURL != "" {
		opts = append(opts, client.WithBaseURL(c.BaseURL))
	}
	if c.Network != "" {
		opts = append(opts, client.WithNetwork(c.Network))
	}
	if c.Commitment != "" {
		opts = append(opts, client.WithCommitment(c.Commitment))
	}
	if c.Timeout > 0 {
		opts = append(opts, client.WithTimeout(c.Timeout))
	}
	return opts
}

// source resolves configuration keys, consulting overrides before the environment.
type source map[string]string

func (s source) get(key string) string {
	if value := s[key]; value != "" {
		return value
	}
	return os.Getenv(key)
}

// getOrDefault returns the value for key or a default if not set.
func (s source) getOrDefault(key, defaultValue string) string {
	if value := s.get(key); value != "" {
		return value
	}
	return defaultValue
}

// duration parses a duration for key or uses a default.
func (s source) duration(key, defaultValue string) (time.Duration, error) {
	value := s.getOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// integer parses an integer for key or uses a default.
func (s source) integer(key string, defaultValue int) (int, error) {
	value := s.get(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
