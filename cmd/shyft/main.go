package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/brojonat/shyft/client"
	"github.com/brojonat/shyft/service/config"
	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shyft",
		Usage: "Query parsed Solana transactions through the Shyft API",
		Description: `A command-line tool for the Shyft transaction endpoints.

Reads SHYFT_API_KEY and the other SHYFT_* variables from the environment,
after loading any .env file given with --env-file (default: ./.env).`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Before: func(c *cli.Context) error {
			return config.LoadDotEnv(c.StringSlice("env-file")...)
		},
		Commands: []*cli.Command{
			historyCommand(),
			parsedCommand(),
			parseSelectedCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: ".env files to load before reading the environment",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Shyft API key (env: SHYFT_API_KEY)",
			},
			&cli.StringFlag{
				Name:        "base-url",
				Usage:       "Shyft API base URL (env: SHYFT_BASE_URL)",
				DefaultText: client.DefaultBaseURL,
			},
			&cli.StringFlag{
				Name:        "network",
				Aliases:     []string{"n"},
				Usage:       "Solana network: mainnet-beta, devnet, testnet (env: SHYFT_NETWORK)",
				DefaultText: string(client.DefaultNetwork),
			},
			&cli.StringFlag{
				Name:        "commitment",
				Usage:       "Commitment level: confirmed, finalized (env: SHYFT_COMMITMENT)",
				DefaultText: string(client.DefaultCommitment),
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "Per-request timeout (env: SHYFT_TIMEOUT)",
				DefaultText: client.DefaultTimeout.String(),
			},
			&cli.DurationFlag{
				Name:        "min-retry-interval",
				Usage:       "Minimum delay between retries (env: SHYFT_MIN_RETRY_INTERVAL)",
				DefaultText: client.DefaultMinRetryInterval.String(),
			},
			&cli.DurationFlag{
				Name:        "max-retry-interval",
				Usage:       "Maximum delay between retries (env: SHYFT_MAX_RETRY_INTERVAL)",
				DefaultText: client.DefaultMaxRetryInterval.String(),
			},
			&cli.IntFlag{
				Name:        "max-retries",
				Usage:       "Retries after the first attempt (env: SHYFT_MAX_RETRIES)",
				DefaultText: strconv.Itoa(client.DefaultMaxRetries),
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Log level: debug, info, warn, error (env: LOG_LEVEL)",
				DefaultText: config.DefaultLogLevel,
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
	}
}

// flagEnv maps each global configuration flag to the variable it overrides.
var flagEnv = map[string]string{
	"api-key":            "SHYFT_API_KEY",
	"base-url":           "SHYFT_BASE_URL",
	"network":            "SHYFT_NETWORK",
	"commitment":         "SHYFT_COMMITMENT",
	"timeout":            "SHYFT_TIMEOUT",
	"min-retry-interval": "SHYFT_MIN_RETRY_INTERVAL",
	"max-retry-interval": "SHYFT_MAX_RETRY_INTERVAL",
	"max-retries":        "SHYFT_MAX_RETRIES",
	"log-level":          "LOG_LEVEL",
}

// newClient builds a client from the environment, with explicitly set global
// flags taking precedence.
func newClient(c *cli.Context) (*client.Client, error) {
	overrides := make(map[string]string)
	for name, key := range flagEnv {
		if c.IsSet(name) {
			overrides[key] = fmt.Sprint(c.Value(name))
		}
	}

	cfg, err := config.LoadWithOverrides(overrides)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.ClientOptions(), client.WithLogger(setupLogger(cfg.LogLevel)))
	return client.New(cfg.APIKey, opts...)
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
