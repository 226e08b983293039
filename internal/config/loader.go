package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names consulted by Load.
const (
	EnvPrefix     = "PORTFOLIO_"
	EnvConfigFile = "PORTFOLIO_CONFIG"
	EnvDotenvFile = "PORTFOLIO_DOTENV"
	EnvPort       = "PORT"
)

// Load builds a Config by layering defaults, .env, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file (PORTFOLIO_DOTENV or ./.env) exported into the process env
//  3. file (YAML) if PORTFOLIO_CONFIG is set
//  4. env (prefix PORTFOLIO_)
//  5. PORT, which sets addr to ":<PORT>"
func Load(_ context.Context) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// PORTFOLIO_RATE_LIMIT_MAX -> rate_limit_max (flat keys)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if port := strings.TrimSpace(os.Getenv(EnvPort)); port != "" {
		cfg.Addr = ":" + port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotenv exports the .env file into the process environment without
// overriding variables that are already set. A missing file is fine.
func loadDotenv() error {
	path := os.Getenv(EnvDotenvFile)
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SubmissionsPath == "":
		return fmt.Errorf("%w: submissions_path must not be empty", ErrInvalidConfig)
	case c.RateLimitMax <= 0:
		return fmt.Errorf("%w: rate_limit_max must be positive", ErrInvalidConfig)
	case c.RateLimitWindowMS <= 0:
		return fmt.Errorf("%w: rate_limit_window_ms must be positive", ErrInvalidConfig)
	case c.AlertRateLimitMax <= 0:
		return fmt.Errorf("%w: alert_rate_limit_max must be positive", ErrInvalidConfig)
	case c.AlertRateLimitWindowMS <= 0:
		return fmt.Errorf("%w: alert_rate_limit_window_ms must be positive", ErrInvalidConfig)
	case c.AlertHistorySize <= 0:
		return fmt.Errorf("%w: alert_history_size must be positive", ErrInvalidConfig)
	case c.AlertQueueSize <= 0:
		return fmt.Errorf("%w: alert_queue_size must be positive", ErrInvalidConfig)
	case c.AlertWorkers <= 0:
		return fmt.Errorf("%w: alert_workers must be positive", ErrInvalidConfig)
	case c.ClientTimeoutMS <= 0:
		return fmt.Errorf("%w: client_timeout_ms must be positive", ErrInvalidConfig)
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}
