// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3001".
	Addr string `koanf:"addr"`

	// SubmissionsPath is the JSON file that holds every accepted request.
	SubmissionsPath string `koanf:"submissions_path"`

	// RateLimitMax and RateLimitWindowMS bound submissions per client.
	RateLimitMax      int `koanf:"rate_limit_max"`
	RateLimitWindowMS int `koanf:"rate_limit_window_ms"`

	// AlertRateLimitMax and AlertRateLimitWindowMS bound theme alert and
	// vitals reports per client, separately from submissions.
	AlertRateLimitMax      int `koanf:"alert_rate_limit_max"`
	AlertRateLimitWindowMS int `koanf:"alert_rate_limit_window_ms"`

	// AlertHistorySize caps the alerts kept in memory.
	AlertHistorySize int `koanf:"alert_history_size"`

	// TrustedProxies lists comma separated CIDRs or addresses whose
	// X-Forwarded-For header names the client. Empty trusts no proxy.
	TrustedProxies string `koanf:"trusted_proxies"`

	// CORSAllowedOrigin is echoed in Access-Control-Allow-Origin.
	CORSAllowedOrigin string `koanf:"cors_allowed_origin"`

	// AlertEndpoint receives forwarded theme alerts. Empty keeps them in the log.
	AlertEndpoint  string `koanf:"alert_endpoint"`
	AlertQueueSize int    `koanf:"alert_queue_size"`
	AlertWorkers   int    `koanf:"alert_workers"`
	AlertTimeoutMS int    `koanf:"alert_timeout_ms"`

	// JWTSecret signs admin tokens. Empty disables the admin listing.
	JWTSecret string `koanf:"jwt_secret"`

	// APIBaseURL and ClientTimeoutMS configure the form submission client.
	APIBaseURL      string `koanf:"api_base_url"`
	ClientTimeoutMS int    `koanf:"client_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":3001",
		SubmissionsPath:        "submissions.json",
		RateLimitMax:           5,
		RateLimitWindowMS:      60_000,
		AlertRateLimitMax:      60,
		AlertRateLimitWindowMS: 60_000,
		AlertHistorySize:       1000,
		CORSAllowedOrigin:      "*",
		AlertQueueSize:         1024,
		AlertWorkers:           2,
		AlertTimeoutMS:         5_000,
		APIBaseURL:             "http://localhost:3001/api",
		ClientTimeoutMS:        10_000,
	}
}

// RateLimitWindow returns the sliding window length.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

// AlertRateLimitWindow returns the sliding window for browser reports.
func (c *Config) AlertRateLimitWindow() time.Duration {
	return time.Duration(c.AlertRateLimitWindowMS) * time.Millisecond
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is a
// single host prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, field := range strings.Split(c.TrustedProxies, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if !strings.Contains(field, "/") {
			addr, err := netip.ParseAddr(field)
			if err != nil {
				return nil, fmt.Errorf("%w: trusted_proxies: %w", ErrInvalidConfig, err)
			}
			out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(field)
		if err != nil {
			return nil, fmt.Errorf("%w: trusted_proxies: %w", ErrInvalidConfig, err)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// AlertTimeout bounds one alert delivery.
func (c *Config) AlertTimeout() time.Duration {
	return time.Duration(c.AlertTimeoutMS) * time.Millisecond
}

// ClientTimeout bounds one form submission round trip.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.ClientTimeoutMS) * time.Millisecond
}
