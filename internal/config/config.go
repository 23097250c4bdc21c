// Package config holds all configuration for the wallet client.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/config"
)

// Config holds the wallet client configuration.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Gateway
	GatewayURL    string `env:"GATEWAY_URL" envDefault:"https://api.vaultstring.io"`
	HTTPTimeout   int    `env:"HTTP_TIMEOUT_SECONDS" envDefault:"15"`
	QuoteTimeout  int    `env:"QUOTE_TIMEOUT_SECONDS" envDefault:"5"`
	SubmitTimeout int    `env:"SUBMIT_TIMEOUT_SECONDS" envDefault:"15"`

	// Local state. Empty means the per-user config directory.
	StateDir string `env:"STATE_DIR"`

	// Circuit breaker settings for the money-path gateway calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Diagnostics endpoint serving health and metrics. Empty disables it.
	DiagnosticsAddr string `env:"DIAGNOSTICS_ADDR"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wallet config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.StateDir == "" {
		dir, err := defaultStateDir()
		if err != nil {
			return nil, err
		}
		cfg.StateDir = dir
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.GatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid GATEWAY_URL %q", c.GatewayURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTPTimeout)
	}
	if c.QuoteTimeout <= 0 {
		return fmt.Errorf("QUOTE_TIMEOUT_SECONDS must be positive, got %d", c.QuoteTimeout)
	}
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT_SECONDS must be positive, got %d", c.SubmitTimeout)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %v", c.CBFailureRatio)
	}
	return nil
}

// HTTPTimeoutDuration returns the transport timeout.
func (c *Config) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// QuoteTimeoutDuration returns the rate-quote timeout.
func (c *Config) QuoteTimeoutDuration() time.Duration {
	return time.Duration(c.QuoteTimeout) * time.Second
}

// SubmitTimeoutDuration returns the transfer-submission timeout.
func (c *Config) SubmitTimeoutDuration() time.Duration {
	return time.Duration(c.SubmitTimeout) * time.Second
}

// defaultStateDir places local state under the OS config directory.
func defaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(base, "vaultstring"), nil
}
