package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yourusername/openclaw-adapter/internal/client"
)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if err := validateGateway(&c.Gateway); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	if err := validateLogging(&c.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	switch c.Tracing.Exporter {
	case "", "log", "noop":
	default:
		return fmt.Errorf("tracing: unsupported exporter: %s", c.Tracing.Exporter)
	}

	return nil
}

func validateGateway(g *GatewayConfig) error {
	raw := strings.TrimSpace(g.URL)
	if raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid url %q: %w", raw, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("url %q must use http or https", raw)
		}
		if u.Host == "" {
			return fmt.Errorf("url %q has no host", raw)
		}
	}

	if g.TimeoutSeconds < 0 {
		return fmt.Errorf("timeoutSeconds must be positive, got %v", g.TimeoutSeconds)
	}
	if g.TimeoutSeconds > client.DefaultLongCallTimeout.Seconds() {
		return fmt.Errorf("timeoutSeconds must be at most %v, got %v",
			client.DefaultLongCallTimeout.Seconds(), g.TimeoutSeconds)
	}

	return nil
}

func validateLogging(l *LoggingConfig) error {
	if l.Level == "" {
		return nil
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(l.Level)); err != nil {
		return fmt.Errorf("invalid level %q", l.Level)
	}
	return nil
}
