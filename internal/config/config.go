package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/openclaw-adapter/internal/client"
)

const (
	DefaultConfigDir  = ".config/miya"
	DefaultConfigFile = "openclaw-adapter.yaml"
)

// Environment variables read once at process start.
const (
	EnvConfigPath = "MIYA_ADAPTER_CONFIG"
	EnvGatewayURL = "MIYA_GATEWAY_URL"
	EnvToken      = "MIYA_GATEWAY_TOKEN"
	EnvTimeout    = "MIYA_GATEWAY_TIMEOUT"
	EnvLogLevel   = "MIYA_ADAPTER_LOG_LEVEL"
	EnvLogPath    = "MIYA_ADAPTER_LOG"
	EnvTrace      = "MIYA_ADAPTER_TRACE"
	EnvManifest   = "OPENCLAW_MANIFEST"
)

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			URL:            client.DefaultBaseURL,
			TimeoutSeconds: client.DefaultQueryTimeout.Seconds(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Exporter: "log",
		},
	}
}

// LoadConfig loads configuration from the specified path or default location.
// If path is empty, uses ~/.config/miya/openclaw-adapter.{yaml,yml,json,toml} and
// falls back to DefaultConfig when none exists.
// Supports .yaml, .json and .toml extensions
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = findDefaultConfig()
		if path == "" {
			cfg := DefaultConfig()
			return cfg, cfg.Validate()
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return LoadConfigFromBytes(data, ext)
}

// LoadConfigFromBytes loads configuration from raw bytes on top of the defaults.
// format should be "yaml", "json" or "toml"
func LoadConfigFromBytes(data []byte, format string) (*Config, error) {
	cfg := DefaultConfig()

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// findDefaultConfig returns the first existing default config file, or "".
func findDefaultConfig() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	base := strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile))
	for _, ext := range []string{".yaml", ".yml", ".json", ".toml"} {
		p := filepath.Join(home, DefaultConfigDir, base+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
}

// ApplyEnv overrides fields from environment variables. lookup is usually os.LookupEnv.
// Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvGatewayURL); ok {
		c.Gateway.URL = v
	}
	if v, ok := get(EnvToken); ok {
		c.Gateway.Token = v
	}
	if v, ok := get(EnvTimeout); ok {
		secs, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Gateway.TimeoutSeconds = secs
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Logging.Level = v
	}
	if v, ok := get(EnvLogPath); ok {
		c.Logging.Path = v
	}
	if v, ok := get(EnvTrace); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTrace, err)
		}
		c.Tracing.Enabled = enabled
	}
	if v, ok := get(EnvManifest); ok {
		c.Capability.ManifestPath = v
	}

	return c.Validate()
}

// parseSeconds accepts either a bare number of seconds or a Go duration string.
func parseSeconds(v string) (float64, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return secs, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", v)
	}
	return d.Seconds(), nil
}

// BaseURL returns the gateway URL with trailing slashes removed
func (c *Config) BaseURL() string {
	u := strings.TrimRight(strings.TrimSpace(c.Gateway.URL), "/")
	if u == "" {
		return client.DefaultBaseURL
	}
	return u
}

// Timeout returns the per-candidate request timeout
func (c *Config) Timeout() time.Duration {
	if c.Gateway.TimeoutSeconds <= 0 {
		return client.DefaultQueryTimeout
	}
	return time.Duration(c.Gateway.TimeoutSeconds * float64(time.Second))
}
