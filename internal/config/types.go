package config

// Config is the root configuration structure
type Config struct {
	Gateway    GatewayConfig    `yaml:"gateway" json:"gateway" toml:"gateway"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging" toml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing" json:"tracing" toml:"tracing"`
	Capability CapabilityConfig `yaml:"capability" json:"capability" toml:"capability"`
}

// GatewayConfig locates and authenticates against the gateway
type GatewayConfig struct {
	URL            string  `yaml:"url" json:"url" toml:"url"`
	Token          string  `yaml:"token,omitempty" json:"token,omitempty" toml:"token"`
	TimeoutSeconds float64 `yaml:"timeoutSeconds" json:"timeoutSeconds" toml:"timeoutSeconds"` // per candidate
}

// LoggingConfig controls the adapter's own log file. Stdout is never used.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" toml:"level"` // debug, info, warn, error, disabled
	Path  string `yaml:"path,omitempty" json:"path,omitempty" toml:"path"`
}

// TracingConfig enables OpenTelemetry spans for gateway attempts
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled" toml:"enabled"`
	Exporter string `yaml:"exporter,omitempty" json:"exporter,omitempty" toml:"exporter"` // "log" or "noop"
}

// CapabilityConfig points at the optional OpenClaw module manifest used by skills.list
type CapabilityConfig struct {
	ManifestPath string `yaml:"manifestPath,omitempty" json:"manifestPath,omitempty" toml:"manifestPath"`
}
