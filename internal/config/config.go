// Package config loads and validates the profiler configuration from a
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Probe source and output format vocabularies accepted by validation.
var (
	validProbeSources = map[string]bool{
		"auto":     true,
		"builtin":  true,
		"firmware": true,
		"exporter": true,
	}
	validOutputFormats = map[string]bool{
		"text": true,
		"json": true,
	}
	validLogLevels = map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	deviceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Config is the root configuration.
type Config struct {
	DeviceID string        `mapstructure:"device_id"`
	Probe    ProbeConfig   `mapstructure:"probe"`
	Output   OutputConfig  `mapstructure:"output"`
	Publish  PublishConfig `mapstructure:"publish"`
	Agent    AgentConfig   `mapstructure:"agent"`
	Logging  LoggingConfig `mapstructure:"logging"`
}

// ProbeConfig selects and tunes the fact probe.
type ProbeConfig struct {
	Source        string `mapstructure:"source"`       // auto, builtin, firmware, exporter
	ExporterURL   string `mapstructure:"exporter_url"` // required for source=exporter
	RetryAttempts int    `mapstructure:"retry_attempts"`
}

// OutputConfig controls the presentation layer.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text or json
}

// PublishConfig controls forwarding of the structured encoding to the
// downstream image-selection service over NATS. Disabled by default; the
// profiler's own obligation ends at producing a valid encoding.
type PublishConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	Subject string     `mapstructure:"subject"`
	NATS    NATSConfig `mapstructure:"nats"`
}

// NATSConfig configures the forwarder connection.
type NATSConfig struct {
	URLs          []string      `mapstructure:"urls"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	DrainTimeout  time.Duration `mapstructure:"drain_timeout"`
	Auth          AuthConfig    `mapstructure:"auth"`
	TLS           TLSConfig     `mapstructure:"tls"`
}

// AuthConfig configures forwarder authentication.
type AuthConfig struct {
	Type      string          `mapstructure:"type"` // none, creds, token, userpass
	CredsFile string          `mapstructure:"creds_file"`
	Token     string          `mapstructure:"token"`
	Username  string          `mapstructure:"username"`
	Password  string          `mapstructure:"password"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

// BootstrapConfig points at the provisioning endpoint that hands out the
// creds file when it is missing from disk.
type BootstrapConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	TokenEnv string `mapstructure:"token_env"`
}

// TLSConfig configures transport security for the forwarder.
type TLSConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CAFile             string `mapstructure:"ca_file"`
	CertFile           string `mapstructure:"cert_file"`
	KeyFile            string `mapstructure:"key_file"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// AgentConfig controls the long-running mode that re-runs detection on an
// interval. Each run owns its own snapshot; the probe-once rule holds per
// run.
type AgentConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig configures the zap logger and its rotating file sink.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	Console    bool   `mapstructure:"console"`
}

// Load reads configuration from the given path (or the platform default
// when empty), applies defaults and environment overrides, and validates
// the result. A missing config file is not an error: defaults carry a
// usable one-shot configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigFile(GetDefaultConfigPath())
	}

	v.SetEnvPrefix("HWPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := GetPlatformDefaults()

	v.SetDefault("device_id", "")
	v.SetDefault("probe.source", "auto")
	v.SetDefault("probe.exporter_url", defaults.ExporterURL)
	v.SetDefault("probe.retry_attempts", 3)
	v.SetDefault("output.format", "text")
	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.subject", "hwprobe.profile")
	v.SetDefault("publish.nats.urls", []string{"nats://localhost:4222"})
	v.SetDefault("publish.nats.max_reconnects", 5)
	v.SetDefault("publish.nats.reconnect_wait", 2*time.Second)
	v.SetDefault("publish.nats.drain_timeout", 10*time.Second)
	v.SetDefault("publish.nats.auth.type", "none")
	v.SetDefault("publish.nats.auth.bootstrap.enabled", false)
	v.SetDefault("publish.nats.auth.bootstrap.token_env", "HWPROBE_BOOTSTRAP_TOKEN")
	v.SetDefault("agent.interval", 1*time.Hour)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", defaults.LogFile)
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.console", true)
}

func validate(cfg *Config) error {
	if cfg.DeviceID != "" && !deviceIDPattern.MatchString(cfg.DeviceID) {
		return fmt.Errorf("device_id must contain only alphanumeric characters, dashes, and underscores")
	}

	source := strings.ToLower(cfg.Probe.Source)
	if !validProbeSources[source] {
		return fmt.Errorf("probe.source must be one of auto, builtin, firmware, exporter (got %q)", cfg.Probe.Source)
	}
	if source == "exporter" && cfg.Probe.ExporterURL == "" {
		return fmt.Errorf("probe.exporter_url is required when probe.source is exporter")
	}
	if cfg.Probe.RetryAttempts < 1 || cfg.Probe.RetryAttempts > 10 {
		return fmt.Errorf("probe.retry_attempts must be between 1 and 10 (got %d)", cfg.Probe.RetryAttempts)
	}

	if !validOutputFormats[strings.ToLower(cfg.Output.Format)] {
		return fmt.Errorf("output.format must be text or json (got %q)", cfg.Output.Format)
	}

	if cfg.Publish.Enabled {
		if cfg.Publish.Subject == "" {
			return fmt.Errorf("publish.subject is required when publishing is enabled")
		}
		if len(cfg.Publish.NATS.URLs) == 0 {
			return fmt.Errorf("publish.nats.urls must not be empty when publishing is enabled")
		}
		switch cfg.Publish.NATS.Auth.Type {
		case "none", "creds", "token", "userpass":
		default:
			return fmt.Errorf("publish.nats.auth.type must be one of none, creds, token, userpass (got %q)", cfg.Publish.NATS.Auth.Type)
		}
		if cfg.Publish.NATS.Auth.Bootstrap.Enabled && cfg.Publish.NATS.Auth.Bootstrap.URL == "" {
			return fmt.Errorf("publish.nats.auth.bootstrap.url is required when bootstrap is enabled")
		}
	}

	if cfg.Agent.Interval < time.Minute {
		return fmt.Errorf("agent.interval must be at least 1 minute (got %s)", cfg.Agent.Interval)
	}

	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", cfg.Logging.Level)
	}
	if cfg.Logging.MaxSizeMB < 1 {
		return fmt.Errorf("logging.max_size_mb must be at least 1 (got %d)", cfg.Logging.MaxSizeMB)
	}

	return nil
}

// isNotExist reports whether the config read failed because the file does
// not exist; viper wraps this differently depending on how the path was
// supplied.
func isNotExist(err error) bool {
	return strings.Contains(err.Error(), "no such file") ||
		strings.Contains(err.Error(), "cannot find the file") ||
		strings.Contains(err.Error(), "not found")
}
