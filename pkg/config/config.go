// Package config provides configuration loading and validation for arbor.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
	"github.com/Sumatoshi-tech/arbor/pkg/validate"
)

// Sentinel validation errors.
var (
	ErrInvalidMode        = errors.New("invalid session mode")
	ErrInvalidPolarity    = errors.New("invalid heap polarity")
	ErrInvalidParsePolicy = errors.New("invalid parse policy")
	ErrInvalidMaxNodes    = errors.New("max nodes must be positive")
	ErrInvalidMaxSessions = errors.New("max sessions must be positive")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
)

// Config holds all configuration for arbor.
type Config struct {
	Session   SessionConfig   `mapstructure:"session"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// SessionConfig holds per-session defaults.
type SessionConfig struct {
	// Mode is "bst" or "heap".
	Mode string `mapstructure:"mode"`

	// Polarity is "min" or "max"; heap mode only.
	Polarity string `mapstructure:"polarity"`

	// ParsePolicy is "reject" or "truncate" and applies uniformly to
	// every commit of a session.
	ParsePolicy string `mapstructure:"parse_policy"`

	// VerifyInvariants enables the post-operation invariant walk.
	VerifyInvariants bool `mapstructure:"verify_invariants"`

	// MaxNodes caps the number of live nodes per session.
	MaxNodes int `mapstructure:"max_nodes"`

	// MaxSessions caps concurrently open sessions per manager.
	MaxSessions int `mapstructure:"max_sessions"`

	// HibernationThreshold is the minimum arena size worth compressing
	// when a session hibernates. Zero compresses any size.
	HibernationThreshold int `mapstructure:"hibernation_threshold"`
}

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SlogLevel maps the configured level string onto slog.Level. Unknown
// levels fall back to info; LoadConfig rejects them earlier.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TelemetryConfig holds metrics/tracing export configuration.
type TelemetryConfig struct {
	Environment  string `mapstructure:"environment"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	MetricsAddr  string `mapstructure:"metrics_addr"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("arbor")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/arbor")
	}

	viperCfg.SetEnvPrefix("ARBOR")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if _, err := ordtree.ParseMode(config.Session.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMode, config.Session.Mode)
	}

	if _, err := ordtree.ParsePolarity(config.Session.Polarity); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPolarity, config.Session.Polarity)
	}

	if _, err := validate.ParsePolicy(config.Session.ParsePolicy); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidParsePolicy, config.Session.ParsePolicy)
	}

	if config.Session.MaxNodes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxNodes, config.Session.MaxNodes)
	}

	if config.Session.MaxSessions <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxSessions, config.Session.MaxSessions)
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch config.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}
