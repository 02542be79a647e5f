package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	defaultMaxNodes             = 100000
	defaultMaxSessions          = 64
	defaultHibernationThreshold = 4096
)

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Session defaults.
	viperCfg.SetDefault("session.mode", "bst")
	viperCfg.SetDefault("session.polarity", "min")
	viperCfg.SetDefault("session.parse_policy", "reject")
	viperCfg.SetDefault("session.verify_invariants", true)
	viperCfg.SetDefault("session.max_nodes", defaultMaxNodes)
	viperCfg.SetDefault("session.max_sessions", defaultMaxSessions)
	viperCfg.SetDefault("session.hibernation_threshold", defaultHibernationThreshold)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "text")

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.environment", "development")
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.metrics_addr", "")
}
