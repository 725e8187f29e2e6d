package config

import "time"

// Default values for configuration fields.
const (
	// Policy defaults
	DefaultPolicyQuery = "data"

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	// Metrics defaults
	DefaultMetricsEnabled       = false
	DefaultMetricsListenAddress = "127.0.0.1:9090"

	// Decision log defaults
	DefaultDecisionLogEnabled       = false
	DefaultDecisionLogBackend       = "sqlite"
	DefaultDecisionLogSQLitePath    = "data/decisions.db"
	DefaultDecisionLogWriteTimeout  = 5 * time.Second
	DefaultDecisionLogRetentionDays = 90
	DefaultDecisionLogPruneSchedule = "0 3 * * *"

	// History defaults
	DefaultHistoryEnabled = false
	DefaultHistoryPath    = "data/history.db"
)

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Policy.Query == "" {
		cfg.Policy.Query = DefaultPolicyQuery
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}

	if cfg.DecisionLog.Backend == "" {
		cfg.DecisionLog.Backend = DefaultDecisionLogBackend
	}
	if cfg.DecisionLog.SQLitePath == "" {
		cfg.DecisionLog.SQLitePath = DefaultDecisionLogSQLitePath
	}
	if cfg.DecisionLog.WriteTimeout == 0 {
		cfg.DecisionLog.WriteTimeout = DefaultDecisionLogWriteTimeout
	}
	if cfg.DecisionLog.RetentionDays == 0 {
		cfg.DecisionLog.RetentionDays = DefaultDecisionLogRetentionDays
	}
	if cfg.DecisionLog.PruneSchedule == "" {
		cfg.DecisionLog.PruneSchedule = DefaultDecisionLogPruneSchedule
	}

	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
}
