package config

import "time"

// Config is the root configuration structure for Themis.
type Config struct {
	// Policy configures the policy to load and query at startup.
	Policy PolicyConfig `yaml:"policy"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// DecisionLog configures evaluation decision recording.
	DecisionLog DecisionLogConfig `yaml:"decision_log"`

	// History configures the policy load audit trail.
	History HistoryConfig `yaml:"history"`
}

// PolicyConfig describes the policy loaded at startup.
type PolicyConfig struct {
	// Path is the filesystem path of the policy source file.
	Path string `yaml:"path"`

	// Query is the query expression evaluated against the policy.
	// Default: "data"
	Query string `yaml:"query"`

	// DataFile is an optional JSON file of static data made available
	// to the policy under the data document.
	DataFile string `yaml:"data_file"`
}

// LoggingConfig describes structured log output.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	Format string `yaml:"format"`

	// AddSource includes the source file and line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig describes the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint when true.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics server binds to.
	ListenAddress string `yaml:"listen_address"`
}

// DecisionLogConfig describes evaluation decision recording.
type DecisionLogConfig struct {
	// Enabled turns decision recording on.
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: sqlite or memory.
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`

	// WriteTimeout bounds each storage write.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// RetentionDays is how many days of decisions to keep. 0 keeps
	// decisions forever.
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the total number of stored decisions. 0 means
	// unlimited.
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Empty disables scheduling.
	PruneSchedule string `yaml:"prune_schedule"`
}

// HistoryConfig describes the policy load audit trail.
type HistoryConfig struct {
	// Enabled turns load auditing on.
	Enabled bool `yaml:"enabled"`

	// Path is the database file path.
	Path string `yaml:"path"`
}
