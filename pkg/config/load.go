package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention THEMIS_SECTION_FIELD (e.g., THEMIS_POLICY_PATH) and always take
// precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format THEMIS_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Policy overrides
	if val := os.Getenv("THEMIS_POLICY_PATH"); val != "" {
		cfg.Policy.Path = val
	}
	if val := os.Getenv("THEMIS_POLICY_QUERY"); val != "" {
		cfg.Policy.Query = val
	}
	if val := os.Getenv("THEMIS_POLICY_DATA_FILE"); val != "" {
		cfg.Policy.DataFile = val
	}

	// Logging overrides
	if val := os.Getenv("THEMIS_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("THEMIS_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Metrics overrides
	if val := os.Getenv("THEMIS_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("THEMIS_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}

	// Decision log overrides
	if val := os.Getenv("THEMIS_DECISION_LOG_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.DecisionLog.Enabled = b
		}
	}
	if val := os.Getenv("THEMIS_DECISION_LOG_BACKEND"); val != "" {
		cfg.DecisionLog.Backend = val
	}
	if val := os.Getenv("THEMIS_DECISION_LOG_SQLITE_PATH"); val != "" {
		cfg.DecisionLog.SQLitePath = val
	}
	if val := os.Getenv("THEMIS_DECISION_LOG_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.DecisionLog.WriteTimeout = d
		}
	}
	if val := os.Getenv("THEMIS_DECISION_LOG_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.DecisionLog.RetentionDays = i
		}
	}
	if val := os.Getenv("THEMIS_DECISION_LOG_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.DecisionLog.MaxRecords = i
		}
	}
	if val := os.Getenv("THEMIS_DECISION_LOG_PRUNE_SCHEDULE"); val != "" {
		cfg.DecisionLog.PruneSchedule = val
	}

	// History overrides
	if val := os.Getenv("THEMIS_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("THEMIS_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}
}
