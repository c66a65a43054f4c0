package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every case run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database.
	// Empty means the default location under the casework home.
	DBPath string `yaml:"db_path"`

	// Limit is the default number of rows shown by the history command
	Limit int `yaml:"limit"`
}

// Config represents casework configuration options
type Config struct {
	// CaseRoot is the directory where case working directories are created.
	// Empty disables per-case directories.
	CaseRoot string `yaml:"case_root"`

	// Timeout is the maximum execution time for a single case (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets run log verbosity, trace through error
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written
	LogDir string `yaml:"log_dir"`

	// NoColor disables colored terminal output
	NoColor bool `yaml:"no_color"`

	// StopOnFailure stops a run at the first failed case
	StopOnFailure bool `yaml:"stop_on_failure"`

	// Plugins lists case type plugin files to load on startup
	Plugins []string `yaml:"plugins"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		CaseRoot:      ".casework/cases",
		Timeout:       2 * time.Hour,
		LogLevel:      "info",
		LogDir:        ".casework/logs",
		NoColor:       false,
		StopOnFailure: false,
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "",
			Limit:   20,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Duration fields arrive as strings, so decode through an intermediate
	// struct before merging onto the defaults.
	type yamlConfig struct {
		CaseRoot      string        `yaml:"case_root"`
		Timeout       string        `yaml:"timeout"`
		LogLevel      string        `yaml:"log_level"`
		LogDir        string        `yaml:"log_dir"`
		NoColor       bool          `yaml:"no_color"`
		StopOnFailure bool          `yaml:"stop_on_failure"`
		Plugins       []string      `yaml:"plugins"`
		History       HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if yamlCfg.CaseRoot != "" {
		cfg.CaseRoot = yamlCfg.CaseRoot
	}
	if yamlCfg.Timeout != "" {
		d, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = d
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.NoColor {
		cfg.NoColor = yamlCfg.NoColor
	}
	if yamlCfg.StopOnFailure {
		cfg.StopOnFailure = yamlCfg.StopOnFailure
	}
	if len(yamlCfg.Plugins) > 0 {
		cfg.Plugins = yamlCfg.Plugins
	}

	// The history section merges field by field, so a file that only sets
	// history.limit keeps the remaining defaults. Presence is detected on a
	// raw map since zero values are indistinguishable after decoding.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			history := yamlCfg.History
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = history.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = history.DBPath
			}
			if _, exists := historyMap["limit"]; exists {
				cfg.History.Limit = history.Limit
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .casework/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".casework", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(logLevel *string, timeout *time.Duration, noColor *bool, stopOnFailure *bool, caseRoot *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
	if noColor != nil {
		c.NoColor = *noColor
	}
	if stopOnFailure != nil {
		c.StopOnFailure = *stopOnFailure
	}
	if caseRoot != nil {
		c.CaseRoot = *caseRoot
	}
}

// Validate reports the first configuration value that cannot work.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (valid levels: trace, debug, info, warn, error)", c.LogLevel)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %v", c.Timeout)
	}

	if c.History.Enabled && c.History.Limit < 0 {
		return fmt.Errorf("history.limit cannot be negative, got %d", c.History.Limit)
	}

	return nil
}
