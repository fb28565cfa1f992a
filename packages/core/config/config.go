package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the assertkit configuration
type Config struct {
	ReportingDBURL     string `json:"reportingDbUrl,omitempty"`
	ReportingDBConfig  string `json:"reportingDbConfig,omitempty"`  // YAML file with driver/database
	BuildInfo          string `json:"buildInfo,omitempty"`          // JSON object describing the build
	ReportingFrequency int    `json:"reportingFrequency,omitempty"` // milliseconds, negative disables throttling
	BatchSize          int    `json:"batchSize,omitempty"`
	RunnerID           string `json:"runnerId,omitempty"`
	DiffOpen           string `json:"diffOpen,omitempty"`
	DiffClose          string `json:"diffClose,omitempty"`
	Verbose            *bool  `json:"verbose,omitempty"`
	NoColor            *bool  `json:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetReportingFrequency returns the reporting frequency as a duration.
// Zero means the reporter default.
func (c *Config) GetReportingFrequency() time.Duration {
	return time.Duration(c.ReportingFrequency) * time.Millisecond
}

// ReportingEnabled reports whether a reporting database is configured
func (c *Config) ReportingEnabled() bool {
	return c.ReportingDBURL != "" || c.ReportingDBConfig != ""
}

// Validate checks settings that cannot be combined
func (c *Config) Validate() error {
	if c.ReportingDBURL != "" && c.ReportingDBConfig != "" {
		return fmt.Errorf("reportingDbUrl and reportingDbConfig are mutually exclusive")
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batchSize must not be negative, got %d", c.BatchSize)
	}
	if (c.DiffOpen == "") != (c.DiffClose == "") {
		return fmt.Errorf("diffOpen and diffClose must be set together")
	}
	return nil
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".assertkit.json",
	"assertkit.config.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	// A database given by either means replaces both settings
	if other.ReportingDBURL != "" || other.ReportingDBConfig != "" {
		result.ReportingDBURL = other.ReportingDBURL
		result.ReportingDBConfig = other.ReportingDBConfig
	}
	if other.BuildInfo != "" {
		result.BuildInfo = other.BuildInfo
	}
	if other.ReportingFrequency != 0 {
		result.ReportingFrequency = other.ReportingFrequency
	}
	if other.BatchSize > 0 {
		result.BatchSize = other.BatchSize
	}
	if other.RunnerID != "" {
		result.RunnerID = other.RunnerID
	}
	if other.DiffOpen != "" && other.DiffClose != "" {
		result.DiffOpen = other.DiffOpen
		result.DiffClose = other.DiffClose
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
