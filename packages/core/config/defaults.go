package config

import "github.com/abdul-hamid-achik/assertkit/packages/stringdiff"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DiffOpen:  stringdiff.DefaultOpen,
		DiffClose: stringdiff.DefaultClose,
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.ReportingDBURL == defaults.ReportingDBURL &&
		c.ReportingDBConfig == defaults.ReportingDBConfig &&
		c.BuildInfo == defaults.BuildInfo &&
		c.ReportingFrequency == defaults.ReportingFrequency &&
		c.BatchSize == defaults.BatchSize &&
		c.RunnerID == defaults.RunnerID &&
		c.DiffOpen == defaults.DiffOpen &&
		c.DiffClose == defaults.DiffClose &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
