// Package config handles configuration loading and management for assertkit.
//
// It provides functionality for:
//   - Loading configuration from .assertkit.json or assertkit.config.json
//   - Default configuration values
//   - Merging command line overrides onto file settings
package config
