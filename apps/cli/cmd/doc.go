// Package cmd implements the assertkit CLI commands using Cobra.
//
// Available commands:
//   - diff: Highlight where two strings differ
//   - rows: Compare two JSON row files as unordered sets of records
//   - ingest: Store a go test -json stream in the reporting database
//   - stats: Summarize a stored build
//   - init: Write a default .assertkit.json
//   - version: Show assertkit version information
//
// Settings come from .assertkit.json or assertkit.config.json, overridden
// by flags and ASSERTKIT_* environment variables.
package cmd
