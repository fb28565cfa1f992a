// Package output provides formatters for displaying assertkit results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - JUnit: JUnit XML of ingested go test results for CI integration
//
// Console and JSON implement the Formatter interface. JUnit accumulates
// results and writes them on Flush.
package output

import (
	"github.com/abdul-hamid-achik/assertkit/packages/gotest"
	"github.com/abdul-hamid-achik/assertkit/packages/reporter"
)

// Formatter renders command results.
type Formatter interface {
	FormatIngest(summary gotest.Summary, buildID int64, ok bool)
	FormatStats(stats *reporter.Stats, failed []reporter.FailedTest)
	FormatError(err error)
}

var (
	_ Formatter = (*ConsoleFormatter)(nil)
	_ Formatter = (*JSONFormatter)(nil)
)
