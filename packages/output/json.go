package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/abdul-hamid-achik/assertkit/packages/gotest"
	"github.com/abdul-hamid-achik/assertkit/packages/reporter"
)

// JSONSummary represents the outcome counts of an ingested stream
type JSONSummary struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
	Packages int `json:"packages"`
	Ignored  int `json:"ignored"`
}

// JSONIngest represents the result of ingesting a go test stream
type JSONIngest struct {
	Summary JSONSummary `json:"summary"`
	BuildID int64       `json:"buildId,omitempty"`
	OK      bool        `json:"ok"`
}

// JSONStats represents the stats of a stored build. Durations are in milliseconds.
type JSONStats struct {
	BuildID  int64        `json:"buildId"`
	Total    int          `json:"total"`
	Passed   int          `json:"passed"`
	Failed   int          `json:"failed"`
	P50      float64      `json:"p50"`
	P95      float64      `json:"p95"`
	P99      float64      `json:"p99"`
	Max      float64      `json:"max"`
	Mean     float64      `json:"mean"`
	Failures []JSONFailed `json:"failures"`
}

// JSONFailed represents a failing test of a build
type JSONFailed struct {
	Test     string  `json:"test"`
	Error    string  `json:"error"`
	Duration float64 `json:"duration"`
}

// JSONError represents a command error
type JSONError struct {
	Error string `json:"error"`
}

// JSONFormatter writes each result as an indented JSON document
type JSONFormatter struct {
	writer io.Writer
	err    error
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatIngest(summary gotest.Summary, buildID int64, ok bool) {
	f.encode(JSONIngest{
		Summary: JSONSummary{
			Total:    summary.Total(),
			Passed:   summary.Passed,
			Failed:   summary.Failed,
			Skipped:  summary.Skipped,
			Packages: summary.Packages,
			Ignored:  summary.Ignored,
		},
		BuildID: buildID,
		OK:      ok,
	})
}

func (f *JSONFormatter) FormatStats(stats *reporter.Stats, failed []reporter.FailedTest) {
	out := JSONStats{
		BuildID:  stats.BuildID,
		Total:    stats.Total,
		Passed:   stats.Passed,
		Failed:   stats.Failed,
		P50:      milliseconds(stats.P50),
		P95:      milliseconds(stats.P95),
		P99:      milliseconds(stats.P99),
		Max:      milliseconds(stats.Max),
		Mean:     milliseconds(stats.Mean),
		Failures: make([]JSONFailed, 0, len(failed)),
	}
	for _, ft := range failed {
		out.Failures = append(out.Failures, JSONFailed{
			Test:     ft.Method.String(),
			Error:    ft.Error,
			Duration: milliseconds(ft.RunTime),
		})
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(JSONError{Error: err.Error()})
}

// Err returns the first write error, if any
func (f *JSONFormatter) Err() error {
	return f.err
}

func (f *JSONFormatter) encode(v any) {
	if f.err != nil {
		return
	}
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	f.err = encoder.Encode(v)
}
