package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/assertkit/packages/gotest"
	"github.com/abdul-hamid-achik/assertkit/packages/reporter"
	"github.com/fatih/color"
)

// truncate shortens s to maxLen runes, marking the cut
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatCheck prints the outcome of a single assertion run from the command line
func (f *ConsoleFormatter) FormatCheck(name string, err error) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	if err == nil {
		fmt.Fprintf(f.writer, "%s %s\n", green("✓"), name)
		return
	}

	fmt.Fprintf(f.writer, "%s %s\n", red("✗"), name)
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(f.writer, "    %s\n", line)
	}
}

func (f *ConsoleFormatter) FormatIngest(summary gotest.Summary, buildID int64, ok bool) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(f.writer, "\nTests: ")
	if summary.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", summary.Passed)))
	}
	if summary.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", summary.Failed)))
	}
	if summary.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", summary.Skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", summary.Total())
	fmt.Fprintf(f.writer, "Packages: %d\n", summary.Packages)
	if f.verbose && summary.Ignored > 0 {
		fmt.Fprintf(f.writer, "Ignored lines: %d\n", summary.Ignored)
	}

	if buildID == 0 {
		fmt.Fprintf(f.writer, "\n")
		return
	}
	status := green("ok")
	if !ok {
		status = red("incomplete")
	}
	fmt.Fprintf(f.writer, "Build: %d (%s)\n\n", buildID, status)
}

func (f *ConsoleFormatter) FormatStats(stats *reporter.Stats, failed []reporter.FailedTest) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n\n", bold(fmt.Sprintf("Build %d", stats.BuildID)))
	fmt.Fprintf(f.writer, "  Results: %s, %s, %d total\n",
		green(fmt.Sprintf("%d passed", stats.Passed)),
		red(fmt.Sprintf("%d failed", stats.Failed)),
		stats.Total)

	if stats.Total > 0 {
		fmt.Fprintf(f.writer, "  Run time:\n")
		fmt.Fprintf(f.writer, "    p50:  %s\n", cyan(formatDuration(stats.P50)))
		fmt.Fprintf(f.writer, "    p95:  %s\n", cyan(formatDuration(stats.P95)))
		fmt.Fprintf(f.writer, "    p99:  %s\n", cyan(formatDuration(stats.P99)))
		fmt.Fprintf(f.writer, "    max:  %s\n", cyan(formatDuration(stats.Max)))
		fmt.Fprintf(f.writer, "    mean: %s\n", cyan(formatDuration(stats.Mean)))
	}

	if len(failed) > 0 {
		fmt.Fprintf(f.writer, "\n  Failures:\n")
		for _, ft := range failed {
			fmt.Fprintf(f.writer, "    %s %s %s\n", red("✗"), ft.Method, cyan(fmt.Sprintf("(%s)", formatDuration(ft.RunTime))))
			msg := ft.Error
			if !f.verbose {
				msg = truncate(msg, 100)
			}
			fmt.Fprintf(f.writer, "      %s\n", msg)
		}
	}
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("assertkit"), version)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
