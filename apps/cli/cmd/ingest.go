package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/assertkit/packages/core/config"
	"github.com/abdul-hamid-achik/assertkit/packages/gotest"
	"github.com/abdul-hamid-achik/assertkit/packages/output"
	"github.com/abdul-hamid-achik/assertkit/packages/reporter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dbURLFlag         string
	dbConfigFlag      string
	buildInfoFlag     string
	buildInfoFileFlag string
	frequencyFlag     time.Duration
	batchSizeFlag     int
	runnerIDFlag      string
	junitFlag         string
	ingestOutputFlag  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file|-]",
	Short: "Store a go test -json stream in the reporting database",
	Long: `Read the event stream written by go test -json and report every
finished test. Reads standard input when no file (or -) is given.

Results are written to the reporting database when one is configured,
together with the build described by --build-info. Without a database
the stream is only summarized. Exits with status 1 when a test failed.

Examples:
  go test -json ./... | assertkit ingest --db-url sqlite://results.db \
      --build-info '{"buildbot": 1, "buildnumber": 42, "branch": "main", "revision": "abc123", "buildname": "ci"}'
  assertkit ingest events.json --junit report.xml
  assertkit ingest events.json --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: ingestCommand,
}

func init() {
	ingestCmd.Flags().StringVar(&dbURLFlag, "db-url", getEnvString("ASSERTKIT_DB_URL", ""), "Reporting database URL, e.g. sqlite://results.db (env: ASSERTKIT_DB_URL)")
	ingestCmd.Flags().StringVar(&dbConfigFlag, "db-config", getEnvString("ASSERTKIT_DB_CONFIG", ""), "YAML file describing the reporting database (env: ASSERTKIT_DB_CONFIG)")
	ingestCmd.Flags().StringVar(&buildInfoFlag, "build-info", getEnvString("ASSERTKIT_BUILD_INFO", ""), "JSON description of the build (env: ASSERTKIT_BUILD_INFO)")
	ingestCmd.Flags().StringVar(&buildInfoFileFlag, "build-info-file", "", "File holding the JSON description of the build")
	ingestCmd.Flags().DurationVar(&frequencyFlag, "frequency", 0, "Minimum delay between batch inserts (default 1s, negative disables)")
	ingestCmd.Flags().IntVar(&batchSizeFlag, "batch-size", getEnvInt("ASSERTKIT_BATCH_SIZE", 0), "Maximum results per batch insert (default 500) (env: ASSERTKIT_BATCH_SIZE)")
	ingestCmd.Flags().StringVar(&runnerIDFlag, "runner-id", getEnvString("ASSERTKIT_RUNNER_ID", ""), "Runner id stored with every result (default: random uuid) (env: ASSERTKIT_RUNNER_ID)")
	ingestCmd.Flags().StringVar(&junitFlag, "junit", "", "Also write the results as JUnit XML to this file")
	ingestCmd.Flags().StringVarP(&ingestOutputFlag, "output", "o", "console", "Output format: console, json")
}

// reportingConfig merges the reporting flags onto the loaded settings
func reportingConfig(cmd *cobra.Command) (*config.Config, error) {
	overrides := &config.Config{
		ReportingDBURL:    dbURLFlag,
		ReportingDBConfig: dbConfigFlag,
		BuildInfo:         buildInfoFlag,
		BatchSize:         batchSizeFlag,
		RunnerID:          runnerIDFlag,
	}
	if cmd.Flags().Changed("frequency") {
		overrides.ReportingFrequency = int(frequencyFlag / time.Millisecond)
		if frequencyFlag < 0 && overrides.ReportingFrequency == 0 {
			overrides.ReportingFrequency = -1
		}
	}
	if buildInfoFileFlag != "" {
		data, err := os.ReadFile(buildInfoFileFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to read build info: %w", err)
		}
		overrides.BuildInfo = string(data)
	}

	cfg := settings.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFormatter(cmd *cobra.Command, format string) (output.Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout())), nil
	case "console", "":
		return output.NewConsoleFormatter(
			output.WithWriter(cmd.OutOrStdout()),
			output.WithVerbose(settings.GetVerbose()),
		), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use console or json)", format)
	}
}

// printHeader prints the version banner on verbose console output
func printHeader(formatter output.Formatter) {
	if console, ok := formatter.(*output.ConsoleFormatter); ok && settings.GetVerbose() {
		console.FormatHeader(version)
	}
}

func ingestCommand(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(cmd, ingestOutputFlag)
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}
	printHeader(formatter)

	cfg, err := reportingConfig(cmd)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	input := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return &ExitError{Code: ExitParseError, Err: fmt.Errorf("failed to open %s: %w", args[0], err)}
		}
		defer f.Close()
		input = f
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, buildID, ok, err := ingest(ctx, cfg, input)
	if err != nil {
		formatter.FormatError(err)
		return &ExitError{Code: exitCodeFor(err)}
	}

	formatter.FormatIngest(summary, buildID, ok)

	if !ok {
		return &ExitError{Code: ExitDatabaseError, Err: errors.New("some results could not be stored")}
	}
	if summary.Failed > 0 {
		return &ExitError{Code: ExitTestFailure}
	}
	return nil
}

// parseError marks failures to read the event stream
type parseError struct{ err error }

func (e parseError) Error() string { return e.err.Error() }
func (e parseError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var pe parseError
	switch {
	case errors.As(err, &pe):
		return ExitParseError
	case errors.Is(err, reporter.ErrMissingBuildInfo):
		return ExitConfigError
	default:
		return ExitDatabaseError
	}
}

func ingest(ctx context.Context, cfg *config.Config, input io.Reader) (gotest.Summary, int64, bool, error) {
	var rep *reporter.Reporter
	if cfg.ReportingEnabled() {
		var err error
		rep, err = reporter.New(ctx, reporter.Options{
			DBURL:     cfg.ReportingDBURL,
			DBConfig:  cfg.ReportingDBConfig,
			BuildInfo: cfg.BuildInfo,
			Frequency: cfg.GetReportingFrequency(),
			BatchSize: cfg.BatchSize,
			RunnerID:  cfg.RunnerID,
			Logger:    logger,
		})
		if err != nil {
			return gotest.Summary{}, 0, false, err
		}
		defer rep.Close()
	} else {
		logger.Debug("no reporting database configured, summarizing only")
	}

	var junit *output.JUnitFormatter
	var junitFile *os.File
	if junitFlag != "" {
		f, err := os.Create(junitFlag)
		if err != nil {
			return gotest.Summary{}, 0, false, fmt.Errorf("cannot create junit file: %w", err)
		}
		defer f.Close()
		junitFile = f
		junit = output.NewJUnitFormatter(output.JUnitWithWriter(f))
	}

	summary, err := gotest.Parse(input, func(result reporter.Result) {
		if rep != nil {
			rep.TestComplete(result)
		}
		if junit != nil {
			junit.Add(result)
		}
	})
	if err != nil {
		return summary, 0, false, parseError{err}
	}
	logger.Debug("parsed test events",
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("ignored", summary.Ignored))

	if junit != nil {
		if err := junit.Flush(); err != nil {
			return summary, 0, false, fmt.Errorf("error writing junit output: %w", err)
		}
		if err := junitFile.Close(); err != nil {
			return summary, 0, false, fmt.Errorf("error writing junit output: %w", err)
		}
	}

	if rep == nil {
		return summary, 0, true, nil
	}

	if err := rep.TestCounts(ctx, summary.Total()); err != nil {
		logger.Warn("failed to store test count", zap.Error(err))
	}
	ok, err := rep.Report(ctx)
	if err != nil {
		return summary, rep.BuildID(), false, err
	}
	return summary, rep.BuildID(), ok, nil
}
