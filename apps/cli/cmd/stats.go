package cmd

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/assertkit/packages/core/config"
	"github.com/abdul-hamid-achik/assertkit/packages/db"
	"github.com/abdul-hamid-achik/assertkit/packages/reporter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	statsDBURLFlag    string
	statsDBConfigFlag string
	statsBuildFlag    int64
	statsOutputFlag   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a build stored in the reporting database",
	Long: `Print pass/fail counts, run-time percentiles and the failing tests
of a stored build. Uses the most recent build unless --build is given.

Examples:
  assertkit stats --db-url sqlite://results.db
  assertkit stats --db-config reporting.yaml --build 12 --output json`,
	Args: cobra.NoArgs,
	RunE: statsCommand,
}

func init() {
	statsCmd.Flags().StringVar(&statsDBURLFlag, "db-url", getEnvString("ASSERTKIT_DB_URL", ""), "Reporting database URL, e.g. sqlite://results.db (env: ASSERTKIT_DB_URL)")
	statsCmd.Flags().StringVar(&statsDBConfigFlag, "db-config", getEnvString("ASSERTKIT_DB_CONFIG", ""), "YAML file describing the reporting database (env: ASSERTKIT_DB_CONFIG)")
	statsCmd.Flags().Int64Var(&statsBuildFlag, "build", 0, "Build id (default: latest build)")
	statsCmd.Flags().StringVarP(&statsOutputFlag, "output", "o", "console", "Output format: console, json")
}

func statsCommand(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(cmd, statsOutputFlag)
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}
	printHeader(formatter)

	cfg := settings.Merge(&config.Config{
		ReportingDBURL:    statsDBURLFlag,
		ReportingDBConfig: statsDBConfigFlag,
	})
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	opts := reporter.Options{DBURL: cfg.ReportingDBURL, DBConfig: cfg.ReportingDBConfig}
	connStr, err := opts.ConnectionString()
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	client, err := db.NewClient(connStr)
	if err != nil {
		return &ExitError{Code: ExitDatabaseError, Err: err}
	}
	defer client.Close()

	ctx := cmd.Context()
	buildID := statsBuildFlag
	if buildID == 0 {
		buildID, err = reporter.LatestBuildID(ctx, client)
		if err != nil {
			if errors.Is(err, reporter.ErrNoBuilds) {
				formatter.FormatError(err)
				return &ExitError{Code: ExitDatabaseError}
			}
			return &ExitError{Code: ExitDatabaseError, Err: err}
		}
	}
	logger.Debug("summarizing build", zap.Int64("build_id", buildID))

	stats, err := reporter.BuildStats(ctx, client, buildID)
	if err != nil {
		return &ExitError{Code: ExitDatabaseError, Err: fmt.Errorf("failed to read build %d: %w", buildID, err)}
	}
	failed, err := reporter.FailedTests(ctx, client, buildID)
	if err != nil {
		return &ExitError{Code: ExitDatabaseError, Err: fmt.Errorf("failed to read build %d: %w", buildID, err)}
	}

	formatter.FormatStats(stats, failed)
	return nil
}
