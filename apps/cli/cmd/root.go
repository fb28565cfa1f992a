package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/abdul-hamid-achik/assertkit/packages/core/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	verboseFlag bool
	noColorFlag bool

	// settings and logger are set by loadSettings before any command runs
	settings *config.Config
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "assertkit",
	Short: "Assertions, diffs and test result reporting for Go tests.",
	Long: `assertkit runs the assertkit assertions from the command line and
stores go test results in a SQL database.

Compare two strings and see where they differ, compare two JSON row
files regardless of row and column order, ingest a go test -json stream
into the reporting database, and summarize a stored build.`,
	PersistentPreRunE: loadSettings,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed).Sprint("Error:"), err)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("ASSERTKIT_CONFIG", ""), "Path to config file (env: ASSERTKIT_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("ASSERTKIT_VERBOSE", false), "Verbose output and debug logging (env: ASSERTKIT_VERBOSE)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("ASSERTKIT_NO_COLOR", false), "Disable colored output (env: ASSERTKIT_NO_COLOR)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(rowsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadSettings reads the config file and applies the global flags on top
func loadSettings(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	overrides := &config.Config{}
	if cmd.Flags().Changed("verbose") || verboseFlag {
		overrides.Verbose = config.BoolPtr(verboseFlag)
	}
	if cmd.Flags().Changed("no-color") || noColorFlag {
		overrides.NoColor = config.BoolPtr(noColorFlag)
	}
	settings = fileConfig.Merge(overrides)

	if settings.GetNoColor() {
		color.NoColor = true
	}

	logger, err = newLogger(settings.GetVerbose())
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("failed to create logger: %w", err)}
	}
	if fileConfig.IsDefault() {
		logger.Debug("no config file settings, using defaults")
	}
	return nil
}

// newLogger returns a development logger in verbose mode and a quiet
// console logger that only reports warnings otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
