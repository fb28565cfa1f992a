package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/assertkit/packages/core/config"
	"github.com/spf13/cobra"
)

var (
	forceInit   bool
	initDirFlag string
	initDBFlag  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an assertkit config file",
	Long: `Write a .assertkit.json with the default settings.

Examples:
  assertkit init
  assertkit init --db-url sqlite://results.db
  assertkit init --dir ./ci --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().StringVar(&initDirFlag, "dir", ".", "Directory to write the config file to")
	initCmd.Flags().StringVar(&initDBFlag, "db-url", "", "Reporting database URL to store in the config")
}

func initCommand(cmd *cobra.Command, args []string) error {
	configFile := filepath.Join(initDirFlag, config.ConfigFilenames[0])

	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile)}
		}
	}

	cfg := config.DefaultConfig().Merge(&config.Config{ReportingDBURL: initDBFlag})
	if err := cfg.SaveConfig(configFile); err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("failed to create config file: %w", err)}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	return nil
}
