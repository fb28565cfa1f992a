package cmd

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/assertkit/packages/stringdiff"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	diffFilesFlag bool
	diffColorFlag bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <left> <right>",
	Short: "Highlight where two strings differ",
	Long: `Print both strings with every differing region wrapped in markers.

The markers default to < and > and can be changed with diffOpen and
diffClose in the config file. With --color the differing regions are
painted instead. Exits with status 1 when the inputs differ.

Examples:
  assertkit diff abcdef abxdef
  assertkit diff --files expected.txt actual.txt
  assertkit diff --color "hello" "help"`,
	Args: cobra.ExactArgs(2),
	RunE: diffCommand,
}

func init() {
	diffCmd.Flags().BoolVarP(&diffFilesFlag, "files", "f", false, "Treat arguments as paths and compare file contents")
	diffCmd.Flags().BoolVar(&diffColorFlag, "color", false, "Paint differences instead of using markers")
}

func diffCommand(cmd *cobra.Command, args []string) error {
	left, right := args[0], args[1]
	if diffFilesFlag {
		var err error
		if left, err = readText(left); err != nil {
			return &ExitError{Code: ExitParseError, Err: err}
		}
		if right, err = readText(right); err != nil {
			return &ExitError{Code: ExitParseError, Err: err}
		}
	}

	highlighter := stringdiff.Highlighter{Open: settings.DiffOpen, Close: settings.DiffClose}
	if diffColorFlag && !color.NoColor {
		highlighter = stringdiff.NewColorHighlighter()
	}

	hl, hr := highlighter.Highlight(left, right)
	fmt.Fprintf(cmd.OutOrStdout(), "l: %s\nr: %s\n", hl, hr)

	if left != right {
		logger.Debug("inputs differ", zap.Int("left_len", len(left)), zap.Int("right_len", len(right)))
		return &ExitError{Code: ExitTestFailure}
	}
	return nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
