package cmd

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/assertkit/packages/assertions"
	"github.com/abdul-hamid-achik/assertkit/packages/output"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var rowsCmd = &cobra.Command{
	Use:   "rows <expected.json> <actual.json>",
	Short: "Compare two JSON row files ignoring row and field order",
	Long: `Compare two files holding JSON arrays of records.

A record is either an object or an array. Objects are compared by their
key/value pairs, arrays by their values, and the rows of both files are
compared as multisets. Exits with status 1 when the rows differ.

Examples:
  assertkit rows expected.json actual.json`,
	Args: cobra.ExactArgs(2),
	RunE: rowsCommand,
}

func rowsCommand(cmd *cobra.Command, args []string) error {
	expected, err := loadRows(args[0])
	if err != nil {
		return &ExitError{Code: ExitParseError, Err: err}
	}
	actual, err := loadRows(args[1])
	if err != nil {
		return &ExitError{Code: ExitParseError, Err: err}
	}
	logger.Debug("loaded rows", zap.Int("expected", len(expected)), zap.Int("actual", len(actual)))

	formatter := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(settings.GetVerbose()),
	)

	checkErr := assertions.RowsEqual(expected, actual)
	formatter.FormatCheck(fmt.Sprintf("%s == %s", args[0], args[1]), checkErr)
	if checkErr != nil {
		return &ExitError{Code: ExitTestFailure}
	}
	return nil
}

// loadRows reads a JSON array of records
func loadRows(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%s must contain a JSON array of rows", path)
	}

	rows := make([]any, 0, len(parsed.Array()))
	for i, row := range parsed.Array() {
		if !row.IsObject() && !row.IsArray() {
			return nil, fmt.Errorf("%s: row %d must be an object or an array", path, i)
		}
		rows = append(rows, row.Value())
	}
	return rows, nil
}
