package cmd

import (
	"errors"
	"strconv"
)

// Exit codes for assertkit CLI
const (
	// ExitSuccess indicates the command succeeded and every check passed
	ExitSuccess = 0

	// ExitTestFailure indicates a failed assertion or failed tests
	ExitTestFailure = 1

	// ExitParseError indicates an unreadable input file
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitDatabaseError indicates the reporting database failed
	ExitDatabaseError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the process exit code for a failed command. A nil Err
// means the command already reported the failure itself.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCode maps a command error to the process exit code
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsageError
}
