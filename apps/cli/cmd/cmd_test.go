package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testBuildInfo = `{"buildbot": 1, "buildnumber": 7, "branch": "main", "revision": "deadbeef", "buildname": "unit"}`

const testEvents = `{"Time":"2024-05-01T10:00:00Z","Action":"run","Package":"example.com/calc","Test":"TestAdd"}
{"Time":"2024-05-01T10:00:01Z","Action":"pass","Package":"example.com/calc","Test":"TestAdd","Elapsed":0.01}
{"Time":"2024-05-01T10:00:01Z","Action":"output","Package":"example.com/calc","Test":"TestDiv","Output":"    calc_test.go:20: division by zero\n"}
{"Time":"2024-05-01T10:00:02Z","Action":"fail","Package":"example.com/calc","Test":"TestDiv","Elapsed":0.5}
{"Time":"2024-05-01T10:00:03Z","Action":"fail","Package":"example.com/calc","Elapsed":0.6}
`

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--no-color"}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "assertkit version dev")
	assert.Contains(t, out, "Built: unknown")
}

func TestDiffCommand(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		out, err := runCLI(t, "", "diff", "abc", "abc")
		require.NoError(t, err)
		assert.Equal(t, "l: abc\nr: abc\n", out)
	})

	t.Run("different", func(t *testing.T) {
		out, err := runCLI(t, "", "diff", "abcdef", "abxdef")
		require.Error(t, err)
		assert.Equal(t, ExitTestFailure, exitCode(err))
		assert.Equal(t, "l: ab<c>def\nr: ab<x>def\n", out)
	})

	t.Run("markers from config", func(t *testing.T) {
		cfg := writeFile(t, t.TempDir(), ".assertkit.json", `{"diffOpen": "[", "diffClose": "]"}`)
		out, err := runCLI(t, "", "--config", cfg, "diff", "hello", "help")
		require.Error(t, err)
		assert.Equal(t, "l: hel[lo]\nr: hel[p]\n", out)
	})

	t.Run("files", func(t *testing.T) {
		dir := t.TempDir()
		left := writeFile(t, dir, "left.txt", "value=1")
		right := writeFile(t, dir, "right.txt", "value=2")

		out, err := runCLI(t, "", "diff", "--files", left, right)
		require.Error(t, err)
		assert.Contains(t, out, "l: value=<1>")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runCLI(t, "", "diff", "-f", filepath.Join(t.TempDir(), "nope"), "x")
		assert.Equal(t, ExitParseError, exitCode(err))
	})
}

func TestRowsCommand(t *testing.T) {
	dir := t.TempDir()
	expected := writeFile(t, dir, "expected.json", `[{"id": 1, "name": "a"}, [2, "b"]]`)
	reordered := writeFile(t, dir, "reordered.json", `[["b", 2], {"name": "a", "id": 1.0}]`)
	different := writeFile(t, dir, "different.json", `[{"id": 1, "name": "a"}, [3, "b"]]`)

	t.Run("equal ignoring order", func(t *testing.T) {
		out, err := runCLI(t, "", "rows", expected, reordered)
		require.NoError(t, err)
		assert.Contains(t, out, "✓")
	})

	t.Run("different", func(t *testing.T) {
		out, err := runCLI(t, "", "rows", expected, different)
		assert.Equal(t, ExitTestFailure, exitCode(err))
		assert.Contains(t, out, "✗")
		assert.Contains(t, out, "Diff:")
	})

	t.Run("invalid input", func(t *testing.T) {
		tests := map[string]string{
			"invalid.json": `[{"id": 1`,
			"object.json":  `{"id": 1}`,
			"scalars.json": `[1, 2]`,
		}
		for name, content := range tests {
			path := writeFile(t, dir, name, content)
			_, err := runCLI(t, "", "rows", expected, path)
			assert.Equal(t, ExitParseError, exitCode(err), name)
		}
	})
}

func TestIngestCommand_SummaryOnly(t *testing.T) {
	out, err := runCLI(t, testEvents, "ingest")
	assert.Equal(t, ExitTestFailure, exitCode(err))
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
	assert.Contains(t, out, "Packages: 1")
	assert.NotContains(t, out, "Build:")
}

func TestIngestCommand_VerboseHeader(t *testing.T) {
	out, err := runCLI(t, testEvents, "--verbose", "ingest")
	assert.Equal(t, ExitTestFailure, exitCode(err))
	assert.True(t, strings.HasPrefix(out, "assertkit dev\n"), out)

	out, _ = runCLI(t, testEvents, "ingest")
	assert.NotContains(t, out, "assertkit dev")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "", "init", "--dir", dir, "--db-url", "sqlite://results.db")
	require.NoError(t, err)
	path := filepath.Join(dir, ".assertkit.json")
	assert.Contains(t, out, "Created: "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://results.db", gjson.GetBytes(data, "reportingDbUrl").String())
	assert.Equal(t, "<", gjson.GetBytes(data, "diffOpen").String())

	_, err = runCLI(t, "", "init", "--dir", dir)
	assert.Equal(t, ExitUsageError, exitCode(err))
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCLI(t, "", "init", "--dir", dir, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(data, "reportingDbUrl").Exists())

	out, err = runCLI(t, "", "--config", path, "diff", "a", "b")
	assert.Equal(t, ExitTestFailure, exitCode(err))
	assert.Equal(t, "l: <a>\nr: <b>\n", out)
}

func TestIngestCommand_JSONOutput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "events.json", testEvents)

	out, err := runCLI(t, "", "ingest", path, "--output", "json")
	assert.Equal(t, ExitTestFailure, exitCode(err))
	require.True(t, gjson.Valid(out), out)
	assert.Equal(t, int64(2), gjson.Get(out, "summary.total").Int())
	assert.True(t, gjson.Get(out, "ok").Bool())
	assert.False(t, gjson.Get(out, "buildId").Exists())
}

func TestIngestCommand_UnknownOutput(t *testing.T) {
	_, err := runCLI(t, testEvents, "ingest", "--output", "yaml")
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestIngestCommand_MissingBuildInfo(t *testing.T) {
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "results.db")
	_, err := runCLI(t, testEvents, "ingest", "--db-url", dbURL)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestIngestAndStats(t *testing.T) {
	dir := t.TempDir()
	dbURL := "sqlite://" + filepath.Join(dir, "results.db")
	junitPath := filepath.Join(dir, "report.xml")
	buildInfo := writeFile(t, dir, "build.json", testBuildInfo)

	out, err := runCLI(t, testEvents, "ingest",
		"--db-url", dbURL,
		"--build-info-file", buildInfo,
		"--frequency=-1ns",
		"--junit", junitPath)
	assert.Equal(t, ExitTestFailure, exitCode(err))
	assert.Contains(t, out, "Build: 1 (ok)")

	junit, err := os.ReadFile(junitPath)
	require.NoError(t, err)
	assert.Contains(t, string(junit), `<testcase name="TestDiv" classname="example.com/calc"`)
	assert.Contains(t, string(junit), "division by zero")

	out, err = runCLI(t, "", "stats", "--db-url", dbURL)
	require.NoError(t, err)
	assert.Contains(t, out, "Build 1")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
	assert.Contains(t, out, "example.com/calc.TestDiv")
	assert.Contains(t, out, "calc_test.go:20: division by zero")

	out, err = runCLI(t, "", "stats", "--db-url", dbURL, "--build", "1", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.Get(out, "failed").Int())
	assert.Equal(t, "example.com/calc.TestDiv", gjson.Get(out, "failures.0.test").String())
}

func TestStatsCommand_RequiresDatabase(t *testing.T) {
	_, err := runCLI(t, "", "stats")
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitUsageError, exitCode(errors.New("unknown flag")))
	assert.Equal(t, ExitDatabaseError, exitCode(&ExitError{Code: ExitDatabaseError}))

	wrapped := &ExitError{Code: ExitParseError, Err: os.ErrNotExist}
	assert.ErrorIs(t, wrapped, os.ErrNotExist)
	assert.Equal(t, "exit status 1", (&ExitError{Code: 1}).Error())
}
