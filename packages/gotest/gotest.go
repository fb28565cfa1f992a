// Package gotest converts `go test -json` event streams into reporter
// results.
package gotest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/assertkit/packages/reporter"
	"github.com/tidwall/gjson"
)

const maxLineSize = 16 * 1024 * 1024

// Summary counts the test outcomes seen in a stream.
type Summary struct {
	Passed   int
	Failed   int
	Skipped  int
	Packages int
	// Ignored counts lines that were not test2json events, such as build
	// errors printed by the go command.
	Ignored int
}

// Total returns the number of tests that finished.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Skipped
}

type testKey struct {
	pkg  string
	test string
}

// Parse reads test2json events from r and calls emit for every test that
// passed or failed. Skipped tests are counted but not emitted. The output
// captured for a failing test becomes its Failure.
func Parse(r io.Reader, emit func(reporter.Result)) (Summary, error) {
	var summary Summary
	outputs := make(map[testKey][]string)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			summary.Ignored++
			continue
		}

		fields := gjson.GetMany(line, "Action", "Package", "Test", "Elapsed", "Output", "Time")
		action := fields[0].String()
		key := testKey{pkg: fields[1].String(), test: fields[2].String()}

		if key.test == "" {
			if action == "pass" || action == "fail" || action == "skip" {
				summary.Packages++
			}
			continue
		}

		switch action {
		case "output":
			outputs[key] = append(outputs[key], fields[4].String())
		case "pass", "fail":
			result := reporter.Result{
				Method:  methodFor(key.pkg, key.test),
				RunTime: time.Duration(fields[3].Float() * float64(time.Second)),
				EndTime: parseTime(fields[5].String()),
			}
			if action == "fail" {
				summary.Failed++
				result.Failure = failureLines(outputs[key], key.test)
			} else {
				summary.Passed++
			}
			delete(outputs, key)
			emit(result)
		case "skip":
			summary.Skipped++
			delete(outputs, key)
		}
	}

	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("failed to read test events: %w", err)
	}
	return summary, nil
}

// methodFor maps a test name onto a reporter method. Subtests keep their
// top-level test as suite: TestParse/empty_input becomes suite TestParse,
// name empty_input.
func methodFor(pkg, test string) reporter.Method {
	if suite, name, ok := strings.Cut(test, "/"); ok {
		return reporter.Method{Package: pkg, Suite: suite, Name: name}
	}
	return reporter.Method{Package: pkg, Name: test}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// failureLines drops the go test framing lines so the last line is the most
// specific failure message available.
func failureLines(output []string, test string) []string {
	lines := make([]string, 0, len(output))
	for _, line := range output {
		trimmed := strings.TrimSpace(line)
		if trimmed == "=== RUN   "+test ||
			strings.HasPrefix(trimmed, "--- FAIL: "+test+" ") ||
			strings.HasPrefix(trimmed, "=== PAUSE ") ||
			strings.HasPrefix(trimmed, "=== CONT ") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, "--- FAIL: "+test+"\n")
	}
	return lines
}
