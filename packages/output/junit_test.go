package output

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/assertkit/packages/reporter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	f.Add(reporter.Result{
		Method:  reporter.Method{Package: "calc", Name: "TestAdd"},
		RunTime: 250 * time.Millisecond,
	})
	f.Add(reporter.Result{
		Method:  reporter.Method{Package: "calc", Suite: "TestDiv", Name: "by_zero"},
		Failure: []string{"    div_test.go:9: first\n", "    div_test.go:10: division by zero\n"},
		RunTime: 750 * time.Millisecond,
	})
	f.Add(reporter.Result{
		Method:  reporter.Method{Package: "parse", Name: "TestEmpty"},
		RunTime: time.Second,
	})
	require.NoError(t, f.Flush())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal([]byte(out[strings.Index(out, "\n")+1:]), &suites))

	assert.Equal(t, "assertkit", suites.Name)
	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.InDelta(t, 2.0, suites.Time, 1e-9)
	assert.Equal(t, "2024-05-01T10:00:00Z", suites.Timestamp)
	require.Len(t, suites.TestSuites, 2)

	calc := suites.TestSuites[0]
	assert.Equal(t, "calc", calc.Name)
	assert.Equal(t, 2, calc.Tests)
	assert.Equal(t, 1, calc.Failures)
	require.Len(t, calc.TestCases, 2)
	assert.Nil(t, calc.TestCases[0].Failure)

	div := calc.TestCases[1]
	assert.Equal(t, "TestDiv/by_zero", div.Name)
	require.NotNil(t, div.Failure)
	assert.Equal(t, "div_test.go:10: division by zero", div.Failure.Message)
	assert.Contains(t, div.Failure.Content, "first")

	assert.Equal(t, "parse", suites.TestSuites[1].Name)
}

func TestJUnitFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	require.NoError(t, f.Flush())

	assert.Contains(t, buf.String(), `<testsuites name="assertkit" tests="0" failures="0" time="0"`)
}
