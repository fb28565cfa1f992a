package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/assertkit/packages/reporter"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents a test suite, one per Go package
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

// JUnitFailure represents a test failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitFormatter collects reporter results and writes them as JUnit XML
type JUnitFormatter struct {
	writer io.Writer
	suites map[string]*JUnitTestSuite
	order  []string
	now    func() time.Time
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer: os.Stdout,
		suites: make(map[string]*JUnitTestSuite),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

// Add records a finished test
func (f *JUnitFormatter) Add(result reporter.Result) {
	suite, ok := f.suites[result.Method.Package]
	if !ok {
		suite = &JUnitTestSuite{Name: result.Method.Package}
		f.suites[result.Method.Package] = suite
		f.order = append(f.order, result.Method.Package)
	}

	name := result.Method.Name
	if result.Method.Suite != "" {
		name = result.Method.Suite + "/" + result.Method.Name
	}
	tc := JUnitTestCase{
		Name:      name,
		ClassName: result.Method.Package,
		Time:      result.RunTime.Seconds(),
	}
	if !result.Passed() {
		suite.Failures++
		tc.Failure = &JUnitFailure{
			Message: strings.TrimSpace(result.Failure[len(result.Failure)-1]),
			Type:    "AssertionError",
			Content: strings.Join(result.Failure, ""),
		}
	}

	suite.Tests++
	suite.Time += tc.Time
	suite.TestCases = append(suite.TestCases, tc)
}

// Flush writes the accumulated JUnit XML output
func (f *JUnitFormatter) Flush() error {
	suites := JUnitTestSuites{
		Name:       "assertkit",
		Timestamp:  f.now().Format(time.RFC3339),
		TestSuites: make([]JUnitTestSuite, 0, len(f.order)),
	}
	for _, name := range f.order {
		suite := f.suites[name]
		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Time += suite.Time
		suites.TestSuites = append(suites.TestSuites, *suite)
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}
	_, err := fmt.Fprintln(f.writer)
	return err
}
