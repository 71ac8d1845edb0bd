package uitest

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/maps"

	"github.com/syubbanul/uitest-harness/framework"
	"github.com/syubbanul/uitest-harness/framework/helpers"
	o "github.com/syubbanul/uitest-harness/framework/opt"
)

// JUnitTestLogger writes a JUnit XML report when the run ends.
type JUnitTestLogger struct {
	filePath   string
	suiteName  string
	properties map[string]string
	filters    RegexFilters
	testIDs    []TestID // this slice preserves the order that the tests were run in
	tests      map[string]jUnitTestStatus
	lock       sync.Mutex
}

type jUnitTestStatus struct {
	skipped   o.Maybe[string]
	output    string
	startTime time.Time
	duration  time.Duration
}

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Errors     int                `xml:"errors,attr"`
	Skipped    int                `xml:"skipped,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
	Error       *jUnitXMLFailure     `xml:"error,omitempty"`
	SystemOut   string               `xml:"system-out,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr,omitempty"`
	Contents string `xml:",chardata"`
}

// NewJUnitTestLogger creates a logger that will write to filePath. The properties are copied
// into the report as suite properties, along with the filters.
func NewJUnitTestLogger(
	filePath string,
	suiteName string,
	properties map[string]string,
	filters RegexFilters,
) *JUnitTestLogger {
	return &JUnitTestLogger{
		filePath:   filePath,
		suiteName:  suiteName,
		properties: properties,
		filters:    filters,
		tests:      make(map[string]jUnitTestStatus),
	}
}

func (j *JUnitTestLogger) TestStarted(id TestID) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.testIDs = append(j.testIDs, id)
	j.tests[id.String()] = jUnitTestStatus{
		startTime: time.Now(),
	}
}

func (j *JUnitTestLogger) TestError(TestID, error) {}

func (j *JUnitTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.tests[id.String()]
	status.output = debugOutput.ToString("")
	status.duration = result.Duration
	j.tests[id.String()] = status
}

func (j *JUnitTestLogger) TestSkipped(id TestID, reason string) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.tests[id.String()]
	status.skipped = o.Some(reason)
	j.tests[id.String()] = status
}

func (j *JUnitTestLogger) EndLog(results Results) error {
	j.lock.Lock()
	defer j.lock.Unlock()

	doc := jUnitXMLDocument{Suites: []jUnitXMLTestSuite{j.buildSuite(results)}}
	bytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	bytes = append([]byte(xml.Header), bytes...)
	bytes = append(bytes, '\n')

	if dir := filepath.Dir(j.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil { //nolint:gosec
			return err
		}
	}
	return os.WriteFile(j.filePath, bytes, 0644) //nolint:gosec
}

func (j *JUnitTestLogger) buildSuite(results Results) jUnitXMLTestSuite {
	suite := jUnitXMLTestSuite{Name: j.suiteName}
	for _, name := range helpers.Sorted(maps.Keys(j.properties)) {
		suite.Properties = append(suite.Properties, jUnitXMLProperty{Name: name, Value: j.properties[name]})
	}
	suite.Properties = append(suite.Properties,
		jUnitXMLProperty{Name: "tests.filter.mustMatch", Value: j.filters.MustMatch.String()},
		jUnitXMLProperty{Name: "tests.filter.mustNotMatch", Value: j.filters.MustNotMatch.String()},
	)

	resultsByID := make(map[string]TestResult, len(results.Tests))
	for _, r := range results.Tests {
		resultsByID[r.TestID.String()] = r
	}

	total := time.Duration(0)
	for _, testID := range j.testIDs {
		status := j.tests[testID.String()]
		testCase := jUnitXMLTestCase{
			Classname: j.suiteName,
			Name:      testID.String(),
			Time:      jUnitDurationString(status.duration),
		}
		if status.skipped.IsDefined() {
			testCase.SkipMessage = &jUnitXMLSkipMessage{Message: status.skipped.Value()}
			suite.Skipped++
		} else {
			result, ok := resultsByID[testID.String()]
			if !ok {
				continue // a scope that only grouped other tests
			}
			switch result.Outcome.Kind {
			case Failed:
				testCase.Failure = jUnitFailure(result, status.output)
				suite.Failures++
			case Errored:
				testCase.Error = jUnitFailure(result, status.output)
				suite.Errors++
			}
		}
		suite.Tests++
		total += status.duration
		suite.TestCases = append(suite.TestCases, testCase)
	}
	suite.Time = jUnitDurationString(total)
	return suite
}

func jUnitFailure(result TestResult, output string) *jUnitXMLFailure {
	var messages []string
	for _, e := range result.Errors {
		message := e.Error()
		if es, ok := e.(ErrorWithStacktrace); ok {
			message += "\n  Stacktrace:"
			for _, s := range es.Stacktrace {
				message += "\n    " + s.String()
			}
		}
		messages = append(messages, message)
	}
	return &jUnitXMLFailure{
		Message:  result.Outcome.Message,
		Type:     result.Outcome.Kind.String(),
		Contents: strings.Join(append(messages, output), "\n"),
	}
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
