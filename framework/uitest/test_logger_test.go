package uitest

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syubbanul/uitest-harness/framework"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestConsoleTestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := ConsoleTestLogger{DebugOutputOnFailure: true, Output: &buf}
	results := RunAll(TestConfiguration{TestLogger: logger}, []TestCase{
		{"login success", func(ut *T) { ut.Debug("not shown for passing tests") }},
		{"register failed", func(ut *T) {
			ut.Debug("clicked submit")
			ut.Errorf("expected %q", "Password tidak sama !!")
		}},
		{"broken", func(ut *T) { ut.Faultf("session closed") }},
	})
	require.NoError(t, logger.EndLog(results))

	out := buf.String()
	assert.Contains(t, out, "[login success]\n")
	assert.NotContains(t, out, "not shown for passing tests")
	assert.Contains(t, out, "  expected \"Password tidak sama !!\"\n")
	assert.Contains(t, out, "  FAILED: register failed\n")
	assert.Contains(t, out, "DEBUG [")
	assert.Contains(t, out, "clicked submit")
	assert.Contains(t, out, "  ERROR: broken\n")
	assert.Contains(t, out, "FAILED TESTS (2 of 3):")
	assert.Contains(t, out, "  * broken (ERROR)")
}

func TestConsoleTestLoggerAllPassed(t *testing.T) {
	var buf bytes.Buffer
	logger := ConsoleTestLogger{Output: &buf}
	require.NoError(t, logger.EndLog(Results{Tests: []TestResult{{TestID: TestID{"a"}}}}))
	assert.Equal(t, "All tests passed (1)\n", buf.String())
}

func TestConsoleTestLoggerSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger := ConsoleTestLogger{Output: &buf}
	logger.TestSkipped(TestID{"a"}, "")
	logger.TestSkipped(TestID{"b"}, "excluded by filter parameters")
	assert.Equal(t, "  SKIPPED: a\n  SKIPPED: b (excluded by filter parameters)\n", buf.String())
}

type failingEndLogger struct {
	nullTestLogger
	err   error
	ended bool
}

func (f *failingEndLogger) EndLog(Results) error {
	f.ended = true
	return f.err
}

func TestMultiTestLogger(t *testing.T) {
	first := &recordingTestLogger{}
	second := &recordingTestLogger{}
	failing1 := &failingEndLogger{err: errors.New("disk full")}
	failing2 := &failingEndLogger{err: errors.New("also broken")}
	multi := MultiTestLogger{first, failing1, failing2, second}

	results := RunAll(TestConfiguration{TestLogger: multi}, []TestCase{
		{"a", func(ut *T) {}},
	})
	err := multi.EndLog(results)

	assert.Equal(t, first.events, second.events)
	assert.Len(t, first.events, 2)
	require.NotNil(t, second.ended)
	assert.Len(t, second.ended.Tests, 1)
	assert.True(t, failing2.ended)
	assert.EqualError(t, err, "disk full")
}

func TestMultiTestLoggerForwardsSkipAndDebug(t *testing.T) {
	rec := &recordingTestLogger{}
	multi := MultiTestLogger{rec}
	multi.TestSkipped(TestID{"x"}, "why")
	multi.TestFinished(TestID{"y"}, TestResult{}, framework.CapturedOutput{{Time: time.Now(), Message: "m"}})
	assert.Equal(t, []recordedEvent{{"skipped", "x", "why"}, {"finished", "y", "PASSED"}}, rec.events)
	assert.Len(t, rec.debugOutput["y"], 1)
}
