package uitest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syubbanul/uitest-harness/framework"
)

type recordedEvent struct {
	kind string
	id   string
	info string
}

type recordingTestLogger struct {
	events      []recordedEvent
	debugOutput map[string]framework.CapturedOutput
	ended       *Results
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, recordedEvent{"started", id.String(), ""})
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, recordedEvent{"error", id.String(), err.Error()})
}

func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	r.events = append(r.events, recordedEvent{"finished", id.String(), result.Outcome.Kind.String()})
	if r.debugOutput == nil {
		r.debugOutput = make(map[string]framework.CapturedOutput)
	}
	r.debugOutput[id.String()] = debugOutput
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, recordedEvent{"skipped", id.String(), reason})
}

func (r *recordingTestLogger) EndLog(results Results) error {
	r.ended = &results
	return nil
}

func TestRunAllRecordsEveryCaseInOrder(t *testing.T) {
	var executed []string
	cases := []TestCase{
		{"passes", func(ut *T) { executed = append(executed, "passes") }},
		{"assertion fails", func(ut *T) {
			executed = append(executed, "assertion fails")
			assert.Equal(ut, "index.php", "login.php")
		}},
		{"faults", func(ut *T) {
			executed = append(executed, "faults")
			ut.Fault(errors.New("no such element: alert-danger"))
		}},
		{"panics", func(ut *T) {
			executed = append(executed, "panics")
			panic("boom")
		}},
		{"require fails", func(ut *T) {
			executed = append(executed, "require fails")
			require.True(ut, false, "expected redirect")
			executed = append(executed, "not reached")
		}},
		{"last", func(ut *T) { executed = append(executed, "last") }},
	}

	results := RunAll(TestConfiguration{}, cases)

	assert.Equal(t, []string{"passes", "assertion fails", "faults", "panics", "require fails", "last"}, executed)
	require.Len(t, results.Tests, len(cases))
	for i, c := range cases {
		assert.Equal(t, TestID{c.Name}, results.Tests[i].TestID)
	}

	assert.Equal(t, Outcome{Kind: Passed}, results.Tests[0].Outcome)

	assert.Equal(t, Failed, results.Tests[1].Outcome.Kind)
	assert.Contains(t, results.Tests[1].Outcome.Message, "Not equal")
	assert.NotContains(t, results.Tests[1].Outcome.Message, "Error Trace")

	assert.Equal(t, Outcome{Kind: Errored, Message: "no such element: alert-danger"}, results.Tests[2].Outcome)

	assert.Equal(t, Outcome{Kind: Errored, Message: "unexpected panic in test: boom"}, results.Tests[3].Outcome)

	assert.Equal(t, Failed, results.Tests[4].Outcome.Kind)
	assert.Contains(t, results.Tests[4].Outcome.Message, "expected redirect")

	assert.Equal(t, Outcome{Kind: Passed}, results.Tests[5].Outcome)

	assert.False(t, results.OK())
	assert.Len(t, results.Failures, 4)
	assert.Equal(t, 2, results.Count(Passed))
	assert.Equal(t, 2, results.Count(Failed))
	assert.Equal(t, 2, results.Count(Errored))
}

func TestEmptyCaseListGivesEmptyResults(t *testing.T) {
	results := RunAll(TestConfiguration{}, nil)
	assert.Len(t, results.Tests, 0)
	assert.True(t, results.OK())
}

func TestFailedOutcomeAlwaysHasMessage(t *testing.T) {
	results := RunAll(TestConfiguration{}, []TestCase{
		{"bare FailNow", func(ut *T) { ut.FailNow() }},
		{"nil fault", func(ut *T) { ut.Fault(nil) }},
		{"empty assertion message", func(ut *T) { ut.Errorf("") }},
		{"empty fault message", func(ut *T) { ut.Fault(errors.New("")) }},
		{"blank assertion then bare FailNow", func(ut *T) {
			ut.Errorf("  ")
			ut.FailNow()
		}},
		{"empty panic", func(ut *T) { panic(errors.New("")) }},
	})
	require.Len(t, results.Tests, 6)
	assert.Equal(t, Outcome{Kind: Failed, Message: "test failed with no failure message"}, results.Tests[0].Outcome)
	assert.Equal(t, Outcome{Kind: Errored, Message: "unspecified fault"}, results.Tests[1].Outcome)
	assert.Equal(t, Outcome{Kind: Failed, Message: "test failed with no failure message"}, results.Tests[2].Outcome)
	assert.Equal(t, Outcome{Kind: Errored, Message: "unspecified fault"}, results.Tests[3].Outcome)
	assert.Equal(t, Outcome{Kind: Failed, Message: "test failed with no failure message"}, results.Tests[4].Outcome)
	assert.Equal(t, Errored, results.Tests[5].Outcome.Kind)
	assert.Equal(t, "unexpected panic in test: ", results.Tests[5].Outcome.Message)
	for _, r := range results.Tests {
		assert.NotEmpty(t, strings.TrimSpace(r.Outcome.Message), r.TestID.String())
	}
}

func TestFaultTakesPrecedenceOverFailure(t *testing.T) {
	results := RunAll(TestConfiguration{}, []TestCase{
		{"both", func(ut *T) {
			ut.Errorf("wrong text")
			ut.Faultf("browser went away: %s", "EOF")
		}},
	})
	require.Len(t, results.Tests, 1)
	assert.Equal(t, Outcome{Kind: Errored, Message: "wrong text; browser went away: EOF"}, results.Tests[0].Outcome)
	require.Len(t, results.Tests[0].Errors, 2)
	var fault *FaultError
	assert.False(t, errors.As(results.Tests[0].Errors[0], &fault))
	assert.True(t, errors.As(results.Tests[0].Errors[1], &fault))
}

func TestErrorfDoesNotTerminate(t *testing.T) {
	reached := false
	results := RunAll(TestConfiguration{}, []TestCase{
		{"a", func(ut *T) {
			ut.Errorf("first")
			reached = true
			ut.Errorf("second")
		}},
	})
	assert.True(t, reached)
	assert.Equal(t, Outcome{Kind: Failed, Message: "first; second"}, results.Tests[0].Outcome)
}

func TestCleanupsRunInReverseOnEveryPath(t *testing.T) {
	var calls []string
	results := RunAll(TestConfiguration{}, []TestCase{
		{"faults", func(ut *T) {
			ut.Defer(func() { calls = append(calls, "first") })
			ut.Defer(func() { calls = append(calls, "second") })
			ut.Faultf("stop")
		}},
	})
	assert.Equal(t, []string{"second", "first"}, calls)
	assert.Equal(t, Errored, results.Tests[0].Outcome.Kind)
}

func TestPanicInCleanupIsAFault(t *testing.T) {
	results := RunAll(TestConfiguration{}, []TestCase{
		{"a", func(ut *T) {
			ut.Defer(func() { panic("cleanup broke") })
		}},
	})
	assert.Equal(t, Outcome{Kind: Errored, Message: "unexpected panic in cleanup: cleanup broke"}, results.Tests[0].Outcome)
}

func TestFilteredCasesAreSkippedAndNotRecorded(t *testing.T) {
	logger := &recordingTestLogger{}
	executed := false
	config := TestConfiguration{
		Filter:     FilterFunc(func(id TestID) bool { return id[0] != "excluded" }),
		TestLogger: logger,
	}
	results := RunAll(config, []TestCase{
		{"included", func(ut *T) {}},
		{"excluded", func(ut *T) { executed = true }},
	})

	assert.False(t, executed)
	require.Len(t, results.Tests, 1)
	assert.Equal(t, TestID{"included"}, results.Tests[0].TestID)
	assert.Equal(t, []recordedEvent{
		{"started", "included", ""},
		{"finished", "included", "PASSED"},
		{"started", "excluded", ""},
		{"skipped", "excluded", "excluded by filter parameters"},
	}, logger.events)
}

func TestLoggerReceivesErrorsAndDebugOutput(t *testing.T) {
	logger := &recordingTestLogger{}
	_ = RunAll(TestConfiguration{TestLogger: logger}, []TestCase{
		{"a", func(ut *T) {
			ut.Debug("typed %s", "username")
			ut.Errorf("bad")
		}},
	})
	assert.Equal(t, []recordedEvent{
		{"started", "a", ""},
		{"error", "a", "bad"},
		{"finished", "a", "FAILED"},
	}, logger.events)
	require.Len(t, logger.debugOutput["a"], 1)
	assert.Equal(t, "typed username", logger.debugOutput["a"][0].Message)
}

func TestPanicStackGoesToDebugOutput(t *testing.T) {
	logger := &recordingTestLogger{}
	_ = RunAll(TestConfiguration{TestLogger: logger}, []TestCase{
		{"a", func(ut *T) { panic(errors.New("nil map")) }},
	})
	require.Len(t, logger.debugOutput["a"], 1)
	assert.Contains(t, logger.debugOutput["a"][0].Message, "panic stacktrace:")
}

func TestSubtestsAreRecordedAsLeaves(t *testing.T) {
	results := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("login", func(ut *T) {
			ut.Run("success", func(ut *T) {})
			ut.Run("wrong password", func(ut *T) { ut.Errorf("no alert") })
		})
	})
	require.Len(t, results.Tests, 2)
	assert.Equal(t, TestID{"login", "success"}, results.Tests[0].TestID)
	assert.Equal(t, TestID{"login", "wrong password"}, results.Tests[1].TestID)
	assert.Len(t, results.Failures, 1)
}

func TestScopeInheritsContext(t *testing.T) {
	myContextValue := "hi"
	_ = Run(TestConfiguration{Context: myContextValue}, func(ut *T) {
		assert.Equal(t, myContextValue, ut.Context())
		ut.Run("subtest", func(ut1 *T) {
			assert.Equal(t, myContextValue, ut1.Context())
			assert.Equal(t, TestID{"subtest"}, ut1.ID())
		})
	})
}

func TestFailedReportsState(t *testing.T) {
	_ = RunAll(TestConfiguration{}, []TestCase{
		{"a", func(ut *T) {
			assert.False(t, ut.Failed())
			ut.Errorf("x")
			assert.True(t, ut.Failed())
		}},
	})
}
