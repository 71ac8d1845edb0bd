package uitest

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/syubbanul/uitest-harness/framework"
	"github.com/syubbanul/uitest-harness/framework/helpers"
)

const (
	defaultFailureMessage = "test failed with no failure message"
	defaultFaultMessage   = "unspecified fault"
)

type environment struct {
	config  TestConfiguration
	results Results
}

// T represents a test scope. It is very similar to Go's testing.T type.
type T struct {
	env         *environment
	id          TestID
	debugLogger framework.CapturingLogger
	failed      bool
	faulted     bool
	hasChildren bool
	cleanups    []func()
	errors      []error
	helperFns   []string
}

// TestConfiguration contains options for the entire test run.
type TestConfiguration struct {
	// Filter is an optional filter for determining which tests to run based on their names.
	Filter Filter

	// TestLogger receives status information about each test.
	TestLogger TestLogger

	// Context is an optional value of any type defined by the application which can be accessed from tests.
	Context interface{}
}

// TestCase is one named, independent test in a batch.
type TestCase struct {
	Name   string
	Action func(*T)
}

// Run starts a top-level test scope. The action normally calls T.Run for each test.
func Run(
	config TestConfiguration,
	action func(*T),
) Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	env := &environment{
		config: config,
	}
	t := &T{env: env}
	t.run(action)
	return env.results
}

// RunAll runs each of the cases in order, as subtests of a single top-level scope, and returns
// one result per case that was not excluded by the filter.
func RunAll(config TestConfiguration, cases []TestCase) Results {
	return Run(config, func(t *T) {
		for _, c := range cases {
			t.Run(c.Name, c.Action)
		}
	})
}

func (t *T) run(action func(*T)) (result TestResult) {
	result.TestID = t.id
	startTime := time.Now()
	defer func() {
		if r := recover(); r != nil {
			t.recordPanic(r)
		}
		for i := len(t.cleanups) - 1; i >= 0; i-- {
			t.runCleanup(t.cleanups[i])
		}
		result.Errors = t.errors
		result.Duration = time.Since(startTime)
		result.Outcome = t.outcome()

		// A scope that only groups subtests is not a test in its own right, unless it failed
		// outside of those subtests.
		if len(t.errors) != 0 || (t.id != nil && !t.hasChildren) {
			t.env.results.Tests = append(t.env.results.Tests, result)
			if result.Outcome.Kind != Passed {
				t.env.results.Failures = append(t.env.results.Failures, result)
			}
		}
	}()

	action(t)
	return result
}

func (t *T) recordPanic(r interface{}) {
	if _, ok := r.(*T); ok {
		if len(t.errors) == 0 {
			t.failed = true
			t.addError(errors.New(defaultFailureMessage))
		}
		return
	}
	t.debugLogger.Printf("panic stacktrace:\n%s", debug.Stack())
	t.addFault(fmt.Errorf("unexpected panic in test: %+v", r))
}

func (t *T) runCleanup(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*T); !ok {
				t.addFault(fmt.Errorf("unexpected panic in cleanup: %+v", r))
			}
		}
	}()
	fn()
}

// outcome never gives a Failed or Errored result an empty message, even if the errors that
// were recorded had no text.
func (t *T) outcome() Outcome {
	message := outcomeMessage(t.errors)
	switch {
	case t.faulted:
		return Outcome{Kind: Errored, Message: helpers.IfElse(strings.TrimSpace(message) == "", defaultFaultMessage, message)}
	case t.failed:
		return Outcome{Kind: Failed, Message: helpers.IfElse(strings.TrimSpace(message) == "", defaultFailureMessage, message)}
	default:
		return Outcome{Kind: Passed}
	}
}

func (t *T) addError(err error) {
	t.errors = append(t.errors, err)
	t.env.config.TestLogger.TestError(t.id, err)
}

func (t *T) addFault(err error) {
	t.faulted = true
	t.addError(&FaultError{Err: err})
}

// ID returns the full name of the current test.
func (t *T) ID() TestID {
	return t.id
}

// Run runs a subtest in its own scope. Whatever happens inside the subtest, control returns
// to the caller afterward.
//
// This is equivalent to Go's testing.T.Run.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)
	t.hasChildren = true

	t.env.config.TestLogger.TestStarted(id)
	if t.env.config.Filter != nil && !t.env.config.Filter.Match(id) {
		t.env.config.TestLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &T{
		id:  id,
		env: t.env,
	}
	t.debugLogger.AddChildLogger(&c1.debugLogger) // see comments on t.DebugLogger()
	result := c1.run(action)
	t.debugLogger.RemoveChildLogger(&c1.debugLogger)
	t.env.config.TestLogger.TestFinished(id, result, c1.debugLogger.Output())
}

// Errorf reports a test failure. It is equivalent to Go's testing.T.Errorf. It does not cause the test
// to terminate, but adds the failure message to the output and marks the test as failed.
//
// You will rarely use this method directly; it is part of this type's implementation of the base
// interfaces testing.T and assert.TestingT, allowing it to be called from assertion helpers.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	err := fmt.Errorf(format, args...)

	stacktrace := getStacktrace(false, t.helperFns)
	t.addError(transformError(err, stacktrace))
}

// FailNow causes the test to immediately terminate and be marked as failed.
//
// You will rarely use this method directly; it is part of this type's implementation of the base
// interfaces testing.T and assert.TestingT, allowing it to be called from assertion helpers.
func (t *T) FailNow() {
	t.failed = true
	panic(t)
}

// Fault reports an unexpected error, such as a page element that could not be found or a
// browser session that stopped responding, and immediately terminates the test. The test is
// reported as errored rather than failed.
func (t *T) Fault(err error) {
	if err == nil {
		err = errors.New(defaultFaultMessage)
	}
	t.addFault(err)
	panic(t)
}

// Faultf is a shortcut for Fault(fmt.Errorf(format, args...)).
func (t *T) Faultf(format string, args ...interface{}) {
	t.Fault(fmt.Errorf(format, args...))
}

// Failed returns true if the test has recorded a failure or a fault so far.
func (t *T) Failed() bool {
	return t.failed || t.faulted
}

// Debug writes a message to the output for this test scope.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger instance for writing output for this test scope.
//
// The output that is captured for a test will be passed to TestLogger.TestFinished at the end of
// the test. The test runner can choose whether to display this or not based on command-line options.
//
// When a test has subtests (created with t.Run), the logger for a subtest starts out with a copy of
// any output that was already logged for the parent test. During the lifetime of the subtest, any
// further output that is sent to the parent test's logger will go to the child test's logger
// instead.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Defer schedules a cleanup function which is guaranteed to be called when this test scope
// exits for any reason. Unlike a Go defer statement, Defer can be used from within helper
// functions.
func (t *T) Defer(cleanupFn func()) {
	t.cleanups = append(t.cleanups, cleanupFn)
}

// Context returns the application-defined context value, if any, that was specified in the
// TestConfiguration.
func (t *T) Context() interface{} {
	return t.env.config.Context
}

// Helper marks the function that calls it as a test helper that shouldn't appear in stacktraces.
// Equivalent to Go's testing.T.Helper().
func (t *T) Helper() {
	pc, _, _, ok := runtime.Caller(1) // 0 is Helper() itself, 1 is who called it
	if !ok {
		return
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return
	}
	t.helperFns = append(t.helperFns, f.Name())
}
