package uitest

import (
	"strings"
	"time"
)

// OutcomeKind is the terminal state of a test.
type OutcomeKind int

const (
	// Passed means the test ran to completion without recording any failure.
	Passed OutcomeKind = iota
	// Failed means at least one assertion made by the test did not hold.
	Failed
	// Errored means the test was cut short by an unexpected fault.
	Errored
)

func (k OutcomeKind) String() string {
	switch k {
	case Passed:
		return "PASSED"
	case Failed:
		return "FAILED"
	case Errored:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the result of running one test. Message is empty for Passed and non-empty otherwise.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

// Results is the summary of a whole run. Tests is in execution order; Failures is the subset of
// Tests that did not pass.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID   TestID
	Outcome  Outcome
	Errors   []error
	Duration time.Duration
}

// OK returns true if every test passed.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Count returns the number of tests with the given outcome.
func (r Results) Count(kind OutcomeKind) int {
	n := 0
	for _, t := range r.Tests {
		if t.Outcome.Kind == kind {
			n++
		}
	}
	return n
}

type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}

// FaultError marks an error as an unexpected fault rather than an assertion failure. Tests
// record these with T.Fault; a test that records one is reported as Errored.
type FaultError struct {
	Err error
}

func (e *FaultError) Error() string { return e.Err.Error() }

func (e *FaultError) Unwrap() error { return e.Err }

func outcomeMessage(errs []error) string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Error())
	}
	return strings.Join(messages, "; ")
}
