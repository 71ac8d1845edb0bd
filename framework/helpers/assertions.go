package helpers

import (
	"time"
)

// PollForSpecificResultValue calls testFn immediately and then again at intervals until the expected
// value is seen or the timeout elapses. testFn is always called one last time at the deadline.
// Returns true if the value was matched, false if timed out.
func PollForSpecificResultValue[V comparable](
	testFn func() V,
	timeout time.Duration,
	interval time.Duration,
	expectedValue V,
) bool {
	deadline := time.Now().Add(timeout)
	for {
		if testFn() == expectedValue {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		time.Sleep(min(interval, remaining))
	}
}

// AssertEventually is equivalent to assert.Eventually from stretchr/testify/assert, except that it does
// not use a separate goroutine, so a browser session is never touched from two goroutines at once. It
// calls testFn repeatedly at intervals until it gets a true value; if the timeout elapses, the test fails.
func AssertEventually(
	t TestContext,
	testFn func() bool,
	timeout time.Duration,
	interval time.Duration,
	failureMsgFormat string,
	failureMsgArgs ...interface{},
) bool {
	if PollForSpecificResultValue(testFn, timeout, interval, true) {
		return true
	}
	t.Errorf(failureMsgFormat, failureMsgArgs...)
	return false
}
