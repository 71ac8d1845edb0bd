package scenarios

import (
	"errors"
	"time"

	"github.com/syubbanul/uitest-harness/framework/browser"
	"github.com/syubbanul/uitest-harness/framework/harness"
	"github.com/syubbanul/uitest-harness/framework/helpers"
	"github.com/syubbanul/uitest-harness/framework/uitest"
)

// Timing controls how long the scenarios wait for the page.
type Timing struct {
	// ElementWait bounds the wait for the first form field after a page is opened.
	ElementWait time.Duration
	// Expectation bounds the wait for a redirect or an error message after submitting.
	Expectation time.Duration
	// PollInterval is the time between checks during either wait.
	PollInterval time.Duration
}

// DefaultTiming returns the waits used when no WithTiming option is given.
func DefaultTiming() Timing {
	return Timing{
		ElementWait:  5 * time.Second,
		Expectation:  5 * time.Second,
		PollInterval: 100 * time.Millisecond,
	}
}

// SuiteContext is what every case in the suite can reach through T.Context(): the application
// under test and the one browser session that all cases share.
type SuiteContext struct {
	harness *harness.TestHarness
	driver  browser.Driver
	timing  Timing
}

// SuiteOption changes how RunLoginRegisterSuite runs.
type SuiteOption = helpers.ConfigOptionFunc[SuiteContext]

// WithTiming replaces DefaultTiming.
func WithTiming(timing Timing) SuiteOption {
	return func(c *SuiteContext) error {
		if timing.ElementWait <= 0 || timing.Expectation <= 0 || timing.PollInterval <= 0 {
			return errors.New("scenario waits and poll interval must be greater than zero")
		}
		c.timing = timing
		return nil
	}
}

func requireContext(t *uitest.T) SuiteContext {
	if c, ok := t.Context().(SuiteContext); ok {
		return c
	}
	panic("SuiteContext was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}
