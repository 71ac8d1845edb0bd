// Package scenarios contains the login/register test suite that the harness runs against the
// application.
package scenarios

import (
	"fmt"

	"github.com/syubbanul/uitest-harness/framework/browser"
	"github.com/syubbanul/uitest-harness/framework/harness"
	"github.com/syubbanul/uitest-harness/framework/helpers"
	"github.com/syubbanul/uitest-harness/framework/uitest"
	"github.com/syubbanul/uitest-harness/testdata"
)

// RunLoginRegisterSuite runs every case in order against the application, using one shared
// browser session, and returns one result per case that the filter did not exclude. The caller
// owns the driver and must Quit it afterward.
func RunLoginRegisterSuite(
	h *harness.TestHarness,
	driver browser.Driver,
	cases []testdata.CaseSpec,
	filter uitest.Filter,
	testLogger uitest.TestLogger,
	options ...SuiteOption,
) uitest.Results {
	suiteContext := SuiteContext{harness: h, driver: driver, timing: DefaultTiming()}
	if err := helpers.ApplyOptions(&suiteContext, options...); err != nil {
		return setupFailure(err)
	}

	testCases := make([]uitest.TestCase, 0, len(cases))
	for _, c := range cases {
		testCases = append(testCases, uitest.TestCase{Name: c.Name, Action: doFormCase(c)})
	}

	return uitest.RunAll(uitest.TestConfiguration{
		Filter:     filter,
		TestLogger: testLogger,
		Context:    suiteContext,
	}, testCases)
}

func setupFailure(err error) uitest.Results {
	result := uitest.TestResult{
		Outcome: uitest.Outcome{Kind: uitest.Errored, Message: fmt.Sprintf("suite setup failed: %s", err)},
		Errors:  []error{err},
	}
	return uitest.Results{
		Tests:    []uitest.TestResult{result},
		Failures: []uitest.TestResult{result},
	}
}
