package scenarios

import (
	"strings"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/syubbanul/uitest-harness/appdef"
	"github.com/syubbanul/uitest-harness/framework/browser"
	"github.com/syubbanul/uitest-harness/framework/helpers"
	"github.com/syubbanul/uitest-harness/framework/uitest"
	"github.com/syubbanul/uitest-harness/testdata"
)

func doFormCase(spec testdata.CaseSpec) func(t *uitest.T) {
	return func(t *uitest.T) {
		c := requireContext(t)
		c.openForm(t, spec.Form)
		c.fillAndSubmit(t, spec)
		if redirect := spec.Expect.Redirect; redirect.IsDefined() {
			c.expectRedirect(t, redirect.Value())
		} else {
			c.expectErrorMessage(t, spec.Expect.ErrorAnyOf)
		}
	}
}

func (c SuiteContext) openForm(t *uitest.T, form appdef.Form) {
	pageURL := c.harness.PageURL(form.Page())
	t.Debug("opening %s", pageURL)
	if err := c.driver.Navigate(pageURL); err != nil {
		t.Faultf("failed to open %s: %w", pageURL, err)
	}
}

// fillAndSubmit types each provided value into its field, in the order the form lays them out,
// and clicks the submit button. Fields with no value are left untouched.
func (c SuiteContext) fillAndSubmit(t *uitest.T, spec testdata.CaseSpec) {
	for i, name := range spec.FilledFields() {
		var (
			field browser.Element
			err   error
		)
		if i == 0 {
			// the page may still be loading
			field, err = browser.WaitFor(c.driver, browser.ByName(name), c.timing.ElementWait, c.timing.PollInterval)
		} else {
			field, err = c.driver.Find(browser.ByName(name))
		}
		if err != nil {
			t.Fault(err)
		}
		t.Debug("typing %q into %s", spec.Fields[name], name)
		if err := field.Type(spec.Fields[name]); err != nil {
			t.Faultf("failed to type into %s: %w", name, err)
		}
	}

	submit, err := c.driver.Find(browser.ByName(appdef.FieldSubmit))
	if err != nil {
		t.Fault(err)
	}
	if err := submit.Click(); err != nil {
		t.Faultf("failed to click %s: %w", appdef.FieldSubmit, err)
	}
}

// lastURL is formatted when the failure message is built, after polling has finished.
type lastURL struct{ value string }

func (u *lastURL) String() string { return u.value }

func (c SuiteContext) expectRedirect(t *uitest.T, expected string) {
	current := &lastURL{}
	helpers.AssertEventually(t, func() bool {
		u, err := c.driver.CurrentURL()
		if err != nil {
			t.Faultf("failed to read current URL: %w", err)
		}
		current.value = u
		return strings.Contains(u, expected)
	}, c.timing.Expectation, c.timing.PollInterval, "was not redirected to %s; current URL is %s", expected, current)
}

func (c SuiteContext) expectErrorMessage(t *uitest.T, accepted []string) {
	alert, err := browser.WaitFor(c.driver, browser.ByClassName(appdef.ErrorClass),
		c.timing.Expectation, c.timing.PollInterval)
	if err != nil {
		t.Faultf("no error message was shown: %w", err)
	}
	text, err := alert.Text()
	if err != nil {
		t.Faultf("failed to read error message: %w", err)
	}
	t.Debug("error message: %q", text)

	anyOf := make([]m.Matcher, 0, len(accepted))
	for _, msg := range accepted {
		anyOf = append(anyOf, m.StringContains(msg))
	}
	m.In(t).Assert(text, m.AnyOf(anyOf...))
}
