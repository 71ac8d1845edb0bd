package testdata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syubbanul/uitest-harness/appdef"
	"github.com/syubbanul/uitest-harness/framework/opt"

	"golang.org/x/exp/slices"
)

// CaseFile is the top-level structure of a case data file. Any other top-level keys, such as
// a "constants" section holding YAML anchors, are ignored.
type CaseFile struct {
	Cases []CaseSpec `json:"cases"`
}

// CaseSpec describes one login/register test case: which form to use, what to type into it,
// and what the application should do after the form is submitted.
type CaseSpec struct {
	Name   string            `json:"name"`
	Form   appdef.Form       `json:"form"`
	Fields map[string]string `json:"fields"`
	Expect Expectation       `json:"expect"`
}

// Expectation is the outcome a case checks for. Exactly one of Redirect or ErrorAnyOf is set.
type Expectation struct {
	// Redirect is a substring that the browser's URL must contain after submitting.
	Redirect opt.Maybe[string] `json:"redirect"`

	// ErrorAnyOf lists the messages that are acceptable in the error element. The case passes
	// if the element's text contains any one of them.
	ErrorAnyOf []string `json:"errorAnyOf"`
}

// FilledFields returns the names of the fields that have a non-empty value, in the order in
// which the form's fields are filled in.
func (c CaseSpec) FilledFields() []string {
	var ret []string
	for _, f := range c.Form.Fields() {
		if c.Fields[f] != "" {
			ret = append(ret, f)
		}
	}
	return ret
}

// Validate checks that the case is well-formed.
func (c CaseSpec) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("case has no name")
	}
	if !c.Form.IsValid() {
		return fmt.Errorf("case %q: unknown form %q", c.Name, c.Form)
	}
	known := c.Form.Fields()
	for f := range c.Fields {
		if !slices.Contains(known, f) {
			return fmt.Errorf("case %q: form %q has no field %q", c.Name, c.Form, f)
		}
	}
	hasRedirect, hasError := c.Expect.Redirect.IsDefined(), len(c.Expect.ErrorAnyOf) != 0
	switch {
	case hasRedirect && hasError:
		return fmt.Errorf("case %q: expect.redirect and expect.errorAnyOf cannot both be set", c.Name)
	case !hasRedirect && !hasError:
		return fmt.Errorf("case %q: must set either expect.redirect or expect.errorAnyOf", c.Name)
	case hasRedirect && c.Expect.Redirect.Value() == "":
		return fmt.Errorf("case %q: expect.redirect is empty", c.Name)
	}
	for _, msg := range c.Expect.ErrorAnyOf {
		if msg == "" {
			return fmt.Errorf("case %q: expect.errorAnyOf contains an empty message", c.Name)
		}
	}
	return nil
}
