package testdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/syubbanul/uitest-harness/appdef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultCases(t *testing.T) {
	cases, err := LoadDefaultCases()
	require.NoError(t, err)

	var names []string
	for _, c := range cases {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"login success",
		"login failed username",
		"login failed empty data",
		"register success",
		"register failed username exists",
		"register failed empty data",
		"register failed partial empty data",
		"register failed password mismatch",
		"sql injection login",
		"sql injection register",
	}, names)

	loginSuccess := cases[0]
	assert.Equal(t, appdef.LoginForm, loginSuccess.Form)
	assert.Equal(t, map[string]string{"username": "syubbanul", "password": "password123"}, loginSuccess.Fields)
	assert.Equal(t, "index.php", loginSuccess.Expect.Redirect.Value())
	assert.Len(t, loginSuccess.Expect.ErrorAnyOf, 0)

	loginFailed := cases[1]
	assert.False(t, loginFailed.Expect.Redirect.IsDefined())
	assert.Equal(t, appdef.LoginFailureMessages(), loginFailed.Expect.ErrorAnyOf)

	assert.Len(t, cases[2].Fields, 0)
	assert.Equal(t, []string{appdef.MsgEmptyData}, cases[2].Expect.ErrorAnyOf)

	partial := cases[6]
	assert.Equal(t, []string{"name", "username", "password", "repassword"}, partial.FilledFields())

	assert.Equal(t, []string{appdef.MsgPasswordMismatch}, cases[7].Expect.ErrorAnyOf)
	assert.Equal(t, "' OR '1'='1", cases[8].Fields[appdef.FieldUsername])
}

func TestLoadCasesEmptyPathUsesDefault(t *testing.T) {
	fromPath, err := LoadCases("")
	require.NoError(t, err)
	defaults, err := LoadDefaultCases()
	require.NoError(t, err)
	assert.Equal(t, defaults, fromPath)
}

func TestLoadCasesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	data := `{"cases":[{"name":"only","form":"login","fields":{"username":"a","password":"b"},` +
		`"expect":{"redirect":"index.php"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cases, err := LoadCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "only", cases[0].Name)
	assert.Equal(t, []string{"username", "password"}, cases[0].FilledFields())
}

func TestLoadCasesMissingFile(t *testing.T) {
	_, err := LoadCases(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseCasesErrors(t *testing.T) {
	for _, p := range []struct {
		desc, input, errorText string
	}{
		{"no cases", "cases: []", "contains no cases"},
		{"no name", "cases:\n- form: login\n  expect: {redirect: x}", "has no name"},
		{"bad form", "cases:\n- name: a\n  form: logout\n  expect: {redirect: x}", `unknown form "logout"`},
		{"bad field", "cases:\n- name: a\n  form: login\n  fields: {email: x}\n  expect: {redirect: x}",
			`has no field "email"`},
		{"no expectation", "cases:\n- name: a\n  form: login", "must set either"},
		{"both expectations", "cases:\n- name: a\n  form: login\n  expect: {redirect: x, errorAnyOf: [y]}",
			"cannot both be set"},
		{"empty redirect", "cases:\n- name: a\n  form: login\n  expect: {redirect: ''}", "expect.redirect is empty"},
		{"empty message", "cases:\n- name: a\n  form: login\n  expect: {errorAnyOf: ['']}", "empty message"},
		{"duplicate", "cases:\n- {name: a, form: login, expect: {redirect: x}}\n- {name: a, form: login, expect: {redirect: x}}",
			`duplicate case name "a"`},
	} {
		t.Run(p.desc, func(t *testing.T) {
			_, err := ParseCases([]byte(p.input), "test.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), p.errorText)
			assert.Contains(t, err.Error(), "test.yaml")
		})
	}
}
