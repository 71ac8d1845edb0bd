// Package mockapp is an in-process stand-in for the PHP login/register application. It renders
// the same forms, applies the same validation rules and shows the same messages, so the test
// scenarios can be run and tested without the real deployment.
package mockapp

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/gorilla/mux"

	"github.com/syubbanul/uitest-harness/appdef"
	"github.com/syubbanul/uitest-harness/framework"
	"github.com/syubbanul/uitest-harness/framework/helpers"
)

const sessionCookieName = "uitest_user"

var validUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var registerFields = []registerField{ //nolint:gochecknoglobals
	{appdef.FieldName, "Nama", "text"},
	{appdef.FieldEmail, "Email", "email"},
	{appdef.FieldUsername, "Username", "text"},
	{appdef.FieldPassword, "Password", "password"},
	{appdef.FieldRepassword, "Ulangi Password", "password"},
}

// Config holds the settings that Options change.
type Config struct {
	SeedUsers           map[string]string
	LoginFailureMessage string
	Logger              framework.Logger
}

// Option configures an App.
type Option = helpers.ConfigOptionFunc[Config]

// WithUser adds a user that exists before anyone registers.
func WithUser(username, password string) Option {
	return func(c *Config) error {
		if username == "" || password == "" {
			return fmt.Errorf("seed user needs a username and password")
		}
		c.SeedUsers[username] = password
		return nil
	}
}

// WithoutDefaultUser removes the built-in seed user.
func WithoutDefaultUser() Option {
	return func(c *Config) error {
		delete(c.SeedUsers, DefaultUsername)
		return nil
	}
}

// WithLoginFailureMessage changes the message shown for a wrong username or password.
func WithLoginFailureMessage(message string) Option {
	return func(c *Config) error {
		c.LoginFailureMessage = message
		return nil
	}
}

// WithLogger sets the logger for request debug output.
func WithLogger(logger framework.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// DefaultUsername and DefaultPassword are the credentials of the built-in seed user.
const (
	DefaultUsername = "syubbanul"
	DefaultPassword = "password123"
)

// App is the mock application. It implements http.Handler.
type App struct {
	config    Config
	users     *userStore
	templates pageTemplates
	handler   http.Handler
}

// New creates an App.
func New(options ...Option) (*App, error) {
	config := Config{
		SeedUsers:           map[string]string{DefaultUsername: DefaultPassword},
		LoginFailureMessage: appdef.MsgLoginFailed,
	}
	if err := helpers.ApplyOptions(&config, options...); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = framework.NullLogger()
	}

	a := &App{config: config, users: newUserStore(), templates: loadTemplates()}
	for name, password := range config.SeedUsers {
		a.users.add(name, user{name: name, password: password})
	}

	router := mux.NewRouter()
	router.HandleFunc("/", a.serveIndex).Methods("GET")
	router.HandleFunc("/"+appdef.IndexPage, a.serveIndex).Methods("GET")
	router.HandleFunc("/"+appdef.LoginPage, a.serveLogin).Methods("GET", "POST")
	router.HandleFunc("/"+appdef.RegisterPage, a.serveRegister).Methods("GET", "POST")
	a.handler = router

	return a, nil
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Usernames returns every registered username, sorted.
func (a *App) Usernames() []string {
	return a.users.usernames()
}

func (a *App) serveIndex(w http.ResponseWriter, r *http.Request) {
	current := ""
	if c, err := r.Cookie(sessionCookieName); err == nil && a.users.exists(c.Value) {
		current = c.Value
	}
	a.render(w, a.templates.index, pongo2.Context{
		"user":       current,
		"user_count": len(a.users.usernames()),
		"login":      appdef.LoginPage,
		"register":   appdef.RegisterPage,
	})
}

func (a *App) serveLogin(w http.ResponseWriter, r *http.Request) {
	ctx := pongo2.Context{"action": appdef.LoginPage, "register": appdef.RegisterPage}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := r.PostForm.Get(appdef.FieldUsername)
		password := r.PostForm.Get(appdef.FieldPassword)
		switch {
		case isBlank(username) || isBlank(password):
			ctx["error"] = appdef.MsgEmptyData
		case !a.users.checkPassword(username, password):
			a.config.Logger.Printf("login rejected for %q", username)
			ctx["error"] = a.config.LoginFailureMessage
		default:
			a.config.Logger.Printf("login accepted for %q", username)
			a.startSession(w, r, username)
			return
		}
	}
	a.render(w, a.templates.login, ctx)
}

func (a *App) serveRegister(w http.ResponseWriter, r *http.Request) {
	ctx := pongo2.Context{"action": appdef.RegisterPage, "login": appdef.LoginPage, "fields": registerFields}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if msg := a.register(r); msg != "" {
			ctx["error"] = msg
		} else {
			a.startSession(w, r, r.PostForm.Get(appdef.FieldUsername))
			return
		}
	}
	a.render(w, a.templates.register, ctx)
}

// register validates the form and stores the user, returning the message to show on failure.
func (a *App) register(r *http.Request) string {
	values := make(map[string]string, len(registerFields))
	for _, f := range registerFields {
		v := r.PostForm.Get(f.Name)
		if isBlank(v) {
			return appdef.MsgEmptyData
		}
		values[f.Name] = v
	}
	username := values[appdef.FieldUsername]
	switch {
	case values[appdef.FieldPassword] != values[appdef.FieldRepassword]:
		return appdef.MsgPasswordMismatch
	case !validUsername.MatchString(username):
		a.config.Logger.Printf("registration rejected for invalid username %q", username)
		return appdef.MsgRegisterFailed
	}
	u := user{name: values[appdef.FieldName], email: values[appdef.FieldEmail], password: values[appdef.FieldPassword]}
	if !a.users.add(username, u) {
		return appdef.MsgUsernameTaken
	}
	a.config.Logger.Printf("registered %q", username)
	return ""
}

func (a *App) startSession(w http.ResponseWriter, r *http.Request, username string) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: username, Path: "/", HttpOnly: true})
	http.Redirect(w, r, appdef.IndexPage, http.StatusFound)
}

func (a *App) render(w http.ResponseWriter, tpl *pongo2.Template, ctx pongo2.Context) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.ExecuteWriter(ctx, w); err != nil {
		a.config.Logger.Printf("template error: %s", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
