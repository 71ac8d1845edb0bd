package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/syubbanul/uitest-harness/framework/browser"
	"github.com/syubbanul/uitest-harness/framework/uitest"
)

const (
	defaultBaseURL          = "http://127.0.0.1:8000/"
	defaultReadyTimeout     = 30 * time.Second
	defaultReadyInterval    = 5 * time.Second
	defaultWaitTimeout      = 5 * time.Second
	defaultChromeDriverPort = 9515
	defaultLogFile          = "test-results/test_log.txt"
	defaultEnvFile          = ".env"
)

type commandParams struct {
	baseURL          string
	readyTimeout     time.Duration
	readyInterval    time.Duration
	browser          browser.Kind
	webDriverURL     string
	chromeDriverPath string
	chromeDriverPort int
	devToolsURL      string
	headless         bool
	waitTimeout      time.Duration
	casesFile        string
	logFile          string
	jUnitFile        string
	filters          uitest.RegexFilters
	skipFile         string
	recordFailures   string
	debug            bool
	debugAll         bool
	progress         bool
	strict           bool
	serveMockApp     string
}

// Read loads the .env file if there is one and then parses the command line. Values from the
// environment are defaults, so a flag always wins over an environment variable.
func (c *commandParams) Read(args []string) bool {
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "can't read %s: %v\n", defaultEnvFile, err)
		return false
	}
	if err := c.parse(args, os.Getenv, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		return false
	}
	return true
}

func (c *commandParams) parse(args []string, getenv func(string) string, errOut io.Writer) error {
	env := envDefaults{getenv: getenv}
	c.browser = browser.KindSelenium
	if v := getenv("UITEST_BROWSER"); v != "" {
		if err := c.browser.Set(v); err != nil {
			return fmt.Errorf("UITEST_BROWSER: %w", err)
		}
	}

	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(errOut)
	flags.StringVar(&c.baseURL, "url", env.str("UITEST_BASE_URL", defaultBaseURL), "base URL of the application under test")
	flags.DurationVar(&c.readyTimeout, "ready-timeout", env.duration("UITEST_READY_TIMEOUT", defaultReadyTimeout),
		"how long to wait for the application to respond before giving up")
	flags.DurationVar(&c.readyInterval, "ready-interval", env.duration("UITEST_READY_INTERVAL", defaultReadyInterval),
		"time between readiness probes")
	flags.Var(&c.browser, "browser", fmt.Sprintf("browser backend, one of %v", browser.AllKinds))
	flags.StringVar(&c.webDriverURL, "webdriver-url", env.str("UITEST_WEBDRIVER_URL", ""),
		"remote WebDriver server; if empty, a local chromedriver is started")
	flags.StringVar(&c.chromeDriverPath, "chromedriver", env.str("UITEST_CHROMEDRIVER", "chromedriver"),
		"path of the chromedriver executable")
	flags.IntVar(&c.chromeDriverPort, "chromedriver-port", defaultChromeDriverPort, "port for a local chromedriver")
	flags.StringVar(&c.devToolsURL, "devtools-url", env.str("UITEST_DEVTOOLS_URL", ""),
		"websocket URL of a running Chrome for the chromedp backend")
	flags.BoolVar(&c.headless, "headless", true, "run the browser without a window")
	flags.DurationVar(&c.waitTimeout, "wait-timeout", defaultWaitTimeout,
		"how long to wait for page elements, redirects and error messages")
	flags.StringVar(&c.casesFile, "cases", env.str("UITEST_CASES", ""), "JSON or YAML case file (default: built-in cases)")
	flags.StringVar(&c.logFile, "log-file", env.str("UITEST_LOG_FILE", defaultLogFile), "file to append outcome lines to")
	flags.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	flags.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	flags.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	flags.StringVar(&c.skipFile, "skip-from", "", "file of test names to skip, one per line")
	flags.StringVar(&c.recordFailures, "record-failures", "", "write the names of tests that did not pass to this file")
	flags.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	flags.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	flags.BoolVar(&c.progress, "progress", false, "show a progress bar instead of a line per test")
	flags.BoolVar(&c.strict, "strict", false, "exit with status 1 if any test did not pass")
	flags.StringVar(&c.serveMockApp, "serve-mock-app", "", "start the built-in mock application on this address first")

	if env.err != nil {
		return env.err
	}
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if c.readyInterval <= 0 || c.readyTimeout <= c.readyInterval {
		return fmt.Errorf("-ready-interval must be positive and shorter than -ready-timeout")
	}
	if c.waitTimeout <= 0 {
		return fmt.Errorf("-wait-timeout must be positive")
	}
	return nil
}

// envDefaults reads flag defaults from environment variables, remembering the first value that
// could not be parsed.
type envDefaults struct {
	getenv func(string) string
	err    error
}

func (e *envDefaults) str(name, defaultValue string) string {
	if v := e.getenv(name); v != "" {
		return v
	}
	return defaultValue
}

func (e *envDefaults) duration(name string, defaultValue time.Duration) time.Duration {
	v := e.getenv(name)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("%s: %w", name, err)
		}
		return defaultValue
	}
	return d
}
