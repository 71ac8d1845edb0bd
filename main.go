package main

import (
	"bufio"
	"context"
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/syubbanul/uitest-harness/framework"
	"github.com/syubbanul/uitest-harness/framework/browser"
	"github.com/syubbanul/uitest-harness/framework/harness"
	"github.com/syubbanul/uitest-harness/framework/uitest"
	"github.com/syubbanul/uitest-harness/mockapp"
	"github.com/syubbanul/uitest-harness/scenarios"
	"github.com/syubbanul/uitest-harness/testdata"
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("uitest-harness v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	results, err := run(context.Background(), params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if params.strict && !results.OK() {
		os.Exit(1)
	}
}

func run(ctx context.Context, params commandParams) (*uitest.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = framework.StandardLogger(os.Stdout)
	}

	if params.serveMockApp != "" {
		app, err := mockapp.New(mockapp.WithLogger(mainDebugLogger))
		if err != nil {
			return nil, err
		}
		server, err := harness.StartServer(params.serveMockApp, app)
		if err != nil {
			return nil, fmt.Errorf("can't start mock application: %w", err)
		}
		defer func() { _ = server.Close() }()
		fmt.Printf("Mock application is listening at %s\n", server.URL)
	}

	h, err := harness.NewTestHarness(
		ctx,
		params.baseURL,
		params.readyTimeout,
		params.readyInterval,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		return nil, err
	}

	cases, err := testdata.LoadCases(params.casesFile)
	if err != nil {
		return nil, err
	}

	driver, err := browser.Open(ctx, browser.Options{
		Kind:             params.browser,
		Headless:         params.headless,
		WebDriverURL:     params.webDriverURL,
		ChromeDriverPath: params.chromeDriverPath,
		ChromeDriverPort: params.chromeDriverPort,
		DevToolsURL:      params.devToolsURL,
		Logger:           mainDebugLogger,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := driver.Quit(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close browser session: %s\n", err)
		}
	}()

	// The log file is only created once there is a run to record.
	fileLogger, err := uitest.NewFileTestLogger(params.logFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fileLogger.Close() }()

	testLogger := makeTestLogger(params, h, cases, fileLogger)

	fmt.Println()
	params.filters.Describe(os.Stdout)

	results := scenarios.RunLoginRegisterSuite(h, driver, cases, params.filters, testLogger,
		scenarios.WithTiming(scenarios.Timing{
			ElementWait:  params.waitTimeout,
			Expectation:  params.waitTimeout,
			PollInterval: scenarios.DefaultTiming().PollInterval,
		}))

	if err := uitest.WriteResults(os.Stdout, results); err != nil {
		return nil, err
	}
	fmt.Println()
	if err := testLogger.EndLog(results); err != nil {
		return nil, fmt.Errorf("error writing log: %v", err)
	}

	if params.recordFailures != "" {
		if err := recordFailures(params.recordFailures, results); err != nil {
			return nil, err
		}
	}

	return &results, nil
}

func makeTestLogger(
	params commandParams,
	h *harness.TestHarness,
	cases []testdata.CaseSpec,
	fileLogger *uitest.FileTestLogger,
) uitest.TestLogger {
	var loggers uitest.MultiTestLogger
	if params.progress {
		loggers = append(loggers, uitest.NewProgressTestLogger(len(cases), os.Stderr))
	} else {
		loggers = append(loggers, uitest.ConsoleTestLogger{
			DebugOutputOnFailure: params.debug || params.debugAll,
			DebugOutputOnSuccess: params.debugAll,
		})
	}
	loggers = append(loggers, fileLogger)
	if params.jUnitFile != "" {
		loggers = append(loggers, uitest.NewJUnitTestLogger(params.jUnitFile, "login-register", map[string]string{
			"target.url":     h.BaseURL(),
			"browser":        params.browser.String(),
			"browser.headed": fmt.Sprint(!params.headless),
		}, params.filters))
	}
	return loggers
}

func recordFailures(path string, results uitest.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create failures file: %v", err)
	}
	for _, test := range results.Failures {
		fmt.Fprintln(f, test.TestID)
	}
	return f.Close()
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %v", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := params.filters.MustNotMatch.Set("^" + regexp.QuoteMeta(line) + "$"); err != nil {
			return fmt.Errorf("cannot parse suppression: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %v", err)
	}
	return nil
}
