package harness

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/syubbanul/uitest-harness/framework"
)

// TestHarness knows where the application under test lives.
//
// It verifies on startup that the application is answering HTTP requests, so that test suites
// built on it can assume a live target. It contains no domain-specific test logic.
type TestHarness struct {
	baseURL *url.URL
	logger  framework.Logger
}

// NewTestHarness creates a TestHarness for the application at baseURL, and waits for the
// application to respond, polling at readyInterval for up to readyTimeout. If the application
// does not come up in time the error is a *ServerUnavailableError.
func NewTestHarness(
	ctx context.Context,
	baseURL string,
	readyTimeout time.Duration,
	readyInterval time.Duration,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	h := &TestHarness{baseURL: u, logger: debugLogger}

	debugLogger.Printf("Probing %s every %s for up to %s", h.BaseURL(), readyInterval, readyTimeout)
	if err := WaitUntilReady(ctx, h.BaseURL(), readyTimeout, readyInterval, startupOutput); err != nil {
		return nil, err
	}
	return h, nil
}

func parseBaseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", s, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be an absolute http or https URL", s)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// BaseURL returns the application's base URL, always ending in a slash.
func (h *TestHarness) BaseURL() string {
	return h.baseURL.String()
}

// PageURL resolves a page path such as "login.php" against the base URL.
func (h *TestHarness) PageURL(page string) string {
	ref, err := url.Parse(strings.TrimPrefix(page, "/"))
	if err != nil {
		return h.BaseURL() + page
	}
	return h.baseURL.ResolveReference(ref).String()
}

// Logger returns the harness's debug logger.
func (h *TestHarness) Logger() framework.Logger {
	return h.logger
}
