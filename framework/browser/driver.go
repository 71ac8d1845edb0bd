// Package browser wraps real browser automation clients behind the small interface that the
// test scenarios need: load a page, find an element, type into it, click it, read its text,
// and read the current URL.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/syubbanul/uitest-harness/framework"
	"github.com/syubbanul/uitest-harness/framework/helpers"
)

// ErrElementNotFound is wrapped by the error that Driver.Find and WaitFor return when nothing
// on the page matches a Locator.
var ErrElementNotFound = errors.New("element not found")

// ErrSessionClosed is returned by any Driver method called after Quit.
var ErrSessionClosed = errors.New("browser session is closed")

// Driver is one browser session. It is not safe for concurrent use.
type Driver interface {
	Navigate(url string) error
	Find(loc Locator) (Element, error)
	CurrentURL() (string, error)
	// Quit ends the session and releases the browser. It must be called exactly once.
	Quit() error
}

// Element is a node on the page that was current when it was found.
type Element interface {
	// Type sends keystrokes to the element, appending to whatever it already contains.
	Type(text string) error
	Click() error
	Text() (string, error)
}

// Kind selects a Driver implementation.
type Kind string

const (
	KindSelenium   Kind = "selenium"
	KindChromedp   Kind = "chromedp"
	KindPlaywright Kind = "playwright"
	KindHTTP       Kind = "http"
)

// AllKinds lists the supported Driver implementations.
var AllKinds = []Kind{KindSelenium, KindChromedp, KindPlaywright, KindHTTP} //nolint:gochecknoglobals

func (k Kind) String() string { return string(k) }

// Set is called by the command line parser
func (k *Kind) Set(value string) error {
	for _, known := range AllKinds {
		if Kind(value) == known {
			*k = known
			return nil
		}
	}
	return fmt.Errorf("unknown browser %q (expected one of %v)", value, AllKinds)
}

// Options configures Open. Fields that don't apply to the chosen Kind are ignored.
type Options struct {
	Kind     Kind
	Headless bool

	// WebDriverURL is the address of a running WebDriver server (selenium). If empty, a local
	// chromedriver is started from ChromeDriverPath on ChromeDriverPort.
	WebDriverURL     string
	ChromeDriverPath string
	ChromeDriverPort int

	// DevToolsURL is the websocket address of an already-running Chrome (chromedp). If empty,
	// a local Chrome is launched.
	DevToolsURL string

	// ActionTimeout bounds each individual browser operation for backends that would otherwise
	// wait indefinitely.
	ActionTimeout time.Duration

	Logger framework.Logger
}

const defaultActionTimeout = 30 * time.Second

// chromeArgs are the Chrome command-line switches every Chrome-based backend starts with.
func (o Options) chromeArgs() []string {
	args := []string{"--no-sandbox", "--disable-dev-shm-usage"}
	if o.Headless {
		args = append([]string{"--headless"}, args...)
	}
	return args
}

func (o Options) logger() framework.Logger {
	if o.Logger == nil {
		return framework.NullLogger()
	}
	return o.Logger
}

func (o Options) actionTimeout() time.Duration {
	if o.ActionTimeout <= 0 {
		return defaultActionTimeout
	}
	return o.ActionTimeout
}

// Open starts a browser session. The caller owns the returned Driver and must Quit it.
func Open(ctx context.Context, opts Options) (Driver, error) {
	var (
		d   Driver
		err error
	)
	kind := helpers.IfElse(opts.Kind == "", KindSelenium, opts.Kind)
	opts.Logger = framework.LoggerWithPrefix(opts.logger(), "["+kind.String()+"] ")
	switch opts.Kind {
	case KindSelenium, "":
		d, err = openSelenium(opts)
	case KindChromedp:
		d, err = openChromedp(ctx, opts)
	case KindPlaywright:
		d, err = openPlaywright(opts)
	case KindHTTP:
		d, err = NewHTTPDriver(opts.actionTimeout(), opts.logger()), nil
	default:
		return nil, fmt.Errorf("unknown browser %q", opts.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("can't start %s browser session: %w", kind, err)
	}
	return d, nil
}

// WaitFor polls the page until an element matching loc appears, or until timeout has elapsed.
// Errors other than ErrElementNotFound end the wait immediately.
func WaitFor(d Driver, loc Locator, timeout, interval time.Duration) (Element, error) {
	var (
		found   Element
		lastErr error
	)
	done := helpers.PollForSpecificResultValue(func() bool {
		found, lastErr = d.Find(loc)
		return lastErr == nil || !errors.Is(lastErr, ErrElementNotFound)
	}, timeout, interval, true)
	if !done {
		return nil, fmt.Errorf("%w: %s (waited %s)", ErrElementNotFound, loc, timeout)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return found, nil
}
