package browser

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/syubbanul/uitest-harness/framework"
)

type playwrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	logger  framework.Logger
	closed  bool
}

type playwrightElement struct {
	loc playwright.Locator
}

func openPlaywright(opts Options) (Driver, error) {
	logger := opts.logger()
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("playwright not available: %w", err)
	}
	var args []string
	for _, a := range opts.chromeArgs() {
		if a != "--headless" { // controlled by the Headless launch option instead
			args = append(args, a)
		}
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}
	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	timeoutMS := float64(opts.actionTimeout().Milliseconds())
	page.SetDefaultTimeout(timeoutMS)
	page.SetDefaultNavigationTimeout(timeoutMS)
	logger.Printf("Launched Chromium through playwright (headless=%t)", opts.Headless)
	return &playwrightDriver{pw: pw, browser: browser, page: page, logger: logger}, nil
}

func (d *playwrightDriver) Navigate(url string) error {
	if d.closed {
		return ErrSessionClosed
	}
	d.logger.Printf("GET %s", url)
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (d *playwrightDriver) Find(loc Locator) (Element, error) {
	if d.closed {
		return nil, ErrSessionClosed
	}
	locator := d.page.Locator(loc.CSSSelector())
	n, err := locator.Count()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, loc)
	}
	return playwrightElement{locator.First()}, nil
}

func (d *playwrightDriver) CurrentURL() (string, error) {
	if d.closed {
		return "", ErrSessionClosed
	}
	return d.page.URL(), nil
}

func (d *playwrightDriver) Quit() error {
	if d.closed {
		return ErrSessionClosed
	}
	d.closed = true
	err := d.browser.Close()
	if stopErr := d.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}

// Type appends to the field's current value, the way keystrokes would.
func (e playwrightElement) Type(text string) error {
	current, err := e.loc.InputValue()
	if err != nil {
		return err
	}
	return e.loc.Fill(current + text)
}

func (e playwrightElement) Click() error { return e.loc.Click() }

func (e playwrightElement) Text() (string, error) {
	s, err := e.loc.TextContent()
	return strings.TrimSpace(s), err
}
