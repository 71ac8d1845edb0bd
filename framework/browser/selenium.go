package browser

import (
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"github.com/syubbanul/uitest-harness/framework"
)

type seleniumDriver struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  framework.Logger
	closed  bool
}

type seleniumElement struct {
	el selenium.WebElement
}

func openSelenium(opts Options) (Driver, error) {
	logger := opts.logger()
	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{Args: opts.chromeArgs()})

	var service *selenium.Service
	remoteURL := opts.WebDriverURL
	if remoteURL == "" {
		port := opts.ChromeDriverPort
		if port == 0 {
			port = 9515
		}
		logger.Printf("Starting chromedriver %s on port %d", opts.ChromeDriverPath, port)
		s, err := selenium.NewChromeDriverService(opts.ChromeDriverPath, port)
		if err != nil {
			return nil, fmt.Errorf("can't start chromedriver: %w", err)
		}
		service = s
		remoteURL = fmt.Sprintf("http://localhost:%d/wd/hub", port)
	}

	logger.Printf("Opening WebDriver session at %s", remoteURL)
	wd, err := selenium.NewRemote(caps, remoteURL)
	if err != nil {
		if service != nil {
			_ = service.Stop()
		}
		return nil, err
	}
	return &seleniumDriver{wd: wd, service: service, logger: logger}, nil
}

func (d *seleniumDriver) Navigate(url string) error {
	if d.closed {
		return ErrSessionClosed
	}
	d.logger.Printf("GET %s", url)
	return d.wd.Get(url)
}

func (d *seleniumDriver) Find(loc Locator) (Element, error) {
	if d.closed {
		return nil, ErrSessionClosed
	}
	by, value := seleniumBy(loc)
	el, err := d.wd.FindElement(by, value)
	if err != nil {
		if strings.Contains(err.Error(), "no such element") {
			return nil, fmt.Errorf("%w: %s", ErrElementNotFound, loc)
		}
		return nil, err
	}
	return seleniumElement{el}, nil
}

func (d *seleniumDriver) CurrentURL() (string, error) {
	if d.closed {
		return "", ErrSessionClosed
	}
	return d.wd.CurrentURL()
}

func (d *seleniumDriver) Quit() error {
	if d.closed {
		return ErrSessionClosed
	}
	d.closed = true
	err := d.wd.Quit()
	if d.service != nil {
		if stopErr := d.service.Stop(); err == nil {
			err = stopErr
		}
	}
	return err
}

func seleniumBy(loc Locator) (string, string) {
	switch loc.Strategy {
	case StrategyName:
		return selenium.ByName, loc.Value
	case StrategyClassName:
		return selenium.ByClassName, loc.Value
	default:
		return selenium.ByCSSSelector, loc.Value
	}
}

func (e seleniumElement) Type(text string) error { return e.el.SendKeys(text) }

func (e seleniumElement) Click() error { return e.el.Click() }

func (e seleniumElement) Text() (string, error) { return e.el.Text() }
