package browser

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/syubbanul/uitest-harness/framework"
)

// HTTPDriver is a Driver that needs no browser. It fetches pages over HTTP, keeps cookies, and
// submits forms the way a browser would when a submit control is clicked. Scripts are not run,
// so it only suits applications that work without JavaScript.
type HTTPDriver struct {
	client  *http.Client
	logger  framework.Logger
	current *url.URL
	doc     *goquery.Document
	closed  bool
}

type httpElement struct {
	d   *HTTPDriver
	doc *goquery.Document
	sel *goquery.Selection
}

var errStaleElement = errors.New("element is not attached to the current page")

// NewHTTPDriver creates an HTTPDriver whose requests time out after timeout.
func NewHTTPDriver(timeout time.Duration, logger framework.Logger) *HTTPDriver {
	if logger == nil {
		logger = framework.NullLogger()
	}
	jar, _ := cookiejar.New(nil) // only fails if given options with a bad PublicSuffixList
	return &HTTPDriver{
		client: &http.Client{Jar: jar, Timeout: timeout},
		logger: logger,
	}
}

func (d *HTTPDriver) Navigate(rawURL string) error {
	if d.closed {
		return ErrSessionClosed
	}
	d.logger.Printf("GET %s", rawURL)
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	return d.load(req)
}

func (d *HTTPDriver) load(req *http.Request) error {
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("can't parse page at %s: %w", resp.Request.URL, err)
	}
	// Like a browser, an error status still leaves us on whatever page the server sent.
	d.current = resp.Request.URL
	d.doc = doc
	d.logger.Printf("loaded %s (status %d)", d.current, resp.StatusCode)
	return nil
}

func (d *HTTPDriver) Find(loc Locator) (Element, error) {
	if d.closed {
		return nil, ErrSessionClosed
	}
	if d.doc == nil {
		return nil, fmt.Errorf("%w: %s (no page loaded)", ErrElementNotFound, loc)
	}
	matcher, err := cascadia.Compile(loc.CSSSelector())
	if err != nil {
		return nil, fmt.Errorf("invalid locator %s: %w", loc, err)
	}
	sel := d.doc.FindMatcher(matcher).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, loc)
	}
	return &httpElement{d: d, doc: d.doc, sel: sel}, nil
}

func (d *HTTPDriver) CurrentURL() (string, error) {
	if d.closed {
		return "", ErrSessionClosed
	}
	if d.current == nil {
		return "about:blank", nil
	}
	return d.current.String(), nil
}

func (d *HTTPDriver) Quit() error {
	if d.closed {
		return ErrSessionClosed
	}
	d.closed = true
	d.client.CloseIdleConnections()
	return nil
}

func (e *httpElement) check() error {
	if e.d.closed {
		return ErrSessionClosed
	}
	if e.doc != e.d.doc {
		return errStaleElement
	}
	return nil
}

func (e *httpElement) Type(text string) error {
	if err := e.check(); err != nil {
		return err
	}
	switch goquery.NodeName(e.sel) {
	case "input":
		e.sel.SetAttr("value", e.sel.AttrOr("value", "")+text)
	case "textarea":
		e.sel.SetText(e.sel.Text() + text)
	default:
		return fmt.Errorf("can't type into <%s> element", goquery.NodeName(e.sel))
	}
	return nil
}

func (e *httpElement) Text() (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(e.sel.Text()), " "), nil
}

func (e *httpElement) Click() error {
	if err := e.check(); err != nil {
		return err
	}
	if goquery.NodeName(e.sel) == "a" {
		if href, ok := e.sel.Attr("href"); ok {
			target, err := e.d.current.Parse(href)
			if err != nil {
				return err
			}
			return e.d.Navigate(target.String())
		}
		return nil
	}
	if !isSubmitControl(e.sel) {
		return nil
	}
	form := e.sel.Closest("form")
	if form.Length() == 0 {
		return nil
	}
	return e.d.submit(form, e.sel)
}

func isSubmitControl(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "button":
		t := strings.ToLower(sel.AttrOr("type", "submit"))
		return t == "submit"
	case "input":
		t := strings.ToLower(sel.AttrOr("type", "text"))
		return t == "submit" || t == "image"
	}
	return false
}

func (d *HTTPDriver) submit(form, submitter *goquery.Selection) error {
	action, err := d.current.Parse(form.AttrOr("action", ""))
	if err != nil {
		return fmt.Errorf("bad form action: %w", err)
	}
	values := formValues(form, submitter)
	method := strings.ToUpper(form.AttrOr("method", http.MethodGet))

	var req *http.Request
	if method == http.MethodPost {
		d.logger.Printf("POST %s %s", action, values.Encode())
		req, err = http.NewRequest(http.MethodPost, action.String(), strings.NewReader(values.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		action.RawQuery = values.Encode()
		d.logger.Printf("GET %s", action)
		req, err = http.NewRequest(http.MethodGet, action.String(), nil)
		if err != nil {
			return err
		}
	}
	return d.load(req)
}

// formValues collects the form's successful controls, plus the control that submitted it.
func formValues(form, submitter *goquery.Selection) url.Values {
	values := url.Values{}
	var submitterNode *html.Node
	if submitter.Length() > 0 {
		submitterNode = submitter.Get(0)
	}
	form.Find("input, textarea, select, button").Each(func(_ int, field *goquery.Selection) {
		name, ok := field.Attr("name")
		if !ok || name == "" {
			return
		}
		if _, disabled := field.Attr("disabled"); disabled {
			return
		}
		switch goquery.NodeName(field) {
		case "input":
			switch strings.ToLower(field.AttrOr("type", "text")) {
			case "submit", "image", "button":
				if field.Get(0) == submitterNode {
					values.Add(name, field.AttrOr("value", ""))
				}
			case "reset", "file":
			case "checkbox", "radio":
				if _, checked := field.Attr("checked"); checked {
					values.Add(name, field.AttrOr("value", "on"))
				}
			default:
				values.Add(name, field.AttrOr("value", ""))
			}
		case "textarea":
			values.Add(name, field.Text())
		case "select":
			opt := field.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = field.Find("option").First()
			}
			if opt.Length() > 0 {
				values.Add(name, opt.AttrOr("value", strings.TrimSpace(opt.Text())))
			}
		case "button":
			if field.Get(0) == submitterNode {
				values.Add(name, field.AttrOr("value", ""))
			}
		}
	})
	return values
}
