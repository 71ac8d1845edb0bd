package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/syubbanul/uitest-harness/framework"
)

type chromedpDriver struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
	logger  framework.Logger
	closed  bool
}

type chromedpElement struct {
	d      *chromedpDriver
	nodeID cdp.NodeID
}

func openChromedp(ctx context.Context, opts Options) (Driver, error) {
	logger := opts.logger()
	d := &chromedpDriver{timeout: opts.actionTimeout(), logger: logger}

	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if opts.DevToolsURL != "" {
		logger.Printf("Connecting to Chrome at %s", opts.DevToolsURL)
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, opts.DevToolsURL)
	} else {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.NoSandbox,
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, allocOpts...)
	}
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Printf))
	d.ctx = browserCtx
	d.cancels = []context.CancelFunc{cancelAlloc, cancelBrowser}

	// The first Run starts the browser; it must not be bounded by a timeout, since the browser
	// lives as long as the context that started it.
	if err := chromedp.Run(browserCtx); err != nil {
		d.cancel()
		return nil, err
	}
	return d, nil
}

func (d *chromedpDriver) run(actions ...chromedp.Action) error {
	if d.closed {
		return ErrSessionClosed
	}
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (d *chromedpDriver) Navigate(url string) error {
	d.logger.Printf("GET %s", url)
	return d.run(chromedp.Navigate(url))
}

func (d *chromedpDriver) Find(loc Locator) (Element, error) {
	var nodes []*cdp.Node
	if err := d.run(chromedp.Nodes(loc.CSSSelector(), &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, loc)
	}
	return chromedpElement{d: d, nodeID: nodes[0].NodeID}, nil
}

func (d *chromedpDriver) CurrentURL() (string, error) {
	var u string
	err := d.run(chromedp.Location(&u))
	return u, err
}

func (d *chromedpDriver) Quit() error {
	if d.closed {
		return ErrSessionClosed
	}
	err := chromedp.Cancel(d.ctx)
	d.cancel()
	d.closed = true
	return err
}

func (d *chromedpDriver) cancel() {
	for i := len(d.cancels) - 1; i >= 0; i-- {
		d.cancels[i]()
	}
}

func (e chromedpElement) ids() []cdp.NodeID { return []cdp.NodeID{e.nodeID} }

func (e chromedpElement) Type(text string) error {
	return e.d.run(chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e chromedpElement) Click() error {
	return e.d.run(chromedp.Click(e.ids(), chromedp.ByNodeID))
}

func (e chromedpElement) Text() (string, error) {
	var s string
	err := e.d.run(chromedp.Text(e.ids(), &s, chromedp.ByNodeID))
	return s, err
}
