package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BenjaminSRussell/gositemap/internal/crawler"
	"github.com/BenjaminSRussell/gositemap/internal/parser"
	"github.com/BenjaminSRussell/gositemap/internal/types"
	"github.com/chromedp/chromedp"
)

const (
	defaultTimeout = 30 * time.Second
	renderSelector = "body"
)

// Options configures the headless browser
type Options struct {
	UserAgent string
	// Timeout bounds a single page render
	Timeout time.Duration
	// SettleDelay is waited after the DOM is ready so scripts can add links
	SettleDelay time.Duration
	// ExecPath overrides the Chrome binary lookup
	ExecPath string
}

// ChromeRenderer renders pages with headless Chrome. Each Acquire starts one
// browser process that lives until the session is released.
type ChromeRenderer struct {
	opts Options
}

// NewChromeRenderer creates a new Chrome renderer
func NewChromeRenderer(opts Options) *ChromeRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = types.DefaultUserAgent
	}
	return &ChromeRenderer{opts: opts}
}

// allocatorOptions returns the exec allocator flags for a headless run
func (cr *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cr.opts.UserAgent),
	)
	if cr.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cr.opts.ExecPath))
	}
	return opts
}

// Acquire launches Chrome and returns a session bound to it
func (cr *ChromeRenderer) Acquire(ctx context.Context) (crawler.Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), cr.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// abort the launch if the caller gives up
	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return &chromeSession{
		opts:          cr.opts,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

type chromeSession struct {
	opts          Options
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc

	once       sync.Once
	releaseErr error
}

// Fetch renders pageURL in a fresh tab and returns the links in the final DOM
func (s *chromeSession) Fetch(ctx context.Context, pageURL string) ([]string, error) {
	tabCtx, closeTab := chromedp.NewContext(s.browserCtx)
	defer closeTab()

	tabCtx, cancel := context.WithTimeout(tabCtx, s.opts.Timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var htmlContent, location string

	actions := []chromedp.Action{
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(renderSelector, chromedp.ByQuery),
	}
	if s.opts.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(s.opts.SettleDelay))
	}
	actions = append(actions,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	// links resolve against where the browser ended up after redirects
	if location == "" {
		location = pageURL
	}

	links, _ := parser.ExtractLinks(htmlContent, location)
	return links, nil
}

// Release closes the browser. Later calls are no-ops.
func (s *chromeSession) Release() error {
	s.once.Do(func() {
		s.releaseErr = chromedp.Cancel(s.browserCtx)
		s.browserCancel()
		s.allocCancel()
	})
	return s.releaseErr
}
