package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/dealmungchi/fuaas/logger"
	"github.com/dealmungchi/fuaas/pkg/errors"
)

// ChromeOptions configures the headless browser
type ChromeOptions struct {
	// RemoteURL is the DevTools websocket of an already running Chrome. Empty launches a local one.
	RemoteURL      string
	ProxyServer    string
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

// ChromeBrowser implements Browser with a single chromedp tab
type ChromeBrowser struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// NewChromeBrowser starts (or connects to) Chrome and opens the tab used for every record
func NewChromeBrowser(ctx context.Context, opts ChromeOptions) (*ChromeBrowser, error) {
	log := logger.ForCollector()

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		log.Info().Str("url", opts.RemoteURL).Msg("Connecting to remote Chrome")
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.NoSandbox,
			chromedp.DisableGPU,
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(opts.UserAgent),
			chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight),
		)
		if opts.ProxyServer != "" {
			execOpts = append(execOpts, chromedp.ProxyServer(opts.ProxyServer))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// the first Run starts the browser
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(opts.ViewportWidth), int64(opts.ViewportHeight)),
		emulation.SetUserAgentOverride(opts.UserAgent),
		page.SetLifecycleEventsEnabled(true),
	)
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, errors.NewNavigation("chrome", "failed to start browser", err)
	}

	return &ChromeBrowser{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}, nil
}

// scoped derives a context of the tab that ends with ctx
func (b *ChromeBrowser) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	var tabCtx context.Context
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		tabCtx, cancel = context.WithDeadline(b.tabCtx, deadline)
	} else {
		tabCtx, cancel = context.WithCancel(b.tabCtx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return tabCtx, func() {
		stop()
		cancel()
	}
}

// Navigate implements Browser. It returns once the document created by this navigation
// reports networkAlmostIdle (at most two open connections for 500ms).
func (b *ChromeBrowser) Navigate(ctx context.Context, url string) error {
	tabCtx, cancel := b.scoped(ctx)
	defer cancel()

	type loadKey struct {
		frame  cdp.FrameID
		loader cdp.LoaderID
	}
	idle := make(chan struct{}, 1)
	var mu sync.Mutex
	idleLoads := make(map[loadKey]bool)

	// idle events may arrive before Page.navigate returns the loader id
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok || (e.Name != "networkAlmostIdle" && e.Name != "networkIdle") {
			return
		}
		mu.Lock()
		idleLoads[loadKey{e.FrameID, e.LoaderID}] = true
		mu.Unlock()
		select {
		case idle <- struct{}{}:
		default:
		}
	})

	var target loadKey
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		frameID, loaderID, errorText, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("page load error %s", errorText)
		}
		target = loadKey{frameID, loaderID}
		return nil
	}))
	if err != nil {
		return err
	}
	// same-document navigation creates no new loader
	if target.loader == "" {
		return nil
	}

	for {
		mu.Lock()
		done := idleLoads[target]
		mu.Unlock()
		if done {
			return nil
		}

		select {
		case <-idle:
		case <-tabCtx.Done():
			return tabCtx.Err()
		}
	}
}

// WaitReady implements Browser
func (b *ChromeBrowser) WaitReady(ctx context.Context, sel string) error {
	tabCtx, cancel := b.scoped(ctx)
	defer cancel()
	return chromedp.Run(tabCtx, chromedp.WaitReady(sel, chromedp.ByQuery))
}

// Evaluate implements Browser
func (b *ChromeBrowser) Evaluate(ctx context.Context, script string, out interface{}) error {
	tabCtx, cancel := b.scoped(ctx)
	defer cancel()
	return chromedp.Run(tabCtx, chromedp.Evaluate(script, out))
}

// HTML implements Browser
func (b *ChromeBrowser) HTML(ctx context.Context) (string, error) {
	tabCtx, cancel := b.scoped(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Screenshot implements Browser
func (b *ChromeBrowser) Screenshot(ctx context.Context, sel string) ([]byte, error) {
	tabCtx, cancel := b.scoped(ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(tabCtx, chromedp.Screenshot(sel, &buf, chromedp.NodeVisible, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close implements Browser
func (b *ChromeBrowser) Close() error {
	b.tabCancel()
	b.allocCancel()
	return nil
}
