package crawler

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Match is the post selected on a page
type Match struct {
	// Index is the position of the post among all post containers, in document order
	Index int
	// ActionBar reports whether the post has an action bar to trim at
	ActionBar bool
}

// Locator isolates the page-structure rules of the forum from the capture flow
type Locator interface {
	// ReadySelector matches once the page has rendered its post containers
	ReadySelector() string

	// StripChromeScript removes overlays and fixed UI from the page and returns the number of
	// removed elements
	StripChromeScript() string

	// FindPost selects the target author's post from the page HTML
	FindPost(doc *goquery.Document) (Match, error)

	// TrimPostScript marks the post at index for capture, removes everything after its action
	// bar and returns true when the post exists
	TrimPostScript(index int) string

	// CaptureSelector matches the post marked by TrimPostScript
	CaptureSelector() string
}

// Browser is a single reusable browser tab
type Browser interface {
	// Navigate loads url and waits until the network is almost idle
	Navigate(ctx context.Context, url string) error

	// WaitReady waits until sel matches an element
	WaitReady(ctx context.Context, sel string) error

	// Evaluate runs script in the page and decodes its result into out
	Evaluate(ctx context.Context, script string, out interface{}) error

	// HTML returns the current document's outer HTML
	HTML(ctx context.Context) (string, error)

	// Screenshot captures the first element matching sel as PNG
	Screenshot(ctx context.Context, sel string) ([]byte, error)

	// Close releases the tab and the browser
	Close() error
}
