package crawler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dealmungchi/fuaas/pkg/errors"
)

const captureAttr = "data-fuaas-capture"

// ForumLocator locates a user's post on a forum thread page
type ForumLocator struct {
	Post       string
	Ready      string
	AuthorName string
	ActionBar  string
	Upvote     string
	Share      string
	Reputation string
	Chrome     []string
	// MaxZIndex is the lowest z-index at which a fixed element counts as page chrome
	MaxZIndex int
	// Author is matched case-insensitively against the trimmed author name
	Author string
}

// NewForumLocator creates a locator with the forum's current markup rules
func NewForumLocator(author string) *ForumLocator {
	return &ForumLocator{
		Post:       `[class*="w-full md:rounded bg-surface"]`,
		Ready:      `[class*="w-full md:rounded"]`,
		AuthorName: `.htmlContentRenderer_html-content__ePjqJ.font-medium`,
		ActionBar:  `div.flex.w-full.justify-between.pb-2.px-4`,
		Upvote:     `.fa-arrow-alt-up`,
		Share:      `.fa-share-nodes`,
		Reputation: `div.my-2.flex.cursor-pointer.px-4`,
		Chrome: []string{
			`.overlay_overlay__CvnmQ`,
			`[class*="overlay_overlay"]`,
			`div.fixed.bottom-0.left-0.z-100`,
			`div.fixed.bottom-0.left-0.right-0.z-90`,
			`div.fixed.bottom-0[class*="z-20"]`,
			`#preact-border-shadow-host`,
		},
		MaxZIndex: 20,
		Author:    author,
	}
}

// ReadySelector implements Locator
func (l *ForumLocator) ReadySelector() string {
	return l.Ready
}

// CaptureSelector implements Locator
func (l *ForumLocator) CaptureSelector() string {
	return fmt.Sprintf(`[%s="1"]`, captureAttr)
}

// FindPost implements Locator
func (l *ForumLocator) FindPost(doc *goquery.Document) (Match, error) {
	posts := doc.Find(l.Post)
	if posts.Length() == 0 {
		return Match{}, errors.NewDOM(l.Post, "no post containers on page", nil)
	}

	target := normalizeName(l.Author)
	index := -1
	posts.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if normalizeName(s.Find(l.AuthorName).First().Text()) == target {
			index = i
			return false
		}
		return true
	})
	if index < 0 {
		return Match{}, errors.NewAuthor(l.Post, l.Author)
	}

	return Match{
		Index:     index,
		ActionBar: l.findActionBar(posts.Eq(index)).Length() > 0,
	}, nil
}

// findActionBar returns the first action bar candidate holding both an upvote and a share icon
func (l *ForumLocator) findActionBar(post *goquery.Selection) *goquery.Selection {
	return post.Find(l.ActionBar).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(l.Upvote).Length() > 0 && s.Find(l.Share).Length() > 0
	}).First()
}

// StripChromeScript implements Locator
func (l *ForumLocator) StripChromeScript() string {
	return fmt.Sprintf(`(() => {
	let removed = 0;
	document.querySelectorAll(%s).forEach((el) => { el.remove(); removed++; });
	document.querySelectorAll('body *').forEach((el) => {
		if (!el.isConnected) return;
		const style = window.getComputedStyle(el);
		if (style.position !== 'fixed') return;
		const z = parseInt(style.zIndex, 10);
		if (!isNaN(z) && z >= %d) { el.remove(); removed++; }
	});
	return removed;
})()`, jsString(strings.Join(l.Chrome, ", ")), l.MaxZIndex)
}

// TrimPostScript implements Locator
func (l *ForumLocator) TrimPostScript(index int) string {
	return fmt.Sprintf(`(() => {
	const post = document.querySelectorAll(%s)[%d];
	if (!post) return false;
	post.setAttribute(%s, '1');
	const bar = Array.from(post.querySelectorAll(%s))
		.find((el) => el.querySelector(%s) && el.querySelector(%s));
	if (bar) {
		while (bar.nextElementSibling) bar.nextElementSibling.remove();
		post.querySelectorAll(%s).forEach((el) => el.remove());
	}
	return true;
})()`, jsString(l.Post), index, jsString(captureAttr), jsString(l.ActionBar),
		jsString(l.Upvote), jsString(l.Share), jsString(l.Reputation))
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
