package crawler

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/pkg/errors"
)

// fakeBrowser replays a fixed page and records the calls made against it
type fakeBrowser struct {
	html        string
	navigateErr error
	waitErr     error
	marked      bool
	png         []byte
	shotErr     error

	navigated []string
	scripts   []string
}

func (f *fakeBrowser) Navigate(ctx context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navigateErr
}

func (f *fakeBrowser) WaitReady(ctx context.Context, sel string) error {
	return f.waitErr
}

func (f *fakeBrowser) Evaluate(ctx context.Context, script string, out interface{}) error {
	f.scripts = append(f.scripts, script)
	switch v := out.(type) {
	case *int:
		*v = 1
	case *bool:
		*v = f.marked
	}
	return nil
}

func (f *fakeBrowser) HTML(ctx context.Context) (string, error) {
	return f.html, nil
}

func (f *fakeBrowser) Screenshot(ctx context.Context, sel string) ([]byte, error) {
	return f.png, f.shotErr
}

func (f *fakeBrowser) Close() error {
	return nil
}

var testTiming = Timing{PageLoad: time.Second, PostWait: time.Second, Settle: time.Millisecond}

var testRecord = quotes.Record{ID: 7, Quote: "q", SourceURL: "https://forum.example/t/7"}

func TestCaptureWritesImage(t *testing.T) {
	browser := &fakeBrowser{html: threadPage, marked: true, png: []byte("\x89PNG")}
	capturer := NewCapturer(browser, NewForumLocator("fufufafa"), testTiming)
	path := filepath.Join(t.TempDir(), "images", "7.png")

	require.NoError(t, capturer.Capture(context.Background(), testRecord, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data)
	assert.NoFileExists(t, path+".tmp")
	assert.Equal(t, []string{testRecord.SourceURL}, browser.navigated)
	require.Len(t, browser.scripts, 2)
	assert.Contains(t, browser.scripts[1], `)[1]`)
}

func TestCaptureFailures(t *testing.T) {
	testCases := []struct {
		name    string
		browser *fakeBrowser
		author  string
		errType errors.ErrorType
	}{
		{
			name:    "navigation timeout",
			browser: &fakeBrowser{navigateErr: context.DeadlineExceeded},
			author:  "fufufafa",
			errType: errors.ErrorTypeNavigation,
		},
		{
			name:    "no post container",
			browser: &fakeBrowser{waitErr: context.DeadlineExceeded},
			author:  "fufufafa",
			errType: errors.ErrorTypeDOM,
		},
		{
			name:    "author missing",
			browser: &fakeBrowser{html: threadPage, marked: true, png: []byte("png")},
			author:  "nobody",
			errType: errors.ErrorTypeAuthor,
		},
		{
			name:    "post vanished",
			browser: &fakeBrowser{html: threadPage, marked: false, png: []byte("png")},
			author:  "fufufafa",
			errType: errors.ErrorTypeDOM,
		},
		{
			name:    "screenshot failed",
			browser: &fakeBrowser{html: threadPage, marked: true, shotErr: stderrors.New("node not visible")},
			author:  "fufufafa",
			errType: errors.ErrorTypeCapture,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			capturer := NewCapturer(tc.browser, NewForumLocator(tc.author), testTiming)
			path := filepath.Join(t.TempDir(), "7.png")

			err := capturer.Capture(context.Background(), testRecord, path)
			require.Error(t, err)
			assert.Equal(t, tc.errType, errors.TypeOf(err))

			var pe *errors.PipelineError
			require.True(t, stderrors.As(err, &pe))
			assert.True(t, pe.IsRecordFailure())
			assert.NoFileExists(t, path)
		})
	}
}
