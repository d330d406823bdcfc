package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/pkg/errors"
)

// MockCapturer writes a fake PNG for every record except the ones listed in fail
type MockCapturer struct {
	mu       sync.Mutex
	fail     map[int64]bool
	errs     map[int64]error
	captured []int64
}

// Ensure MockCapturer implements Capturer
var _ Capturer = (*MockCapturer)(nil)

func (m *MockCapturer) Capture(ctx context.Context, record quotes.Record, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.captured = append(m.captured, record.ID)
	if err, ok := m.errs[record.ID]; ok {
		return err
	}
	if m.fail[record.ID] {
		return errors.NewAuthor(record.SourceURL, "fufufafa")
	}
	return os.WriteFile(path, []byte("png"), 0644)
}

// MockFailureRecorder keeps failed ids in memory
type MockFailureRecorder struct {
	mu  sync.Mutex
	ids []int64
}

func (m *MockFailureRecorder) LogFailure(id int64, url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, id)
}

func testRecords(n int) []quotes.Record {
	records := make([]quotes.Record, n)
	for i := range records {
		records[i] = quotes.Record{ID: int64(i + 1), Quote: "q", SourceURL: "https://forum.example/t"}
	}
	return records
}

func TestWorkerRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.png"), []byte("old"), 0644))

	capturer := &MockCapturer{fail: map[int64]bool{4: true}}
	failures := &MockFailureRecorder{}
	w := NewWorker(context.Background(), capturer, dir, failures, time.Millisecond)

	var updates []Stats
	w.OnRecord = func(s Stats) { updates = append(updates, s) }

	stats := w.Run(testRecords(5))

	assert.Equal(t, Stats{Processed: 4, Succeeded: 3, Failed: 1, Skipped: 1}, stats)
	assert.Equal(t, []int64{1, 3, 4, 5}, capturer.captured)
	assert.Equal(t, []int64{4}, failures.ids)
	assert.Len(t, updates, 5)
	assert.Equal(t, stats, updates[len(updates)-1])

	data, err := os.ReadFile(filepath.Join(dir, "2.png"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestWorkerContinuesAfterNonRecordError(t *testing.T) {
	dir := t.TempDir()
	capturer := &MockCapturer{errs: map[int64]error{
		1: errors.NewCapture(filepath.Join(dir, "1.png"), "failed to write image", os.ErrPermission),
		2: errors.NewStore("images", "disk full", nil),
	}}
	failures := &MockFailureRecorder{}

	stats := NewWorker(context.Background(), capturer, dir, failures, 0).Run(testRecords(3))

	assert.Equal(t, Stats{Processed: 3, Succeeded: 1, Failed: 2}, stats)
	assert.Equal(t, []int64{1, 2, 3}, capturer.captured)
	assert.Equal(t, []int64{1, 2}, failures.ids)
	assert.FileExists(t, filepath.Join(dir, "3.png"))
}

func TestWorkerRerunSkipsCaptured(t *testing.T) {
	dir := t.TempDir()
	records := testRecords(4)

	first := NewWorker(context.Background(), &MockCapturer{fail: map[int64]bool{3: true}}, dir, nil, 0).Run(records)
	second := NewWorker(context.Background(), &MockCapturer{fail: map[int64]bool{3: true}}, dir, nil, 0).Run(records)

	assert.Equal(t, 3, first.Succeeded)
	assert.Equal(t, first.Succeeded, second.Skipped)
	assert.Equal(t, 1, second.Processed)
	assert.Equal(t, 1, second.Failed)
}

func TestWorkerDelayFollowsEveryAttempt(t *testing.T) {
	dir := t.TempDir()
	w := NewWorker(context.Background(), &MockCapturer{fail: map[int64]bool{1: true}}, dir, nil, 30*time.Millisecond)

	start := time.Now()
	stats := w.Run(testRecords(2))

	assert.Equal(t, 2, stats.Processed)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestWorkerStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	capturer := &MockCapturer{}
	w := NewWorker(ctx, capturer, dir, nil, time.Hour)
	w.OnRecord = func(Stats) { cancel() }

	stats := w.Run(testRecords(3))

	assert.Equal(t, Stats{Processed: 1, Succeeded: 1}, stats)
	assert.FileExists(t, filepath.Join(dir, "1.png"))
}
