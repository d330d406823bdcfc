package helpers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dealmungchi/fuaas/logger"
)

// FailureRecorder records records the collector could not capture
type FailureRecorder interface {
	LogFailure(id int64, url string, err error)
}

// FailureLog appends failed records to a plain text file so a later run can be targeted at them
type FailureLog struct {
	mu   sync.Mutex
	path string
}

// NewFailureLog creates a new failure log writing to path
func NewFailureLog(path string) *FailureLog {
	return &FailureLog{
		path: path,
	}
}

// LogFailure appends one line with timestamp, record id, source url and error
func (l *FailureLog) LogFailure(id int64, url string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, fileErr := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.Error("failed to open failure log %s: %v", l.path, fileErr)
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	if _, writeErr := fmt.Fprintf(f, "[%s] [%d] %s %s\n", timestamp, id, url, err.Error()); writeErr != nil {
		logger.Error("failed to write failure log %s: %v", l.path, writeErr)
	}
}
