package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeInput represents unreadable or malformed input files
	ErrorTypeInput ErrorType = "input"
	// ErrorTypeNavigation represents page load failures and timeouts
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeDOM represents missing or unexpected page structure
	ErrorTypeDOM ErrorType = "dom"
	// ErrorTypeAuthor represents a page without a post from the target author
	ErrorTypeAuthor ErrorType = "author"
	// ErrorTypeCapture represents screenshot or image write failures
	ErrorTypeCapture ErrorType = "capture"
	// ErrorTypeStore represents relational store errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeBlob represents blob store errors
	ErrorTypeBlob ErrorType = "blob"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PipelineError represents an error raised by one of the pipeline stages
type PipelineError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRecordFailure reports whether the error comes from processing a single record rather than
// from input, storage or configuration. The collector counts any capture error as a failed
// record either way and only uses this to pick the log level.
func (e *PipelineError) IsRecordFailure() bool {
	switch e.Type {
	case ErrorTypeNavigation, ErrorTypeDOM, ErrorTypeAuthor, ErrorTypeCapture:
		return true
	default:
		return false
	}
}

// TypeOf returns the ErrorType of err, or "" when err is not a PipelineError
func TypeOf(err error) ErrorType {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ""
}

// New creates a new PipelineError
func New(errType ErrorType, source, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewInput creates a new input error
func NewInput(source, message string, err error) *PipelineError {
	return New(ErrorTypeInput, source, message, err)
}

// NewNavigation creates a new navigation error
func NewNavigation(source, message string, err error) *PipelineError {
	return New(ErrorTypeNavigation, source, message, err)
}

// NewDOM creates a new DOM structure error
func NewDOM(source, message string, err error) *PipelineError {
	return New(ErrorTypeDOM, source, message, err)
}

// NewAuthor creates a new missing-author error
func NewAuthor(source, author string) *PipelineError {
	return New(ErrorTypeAuthor, source, fmt.Sprintf("no post by %q on page", author), nil)
}

// NewCapture creates a new capture error
func NewCapture(source, message string, err error) *PipelineError {
	return New(ErrorTypeCapture, source, message, err)
}

// NewStore creates a new store error
func NewStore(source, message string, err error) *PipelineError {
	return New(ErrorTypeStore, source, message, err)
}

// NewBlob creates a new blob error
func NewBlob(source, message string, err error) *PipelineError {
	return New(ErrorTypeBlob, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "config", message, err)
}
