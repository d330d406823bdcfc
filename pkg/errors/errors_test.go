package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorMessage(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := NewNavigation("https://example.com/a", "page did not become idle", cause)

	assert.Equal(t, "[navigation] https://example.com/a: page did not become idle - context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, cause)

	err = NewAuthor("https://example.com/b", "fufufafa")
	assert.Equal(t, `[author] https://example.com/b: no post by "fufufafa" on page`, err.Error())
}

func TestIsRecordFailure(t *testing.T) {
	testCases := []struct {
		err      *PipelineError
		expected bool
	}{
		{NewNavigation("u", "m", nil), true},
		{NewDOM("u", "m", nil), true},
		{NewAuthor("u", "a"), true},
		{NewCapture("u", "m", nil), true},
		{NewInput("list.txt", "m", nil), false},
		{NewStore("quotes", "m", nil), false},
		{NewBlob("7.png", "m", nil), false},
		{NewConfiguration("m", nil), false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.err.IsRecordFailure(), string(tc.err.Type))
	}
}

func TestTypeOfUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("parse: %w", NewInput("list.txt", "failed to read", nil))
	assert.Equal(t, ErrorTypeInput, TypeOf(err))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}
