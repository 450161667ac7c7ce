package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceLoad is wrapped by every fatal source error.
	ErrSourceLoad = errors.New("source load failed")

	// ErrInvalidRange is wrapped by every rejected date selection.
	ErrInvalidRange = errors.New("invalid date range")
)

// InvalidRangeMessage is shown to users when a date selection is rejected.
const InvalidRangeMessage = "日付の選択が正しくありません。もう一度試してください。"

// SourceLoadError reports a source that cannot be read under the fixed schema.
// It aborts the whole load.
type SourceLoadError struct {
	Path   string
	Line   int // 0 when not tied to a line
	Reason string
	Err    error
}

func (e *SourceLoadError) Error() string {
	msg := fmt.Sprintf("load %s", e.Path)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s: line %d", msg, e.Line)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SourceLoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSourceLoad}
	}
	return []error{ErrSourceLoad, e.Err}
}

// InvalidRangeError reports a date selection that cannot be applied:
// start after end, a missing bound, or unparseable text.
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidRange, e.Reason)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }
