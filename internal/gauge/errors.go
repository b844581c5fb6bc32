package gauge

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrParse matches any *ParseError
	ErrParse = errors.New("malformed gauge file")

	// ErrEmptySegment matches any *EmptySegmentError
	ErrEmptySegment = errors.New("no valid sea level in segment")
)

// ParseError reports a malformed station file or row
type ParseError struct {
	File string
	Line int // 0 when the problem is not tied to one line
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", loc, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// EmptySegmentError is returned when a year or date range holds no valid
// sea level, so its mean is undefined.
type EmptySegmentError struct {
	From time.Time
	To   time.Time
}

func (e *EmptySegmentError) Error() string {
	return fmt.Sprintf("no valid sea level between %s and %s",
		e.From.Format(time.RFC3339), e.To.Format(time.RFC3339))
}

func (e *EmptySegmentError) Is(target error) bool { return target == ErrEmptySegment }
