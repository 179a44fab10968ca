package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies render pipeline errors.
type ErrorType string

// Error types.
const (
	ErrorParse   ErrorType = "parse"
	ErrorRender  ErrorType = "render"
	ErrorConfig  ErrorType = "config"
	ErrorUnknown ErrorType = "unknown"
)

// Sentinel errors.
var (
	// ErrUnknownTheme is the cause of config errors for missing theme ids.
	ErrUnknownTheme = errors.New("unknown theme")

	// ErrBuiltInTheme is returned when removing a built-in theme.
	ErrBuiltInTheme = errors.New("built-in themes cannot be removed")

	// ErrInvalidTheme is returned when registering a theme without an id.
	ErrInvalidTheme = errors.New("theme id is required")
)

// Error is a typed render pipeline error.
type Error struct {
	Type    ErrorType
	Message string
	Details string
	Line    int // 1-based, 0 when unknown
	Column  int // 1-based, 0 when unknown
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	b.WriteString(" error")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString(" (")
		b.WriteString(e.Details)
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors through the cause and other *Error values
// by type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

func configError(msg string, cause error) *Error {
	return &Error{Type: ErrorConfig, Message: msg, Cause: cause}
}

// positioned is implemented by errors that know where they occurred.
type positioned interface {
	Line() int
}

// AsError converts any error returned by a compiler into a typed *Error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var re *Error
	if errors.As(err, &re) {
		return re
	}

	e := &Error{Type: ErrorRender, Message: err.Error(), Cause: err}
	switch {
	case errors.Is(err, ErrUnknownTheme), errors.Is(err, ErrInvalidTheme):
		e.Type = ErrorConfig
	case errors.Is(err, context.DeadlineExceeded):
		e.Message = "compile timed out"
	case errors.Is(err, context.Canceled):
		e.Message = "compile canceled"
	}

	var p positioned
	if errors.As(err, &p) {
		e.Type = ErrorParse
		e.Line = p.Line()
	}
	return e
}

// panicError converts a recovered panic value.
func panicError(r any) *Error {
	if err, ok := r.(error); ok {
		return &Error{Type: ErrorUnknown, Message: err.Error(), Cause: err}
	}
	return &Error{Type: ErrorUnknown, Message: fmt.Sprint(r)}
}
