package kconfig

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax           = NewError("syntax error")
	ErrUnterminated     = NewError("unterminated string")
	ErrUnexpectedToken  = NewError("unexpected token")
	ErrExpectedExpr     = NewError("expected expression")
	ErrRecursiveInclude = NewError("recursive file inclusion")
	ErrReadSource       = NewError("failed to read source file")
	ErrMisplacedKeyword = NewError("keyword not valid here")
	ErrTrailingTokens   = NewError("extra tokens at end of line")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<file>:<line>: <msg>: <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	msg := strings.Join(part, ": ")

	if loc := e.location(); loc != "" {
		return loc + ": " + msg
	}

	return msg
}

// location extracts the file:line prefix from positional attributes, if any.
func (e *Error) location() string {
	var file, line string

	for _, a := range e.attrs {
		switch a.Key {
		case "file":
			file = a.Value.String()
		case "line":
			line = a.Value.String()
		}
	}

	if file == "" {
		return ""
	}

	if line != "" {
		return file + ":" + line
	}

	return file
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether the target is the same sentinel this error was derived
// from. Derived copies produced by With and Wrap share the base message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// At attaches a source location to the error.
func (e *Error) At(file string, line int) *Error {
	return e.With(
		slog.String("file", file),
		slog.String("line", strconv.Itoa(line)),
	)
}
