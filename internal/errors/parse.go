package errors

import (
	"errors"
	"fmt"
)

// ParseError represents a malformed or unexpected response body from the
// catalog API. Like TransportError it is non-fatal: the affected query is
// skipped and the run continues.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a ParseError for the given operation.
func NewParseError(op string, err error) *ParseError {
	return &ParseError{Op: op, Err: err}
}

// IsParseError reports whether err is a ParseError (even when wrapped).
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}
