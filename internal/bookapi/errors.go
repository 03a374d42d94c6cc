package bookapi

import (
	"errors"
	"fmt"
)

// Sentinel errors for books service responses.
var (
	ErrNotFound    = errors.New("bookapi: not found")
	ErrBadRequest  = errors.New("bookapi: bad request")
	ErrRateLimited = errors.New("bookapi: rate limited by server")
	ErrServer      = errors.New("bookapi: server error")
)

// StatusError reports a response status the client has no sentinel for.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bookapi: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("bookapi: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // "list", "create", "update", "delete"
	ID  int64  // zero for list
	Err error
}

func (e *Error) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("bookapi %s [%d]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("bookapi %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, id int64, err error) error {
	return &Error{Op: op, ID: id, Err: err}
}
