package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aquilax/debateboard/database"
)

var (
	ErrTopicClosed        = errors.New("topic is not open for arguments")
	ErrParentMismatch     = errors.New("parent argument belongs to another topic")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrEmptyContent       = errors.New("content is empty")
	// ErrParentNotFound still matches database.ErrNotFound.
	ErrParentNotFound     = fmt.Errorf("parent argument %w", database.ErrNotFound)
)

// HTTPError is an error with the status code and the user facing message
// it should be reported with.
type HTTPError struct {
	Err     error
	Message string
	Code    int
	// Fields names the request fields that failed validation, if any.
	Fields []string
}

func (e *HTTPError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s: %v", e.Code, e.Message, e.Err)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func newHTTPError(code int, message string, err error) *HTTPError {
	return &HTTPError{Err: err, Message: message, Code: code}
}

func badRequest(message string, err error) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message, err)
}

func notFound(message string, err error) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, err)
}
