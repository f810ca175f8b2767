package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is an error that knows which HTTP status it maps to.
type StatusError struct {
	Code    int
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Err }

// New returns a StatusError with the given status and message.
func New(code int, message string) error {
	return &StatusError{Code: code, Message: message}
}

// Wrap attaches a status and public message to err.
func Wrap(code int, message string, err error) error {
	return &StatusError{Code: code, Message: message, Err: err}
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return http.StatusInternalServerError
}

// MessageOf returns the public message carried by err. Errors without a
// StatusError never leak their text.
func MessageOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}
