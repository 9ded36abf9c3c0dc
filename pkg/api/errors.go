package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a page could not be fetched
type ErrorKind string

const (
	// KindNetwork covers transport failures: refused connections, timeouts, cancellation
	KindNetwork ErrorKind = "network"

	// KindServer covers any non-2xx response
	KindServer ErrorKind = "server"

	// KindMalformed covers 2xx responses whose body or headers cannot be read
	KindMalformed ErrorKind = "malformed_response"
)

// Error is returned for every failed page fetch
type Error struct {
	Kind       ErrorKind
	Page       int
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var s string
	switch e.Kind {
	case KindServer:
		s = fmt.Sprintf("%s error fetching page %d (status %d): %s", e.Kind, e.Page, e.StatusCode, e.Message)
	default:
		s = fmt.Sprintf("%s error fetching page %d: %s", e.Kind, e.Page, e.Message)
	}

	if e.Err != nil {
		return s + ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of an *Error, or an empty kind for anything else
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// fail builds an *Error and records it in the error counter
func fail(kind ErrorKind, page, status int, msg string, err error) *Error {
	errorsTotal.WithLabelValues(string(kind)).Inc()
	return &Error{
		Kind:       kind,
		Page:       page,
		StatusCode: status,
		Message:    msg,
		Err:        err,
	}
}
