// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"fmt"
)

// Kind classifies a boundary failure.
type Kind string

const (
	// KindTransport means the request never produced a response:
	// connection failure, timeout, cancelled context.
	KindTransport Kind = "transport"

	// KindRemote means a response arrived with a failure status; Message
	// carries the backend-provided detail when one was sent.
	KindRemote Kind = "remote"

	// KindDecode means a response arrived but its body could not be
	// normalized. Not expected in steady state.
	KindDecode Kind = "decode"

	// KindValidation means the caller-supplied input was rejected before
	// any request was issued.
	KindValidation Kind = "validation"
)

// Error is the only error type the client surfaces. Every boundary call
// either resolves with typed data or fails with one of these; raw
// transport errors never escape untranslated.
type Error struct {
	Kind    Kind
	Message string

	// StatusCode is the HTTP status for remote errors, zero otherwise.
	StatusCode int

	err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func transportErr(err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: "backend unreachable: " + err.Error(),
		err:     err,
	}
}

func remoteErr(status int, detail string) *Error {
	if detail == "" {
		detail = fmt.Sprintf("backend returned HTTP %d", status)
	}
	return &Error{Kind: KindRemote, Message: detail, StatusCode: status}
}

func decodeErr(err error) *Error {
	return &Error{
		Kind:    KindDecode,
		Message: "backend response could not be understood",
		err:     err,
	}
}

func validationErr(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}
