package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNetwork             Kind = "network_error"
	KindValidation          Kind = "validation_error"
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindUnauthorized        Kind = "unauthorized"
	KindServer              Kind = "server_error"
	KindFileTooLarge        Kind = "file_too_large"
	KindUnsupportedFileType Kind = "unsupported_file_type"
)

// Error is the classified failure surfaced by every client-side operation.
// Status is zero for local pre-checks and for requests that never got a response.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (%d)", e.Kind, e.Status)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatusCode lets httpx classify retryability without importing this package.
func (e *Error) HTTPStatusCode() int { return e.Status }

func New(kind Kind, code string, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(code string, msg string) *Error {
	return New(KindValidation, code, msg)
}

func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Code: "network_error", Err: err}
}

// FromStatus maps an HTTP status to its kind. 2xx is not an error and
// callers must not pass it.
func FromStatus(status int, code string, msg string) *Error {
	return &Error{Kind: kindForStatus(status), Status: status, Code: code, Message: msg}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindServer
	}
}

// KindOf classifies any error. Context errors count as network failures since
// no response was received; anything unrecognized is a server error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	return KindServer
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Local reports whether the error came from a pre-check that never touched the network.
func Local(err error) bool {
	var e *Error
	if !errors.As(err, &e) || e.Status != 0 {
		return false
	}
	switch e.Kind {
	case KindValidation, KindFileTooLarge, KindUnsupportedFileType:
		return true
	default:
		return false
	}
}

// Retryable is true only for failures a later identical read may fix.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindNetwork:
		return true
	case KindServer:
		return e.Status == 0 || e.Status == http.StatusRequestTimeout || e.Status == http.StatusTooManyRequests || e.Status >= 500
	default:
		return false
	}
}

// UserMessage returns the single sentence shown to a user for a failure.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" && (e.Kind == KindValidation || e.Kind == KindFileTooLarge || e.Kind == KindUnsupportedFileType) {
		return e.Message
	}
	switch KindOf(err) {
	case KindNetwork:
		return "Connection error. Check your network and try again."
	case KindValidation:
		return "The request was rejected as invalid."
	case KindNotFound:
		return "The requested item no longer exists."
	case KindForbidden:
		return "You do not have permission to do that."
	case KindUnauthorized:
		return "Your session has expired. Please sign in again."
	case KindFileTooLarge:
		return "The file is too large."
	case KindUnsupportedFileType:
		return "That file type is not supported."
	default:
		return "Something went wrong. Please try again."
	}
}
