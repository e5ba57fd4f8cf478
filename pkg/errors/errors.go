package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
//
// The recoverable ones (invalid range, length exceeded, in progress,
// collaborator failures) always leave the draft in its last-known-good
// state; handlers surface them and the user retries.
var (
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrInvalidRange        = New("INVALID_RANGE", http.StatusBadRequest, "event start must be before end")
	ErrLengthExceeded      = New("LENGTH_EXCEEDED", http.StatusBadRequest, "report body exceeds the maximum length")
	ErrInProgress          = New("IN_PROGRESS", http.StatusConflict, "a save or submit is already in progress")
	ErrFinalized           = New("FINALIZED", http.StatusConflict, "report already submitted")
	ErrUpstreamUnavailable = New("UPSTREAM_UNAVAILABLE", http.StatusBadGateway, "calendar provider unavailable")
	ErrPersistenceFailed   = New("PERSISTENCE_FAILED", http.StatusBadGateway, "draft could not be saved")
	ErrSubmissionFailed    = New("SUBMISSION_FAILED", http.StatusBadGateway, "report could not be submitted")
	ErrConfirmationNeeded  = New("CONFIRMATION_REQUIRED", http.StatusPreconditionFailed, "destructive reset requires confirmation")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
