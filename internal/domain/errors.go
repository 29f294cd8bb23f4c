package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrSizeMismatch        = errors.New("declared size does not match file content")
	ErrMissingDocument     = errors.New("document is required")
	ErrMissingIdentifier   = errors.New("identifier is required")
	ErrTransport           = errors.New("could not reach the analysis server")
	ErrServer              = errors.New("analysis server returned an error")
	ErrNotFound            = errors.New("resource not found")
	ErrDecode              = errors.New("response could not be decoded")
	ErrAnalysisFailed      = errors.New("analysis failed")
)

// ValidationError reports bad input detected before any network call.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is lets callers match any ValidationError with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field with a readable message.
func NewValidationError(field, message string, cause error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: cause}
}

// TransportError indicates the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ServerError is a non-success HTTP response. Message carries the server's
// own explanation when it supplied one.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = ErrServer.Error()
	}
	return fmt.Sprintf("%s (status %d): %s", e.Op, e.StatusCode, msg)
}

func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrServer:
		return true
	case ErrNotFound:
		return e.NotFound()
	}
	return false
}

// NotFound reports whether the server answered 404.
func (e *ServerError) NotFound() bool {
	return e.StatusCode == 404
}

// DecodeError indicates a response body that could not be parsed at all.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// AnalysisFailedError is the surfaced form of a session that ended in StateFailed.
type AnalysisFailedError struct {
	SessionID string
	Message   string
	Cause     error
}

func (e *AnalysisFailedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = ErrAnalysisFailed.Error()
	}
	return fmt.Sprintf("session %s: %s", e.SessionID, msg)
}

func (e *AnalysisFailedError) Unwrap() error {
	return e.Cause
}

func (e *AnalysisFailedError) Is(target error) bool {
	return target == ErrAnalysisFailed
}

// UserMessage returns a human-readable message for any error, falling back to
// a generic one when nothing better is available.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		verr *ValidationError
		serr *ServerError
		ferr *AnalysisFailedError
	)
	switch {
	case errors.As(err, &ferr):
		if ferr.Message != "" {
			return ferr.Message
		}
		return "Analysis failed. Please try again."
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &serr):
		if serr.Message != "" {
			return serr.Message
		}
		return "The analysis server returned an error. Please try again."
	case errors.Is(err, ErrTransport):
		return "Cannot connect to the analysis server. Please ensure it is running."
	case errors.Is(err, ErrDecode):
		return "The analysis server sent a response that could not be read."
	}
	return "Analysis failed. Please try again."
}
