package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// UpstreamError is implemented by errors returned from the remote API client.
type UpstreamError interface {
	error
	StatusCode() int
	UserMessage() string
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewNotSupported reports an operation the remote API offers no endpoint for.
func NewNotSupported(message string) error {
	return NewDomainError("NOT_SUPPORTED", message, http.StatusNotImplemented, nil)
}

// NewProcessingError reports a local processing failure such as an undecodable image.
func NewProcessingError(message string, err error) error {
	return &DomainError{
		Code:       "PROCESSING_FAILED",
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// FromUpstream converts a remote API failure into a DomainError.
// 401 is kept so the console can drop the session, other 4xx keep their status
// and message, everything else becomes 502.
func FromUpstream(err UpstreamError) *DomainError {
	status := err.StatusCode()
	msg := err.UserMessage()
	switch {
	case status == http.StatusUnauthorized:
		return &DomainError{Code: "UNAUTHORIZED", Message: msg, HTTPStatus: status, Err: err}
	case status == http.StatusNotFound:
		return &DomainError{Code: "NOT_FOUND", Message: msg, HTTPStatus: status, Err: err}
	case status >= 400 && status < 500:
		return &DomainError{Code: "UPSTREAM_REJECTED", Message: msg, HTTPStatus: status, Err: err}
	default:
		return &DomainError{
			Code:       "UPSTREAM_FAILED",
			Message:    msg,
			HTTPStatus: http.StatusBadGateway,
			Details:    map[string]any{"upstream_status": status},
			Err:        err,
		}
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var upstream UpstreamError
	if errors.As(err, &upstream) {
		return FromUpstream(upstream)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	return ToDomainError(err)
}
