// Package errors defines the error envelope of the HTTP API.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the coarse class of an API error.
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeMethodNotAllowed ErrorType = "METHOD_NOT_ALLOWED"
	ErrorTypeInternal         ErrorType = "INTERNAL_ERROR"
	ErrorTypeTimeout          ErrorType = "TIMEOUT"
	ErrorTypeServiceDown      ErrorType = "SERVICE_DOWN"
)

// Machine readable codes carried next to the type
const (
	CodeUnknownPacketType = "UNKNOWN_PACKET_TYPE"
	CodeInvalidLimit      = "INVALID_LIMIT"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeNoRecord          = "NO_RECORD"
	CodeUnknownRoute      = "UNKNOWN_ROUTE"
)

// AppError is an error with the HTTP status and body it renders as.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches details to the error body.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCode sets the machine readable code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// New creates an AppError.
func New(errType ErrorType, message string, httpStatus int) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap creates an AppError caused by err.
func Wrap(err error, errType ErrorType, message string, httpStatus int) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewNotFoundError reports a missing resource as "<resource> not found".
func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewMethodNotAllowedError(method string) *AppError {
	return New(ErrorTypeMethodNotAllowed, fmt.Sprintf("Method %s not allowed", method), http.StatusMethodNotAllowed)
}

func NewInternalError(message string) *AppError {
	return New(ErrorTypeInternal, message, http.StatusInternalServerError)
}

func WrapInternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeInternal, message, http.StatusInternalServerError)
}

func NewTimeoutError(message string) *AppError {
	return New(ErrorTypeTimeout, message, http.StatusGatewayTimeout)
}

// WrapServiceDownError reports a failing backing service, such as the Redis
// session registry.
func WrapServiceDownError(err error, service string) *AppError {
	return Wrap(err, ErrorTypeServiceDown, fmt.Sprintf("%s is currently unavailable", service), http.StatusServiceUnavailable)
}

// NewUnknownPacketTypeError rejects a packet type name, listing the names
// the API accepts.
func NewUnknownPacketTypeError(name string, known []string) *AppError {
	return NewValidationError(fmt.Sprintf("unknown packet type %q", name)).
		WithCode(CodeUnknownPacketType).
		WithDetails(map[string]interface{}{"known": known})
}

// NewInvalidLimitError rejects a history limit outside 1..max.
func NewInvalidLimitError(raw string, max int) *AppError {
	return NewValidationError(fmt.Sprintf("limit must be between 1 and %d", max)).
		WithCode(CodeInvalidLimit).
		WithDetails(map[string]interface{}{"limit": raw})
}

func NewSessionNotFoundError(id string) *AppError {
	return NewNotFoundError("session " + id).WithCode(CodeSessionNotFound)
}

// NewNoRecordError reports a packet type with nothing received yet.
func NewNoRecordError(packetType string) *AppError {
	return NewNotFoundError(packetType + " record").WithCode(CodeNoRecord)
}

// IsAppError reports whether err is or wraps an AppError.
func IsAppError(err error) bool {
	_, ok := GetAppError(err)
	return ok
}

// GetAppError finds the first AppError in err's chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Classify turns any error into the AppError it renders as. Deadlines map
// to timeouts; anything unknown is internal.
func Classify(err error) *AppError {
	if appErr, ok := GetAppError(err); ok {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrorTypeTimeout, "Request timed out", http.StatusGatewayTimeout)
	}
	return WrapInternalError(err, "An unexpected error occurred")
}
