package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Caller errors
	ErrCodeValidationError ErrorCode = "VALIDATION_ERROR"
	ErrCodeConfigError     ErrorCode = "CONFIG_ERROR"

	// Remote API errors
	ErrCodeAuthenticationError ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeTransportError      ErrorCode = "TRANSPORT_ERROR"
	ErrCodeDecodeError         ErrorCode = "DECODE_ERROR"

	// Local errors
	ErrCodeIOError       ErrorCode = "IO_ERROR"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an SDK error with code and context
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	Status  int // HTTP status code returned by the remote API, 0 if none
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Status > 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s (status %d: %v)", e.Code, e.Message, e.Status, e.Err)
		}
		return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new error without a remote status
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WrapError wraps an existing error with an error code and message
func WrapError(code ErrorCode, message string, err error) *AppError {
	return NewAppError(code, message, err)
}

// Validation builds a VALIDATION_ERROR with a formatted message
func Validation(format string, args ...any) *AppError {
	return NewAppError(ErrCodeValidationError, fmt.Sprintf(format, args...), nil)
}

// FromStatus maps an HTTP status returned by the remote API to an error.
// detail is the message extracted from the response body, if any.
func FromStatus(status int, detail string) *AppError {
	code := codeForStatus(status)
	message := detail
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = "unexpected response"
	}
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// codeForStatus maps HTTP status codes to error codes. Remote rejections,
// including 400 and 422, are transport errors; validation errors are local.
func codeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrCodeAuthenticationError
	case http.StatusNotFound:
		return ErrCodeNotFound
	default:
		return ErrCodeTransportError
	}
}

// HTTPStatus returns the HTTP status an error should be served with
func HTTPStatus(err error) int {
	var appErr *AppError
	if !stderrors.As(err, &appErr) || appErr == nil {
		return http.StatusInternalServerError
	}
	if appErr.Status > 0 {
		return appErr.Status
	}
	switch appErr.Code {
	case ErrCodeValidationError:
		return http.StatusBadRequest
	case ErrCodeAuthenticationError:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeTransportError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr != nil {
		return appErr.Code
	}
	return ""
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return CodeOf(err) == ErrCodeValidationError
}

// IsAuthenticationError checks if the error is an authentication error
func IsAuthenticationError(err error) bool {
	return CodeOf(err) == ErrCodeAuthenticationError
}

// IsTransportError checks if the error is a transport error
func IsTransportError(err error) bool {
	return CodeOf(err) == ErrCodeTransportError
}

// IsIOError checks if the error is an export/write error
func IsIOError(err error) bool {
	return CodeOf(err) == ErrCodeIOError
}

// IsConfigError checks if the error is a configuration error
func IsConfigError(err error) bool {
	return CodeOf(err) == ErrCodeConfigError
}
