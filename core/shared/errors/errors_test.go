package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lariat-data/lariat-go/core/shared/errors"
)

func TestNewAppError(t *testing.T) {
	underlying := stderrors.New("underlying error")
	appErr := errors.NewAppError(errors.ErrCodeIOError, "write failed", underlying)

	assert.Equal(t, errors.ErrCodeIOError, appErr.Code)
	assert.Equal(t, "write failed", appErr.Message)
	assert.Equal(t, 0, appErr.Status)
	assert.Equal(t, underlying, appErr.Unwrap())
	assert.Equal(t, "IO_ERROR: write failed (underlying error)", appErr.Error())
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		detail       string
		expectedCode errors.ErrorCode
		expectedMsg  string
	}{
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			detail:       "invalid api key",
			expectedCode: errors.ErrCodeAuthenticationError,
			expectedMsg:  "invalid api key",
		},
		{
			name:         "forbidden",
			status:       http.StatusForbidden,
			expectedCode: errors.ErrCodeAuthenticationError,
			expectedMsg:  "Forbidden",
		},
		{
			name:         "not found",
			status:       http.StatusNotFound,
			expectedCode: errors.ErrCodeNotFound,
			expectedMsg:  "Not Found",
		},
		{
			name:         "bad request",
			status:       http.StatusBadRequest,
			detail:       "unknown aggregate",
			expectedCode: errors.ErrCodeTransportError,
			expectedMsg:  "unknown aggregate",
		},
		{
			name:         "unprocessable entity",
			status:       http.StatusUnprocessableEntity,
			detail:       "invalid filter",
			expectedCode: errors.ErrCodeTransportError,
			expectedMsg:  "invalid filter",
		},
		{
			name:         "server error",
			status:       http.StatusBadGateway,
			expectedCode: errors.ErrCodeTransportError,
			expectedMsg:  "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := errors.FromStatus(tt.status, tt.detail)
			assert.Equal(t, tt.expectedCode, appErr.Code)
			assert.Equal(t, tt.expectedMsg, appErr.Message)
			assert.Equal(t, tt.status, appErr.Status)
		})
	}
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("fetch indicators: %w", errors.FromStatus(http.StatusUnauthorized, ""))

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"validation", errors.Validation("bad %s", "input"), errors.IsValidationError, true},
		{"authentication through wrap", wrapped, errors.IsAuthenticationError, true},
		{"transport", errors.NewAppError(errors.ErrCodeTransportError, "dial", nil), errors.IsTransportError, true},
		{"io", errors.NewAppError(errors.ErrCodeIOError, "disk", nil), errors.IsIOError, true},
		{"config", errors.NewAppError(errors.ErrCodeConfigError, "missing", nil), errors.IsConfigError, true},
		{"not found", errors.FromStatus(http.StatusNotFound, ""), errors.IsNotFound, true},
		{"plain error", stderrors.New("regular error"), errors.IsValidationError, false},
		{"nil", nil, errors.IsTransportError, false},
		{"other code", errors.NewAppError(errors.ErrCodeInternalError, "x", nil), errors.IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestAppErrorWithStatusMessage(t *testing.T) {
	appErr := errors.FromStatus(http.StatusInternalServerError, "boom")
	assert.Equal(t, "TRANSPORT_ERROR: boom (status 500)", appErr.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.Validation("bad"), http.StatusBadRequest},
		{errors.NewAppError(errors.ErrCodeAuthenticationError, "no key", nil), http.StatusUnauthorized},
		{errors.NewAppError(errors.ErrCodeNotFound, "gone", nil), http.StatusNotFound},
		{errors.FromStatus(http.StatusTeapot, ""), http.StatusTeapot},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errors.HTTPStatus(tt.err), tt.err.Error())
	}
}
