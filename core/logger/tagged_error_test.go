package logger

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lariat-data/lariat-go/core/shared/errors"
)

func TestWithTag(t *testing.T) {
	assert.Nil(t, WithTag("cli", nil))

	base := stderrors.New("boom")
	err := fmt.Errorf("query failed: %w", WithTag("query", base))

	assert.Equal(t, "query", ErrorTag(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "query failed: boom", err.Error())
}

func TestErrorTagPrefersExplicitTag(t *testing.T) {
	err := WithTag("datasets", errors.FromStatus(http.StatusNotFound, "dataset not found"))
	assert.Equal(t, "datasets", ErrorTag(err))
}

func TestErrorTagFromCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", stderrors.New("plain"), ""},
		{"validation", errors.Validation("bad clause"), "query"},
		{"auth", errors.FromStatus(http.StatusUnauthorized, ""), "client:auth"},
		{"remote rejection", errors.FromStatus(http.StatusBadRequest, "bad filter"), "client:http"},
		{"io", fmt.Errorf("export: %w", errors.NewAppError(errors.ErrCodeIOError, "disk full", nil)), "sinks"},
		{"config", errors.NewAppError(errors.ErrCodeConfigError, "bad file", nil), "config"},
		{"internal", errors.NewAppError(errors.ErrCodeInternalError, "oops", nil), ""},
		{"empty explicit tag", WithTag("", errors.Validation("x")), "query"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorTag(tt.err))
		})
	}
}
