package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireHeaders(t *testing.T) {
	handler := RequireHeaders("X-Lariat-Api-Key", "X-Lariat-Application-Key")(okHandler)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"both present", map[string]string{"X-Lariat-Api-Key": "a", "X-Lariat-Application-Key": "b"}, http.StatusOK},
		{"one missing", map[string]string{"X-Lariat-Api-Key": "a"}, http.StatusUnauthorized},
		{"blank value", map[string]string{"X-Lariat-Api-Key": " ", "X-Lariat-Application-Key": "b"}, http.StatusUnauthorized},
		{"none", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/indicators", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "missing credentials")
			}
		})
	}
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestRateLimitByHeader(t *testing.T) {
	limiter := &mockLimiter{}
	limiter.On("Allow", mock.Anything, "ratelimit:allowed", 5, time.Minute).Return(true, nil)
	limiter.On("Allow", mock.Anything, "ratelimit:blocked", 5, time.Minute).Return(false, nil)
	limiter.On("Allow", mock.Anything, "ratelimit:broken", 5, time.Minute).Return(false, errors.New("redis down"))

	handler := RateLimitByHeader(limiter, "X-Lariat-Api-Key", 5, time.Minute)(okHandler)

	tests := map[string]int{
		"allowed": http.StatusOK,
		"blocked": http.StatusTooManyRequests,
		"broken":  http.StatusOK,
		"":        http.StatusOK,
	}
	for key, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if key != "" {
			req.Header.Set("X-Lariat-Api-Key", key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, key)
	}
	limiter.AssertNumberOfCalls(t, "Allow", 3)
}

func TestRequireQueryParams(t *testing.T) {
	handler := RequireQueryParams("indicator_id")(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/indicator", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "indicator_id")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/indicator?indicator_id=4", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateStruct(t *testing.T) {
	type params struct {
		ID   int64  `json:"indicator_id" validate:"required"`
		Kind string `json:"kind" validate:"omitempty,oneof=a b"`
	}

	assert.Nil(t, ValidateStruct(params{ID: 1, Kind: "a"}))

	details := ValidateStruct(params{Kind: "c"})
	require.Len(t, details, 2)
	assert.Equal(t, "indicator_id", details[0].Field)
	assert.Equal(t, "required", details[0].Tag)
	assert.Equal(t, "kind", details[1].Field)
}

func TestMetricsPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	Metrics(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/heartbeat", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
