package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lariat-data/lariat-go/core/config"
	transporthttp "github.com/lariat-data/lariat-go/core/infrastructure/transport/http"
	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/dto"
	"github.com/lariat-data/lariat-go/core/runtime/mockapi"
	sharedctx "github.com/lariat-data/lariat-go/core/shared/context"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

func newConfig(endpoint string) *config.Config {
	cfg := config.Default()
	cfg.Endpoint = endpoint
	cfg.APIKey = "key"
	cfg.ApplicationKey = "app"
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestClientAgainstMockAPI(t *testing.T) {
	srv := httptest.NewServer(mockapi.NewServer(nil, "0").Router())
	defer srv.Close()

	client, err := transporthttp.NewClient(newConfig(srv.URL + mockapi.BasePath))
	require.NoError(t, err)

	var resp dto.IndicatorsResponse
	err = client.Get(context.Background(), "/indicators", url.Values{"tags": {"growth"}}, &resp)
	require.NoError(t, err)
	require.Len(t, resp.Indicators, 1)
	assert.Equal(t, "daily_signups", resp.Indicators[0].Name)
}

func TestClientSendsHeaders(t *testing.T) {
	var got http.Header
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.RequestURI()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := newConfig(srv.URL + "/public-api")
	cfg.UserAgent = "tests/1.0"
	client, err := transporthttp.NewClient(cfg)
	require.NoError(t, err)

	ctx := sharedctx.WithRequestID(context.Background(), "req-123")
	require.NoError(t, client.Get(ctx, "/datasets", url.Values{"name": {"orders"}}, nil))

	assert.Equal(t, "/public-api/datasets?name=orders", gotPath)
	assert.Equal(t, "key", got.Get(transporthttp.HeaderAPIKey))
	assert.Equal(t, "app", got.Get(transporthttp.HeaderApplicationKey))
	assert.Equal(t, "req-123", got.Get(transporthttp.HeaderRequestID))
	assert.Equal(t, "tests/1.0", got.Get("User-Agent"))
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.ErrorCode
		wantMsg  string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"bad key"}`, errors.ErrCodeAuthenticationError, "bad key"},
		{"forbidden", http.StatusForbidden, `{"error":"no access"}`, errors.ErrCodeAuthenticationError, "no access"},
		{"not found", http.StatusNotFound, `{"detail":"indicator not found"}`, errors.ErrCodeNotFound, "indicator not found"},
		{"bad request", http.StatusBadRequest, `{"detail":"bad filter"}`, errors.ErrCodeTransportError, "bad filter"},
		{"unprocessable", http.StatusUnprocessableEntity, `{"detail":"bad range"}`, errors.ErrCodeTransportError, "bad range"},
		{"server error", http.StatusInternalServerError, `boom`, errors.ErrCodeTransportError, "boom"},
		{"malformed body", http.StatusOK, `{not json`, errors.ErrCodeDecodeError, "malformed response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := transporthttp.NewClient(newConfig(srv.URL))
			require.NoError(t, err)

			var out map[string]any
			err = client.Get(context.Background(), "/indicators", nil, &out)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			if tt.status >= http.StatusBadRequest {
				assert.Equal(t, tt.status, errors.HTTPStatus(err))
			}
		})
	}
}

func TestClientMissingCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := newConfig(srv.URL)
	cfg.ApplicationKey = ""
	client, err := transporthttp.NewClient(cfg)
	require.NoError(t, err)

	err = client.Get(context.Background(), "/indicators", nil, nil)
	assert.True(t, errors.IsAuthenticationError(err))
	assert.False(t, called)
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client, err := transporthttp.NewClient(newConfig(endpoint))
	require.NoError(t, err)

	err = client.Get(context.Background(), "/indicators", nil, nil)
	assert.True(t, errors.IsTransportError(err))
}

func TestClientCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := transporthttp.NewClient(newConfig(srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = client.Get(ctx, "/indicators", nil, nil)
	assert.True(t, errors.IsTransportError(err))
}

func TestNewClientRejectsBadEndpoint(t *testing.T) {
	_, err := transporthttp.NewClient(newConfig("not-a-url"))
	assert.True(t, errors.IsConfigError(err))

	_, err = transporthttp.NewClient(nil)
	assert.True(t, errors.IsConfigError(err))
}
