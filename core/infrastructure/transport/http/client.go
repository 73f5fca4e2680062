package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lariat-data/lariat-go/core/config"
	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
	"github.com/lariat-data/lariat-go/core/observability"
	sharedctx "github.com/lariat-data/lariat-go/core/shared/context"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// Credential and correlation headers sent with every request
const (
	HeaderAPIKey         = "X-Lariat-Api-Key"
	HeaderApplicationKey = "X-Lariat-Application-Key"
	HeaderRequestID      = "X-Request-Id"
)

// DefaultUserAgent is sent when the configuration sets none
const DefaultUserAgent = "lariat-go"

const maxResponseBytes = 64 << 20

// Client is an authenticated JSON client for the public API
type Client struct {
	baseURL        *url.URL
	apiKey         string
	applicationKey string
	userAgent      string
	httpClient     *http.Client
	log            logging.Logger
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithTransport replaces the underlying round tripper. It is still wrapped
// for tracing.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = otelhttp.NewTransport(rt)
	}
}

// NewClient builds a client from configuration
func NewClient(cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.NewAppError(errors.ErrCodeConfigError, "configuration is required", nil)
	}
	baseURL, err := url.Parse(cfg.Endpoint)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.NewAppError(errors.ErrCodeConfigError, fmt.Sprintf("invalid endpoint %q", cfg.Endpoint), err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	c := &Client{
		baseURL:        baseURL,
		apiKey:         cfg.APIKey,
		applicationKey: cfg.ApplicationKey,
		userAgent:      userAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: logging.New("client:http"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the API base URL
func (c *Client) Endpoint() string {
	return c.baseURL.String()
}

// Get issues one GET request and decodes the JSON body into out (if non-nil).
// Missing credentials fail before anything is sent.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) (err error) {
	if c.apiKey == "" || c.applicationKey == "" {
		return errors.NewAppError(errors.ErrCodeAuthenticationError,
			fmt.Sprintf("missing API credentials: set %s and %s", config.EnvAPIKey, config.EnvApplicationKey), nil)
	}

	ctx, requestID := sharedctx.EnsureRequestID(ctx)
	target := c.resolve(path, params)
	log := c.log.With("request_id", requestID)

	ctx, span := observability.StartSpan(ctx, "GET "+path, map[string]any{
		observability.AttrHTTPMethod: http.MethodGet,
		observability.AttrHTTPRoute:  path,
		observability.AttrRequestID:  requestID,
	})
	defer func() { observability.EndSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.WrapError(errors.ErrCodeInternalError, "failed to build request", err)
	}
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderApplicationKey, c.applicationKey)
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	log.Debugf("GET %s", target)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		observability.RecordClientRequest(ctx, http.MethodGet, path, 0, elapsed)
		return errors.WrapError(errors.ErrCodeTransportError, fmt.Sprintf("request to %s failed", path), err)
	}
	defer resp.Body.Close()
	observability.RecordClientRequest(ctx, http.MethodGet, path, resp.StatusCode, elapsed)
	log.Debugf("GET %s -> %d in %.1fms", path, resp.StatusCode, elapsed)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.WrapError(errors.ErrCodeTransportError, fmt.Sprintf("failed to read response from %s", path), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.FromStatus(resp.StatusCode, errorDetail(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.WrapError(errors.ErrCodeDecodeError, fmt.Sprintf("malformed response from %s", path), err)
	}
	return nil
}

func (c *Client) resolve(path string, params url.Values) string {
	u := c.baseURL.JoinPath(path)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// errorDetail extracts a human-readable message from an error body
func errorDetail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, msg := range []string{payload.Detail, payload.Error, payload.Message} {
			if msg != "" {
				return msg
			}
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
