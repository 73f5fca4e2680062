// Package mockapi serves the public metrics API from a YAML fixture so the
// client and CLI can be exercised without a Lariat account.
package mockapi

import (
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
	transporthttp "github.com/lariat-data/lariat-go/core/infrastructure/transport/http"
	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/middleware"
)

// BasePath is where the public API is mounted
const BasePath = "/public-api"

// Option configures a Server
type Option func(*Server)

// WithRateLimit limits requests per API key
func WithRateLimit(limiter middleware.RateLimiter, limit int, window time.Duration) Option {
	return func(s *Server) {
		s.limiter = limiter
		s.limit = limit
		s.window = window
	}
}

// WithVersion sets the version reported by /heartbeat
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// Server is the mock public API
type Server struct {
	http    *transporthttp.Server
	handler *Handler
	fixture *Fixture
	version string
	limiter middleware.RateLimiter
	limit   int
	window  time.Duration
}

// NewServer builds the server and registers its routes. Port "0" picks a free port.
func NewServer(fixture *Fixture, port string, opts ...Option) *Server {
	if fixture == nil {
		fixture = DefaultFixture()
	}
	s := &Server{
		http:    transporthttp.NewServer(port),
		fixture: fixture,
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	h := NewHandler(s.fixture, s.version)
	s.handler = h
	r := s.http.Router()

	r.Get("/heartbeat", h.Heartbeat)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.json", h.OpenAPI)

	r.Route(BasePath, func(api chi.Router) {
		api.Use(middleware.RequireHeaders(transporthttp.HeaderAPIKey, transporthttp.HeaderApplicationKey))
		if s.limiter != nil {
			api.Use(middleware.RateLimitByHeader(s.limiter, transporthttp.HeaderAPIKey, s.limit, s.window))
		}

		api.Get("/indicators", h.ListIndicators)
		api.Get("/indicators/{id}/dimensions", h.Dimensions)
		api.With(middleware.RequireQueryParams("indicator_id")).Get("/indicator", h.GetIndicator)
		api.Get("/datasets", h.ListDatasets)
		api.Get("/raw-datasets", h.RawDatasets)
		api.Get("/query-metrics", h.QueryMetrics)
	})
}

// SetFixture replaces the data served by the running server
func (s *Server) SetFixture(fixture *Fixture) {
	if fixture == nil {
		return
	}
	s.handler.SetFixture(fixture)
}

// Router returns the HTTP handler, for use with httptest
func (s *Server) Router() chi.Router {
	return s.http.Router()
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	return s.http.Addr()
}

// Endpoint returns the base URL clients should use once started
func (s *Server) Endpoint() string {
	_, port, err := net.SplitHostPort(s.http.Addr())
	if err != nil {
		return ""
	}
	return "http://" + net.JoinHostPort("127.0.0.1", port) + BasePath
}

// StartAsync starts serving without blocking
func (s *Server) StartAsync() error {
	return s.http.Start()
}

// Start serves and blocks until SIGTERM/SIGINT
func (s *Server) Start() error {
	if err := s.StartAsync(); err != nil {
		return err
	}
	logging.New("mockapi").Infof("Public API mounted at %s", s.Endpoint())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return s.Stop()
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	return s.http.Stop()
}
