package http

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
	httpmiddleware "github.com/lariat-data/lariat-go/core/infrastructure/transport/http/middleware"
)

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	port     string
	addr     string
	shutdown context.CancelFunc
}

// NewServer creates a new HTTP server. Port "0" picks a free port.
func NewServer(port string) *Server {
	if port == "" {
		port = "8002"
	}

	r := chi.NewRouter()

	// Add core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", HeaderAPIKey, HeaderApplicationKey, HeaderRequestID},
		ExposedHeaders:   []string{HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(httpmiddleware.Metrics)
	r.Use(httpmiddleware.Tracing)

	return &Server{
		router: r,
		port:   port,
	}
}

// Router returns the chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	return s.addr
}

// Start binds the port and serves in the background. Bind errors are
// returned; serve errors are logged.
func (s *Server) Start() error {
	log := logging.New("http")

	listener, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Successf("HTTP server listening on http://%s", s.addr)
		if err := s.server.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop() error {
	log := logging.New("http")
	log.Infof("Shutting down HTTP server")

	if s.shutdown != nil {
		s.shutdown()
	}

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
		if closeErr := s.server.Close(); closeErr != nil {
			log.Errorf("Error force closing HTTP server: %v", closeErr)
		}
		return err
	}

	log.Infof("HTTP server stopped")
	return nil
}

// SetShutdownFunc sets the shutdown function to be called on stop
func (s *Server) SetShutdownFunc(fn context.CancelFunc) {
	s.shutdown = fn
}
