// Package api serves a read-only HTTP view of the master, its factories and
// the storage mirror.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studio/internal/bootstrap"
	"studio/internal/metrics"
	"studio/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	httpServer *http.Server
	router     chi.Router
	studio     *bootstrap.Studio
	repository storage.Repository
	port       int
}

// NewServer creates a new API server instance
func NewServer(port int, studio *bootstrap.Studio, repository storage.Repository) *Server {
	s := &Server{
		studio:     studio,
		repository: repository,
		port:       port,
	}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	// Core endpoints
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Master
	r.Get("/admin", s.handleMasterAdmin)
	r.Get("/factories", s.handleListFactories)

	r.Route("/factories/{role}", func(r chi.Router) {
		r.Get("/", s.handleGetFactory)
		r.Get("/admin", s.handleFactoryAdmin)
		r.Get("/wasm", s.handleFactoryWasm)
		r.Get("/count", s.handleFactoryCount)
		r.Get("/deployments", s.handleListDeployments)
		r.Get("/deployments/kind/{kind}", s.handleDeploymentsByKind)
		r.Get("/deployments/principal/{address}", s.handleDeploymentsByPrincipal)
	})

	// Storage mirror
	r.Get("/contracts/{address}", s.handleGetContract)
	r.Get("/events", s.handleListEvents)

	return r
}

// observe records request latency by route pattern and status.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.APIRequestDuration.
			WithLabelValues(route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// Start binds the port and serves in a goroutine. Bind errors are returned.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		slog.Info("API server starting", "port", s.port)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("API server shutting down...")
	return s.httpServer.Shutdown(ctx)
}
