package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"client-feedback-admin/internal/config"
	"client-feedback-admin/internal/handlers"
	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/middleware"
	"client-feedback-admin/internal/security"
)

// Server represents the HTTP server
type Server struct {
	config         *config.Config
	logger         *logger.Logger
	router         *mux.Router
	httpServer     *http.Server
	registry       *prometheus.Registry
	authHandler    *handlers.AuthHandler
	clientHandler  *handlers.ClientHandler
	importHandler  *handlers.ImportHandler
	healthHandler  *handlers.HealthHandler
	authMiddleware *middleware.AuthenticationMiddleware
}

// NewServer creates a new HTTP server
func NewServer(
	config *config.Config,
	logger *logger.Logger,
	registry *prometheus.Registry,
	authHandler *handlers.AuthHandler,
	clientHandler *handlers.ClientHandler,
	importHandler *handlers.ImportHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthenticationMiddleware,
) *Server {
	server := &Server{
		config:         config,
		logger:         logger,
		router:         mux.NewRouter(),
		registry:       registry,
		authHandler:    authHandler,
		clientHandler:  clientHandler,
		importHandler:  importHandler,
		healthHandler:  healthHandler,
		authMiddleware: authMiddleware,
	}

	server.setupRoutes()
	server.setupHTTPServer()

	return server
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health and metrics (no auth required)
	s.healthHandler.RegisterRoutes(s.router)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Login is the only unauthenticated API route
	s.authHandler.RegisterRoutes(api)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.authMiddleware.RequireJWT)
	s.clientHandler.RegisterRoutes(protected)
	s.importHandler.RegisterRoutes(protected)

	// Global middleware, outermost first
	s.router.Use(s.loggingMiddleware)
	s.router.Use(security.SecurityHeaders)
	s.router.Use(middleware.NoStore)
	s.router.Use(middleware.CompressionMiddleware)
}

// setupHTTPServer configures the HTTP server
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.config.Server.IdleTimeout) * time.Second,
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")

	// Start server - this will block until the server is shut down
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.WithError(err).Error("HTTP server error")
		return err
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Middleware

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.WithRequest(requestID).WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_addr": security.ClientIP(r),
			"user_agent":  r.UserAgent(),
		}).Info("HTTP request")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
