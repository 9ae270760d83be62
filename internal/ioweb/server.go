// Package ioweb serves read-only HTML views of the detainees dataset.
// This is an impure I/O package built on chi.
package ioweb

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gnames/gitmo/pkg/browse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server of the web views.
type Server struct {
	browser browse.Browser
	views   views
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server for addr that answers requests with the
// browser.
func NewServer(b browse.Browser, addr string) (*Server, error) {
	v, err := loadViews()
	if err != nil {
		return nil, TemplateError(err)
	}

	s := &Server{
		browser: b,
		views:   v,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleCountries)
	s.router.Get("/countries", s.handleCountries)
	s.router.Get("/country/{iso}", s.handleCountry)
	s.router.Get("/detainee/{isn}", s.handleDetainee)
	s.router.Get("/longest", s.handleLongest)
	s.router.Get("/stats", s.handleStats)
	s.router.NotFound(s.handleNotFound)
}

// Start listens until Shutdown is called. It returns
// http.ErrServerClosed after a graceful shutdown, including a shutdown
// that happened before Start.
func (s *Server) Start() error {
	slog.Info("Starting web server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestLogger logs every request with its request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
		)
	})
}

// logger returns the default logger with the request id attached.
func logger(ctx context.Context) *slog.Logger {
	res := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		res = res.With("request_id", reqID)
	}
	return res
}
