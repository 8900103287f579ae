// Package http serves the worker's operational surface: health and
// readiness checks, Prometheus metrics and read-only depth chart snapshots.
// Commands are never accepted over HTTP; they arrive through the sport
// queues.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/depthchart-hub/depth-chart-hub/internal/infrastructure/persistence/postgres"
	"github.com/depthchart-hub/depth-chart-hub/internal/interface/http/handlers"
	"github.com/depthchart-hub/depth-chart-hub/internal/sport"
	"github.com/depthchart-hub/depth-chart-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Version is reported by / and /health.
	Version string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            "0.0.0.0:8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// JournalReader lists recent journal entries for a sport.
type JournalReader interface {
	Recent(ctx context.Context, sport string, limit int) ([]postgres.JournalEntry, error)
}

// HealthChecker produces the /health and /ready report.
type HealthChecker interface {
	Run(ctx context.Context) handlers.Report
}

// Dependencies contains everything the handlers read from.
type Dependencies struct {
	// Sports whose charts are exposed.
	Sports *sport.Registry

	// Metrics serves /metrics; nil disables the endpoint.
	Metrics http.Handler

	// Journal serves /sports/{sport}/journal; nil disables the endpoint.
	Journal JournalReader

	// Health defaults to a checker with no checks.
	Health HealthChecker

	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the HTTP surface of one worker.
type Server struct {
	config  Config
	deps    Dependencies
	log     *logger.Logger
	handler http.Handler
}

// NewServer wires routes and middleware.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{config: config, deps: deps, log: deps.Logger}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.log = s.log.With(logger.Component("http"))
	if s.deps.Health == nil {
		s.deps.Health = handlers.NewChecker(config.Version, 0)
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.requestID(s.recoverPanics(s.accessLog(mux)))
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes(mux *http.ServeMux) {
	// ─────────────────────────────────────────────────────────────────────────
	// Health
	// ─────────────────────────────────────────────────────────────────────────
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /live", s.handleLive)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	// ─────────────────────────────────────────────────────────────────────────
	// Depth charts (read-only)
	// ─────────────────────────────────────────────────────────────────────────
	mux.HandleFunc("GET /sports", s.handleListSports)
	mux.HandleFunc("GET /sports/{sport}/chart", s.handleGetChart)
	if s.deps.Journal != nil {
		mux.HandleFunc("GET /sports/{sport}/journal", s.handleGetJournal)
	}

	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics)
	}
}

// Run serves on config.Addr until ctx is cancelled, then drains open
// requests for up to ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", logger.String("address", s.config.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// requestID tags the request with X-Request-ID, generating one when the
// caller did not, and attaches a logger carrying it to the context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = logger.WithContext(ctx, s.log.With(logger.RequestID(id)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.requestLog(r).Debug("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rw.status),
			logger.Latency(time.Since(start)),
		)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.requestLog(r).Error("panic in handler",
					logger.Any("panic", fmt.Sprint(v)),
					logger.String("path", r.URL.Path),
					logger.String("stack", string(debug.Stack())),
				)
				writeError(w, r, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLog(r *http.Request) *logger.Logger {
	return logger.FromContext(r.Context(), s.log)
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSES
// ══════════════════════════════════════════════════════════════════════════════

// APIError is the body of every non-2xx response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type dataResponse struct {
	Data      any    `json:"data"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, dataResponse{Data: data, RequestID: requestIDFrom(r)})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error:     APIError{Code: code, Message: message},
		RequestID: requestIDFrom(r),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}
