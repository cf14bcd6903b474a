package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/city-air-service/internal/domain"
)

// CityLister serves one page of enriched cities.
type CityLister interface {
	GetCities(ctx context.Context, page, limit int) (domain.PageResult, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the cities API plus health, readiness, and metrics routes.
type Server struct {
	httpServer   *http.Server
	cities       CityLister
	logger       *slog.Logger
	defaultLimit int
	maxLimit     int
}

// NewServer creates an HTTP server with /cities, /healthz, /readyz, and
// /metrics routes.
func NewServer(addr string, cities CityLister, ready ReadinessChecker, logger *slog.Logger, defaultLimit, maxLimit int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second, // page assembly waits on serialized lookups
			IdleTimeout:  60 * time.Second,
		},
		cities:       cities,
		logger:       logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}

	mux.HandleFunc("GET /cities", s.handleCities)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 1)
	if !ok || page < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page parameter"})
		return
	}
	limit, ok := queryInt(r, "limit", s.defaultLimit)
	if !ok || limit < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit parameter"})
		return
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	result, err := s.cities.GetCities(r.Context(), page, limit)
	if err != nil {
		s.logger.Error("cities request failed", "page", page, "limit", limit, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream data source unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
