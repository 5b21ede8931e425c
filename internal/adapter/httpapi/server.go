// Package httpapi exposes the coordination service over HTTP: request
// submission, result polling, the source catalog, and the operational
// endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
	"github.com/couchcryptid/landscape-sim-service/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxWait caps the optional synchronous wait on submission so a caller
// cannot pin a connection past the request timeout.
const (
	maxWait      = 90 * time.Second
	waitInterval = 200 * time.Millisecond
)

// Coordinator is the submission surface the server needs.
type Coordinator interface {
	Submit(ctx context.Context, lat, lon float64, priority string) (string, error)
	CheckReadiness(ctx context.Context) error
}

// ResultReader is the polling surface the server needs.
type ResultReader interface {
	Get(requestID string) (domain.FinalReport, store.Status, bool)
}

// Server exposes the coordination API plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	coord      Coordinator
	results    ResultReader
	registry   *source.Registry
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer wires the routes. The registry backs /available-sources.
func NewServer(addr string, coord Coordinator, results ResultReader, registry *source.Registry,
	clock clockwork.Clock, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
			// Submission may hold the connection for an optional wait.
			ReadTimeout:  10 * time.Second,
			WriteTimeout: maxWait + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		coord:    coord,
		results:  results,
		registry: registry,
		clock:    clock,
		logger:   logger,
	}

	mux.HandleFunc("POST /analyze-location", s.handleSubmit)
	mux.HandleFunc("GET /results/{id}", s.handleResults)
	mux.HandleFunc("GET /available-sources", s.handleSources)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
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

type submitRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Priority  string  `json:"priority"`
}

type submitResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Location  string `json:"location"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	id, err := s.coord.Submit(r.Context(), req.Latitude, req.Longitude, req.Priority)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if wait := s.parseWait(r); wait > 0 {
		if report, ok := s.awaitReport(r.Context(), id, wait); ok {
			writeJSON(w, http.StatusOK, resultResponse{
				RequestID: id,
				Status:    string(store.StatusCompleted),
				Report:    &report,
			})
			return
		}
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		RequestID: id,
		Status:    string(store.StatusProcessing),
		Location:  domain.FormatLocation(req.Latitude, req.Longitude),
	})
}

// parseWait reads the optional ?wait= duration, clamped to maxWait. A bare
// "wait" with no value waits the maximum.
func (s *Server) parseWait(r *http.Request) time.Duration {
	if !r.URL.Query().Has("wait") {
		return 0
	}
	raw := r.URL.Query().Get("wait")
	if raw == "" {
		return maxWait
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return min(d, maxWait)
}

// awaitReport polls the store until the report lands or the wait budget runs
// out. Submission already returned the id either way, so failing to wait is
// never an error for the caller.
func (s *Server) awaitReport(ctx context.Context, id string, wait time.Duration) (domain.FinalReport, bool) {
	deadline := s.clock.Now().Add(wait)
	for {
		if report, status, ok := s.results.Get(id); ok && status == store.StatusCompleted {
			return report, true
		}
		if s.clock.Now().After(deadline) {
			return domain.FinalReport{}, false
		}
		select {
		case <-ctx.Done():
			return domain.FinalReport{}, false
		case <-s.clock.After(waitInterval):
		}
	}
}

type resultResponse struct {
	RequestID string              `json:"request_id"`
	Status    string              `json:"status"`
	Report    *domain.FinalReport `json:"report,omitempty"`
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	report, status, ok := s.results.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown request id: "+id)
		return
	}
	resp := resultResponse{RequestID: id, Status: string(status)}
	if status == store.StatusCompleted {
		resp.Report = &report
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sources": s.registry.Infos(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.coord.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
