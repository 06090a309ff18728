// Package api provides the HTTP surface of spec.md §6: POST /forecast,
// GET /metrics, GET /regions and GET /sources, built on the same
// chi router/middleware stack the teacher uses for its own API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldpulse/fieldpulse/internal/domain"
	"github.com/fieldpulse/fieldpulse/internal/health"
	"github.com/fieldpulse/fieldpulse/internal/orchestrator"
	"github.com/fieldpulse/fieldpulse/internal/registry"
)

// Server is the forecasting API server. It wraps an already-wired
// orchestrator and registries; it holds no domain logic of its own,
// only request parsing, status-code mapping and response shaping.
type Server struct {
	orchestrator *orchestrator.Orchestrator
	regions      *registry.RegionRegistry
	sources      *registry.SourceRegistry
	health       *health.Checker
}

// NewServer creates a new API server.
func NewServer(orch *orchestrator.Orchestrator, regions *registry.RegionRegistry, sources *registry.SourceRegistry) *Server {
	return &Server{orchestrator: orch, regions: regions, sources: sources}
}

// SetHealth wires an optional health.Checker into GET /health. Without
// one, /health reports a bare "ok" once the server is serving requests.
func (s *Server) SetHealth(checker *health.Checker) {
	s.health = checker
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Post("/forecast", s.handleForecast)
	r.Get("/regions", s.handleRegions)
	r.Get("/sources", s.handleSources)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// forecastRequest is the wire shape of POST /forecast (spec.md §6).
type forecastRequest struct {
	RegionID        string  `json:"region_id"`
	RegionName      string  `json:"region_name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	DaysBack        int     `json:"days_back"`
	ForecastHorizon int     `json:"forecast_horizon"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, http.StatusBadRequest, domain.ErrorKindInvalidInput, err.Error())
		return
	}

	region, known := s.regions.Get(req.RegionID)
	if !known {
		region = domain.Region{
			ID:         req.RegionID,
			Name:       req.RegionName,
			RegionType: domain.RegionTypeCustom,
			Lat:        req.Latitude,
			Lon:        req.Longitude,
		}
	}
	if err := region.Validate(); err != nil {
		writeDomainError(w, http.StatusBadRequest, domain.ErrorKindInvalidInput, err.Error())
		return
	}

	orchReq := orchestrator.DefaultRequest()
	if req.DaysBack != 0 {
		orchReq.DaysBack = req.DaysBack
	}
	if req.ForecastHorizon != 0 {
		orchReq.ForecastHorizon = req.ForecastHorizon
	}
	if err := orchReq.Validate(); err != nil {
		writeDomainError(w, http.StatusBadRequest, domain.ErrorKindInvalidInput, err.Error())
		return
	}

	result, err := s.orchestrator.Run(r.Context(), region, orchReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeDomainError(w, http.StatusBadRequest, domain.ErrorKindInvalidInput, err.Error())
		case errors.Is(err, domain.ErrConcurrencySaturated):
			writeDomainError(w, http.StatusServiceUnavailable, domain.ErrorKind("concurrency_saturated"), err.Error())
		case errors.Is(err, domain.ErrDeadlineExceeded):
			writeDomainError(w, http.StatusRequestTimeout, domain.ErrorKindDeadlineExceeded, err.Error())
		default:
			writeDomainError(w, http.StatusInternalServerError, domain.ErrorKindInternal, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleHealth reports liveness. With a health.Checker wired in, it
// reports 503 and the failing checks once any dependency check fails;
// without one it's a bare readiness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	status := http.StatusOK
	body := map[string]interface{}{"status": "ok", "checks": s.health.Statuses()}
	if !s.health.IsHealthy() {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.regions.List())
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sources.List())
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError writes the structured error body of spec.md §7:
// {error_kind, message, correlation_id}.
func writeDomainError(w http.ResponseWriter, status int, kind domain.ErrorKind, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error_kind":     kind,
		"message":        msg,
		"correlation_id": uuid.NewString(),
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
