// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/scenario"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Replay runs a scenario and returns how many records were delivered.
	Replay(ctx context.Context, sc *scenario.Scenario) (int, error)
}

// Server wires HTTP routes for the replay tool.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	replayHandler *ReplayHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(statsProvider),
		statsHandler:  NewStatsHandler(statsProvider),
		replayHandler: NewReplayHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/replay", MetricsMiddleware(s.replayHandler.HandlePostReplay, "replay"))
}

// Handler returns every route on a fresh mux, traced with otelhttp.
func (s *Server) Handler(operation string) http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return otelhttp.NewHandler(mux, operation)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
