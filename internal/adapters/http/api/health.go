package api

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/metrics"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	stats StatsProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{stats: stats}
}

type healthResponse struct {
	Status  string `json:"status"`
	Started bool   `json:"started"`
}

// HandleHealth handles GET /healthz requests.
// A client accepting only JSON gets a status document. Everyone else gets the
// Prometheus exposition from the custom registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/plain") {
		started, _ := h.stats.GetStats()["started"].(bool)
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Started: started})
		return
	}
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
