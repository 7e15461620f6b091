package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	service "github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/app"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/scenario"
)

const maxScenarioBytes = 1 << 20

// ReplayHandler handles scenario replay requests.
type ReplayHandler struct {
	deps Dependencies
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(deps Dependencies) *ReplayHandler {
	return &ReplayHandler{deps: deps}
}

type replayResponse struct {
	Status   string `json:"status"`
	Scenario string `json:"scenario"`
	Records  int    `json:"records"`
}

// HandlePostReplay handles POST /replay requests carrying a YAML scenario.
func (h *ReplayHandler) HandlePostReplay(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_replay"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScenarioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	sc, err := scenario.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	n, err := h.deps.Replay(r.Context(), sc)
	switch {
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", fmt.Errorf("%s: %w", op, err))
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, "replay_failed", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, replayResponse{Status: "replayed", Scenario: sc.Name, Records: n})
}
