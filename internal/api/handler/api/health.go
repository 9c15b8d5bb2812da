package api

import (
	"net/http"

	"github.com/newthinker/copyhub/internal/api/response"
)

// StatsProvider reports runtime statistics.
type StatsProvider interface {
	Stats() map[string]any
}

// HealthHandler reports liveness.
type HealthHandler struct {
	stats   StatsProvider
	version string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(stats StatsProvider, version string) *HealthHandler {
	return &HealthHandler{stats: stats, version: version}
}

// Health returns status ok with the application stats.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": h.version,
	}
	if h.stats != nil {
		body["stats"] = h.stats.Stats()
	}
	response.JSON(w, http.StatusOK, body)
}
