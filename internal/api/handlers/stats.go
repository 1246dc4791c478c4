package handlers

import (
	"net/http"

	"smart-waste-service/internal/adapters/mqtt"
)

// IngestStatsHandler reports the live counters of the telemetry pipeline.
type IngestStatsHandler struct {
	Stats func() mqtt.StatsSnapshot
}

func (h *IngestStatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Stats())
}
