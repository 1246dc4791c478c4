package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"smart-waste-service/internal/api/dto"
	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/services"
)

type OptimizeHandler struct {
	Optimizer            *services.RouteOptimizer
	DefaultFillThreshold int
	DefaultDepot         domain.Coordinate
}

// Optimize triggers one route planning pass. The body is optional; absent
// fields fall back to the configured defaults.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain at most one JSON object")
		return
	}

	threshold := req.FillThreshold
	if threshold == 0 {
		threshold = h.DefaultFillThreshold
	}
	if threshold < 1 || threshold > 100 {
		writeError(w, r, http.StatusBadRequest, "fill_threshold must be between 1 and 100")
		return
	}

	depot := h.DefaultDepot
	if req.DepotLatitude != nil {
		depot.Lat = *req.DepotLatitude
	}
	if req.DepotLongitude != nil {
		depot.Lon = *req.DepotLongitude
	}
	if depot.Lat < -90 || depot.Lat > 90 || depot.Lon < -180 || depot.Lon > 180 {
		writeError(w, r, http.StatusBadRequest, "depot coordinates out of range")
		return
	}

	res, err := h.Optimizer.Optimize(r.Context(), services.OptimizeRequest{
		FillThreshold: threshold,
		Depot:         depot,
	})
	if err != nil {
		log.Printf("optimize route failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewOptimizeResponse(res))
}
