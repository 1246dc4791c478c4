package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"smart-waste-service/internal/api/dto"
	"smart-waste-service/internal/ports"
)

// ContainerHandler exposes read-only container queries.
type ContainerHandler struct {
	Repo                 ports.ContainerRepository
	DefaultFillThreshold int
	RecencyWindow        time.Duration
}

// ListNeedingCollection returns containers eligible for collection, one entry
// per container, most recent observation winning.
func (h *ContainerHandler) ListNeedingCollection(w http.ResponseWriter, r *http.Request) {
	threshold := h.DefaultFillThreshold
	if v := r.URL.Query().Get("fill_threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, r, http.StatusBadRequest, "fill_threshold must be between 1 and 100")
			return
		}
		threshold = n
	}

	since := time.Now().UTC().Add(-h.RecencyWindow)
	candidates, err := h.Repo.ListNeedingCollection(r.Context(), threshold, since)
	if err != nil {
		log.Printf("list containers needing collection failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListCollectionCandidatesResponse{
		FillThreshold: threshold,
		Containers:    make([]dto.CollectionCandidateResponse, 0, len(candidates)),
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Container.UID]; dup {
			continue
		}
		seen[c.Container.UID] = struct{}{}
		res.Containers = append(res.Containers, dto.NewCollectionCandidateResponse(c))
	}

	writeJSON(w, r, http.StatusOK, res)
}
