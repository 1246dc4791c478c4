package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"smart-waste-service/internal/api/dto"
	"smart-waste-service/internal/ports"
)

const defaultAlertLimit = 50

// AlertHandler exposes the alert feed and its read/resolve actions.
type AlertHandler struct {
	Repo ports.AlertRepository
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	alerts, err := h.Repo.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("list alerts failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListAlertsResponse{Alerts: make([]dto.AlertResponse, 0, len(alerts))}
	for _, a := range alerts {
		res.Alerts = append(res.Alerts, dto.NewAlertResponse(a))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Repo.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "alert not found")
			return
		}
		log.Printf("mark alert read failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "read"})
}

func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Repo.Resolve(r.Context(), id, time.Now().UTC()); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "alert not found")
			return
		}
		log.Printf("resolve alert failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "resolved"})
}
