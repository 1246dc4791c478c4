package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"smart-waste-service/internal/api/dto"
	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
	"smart-waste-service/internal/services"
)

// RouteHandler exposes route retrieval and lifecycle endpoints.
type RouteHandler struct {
	Repo      ports.RouteRepository
	Lifecycle *services.RouteLifecycle
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Repo.List(r.Context())
	if err != nil {
		log.Printf("list routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, route := range routes {
		res.Routes = append(res.Routes, dto.NewRouteResponse(route))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	route, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		log.Printf("get route failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if route == nil {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(route))
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "route not found")
			return
		}
		log.Printf("delete route failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *RouteHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Start)
}

func (h *RouteHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Pause)
}

func (h *RouteHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Resume)
}

func (h *RouteHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Complete)
}

func (h *RouteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Cancel)
}

func (h *RouteHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (*domain.Route, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	route, err := op(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			writeError(w, r, http.StatusConflict, err.Error())
			return
		}
		log.Printf("route transition failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if route == nil {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(route))
}

// Collect marks one container stop as collected without touching the route
// status.
func (h *RouteHandler) Collect(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := strconv.Atoi(r.PathValue("order"))
	if err != nil || order <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid waypoint order")
		return
	}

	route, err := h.Lifecycle.MarkCollected(r.Context(), id, order)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			writeError(w, r, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrBadWaypoint):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			log.Printf("mark waypoint collected failed: route=%d order=%d err=%v", id, order, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	if route == nil {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(route))
}
