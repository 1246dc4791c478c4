package api

import (
	"net/http"
	"time"

	"smart-waste-service/internal/adapters/mqtt"
	"smart-waste-service/internal/api/handlers"
	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
	"smart-waste-service/internal/services"
)

// Deps carries everything the HTTP surface needs. Handlers stay unaware of
// concrete adapters; only the stats callback reaches into the broker side.
type Deps struct {
	Containers ports.ContainerRepository
	Routes     ports.RouteRepository
	Alerts     ports.AlertRepository
	Optimizer  *services.RouteOptimizer
	Lifecycle  *services.RouteLifecycle

	DefaultFillThreshold int
	DefaultDepot         domain.Coordinate
	RecencyWindow        time.Duration

	IngestStats func() mqtt.StatsSnapshot
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	optimizeHandler := &handlers.OptimizeHandler{
		Optimizer:            deps.Optimizer,
		DefaultFillThreshold: deps.DefaultFillThreshold,
		DefaultDepot:         deps.DefaultDepot,
	}
	containerHandler := &handlers.ContainerHandler{
		Repo:                 deps.Containers,
		DefaultFillThreshold: deps.DefaultFillThreshold,
		RecencyWindow:        deps.RecencyWindow,
	}
	routeHandler := &handlers.RouteHandler{Repo: deps.Routes, Lifecycle: deps.Lifecycle}
	alertHandler := &handlers.AlertHandler{Repo: deps.Alerts}
	statsHandler := &handlers.IngestStatsHandler{Stats: deps.IngestStats}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /ingest/stats", statsHandler.Get)

	mux.HandleFunc("POST /optimize-route", optimizeHandler.Optimize)
	mux.HandleFunc("GET /containers-needing-collection", containerHandler.ListNeedingCollection)

	mux.HandleFunc("GET /routes", routeHandler.List)
	mux.HandleFunc("GET /routes/{id}", routeHandler.Get)
	mux.HandleFunc("DELETE /routes/{id}", routeHandler.Delete)
	mux.HandleFunc("POST /routes/{id}/start", routeHandler.Start)
	mux.HandleFunc("POST /routes/{id}/pause", routeHandler.Pause)
	mux.HandleFunc("POST /routes/{id}/resume", routeHandler.Resume)
	mux.HandleFunc("POST /routes/{id}/complete", routeHandler.Complete)
	mux.HandleFunc("POST /routes/{id}/cancel", routeHandler.Cancel)
	mux.HandleFunc("POST /routes/{id}/waypoints/{order}/collect", routeHandler.Collect)

	mux.HandleFunc("GET /alerts", alertHandler.List)
	mux.HandleFunc("POST /alerts/{id}/read", alertHandler.MarkRead)
	mux.HandleFunc("POST /alerts/{id}/resolve", alertHandler.Resolve)

	return loggingMiddleware(mux)
}
