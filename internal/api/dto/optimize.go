package dto

import (
	"time"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/services"
)

// Request body of the optimization trigger. All fields are optional; absent
// ones fall back to the configured defaults. Depot latitude and longitude
// default independently.
type OptimizeRequest struct {
	FillThreshold  int      `json:"fill_threshold"`
	DepotLatitude  *float64 `json:"depot_latitude"`
	DepotLongitude *float64 `json:"depot_longitude"`
}

type OptimizeSummary struct {
	HighPriority    int `json:"high_priority"`
	MediumPriority  int `json:"medium_priority"`
	TotalContainers int `json:"total_containers"`
}

// Route is the flat ordered waypoint list, empty (never null or absent) when
// no containers qualified.
type OptimizeResponse struct {
	Success         bool               `json:"success"`
	Message         string             `json:"message"`
	ContainersCount int                `json:"containers_count"`
	Route           []WaypointResponse `json:"route"`
	TotalDistance   float64            `json:"total_distance"`
	EstimatedTime   int                `json:"estimated_time"`
	DepotLocation   CoordinateResponse `json:"depot_location"`
	CreatedAt       time.Time          `json:"created_at"`
	Summary         *OptimizeSummary   `json:"summary,omitempty"`
}

func NewOptimizeResponse(res *services.OptimizeResult) OptimizeResponse {
	out := OptimizeResponse{
		Success:         res.Success,
		Message:         res.Message,
		ContainersCount: res.ContainersCount,
		Route:           make([]WaypointResponse, 0),
		DepotLocation:   CoordinateResponse{Lat: res.Depot.Lat, Lon: res.Depot.Lon},
		CreatedAt:       res.CreatedAt,
	}

	if res.Route == nil {
		return out
	}

	for _, w := range res.Route.Waypoints {
		out.Route = append(out.Route, NewWaypointResponse(w))
	}
	out.TotalDistance = round2(res.Route.TotalDistanceKm)
	out.EstimatedTime = res.Route.EstimatedMinutes

	summary := OptimizeSummary{TotalContainers: res.ContainersCount}
	for _, w := range res.Route.Waypoints {
		if w.Type != domain.WaypointContainer {
			continue
		}
		switch w.Priority {
		case "high":
			summary.HighPriority++
		case "medium":
			summary.MediumPriority++
		}
	}
	out.Summary = &summary

	return out
}
