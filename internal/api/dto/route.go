package dto

import (
	"math"
	"time"

	"smart-waste-service/internal/domain"
)

type CoordinateResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type WaypointResponse struct {
	Type         string             `json:"type"`
	Order        int                `json:"order"`
	Name         string             `json:"name"`
	Location     CoordinateResponse `json:"location"`
	ContainerUID string             `json:"container_uid,omitempty"`
	FillLevel    int                `json:"fill_level,omitempty"`
	BatteryPct   int                `json:"battery_pct,omitempty"`
	Priority     string             `json:"priority,omitempty"`
	Collected    bool               `json:"collected"`
	CollectedAt  *time.Time         `json:"collected_at,omitempty"`
}

type RouteResponse struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	Status           string             `json:"status"`
	Waypoints        []WaypointResponse `json:"waypoints"`
	TotalDistanceKm  float64            `json:"total_distance_km"`
	EstimatedMinutes int                `json:"estimated_minutes"`
	ActualMinutes    *int               `json:"actual_minutes,omitempty"`
	Progress         int                `json:"progress"`
	StartTime        *time.Time         `json:"start_time,omitempty"`
	EndTime          *time.Time         `json:"end_time,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

func NewWaypointResponse(w domain.Waypoint) WaypointResponse {
	return WaypointResponse{
		Type:         string(w.Type),
		Order:        w.OrderIndex,
		Name:         w.Name,
		Location:     CoordinateResponse{Lat: w.Location.Lat, Lon: w.Location.Lon},
		ContainerUID: w.ContainerUID,
		FillLevel:    w.FillLevel,
		BatteryPct:   w.BatteryPct,
		Priority:     w.Priority,
		Collected:    w.Collected,
		CollectedAt:  w.CollectedAt,
	}
}

func NewRouteResponse(r *domain.Route) RouteResponse {
	waypoints := make([]WaypointResponse, 0, len(r.Waypoints))
	for _, w := range r.Waypoints {
		waypoints = append(waypoints, NewWaypointResponse(w))
	}

	return RouteResponse{
		ID:               r.ID,
		Name:             r.Name,
		Status:           string(r.Status),
		Waypoints:        waypoints,
		TotalDistanceKm:  round2(r.TotalDistanceKm),
		EstimatedMinutes: r.EstimatedMinutes,
		ActualMinutes:    r.ActualMinutes,
		Progress:         r.Progress,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
