package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
)

// Containers at or above this fill level get a high-priority stop tag.
const highPriorityFill = 90

type OptimizeRequest struct {
	FillThreshold int
	Depot         domain.Coordinate
}

// Outcome of an optimization run. Success=false with a message is the
// well-formed "nothing to collect" result, not an error; Route is nil in
// that case and nothing is persisted.
type OptimizeResult struct {
	Success         bool
	Message         string
	ContainersCount int
	Route           *domain.Route
	Depot           domain.Coordinate
	CreatedAt       time.Time
}

// RouteOptimizer selects eligible containers and turns them into a persisted
// collection route via a nearest-neighbor tour from the depot.
type RouteOptimizer struct {
	Containers     ports.ContainerRepository
	Routes         ports.RouteRepository
	SpeedKmh       float64
	PerStopMinutes int
	RecencyWindow  time.Duration
	Now            func() time.Time
}

func (o *RouteOptimizer) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// Optimize runs one bounded planning pass: select, dedupe, tour, persist.
// Reads of container state are eventually consistent with the ingestion
// pipeline; a fill level may move the moment after it is read.
func (o *RouteOptimizer) Optimize(ctx context.Context, req OptimizeRequest) (*OptimizeResult, error) {
	now := o.now()
	since := now.Add(-o.RecencyWindow)

	candidates, err := o.Containers.ListNeedingCollection(ctx, req.FillThreshold, since)
	if err != nil {
		return nil, fmt.Errorf("optimize route: list candidates: %w", err)
	}

	// The candidate query may yield one row per qualifying reading; keep only
	// the most recent entry per container (the list is newest-first).
	seen := make(map[string]struct{}, len(candidates))
	stops := make([]ports.CollectionCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Container.HasLocation() {
			continue
		}
		if _, dup := seen[c.Container.UID]; dup {
			continue
		}
		seen[c.Container.UID] = struct{}{}
		stops = append(stops, c)
	}

	if len(stops) == 0 {
		return &OptimizeResult{
			Success:   false,
			Message:   fmt.Sprintf("no containers at or above %d%% fill", req.FillThreshold),
			Depot:     req.Depot,
			CreatedAt: now,
		}, nil
	}

	locations := make([]domain.Coordinate, 0, len(stops)+1)
	locations = append(locations, req.Depot)
	for _, s := range stops {
		locations = append(locations, *s.Container.Location)
	}

	matrix := BuildDistanceMatrix(locations)
	tour := NearestNeighborTour(matrix, 0)
	totalKm := TourDistance(matrix, tour)

	route := o.buildRoute(req.Depot, stops, tour, totalKm, now)
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	if err := o.Routes.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("optimize route: persist route: %w", err)
	}

	return &OptimizeResult{
		Success:         true,
		Message:         fmt.Sprintf("optimized route for %d containers", len(stops)),
		ContainersCount: len(stops),
		Route:           route,
		Depot:           req.Depot,
		CreatedAt:       now,
	}, nil
}

func (o *RouteOptimizer) buildRoute(
	depot domain.Coordinate,
	stops []ports.CollectionCandidate,
	tour []int,
	totalKm float64,
	now time.Time,
) *domain.Route {
	waypoints := make([]domain.Waypoint, 0, len(tour)+1)

	for i, idx := range tour {
		if idx == 0 {
			waypoints = append(waypoints, domain.Waypoint{
				Type:       domain.WaypointDepot,
				OrderIndex: i + 1,
				Name:       "Depot",
				Location:   depot,
			})
			continue
		}

		stop := stops[idx-1] // tour index 0 is the depot
		priority := "medium"
		if stop.Container.FillLevel >= highPriorityFill {
			priority = "high"
		}
		waypoints = append(waypoints, domain.Waypoint{
			Type:         domain.WaypointContainer,
			OrderIndex:   i + 1,
			Name:         stop.Container.Name,
			Location:     *stop.Container.Location,
			ContainerUID: stop.Container.UID,
			FillLevel:    stop.Container.FillLevel,
			BatteryPct:   stop.BatteryPct,
			Priority:     priority,
		})
	}

	waypoints = append(waypoints, domain.Waypoint{
		Type:       domain.WaypointDepot,
		OrderIndex: len(waypoints) + 1,
		Name:       "Return to depot",
		Location:   depot,
	})

	travelMinutes := totalKm / o.SpeedKmh * 60
	collectMinutes := float64(len(stops) * o.PerStopMinutes)

	return &domain.Route{
		Name:             fmt.Sprintf("Collection route %s", now.Format("2006-01-02 15:04")),
		Status:           domain.RoutePlanned,
		Waypoints:        waypoints,
		TotalDistanceKm:  totalKm,
		EstimatedMinutes: int(math.Round(travelMinutes + collectMinutes)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
