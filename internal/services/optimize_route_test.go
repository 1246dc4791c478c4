package services

import (
	"context"
	"math"
	"testing"
	"time"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
)

type fakeContainerRepo struct {
	candidates []ports.CollectionCandidate
	stale      []ports.StaleContainer

	gotThreshold int
	gotSince     time.Time
}

func (f *fakeContainerRepo) ListNeedingCollection(_ context.Context, fillThreshold int, since time.Time) ([]ports.CollectionCandidate, error) {
	f.gotThreshold = fillThreshold
	f.gotSince = since
	return f.candidates, nil
}

func (f *fakeContainerRepo) ListStale(_ context.Context, _ time.Time) ([]ports.StaleContainer, error) {
	return f.stale, nil
}

type fakeRouteRepo struct {
	created []*domain.Route
	routes  map[int64]*domain.Route
	updated []*domain.Route
}

func (f *fakeRouteRepo) Create(_ context.Context, route *domain.Route) error {
	route.ID = int64(len(f.created) + 1)
	f.created = append(f.created, route)
	return nil
}

func (f *fakeRouteRepo) List(_ context.Context) ([]*domain.Route, error) {
	out := make([]*domain.Route, 0, len(f.routes))
	for _, r := range f.routes {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRouteRepo) Get(_ context.Context, id int64) (*domain.Route, error) {
	return f.routes[id], nil
}

func (f *fakeRouteRepo) UpdateStatus(_ context.Context, route *domain.Route) error {
	f.updated = append(f.updated, route)
	return nil
}

func (f *fakeRouteRepo) MarkWaypointCollected(_ context.Context, _ int64, _ int, _ time.Time) error {
	return nil
}

func (f *fakeRouteRepo) Delete(_ context.Context, _ int64) error { return nil }

func candidate(uid string, lat, lon float64, fill, battery int, observed time.Time) ports.CollectionCandidate {
	return ports.CollectionCandidate{
		Container: domain.Container{
			UID:       uid,
			Name:      "Container " + uid,
			Location:  &domain.Coordinate{Lat: lat, Lon: lon},
			Active:    true,
			FillLevel: fill,
		},
		BatteryPct: battery,
		ObservedAt: observed,
	}
}

func TestOptimizeBuildsNearestNeighborRoute(t *testing.T) {
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	depot := domain.Coordinate{Lat: 0, Lon: 0}

	// c-far is listed first but c-near must be visited first.
	containers := &fakeContainerRepo{candidates: []ports.CollectionCandidate{
		candidate("c-far", 0.02, 0, 95, 80, now.Add(-time.Hour)),
		candidate("c-near", 0.01, 0, 78, 60, now.Add(-2*time.Hour)),
	}}
	routes := &fakeRouteRepo{}

	opt := &RouteOptimizer{
		Containers:     containers,
		Routes:         routes,
		SpeedKmh:       30,
		PerStopMinutes: 10,
		RecencyWindow:  24 * time.Hour,
		Now:            func() time.Time { return now },
	}

	res, err := opt.Optimize(context.Background(), OptimizeRequest{FillThreshold: 75, Depot: depot})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Success {
		t.Fatalf("success = false: %s", res.Message)
	}
	if res.ContainersCount != 2 {
		t.Fatalf("containers count = %d, want 2", res.ContainersCount)
	}
	if containers.gotThreshold != 75 {
		t.Fatalf("threshold passed to repo = %d, want 75", containers.gotThreshold)
	}
	if !containers.gotSince.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("since = %v, want 24h before now", containers.gotSince)
	}

	if len(routes.created) != 1 {
		t.Fatalf("routes persisted = %d, want 1", len(routes.created))
	}
	route := routes.created[0]

	if route.Status != domain.RoutePlanned {
		t.Fatalf("status = %q, want %q", route.Status, domain.RoutePlanned)
	}
	if len(route.Waypoints) != 4 {
		t.Fatalf("waypoints = %d, want 4", len(route.Waypoints))
	}
	if route.Waypoints[0].Type != domain.WaypointDepot || route.Waypoints[3].Type != domain.WaypointDepot {
		t.Fatal("route does not start and end at the depot")
	}
	if route.Waypoints[1].ContainerUID != "c-near" {
		t.Fatalf("first stop = %s, want c-near", route.Waypoints[1].ContainerUID)
	}
	if route.Waypoints[2].ContainerUID != "c-far" {
		t.Fatalf("second stop = %s, want c-far", route.Waypoints[2].ContainerUID)
	}

	if route.Waypoints[1].Priority != "medium" {
		t.Fatalf("c-near priority = %s, want medium", route.Waypoints[1].Priority)
	}
	if route.Waypoints[2].Priority != "high" {
		t.Fatalf("c-far priority = %s, want high", route.Waypoints[2].Priority)
	}

	near := &domain.Coordinate{Lat: 0.01, Lon: 0}
	far := &domain.Coordinate{Lat: 0.02, Lon: 0}
	d := &depot
	wantKm := domain.Distance(d, near) + domain.Distance(near, far) + domain.Distance(far, d)
	if math.Abs(route.TotalDistanceKm-wantKm) > 1e-9 {
		t.Fatalf("total distance = %v, want %v", route.TotalDistanceKm, wantKm)
	}

	wantMinutes := int(math.Round(wantKm/30*60 + 20))
	if route.EstimatedMinutes != wantMinutes {
		t.Fatalf("estimated minutes = %d, want %d", route.EstimatedMinutes, wantMinutes)
	}

	if err := route.Validate(); err != nil {
		t.Fatalf("created route invalid: %v", err)
	}
}

func TestOptimizeNoCandidates(t *testing.T) {
	containers := &fakeContainerRepo{}
	routes := &fakeRouteRepo{}

	opt := &RouteOptimizer{
		Containers:     containers,
		Routes:         routes,
		SpeedKmh:       30,
		PerStopMinutes: 10,
		RecencyWindow:  24 * time.Hour,
	}

	res, err := opt.Optimize(context.Background(), OptimizeRequest{FillThreshold: 75, Depot: domain.Coordinate{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Success {
		t.Fatal("success = true with no candidates")
	}
	if res.Route != nil {
		t.Fatal("route returned with no candidates")
	}
	if len(routes.created) != 0 {
		t.Fatalf("routes persisted = %d, want 0", len(routes.created))
	}
}

func TestOptimizeDedupesCandidatesKeepingNewest(t *testing.T) {
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	newer := candidate("c-1", 0.01, 0, 91, 77, now.Add(-time.Minute))
	older := candidate("c-1", 0.01, 0, 80, 40, now.Add(-time.Hour))

	containers := &fakeContainerRepo{candidates: []ports.CollectionCandidate{newer, older}}
	routes := &fakeRouteRepo{}

	opt := &RouteOptimizer{
		Containers:     containers,
		Routes:         routes,
		SpeedKmh:       30,
		PerStopMinutes: 10,
		RecencyWindow:  24 * time.Hour,
		Now:            func() time.Time { return now },
	}

	res, err := opt.Optimize(context.Background(), OptimizeRequest{FillThreshold: 75, Depot: domain.Coordinate{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.ContainersCount != 1 {
		t.Fatalf("containers count = %d, want 1", res.ContainersCount)
	}
	route := routes.created[0]
	if route.Waypoints[1].BatteryPct != 77 {
		t.Fatalf("kept battery = %d, want the newest reading's 77", route.Waypoints[1].BatteryPct)
	}
}
