package ports

import (
	"context"
	"time"

	"smart-waste-service/internal/domain"
)

// A container eligible for collection, paired with the sensor snapshot that
// made it eligible.
type CollectionCandidate struct {
	Container  domain.Container
	BatteryPct int
	ObservedAt time.Time
}

// Port: read access to container state for the route optimizer and the
// offline sweep.
type ContainerRepository interface {
	// Return active, located containers at or above the fill threshold with a
	// reading observed at or after since, most recent observation first. The
	// same container may appear more than once when several readings qualify.
	ListNeedingCollection(ctx context.Context, fillThreshold int, since time.Time) ([]CollectionCandidate, error)

	// Return active containers whose latest reading is older than cutoff
	// (or that never reported), together with the last-seen time.
	ListStale(ctx context.Context, cutoff time.Time) ([]StaleContainer, error)
}

type StaleContainer struct {
	Container domain.Container
	LastSeen  time.Time
}
