package services

import (
	"math"
	"testing"

	"smart-waste-service/internal/domain"
)

func TestNearestNeighborTourOrdersByProximity(t *testing.T) {
	// Depot and three stops strung out northward; the greedy walk must visit
	// them in latitude order.
	locations := []domain.Coordinate{
		{Lat: 0.00, Lon: 0},
		{Lat: 0.03, Lon: 0},
		{Lat: 0.01, Lon: 0},
		{Lat: 0.02, Lon: 0},
	}

	matrix := BuildDistanceMatrix(locations)
	tour := NearestNeighborTour(matrix, 0)

	want := []int{0, 2, 3, 1}
	if len(tour) != len(want) {
		t.Fatalf("tour length = %d, want %d", len(tour), len(want))
	}
	for i := range want {
		if tour[i] != want[i] {
			t.Fatalf("tour = %v, want %v", tour, want)
		}
	}
}

func TestNearestNeighborTourTieBreaksByIndex(t *testing.T) {
	// Two stops equidistant from the start; the lower index wins.
	locations := []domain.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0.01, Lon: 0},
		{Lat: -0.01, Lon: 0},
	}

	matrix := BuildDistanceMatrix(locations)
	tour := NearestNeighborTour(matrix, 0)

	if tour[1] != 1 {
		t.Fatalf("tie not broken by lowest index: tour = %v", tour)
	}
}

func TestTourDistanceIncludesClosingLeg(t *testing.T) {
	locations := []domain.Coordinate{
		{Lat: 0.00, Lon: 0},
		{Lat: 0.01, Lon: 0},
		{Lat: 0.02, Lon: 0},
	}

	matrix := BuildDistanceMatrix(locations)
	tour := []int{0, 1, 2}

	want := matrix[0][1] + matrix[1][2] + matrix[2][0]
	got := TourDistance(matrix, tour)

	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("tour distance = %v, want %v", got, want)
	}
}

func TestBuildDistanceMatrixDiagonalZero(t *testing.T) {
	locations := []domain.Coordinate{
		{Lat: 10, Lon: 20},
		{Lat: 11, Lon: 21},
	}

	matrix := BuildDistanceMatrix(locations)
	for i := range matrix {
		if matrix[i][i] != 0 {
			t.Fatalf("matrix[%d][%d] = %v, want 0", i, i, matrix[i][i])
		}
	}
	if matrix[0][1] == 0 {
		t.Fatal("off-diagonal distance is zero")
	}
}
