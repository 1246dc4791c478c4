package services

import (
	"math"

	"smart-waste-service/internal/domain"
)

// BuildDistanceMatrix computes pairwise great-circle distances (km) for a
// location list. The diagonal is zero.
func BuildDistanceMatrix(locations []domain.Coordinate) [][]float64 {
	n := len(locations)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			matrix[i][j] = domain.Distance(&locations[i], &locations[j])
		}
	}
	return matrix
}

// NearestNeighborTour builds a visiting order over all matrix indices using a
// greedy nearest-neighbor walk from start.
//
// The algorithm minimizes the immediate leg at each step. It does not attempt
// global tour optimization; n is small and re-planning is frequent, so the
// O(n^2) heuristic is acceptable. Ties are broken by the lowest location
// index so the result is deterministic.
func NearestNeighborTour(matrix [][]float64, start int) []int {
	n := len(matrix)
	if n == 0 {
		return []int{}
	}
	if start < 0 || start >= n {
		start = 0
	}

	visited := make([]bool, n)
	tour := make([]int, 0, n)
	tour = append(tour, start)
	visited[start] = true
	current := start

	for len(tour) < n {
		next := -1
		best := math.Inf(1)
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			// Strict comparison over ascending indices keeps the first
			// minimal candidate.
			if matrix[current][j] < best {
				best = matrix[current][j]
				next = j
			}
		}
		if next == -1 {
			break
		}
		tour = append(tour, next)
		visited[next] = true
		current = next
	}

	return tour
}

// TourDistance sums the consecutive legs of a tour plus the closing leg back
// to the tour's first location.
func TourDistance(matrix [][]float64, tour []int) float64 {
	total := 0.0
	for i := 0; i < len(tour)-1; i++ {
		total += matrix[tour[i]][tour[i+1]]
	}
	if len(tour) > 1 {
		total += matrix[tour[len(tour)-1]][tour[0]]
	}
	return total
}
