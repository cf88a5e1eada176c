package layout

import (
	"time"

	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/layout/search"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// Metrics summarizes a finished recalculation run.
type Metrics struct {
	// RunID identifies the run in logs and snapshots.
	RunID string

	// State is the terminal state of the run.
	State State

	// Tries is the number of routing attempts used, including the
	// successful one.
	Tries int

	// Moves is the number of accepted local search moves.
	Moves int

	// Bends counts direction changes over all routed edges.
	Bends int

	// TotalCost is the weighted layout quality metric; lower is better.
	TotalCost float64

	// Stations and Edges describe the returned layout.
	Stations int
	Edges    int

	Duration time.Duration
}

// CountBends returns the number of direction changes over every routed edge,
// measured on the full polyline including both endpoint stations.
func CountBends(m *metro.Map) int {
	bends := 0
	for _, e := range m.Edges() {
		bends += grid.Bends(polyline(m, e))
	}
	return bends
}

// TotalCost scores a layout: weighted bend penalties, plus the spacing
// deviation of degree-two stations, plus the length overhead of each route
// against the direct octilinear distance between its endpoints. The local
// search optimizer accepts moves against this same score, so a Converged
// layout re-scores to the cost its run reported.
func TotalCost(m *metro.Map, s Settings) float64 {
	return search.Score(m, s.weights())
}

func polyline(m *metro.Map, e *metro.Edge) []grid.Node {
	from, to := m.Station(e.From), m.Station(e.To)
	if from == nil || to == nil {
		return nil
	}
	line := make([]grid.Node, 0, len(e.Path())+2)
	line = append(line, from.Pos)
	line = append(line, e.Path()...)
	line = append(line, to.Pos)
	return line
}
