package metro

import "github.com/jbaarsen/metromap/pkg/grid"

// StationID identifies a station within a Map. IDs are allocated
// sequentially by the owning Map and stay stable across cloning,
// contraction and expansion.
type StationID int

// Station is a vertex of the metro graph: a named stop at a grid position.
// Checkpoints are stations in every algorithmic sense; the flag only matters
// to export surfaces outside this module that strip them.
//
// A station also carries transient optimization state: its original position
// (the anchor for the router's candidate node sets), whether it has been
// settled by the current routing pass, and the cost of its attached edges as
// last routed.
type Station struct {
	ID         StationID
	Name       string
	Pos        grid.Node
	Locked     bool
	Checkpoint bool

	original grid.Node
	settled  bool
	cost     float64
	edges    []EdgeID
}

// NewStation creates a detached station at the given position. Use
// Map.AddStation to place it in a map, which assigns the ID.
func NewStation(pos grid.Node, name string) *Station {
	return &Station{Name: name, Pos: pos, original: pos}
}

// OriginalPos returns the position the station had when the current
// recalculation started. Candidate placements are judged by their distance
// to this anchor rather than to wherever the station has drifted since.
func (s *Station) OriginalPos() grid.Node { return s.original }

// Edges returns the ids of all edges attached to the station.
func (s *Station) Edges() []EdgeID { return s.edges }

// Degree returns the number of attached edges.
func (s *Station) Degree() int { return len(s.edges) }

// IsSettled reports whether the station's position is fixed, either by the
// current routing pass or by a lock.
func (s *Station) IsSettled() bool { return s.settled || s.Locked }

// Settle fixes the station at pos for the remainder of the routing pass.
func (s *Station) Settle(pos grid.Node) {
	s.Pos = pos
	s.settled = true
}

// Unsettle releases the station for moving again and re-anchors its
// original position to wherever it currently is.
func (s *Station) Unsettle() {
	s.settled = false
	s.original = s.Pos
}

// Cost returns the total routing cost of the station's edges as last
// computed. It is +Inf-free: unrouted stations report 0.
func (s *Station) Cost() float64 { return s.cost }

// SetCost records the routing cost of the station's edges.
func (s *Station) SetCost(c float64) { s.cost = c }

func (s *Station) addEdge(id EdgeID) {
	for _, e := range s.edges {
		if e == id {
			return
		}
	}
	s.edges = append(s.edges, id)
}

func (s *Station) removeEdge(id EdgeID) {
	for i, e := range s.edges {
		if e == id {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return
		}
	}
}

// clone returns a deep copy of the station.
func (s *Station) clone() *Station {
	c := *s
	c.edges = append([]EdgeID(nil), s.edges...)
	return &c
}
