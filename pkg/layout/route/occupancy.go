// Package route implements octilinear edge routing on the layout grid: the
// occupancy map, the node cost model, a set-to-set Dijkstra and the pass
// that routes every edge of a map in junction-priority order.
package route

import (
	"slices"

	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// Occupant records what claims a grid node: a station or a routed edge
// segment. The zero value means the node is free.
type Occupant struct {
	Station metro.StationID
	Edge    metro.EdgeID
}

// StationOccupant marks a node as claimed by a station.
func StationOccupant(id metro.StationID) Occupant { return Occupant{Station: id} }

// EdgeOccupant marks a node as claimed by a routed edge segment.
func EdgeOccupant(id metro.EdgeID) Occupant { return Occupant{Edge: id} }

// Occupied maps grid nodes to their occupant.
type Occupied map[grid.Node]Occupant

// Clone returns an independent copy of the occupancy map.
func (o Occupied) Clone() Occupied {
	c := make(Occupied, len(o))
	for n, occ := range o {
		c[n] = occ
	}
	return c
}

// LockedOccupancy seeds an occupancy map with everything frozen by locks:
// locked stations claim their position, locked edges claim their interior
// path nodes and both endpoint positions.
func LockedOccupancy(m *metro.Map) Occupied {
	occ := make(Occupied)
	for _, s := range m.Stations() {
		if s.Locked {
			occ[s.Pos] = StationOccupant(s.ID)
		}
	}
	for _, e := range m.Edges() {
		if !e.Locked {
			continue
		}
		for _, n := range e.Path() {
			occ[n] = EdgeOccupant(e.ID)
		}
		if from := m.Station(e.From); from != nil {
			occ[from.Pos] = StationOccupant(from.ID)
		}
		if to := m.Station(e.To); to != nil {
			occ[to.Pos] = StationOccupant(to.ID)
		}
	}
	return occ
}

// FullOccupancy seeds an occupancy map with the entire laid-out map: every
// station claims its position and every routed edge claims its interior
// path nodes. Used by passes that modify a finished layout in place, such
// as line straightening.
func FullOccupancy(m *metro.Map) Occupied {
	occ := make(Occupied, m.StationCount()+m.EdgeCount())
	for _, e := range m.Edges() {
		for _, n := range e.Path() {
			occ[n] = EdgeOccupant(e.ID)
		}
	}
	for _, s := range m.Stations() {
		occ[s.Pos] = StationOccupant(s.ID)
	}
	return occ
}

// DiagonalOccupied reports whether stepping diagonally between first and
// second would cross an edge running along the other diagonal of the same
// grid square. The crossing diagonal counts as blocked when both of its
// corners belong to the same edge, or when one corner is a station and the
// other an edge attached to that station.
func DiagonalOccupied(m *metro.Map, occ Occupied, first, second grid.Node) bool {
	one, ok := occ[grid.N(first.X, second.Y)]
	if !ok {
		return false
	}
	two, ok := occ[grid.N(second.X, first.Y)]
	if !ok {
		return false
	}

	if one == two {
		return true
	}
	if one.Station != 0 && two.Edge != 0 {
		s := m.Station(one.Station)
		return s != nil && slices.Contains(s.Edges(), two.Edge)
	}
	if two.Station != 0 && one.Edge != 0 {
		s := m.Station(two.Station)
		return s != nil && slices.Contains(s.Edges(), one.Edge)
	}
	return false
}
