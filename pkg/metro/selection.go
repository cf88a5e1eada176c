package metro

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySelection is returned when a selection names fewer than two
	// stations or no edges.
	ErrEmptySelection = errors.New("selection needs at least two stations and one edge")

	// ErrDisconnectedSelection is returned when a selected edge does not
	// connect two selected stations.
	ErrDisconnectedSelection = errors.New("selected edge must connect selected stations")
)

// Selection names the subgraph a partial recalculation is scoped to.
// Stations outside the selection are treated as immovable anchors; edges
// crossing the boundary are re-routed but their outside endpoint stays put.
type Selection struct {
	Stations []StationID
	Edges    []EdgeID
}

// ContainsStation reports whether the station is part of the selection.
func (sel Selection) ContainsStation(id StationID) bool {
	for _, s := range sel.Stations {
		if s == id {
			return true
		}
	}
	return false
}

// ContainsEdge reports whether the edge is part of the selection.
func (sel Selection) ContainsEdge(id EdgeID) bool {
	for _, e := range sel.Edges {
		if e == id {
			return true
		}
	}
	return false
}

// Validate checks the selection against the map: every named station and
// edge must exist, there must be at least two stations and one edge, and
// each selected edge must have both endpoints in the selection.
func (sel Selection) Validate(m *Map) error {
	if len(sel.Stations) < 2 || len(sel.Edges) == 0 {
		return ErrEmptySelection
	}
	for _, sid := range sel.Stations {
		if m.Station(sid) == nil {
			return fmt.Errorf("%w: %d", ErrUnknownStation, sid)
		}
	}
	for _, eid := range sel.Edges {
		e := m.Edge(eid)
		if e == nil {
			return fmt.Errorf("%w: %d", ErrUnknownEdge, eid)
		}
		if !sel.ContainsStation(e.From) || !sel.ContainsStation(e.To) {
			return fmt.Errorf("%w: edge %d", ErrDisconnectedSelection, eid)
		}
	}
	return nil
}

// BoundaryStations returns the selected stations that also have edges
// outside the selection. Those stations keep their positions during a
// partial recalculation so the seam to the rest of the map stays intact.
func (sel Selection) BoundaryStations(m *Map) []StationID {
	var out []StationID
	for _, sid := range sel.Stations {
		s := m.Station(sid)
		if s == nil {
			continue
		}
		for _, eid := range s.Edges() {
			if !sel.ContainsEdge(eid) {
				out = append(out, sid)
				break
			}
		}
	}
	return out
}
