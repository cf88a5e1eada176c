// Package metro models the metro map graph: stations on a grid, edges
// carrying line sets, and the lines themselves.
//
// The Map is an arena keyed by stable integer ids. Algorithms hold ids, not
// pointers, so candidate evaluation and rollback can work on cloned maps
// without aliasing surprises. A Map is not safe for concurrent use; the
// layout controller owns its working copy exclusively for the duration of a
// recalculation.
package metro

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownStation is returned when an edge or selection references a
	// station id that does not exist in the map.
	ErrUnknownStation = errors.New("unknown station")

	// ErrUnknownEdge is returned when a selection or line references an edge
	// id that does not exist in the map.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrSelfLoop is returned by AddEdge when both endpoints are the same
	// station. Every edge must reference two distinct stations.
	ErrSelfLoop = errors.New("edge endpoints must be distinct")

	// ErrDanglingEdge is returned by Validate when an edge references a
	// station that is not present in the map.
	ErrDanglingEdge = errors.New("edge references missing station")
)

// Map is the metro graph: stations, edges and lines in one arena.
// The zero value is not usable; use NewMap.
type Map struct {
	stations map[StationID]*Station
	edges    map[EdgeID]*Edge
	lines    map[LineID]*Line

	nextStation StationID
	nextEdge    EdgeID
	nextLine    LineID
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{
		stations:    make(map[StationID]*Station),
		edges:       make(map[EdgeID]*Edge),
		lines:       make(map[LineID]*Line),
		nextStation: 1,
		nextEdge:    1,
		nextLine:    1,
	}
}

// AddStation places the station in the map. A zero ID is assigned the next
// sequential id; a station with an existing id replaces the stored one
// (upsert), which is how algorithms write back modified copies.
func (m *Map) AddStation(s *Station) *Station {
	if s.ID == 0 {
		s.ID = m.nextStation
		m.nextStation++
	} else if s.ID >= m.nextStation {
		m.nextStation = s.ID + 1
	}
	m.stations[s.ID] = s
	return s
}

// Station returns the station with the given id, or nil.
func (m *Map) Station(id StationID) *Station { return m.stations[id] }

// Stations returns all stations sorted by id for deterministic iteration.
func (m *Map) Stations() []*Station {
	out := make([]*Station, 0, len(m.stations))
	for _, s := range m.stations {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Station) int { return int(a.ID - b.ID) })
	return out
}

// StationCount returns the number of stations in the map.
func (m *Map) StationCount() int { return len(m.stations) }

// RemoveStation deletes the station and all edges attached to it.
func (m *Map) RemoveStation(id StationID) {
	s := m.stations[id]
	if s == nil {
		return
	}
	for _, eid := range append([]EdgeID(nil), s.edges...) {
		m.RemoveEdge(eid)
	}
	delete(m.stations, id)
}

// AddEdge creates an edge between two distinct existing stations and
// registers it on both endpoints. If an edge between the two already
// exists, that edge is returned instead of creating a parallel one.
func (m *Map) AddEdge(from, to StationID) (*Edge, error) {
	if from == to {
		return nil, ErrSelfLoop
	}
	fs, ts := m.stations[from], m.stations[to]
	if fs == nil || ts == nil {
		return nil, fmt.Errorf("%w: edge %d-%d", ErrUnknownStation, from, to)
	}
	if e, ok := m.EdgeBetween(from, to); ok {
		return e, nil
	}

	e := &Edge{ID: m.nextEdge, From: from, To: to}
	m.nextEdge++
	m.edges[e.ID] = e
	fs.addEdge(e.ID)
	ts.addEdge(e.ID)
	return e, nil
}

// PutEdge writes back a modified copy of an existing edge, preserving its
// id and endpoint registration.
func (m *Map) PutEdge(e *Edge) {
	m.edges[e.ID] = e
	if s := m.stations[e.From]; s != nil {
		s.addEdge(e.ID)
	}
	if s := m.stations[e.To]; s != nil {
		s.addEdge(e.ID)
	}
}

// Edge returns the edge with the given id, or nil.
func (m *Map) Edge(id EdgeID) *Edge { return m.edges[id] }

// Edges returns all edges sorted by id for deterministic iteration.
func (m *Map) Edges() []*Edge {
	out := make([]*Edge, 0, len(m.edges))
	for _, e := range m.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Edge) int { return int(a.ID - b.ID) })
	return out
}

// EdgeCount returns the number of edges in the map.
func (m *Map) EdgeCount() int { return len(m.edges) }

// EdgeBetween returns the edge connecting the two stations, if any.
func (m *Map) EdgeBetween(a, b StationID) (*Edge, bool) {
	s := m.stations[a]
	if s == nil {
		return nil, false
	}
	for _, eid := range s.edges {
		e := m.edges[eid]
		if e == nil {
			continue
		}
		if opp, ok := e.Opposite(a); ok && opp == b {
			return e, true
		}
	}
	return nil, false
}

// RemoveEdge deletes the edge and detaches it from its endpoints.
func (m *Map) RemoveEdge(id EdgeID) {
	e := m.edges[id]
	if e == nil {
		return
	}
	if s := m.stations[e.From]; s != nil {
		s.removeEdge(id)
	}
	if s := m.stations[e.To]; s != nil {
		s.removeEdge(id)
	}
	delete(m.edges, id)
}

// AddLine creates a new line with the given name and color.
func (m *Map) AddLine(name, color string) *Line {
	l := &Line{ID: m.nextLine, Name: name, Color: color}
	m.nextLine++
	m.lines[l.ID] = l
	return l
}

// Line returns the line with the given id, or nil.
func (m *Map) Line(id LineID) *Line { return m.lines[id] }

// Lines returns all lines sorted by id.
func (m *Map) Lines() []*Line {
	out := make([]*Line, 0, len(m.lines))
	for _, l := range m.lines {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b *Line) int { return int(a.ID - b.ID) })
	return out
}

// IsDegreeTwo reports whether the station is a pass-through point: exactly
// two edges, both carrying the identical set of lines.
func (m *Map) IsDegreeTwo(id StationID) bool {
	s := m.stations[id]
	if s == nil || len(s.edges) != 2 {
		return false
	}
	a, b := m.edges[s.edges[0]], m.edges[s.edges[1]]
	if a == nil || b == nil {
		return false
	}
	return a.SameLines(b)
}

// LineDegree returns the sum of line counts over the station's edges. It
// ranks junctions by how much traffic converges on them and drives the
// order in which edges are routed.
func (m *Map) LineDegree(id StationID) int {
	s := m.stations[id]
	if s == nil {
		return 0
	}
	degree := 0
	for _, eid := range s.edges {
		if e := m.edges[eid]; e != nil {
			degree += len(e.Lines())
		}
	}
	return degree
}

// UnsettleAll releases every station and edge for moving, re-anchoring
// original positions. Called once at the start of a recalculation.
func (m *Map) UnsettleAll() {
	for _, s := range m.stations {
		s.Unsettle()
	}
	for _, e := range m.edges {
		e.Unsettle()
	}
}

// Validate checks structural invariants: every edge references two distinct
// existing stations, endpoint registration is consistent, and every line
// only visits existing stations.
func (m *Map) Validate() error {
	for _, e := range m.edges {
		if e.From == e.To {
			return fmt.Errorf("edge %d: %w", e.ID, ErrSelfLoop)
		}
		fs, ts := m.stations[e.From], m.stations[e.To]
		if fs == nil || ts == nil {
			return fmt.Errorf("edge %d: %w", e.ID, ErrDanglingEdge)
		}
		if !slices.Contains(fs.edges, e.ID) || !slices.Contains(ts.edges, e.ID) {
			return fmt.Errorf("edge %d not registered on both endpoints", e.ID)
		}
	}
	for _, s := range m.stations {
		for _, eid := range s.edges {
			if m.edges[eid] == nil {
				return fmt.Errorf("station %d: %w %d", s.ID, ErrUnknownEdge, eid)
			}
		}
	}
	for _, l := range m.lines {
		for _, sid := range l.stations {
			if m.stations[sid] == nil {
				return fmt.Errorf("line %d: %w %d", l.ID, ErrUnknownStation, sid)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the map. Algorithms route and move on clones
// so a failed attempt never leaves the caller's graph half-modified.
func (m *Map) Clone() *Map {
	c := &Map{
		stations:    make(map[StationID]*Station, len(m.stations)),
		edges:       make(map[EdgeID]*Edge, len(m.edges)),
		lines:       make(map[LineID]*Line, len(m.lines)),
		nextStation: m.nextStation,
		nextEdge:    m.nextEdge,
		nextLine:    m.nextLine,
	}
	for id, s := range m.stations {
		c.stations[id] = s.clone()
	}
	for id, e := range m.edges {
		c.edges[id] = e.clone()
	}
	for id, l := range m.lines {
		c.lines[id] = l.clone()
	}
	return c
}
