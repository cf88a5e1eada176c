package metro

import (
	"slices"

	"github.com/jbaarsen/metromap/pkg/grid"
)

// EdgeID identifies an edge within a Map.
type EdgeID int

// Edge connects two stations and carries the set of lines that traverse it.
// The pair (From, To) is unordered as far as the graph is concerned; the
// routed path runs from From to To.
//
// Locking an edge freezes its route and, for the purpose of movement, both
// endpoint stations — though not the endpoints' other edges.
type Edge struct {
	ID     EdgeID
	From   StationID
	To     StationID
	Locked bool

	lines      []LineID
	path       []grid.Node
	settled    bool
	contracted []StationID
}

// Opposite returns the other endpoint of the edge relative to station.
// The second return value is false if station is not an endpoint.
func (e *Edge) Opposite(station StationID) (StationID, bool) {
	switch station {
	case e.From:
		return e.To, true
	case e.To:
		return e.From, true
	}
	return 0, false
}

// Lines returns the ids of the lines using this edge, sorted ascending.
func (e *Edge) Lines() []LineID { return e.lines }

// AddLine marks the line as traversing this edge.
func (e *Edge) AddLine(id LineID) {
	if slices.Contains(e.lines, id) {
		return
	}
	e.lines = append(e.lines, id)
	slices.Sort(e.lines)
}

// HasLine reports whether the given line traverses this edge.
func (e *Edge) HasLine(id LineID) bool { return slices.Contains(e.lines, id) }

// SameLines reports whether both edges carry exactly the same line set.
func (e *Edge) SameLines(other *Edge) bool { return slices.Equal(e.lines, other.lines) }

// LineOverlap returns how many lines the two edges share.
func (e *Edge) LineOverlap(other *Edge) int {
	n := 0
	for _, l := range e.lines {
		if other.HasLine(l) {
			n++
		}
	}
	return n
}

// Path returns the interior nodes of the routed path, excluding both
// endpoint stations. An unrouted edge has a nil path.
func (e *Edge) Path() []grid.Node { return e.path }

// SetPath replaces the routed interior nodes.
func (e *Edge) SetPath(path []grid.Node) { e.path = path }

// PathEnds returns the first and last interior node of the routed path.
// For edges routed directly between adjacent stations the path is empty and
// ok is false.
func (e *Edge) PathEnds() (first, last grid.Node, ok bool) {
	if len(e.path) == 0 {
		return grid.Node{}, grid.Node{}, false
	}
	return e.path[0], e.path[len(e.path)-1], true
}

// IsSettled reports whether the edge's route is fixed, either for the
// current pass or by a lock.
func (e *Edge) IsSettled() bool { return e.settled || e.Locked }

// Settle fixes the edge's route for the remainder of the pass.
func (e *Edge) Settle() { e.settled = true }

// Unsettle releases the edge's route.
func (e *Edge) Unsettle() { e.settled = false }

// ContractedStations returns the stations collapsed into this edge by the
// reduction step, ordered from From to To.
func (e *Edge) ContractedStations() []StationID { return e.contracted }

// AddContractedStation appends a collapsed interior station.
func (e *Edge) AddContractedStation(id StationID) {
	e.contracted = append(e.contracted, id)
}

// ExtendContractedStations appends the collapsed interior stations of a
// neighboring edge that is being merged into this one.
func (e *Edge) ExtendContractedStations(ids []StationID) {
	e.contracted = append(e.contracted, ids...)
}

// clone returns a deep copy of the edge.
func (e *Edge) clone() *Edge {
	c := *e
	c.lines = append([]LineID(nil), e.lines...)
	c.path = append([]grid.Node(nil), e.path...)
	c.contracted = append([]StationID(nil), e.contracted...)
	return &c
}
