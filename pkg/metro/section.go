package metro

// LineSection is a contiguous run of a single line: two end stations and
// the pass-through stations between them, with the edges connecting the
// run in order. Sections are what the straightening pass operates on.
type LineSection struct {
	Ends    [2]StationID
	Middles []StationID
	Edges   []EdgeID
}

// Stations returns the full ordered run including both ends.
func (sec LineSection) Stations() []StationID {
	out := make([]StationID, 0, len(sec.Middles)+2)
	out = append(out, sec.Ends[0])
	out = append(out, sec.Middles...)
	out = append(out, sec.Ends[1])
	return out
}

// TraceSection expands outward from the given station along its line run,
// collecting pass-through stations in both directions. The run stops at
// junctions, endpoints, and locked stations, which become the section ends.
// The second return value is false when the seed station has no usable run,
// for example a junction or an isolated station.
func TraceSection(m *Map, seed StationID) (LineSection, bool) {
	s := m.Station(seed)
	if s == nil || !m.IsDegreeTwo(seed) || s.Locked {
		return LineSection{}, false
	}

	left, leftEdges := traceRun(m, seed, s.Edges()[0])
	right, rightEdges := traceRun(m, seed, s.Edges()[1])

	// Both arms come back in traversal order, nearest station first and
	// the arm's end last. Flip the left arm so the section reads from
	// Ends[0] through the middles to Ends[1].
	var sec LineSection
	sec.Ends[0] = left[len(left)-1]
	sec.Ends[1] = right[len(right)-1]

	for i := len(left) - 2; i >= 0; i-- {
		sec.Middles = append(sec.Middles, left[i])
	}
	sec.Middles = append(sec.Middles, seed)
	sec.Middles = append(sec.Middles, right[:len(right)-1]...)

	for i := len(leftEdges) - 1; i >= 0; i-- {
		sec.Edges = append(sec.Edges, leftEdges[i])
	}
	sec.Edges = append(sec.Edges, rightEdges...)
	return sec, true
}

// traceRun follows edges from the seed outward through the given first edge
// until a station that cannot be a middle: a junction, an endpoint, a
// locked station, or the seed again on a cycle. Stations and edges are
// returned in traversal order.
func traceRun(m *Map, seed StationID, first EdgeID) ([]StationID, []EdgeID) {
	var stations []StationID
	var edges []EdgeID

	prev := seed
	eid := first
	for {
		edges = append(edges, eid)
		e := m.Edge(eid)
		next, _ := e.Opposite(prev)
		stations = append(stations, next)

		ns := m.Station(next)
		if next == seed || ns.Locked || !m.IsDegreeTwo(next) {
			return stations, edges
		}
		var cont EdgeID
		for _, cand := range ns.Edges() {
			if cand != eid {
				cont = cand
			}
		}
		prev, eid = next, cont
	}
}
