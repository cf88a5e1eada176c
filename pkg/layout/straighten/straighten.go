// Package straighten pulls a selected line section onto a single octilinear
// run. The section's end stations anchor a family of candidate straight
// lines in the section's dominant direction; interior stations are
// re-attached along the cheapest free candidate and the edges leaving the
// section are re-routed around the new geometry.
package straighten

import (
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/jbaarsen/metromap/pkg/errors"
	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/layout/route"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// Straighten lays the selected section out as one straight run. The
// selection must form a connected chain of stations following a single
// line. The caller's map is never modified; the straightened copy is
// returned.
func Straighten(m *metro.Map, sel metro.Selection, params route.Params, logger *log.Logger) (*metro.Map, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := sel.Validate(m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSelection, err, "straighten selection")
	}

	work := m.Clone()
	sec, err := sectionFromSelection(work, sel)
	if err != nil {
		return nil, err
	}

	occ := route.FullOccupancy(work)
	deoccupySection(work, occ, sec)

	dir := overallDirection(work, sec)
	if dir == grid.DirNone {
		return nil, errors.New(errors.ErrCodeStraighten, "section has no dominant direction")
	}

	start := work.Station(sec.Ends[0])
	end := work.Station(sec.Ends[1])
	logger.Debug("straightening section",
		"stations", len(sec.Middles)+2, "edges", len(sec.Edges), "direction", dir)

	best, ok := bestRun(work, occ, sec, start, end, dir)
	if !ok {
		return nil, errors.New(errors.ErrCodeStraighten,
			"no free straight run between %v and %v", start.Pos, end.Pos)
	}
	logger.Debug("straight run found", "from", best.run[0], "to", best.run[len(best.run)-1], "cost", best.cost)

	applyRun(work, occ, sec, best)
	if err := rerouteAdjacent(work, occ, sec, params); err != nil {
		return nil, err
	}
	return work, nil
}

// candidate is one placement of the section on a straight run: the full
// node sequence including both ends, each station's index on it, and the
// total displacement cost.
type candidate struct {
	run  []grid.Node
	at   map[metro.StationID]int
	cost int
}

// bestRun tries every candidate start/end pair and keeps the placement
// with the smallest total station displacement.
func bestRun(m *metro.Map, occ route.Occupied, sec metro.LineSection, start, end *metro.Station, dir grid.Direction) (candidate, bool) {
	var best candidate
	found := false

	for _, pair := range candidatePairs(start, end, dir) {
		interior, ok := straightWalk(m, occ, pair[0], pair[1])
		if !ok {
			continue
		}
		at, ok := attachStations(m, sec, interior)
		if !ok {
			continue
		}

		run := make([]grid.Node, 0, len(interior)+2)
		run = append(run, pair[0])
		run = append(run, interior...)
		run = append(run, pair[1])

		// attachStations indexes into the interior; shift onto the run.
		for id := range at {
			at[id]++
		}
		at[sec.Ends[0]] = 0
		at[sec.Ends[1]] = len(run) - 1

		cost := 0
		for _, sid := range sec.Stations() {
			cost += m.Station(sid).Pos.ManhattanDistance(run[at[sid]])
		}
		if !found || cost < best.cost {
			best = candidate{run: run, at: at, cost: cost}
			found = true
		}
	}
	return best, found
}

// sectionFromSelection orders the selected subgraph into a line section.
// The selection must be a simple open chain whose edges all share a line.
func sectionFromSelection(m *metro.Map, sel metro.Selection) (metro.LineSection, error) {
	degree := make(map[metro.StationID]int, len(sel.Stations))
	adjacency := make(map[metro.StationID][]metro.EdgeID, len(sel.Stations))
	for _, eid := range sel.Edges {
		e := m.Edge(eid)
		degree[e.From]++
		degree[e.To]++
		adjacency[e.From] = append(adjacency[e.From], eid)
		adjacency[e.To] = append(adjacency[e.To], eid)
	}

	var ends []metro.StationID
	for _, sid := range sel.Stations {
		switch degree[sid] {
		case 1:
			ends = append(ends, sid)
		case 2:
		default:
			return metro.LineSection{}, errors.New(errors.ErrCodeInvalidSelection,
				"station %d has %d selected edges, section stations need 1 or 2", sid, degree[sid])
		}
	}
	if len(ends) != 2 {
		return metro.LineSection{}, errors.New(errors.ErrCodeInvalidSelection,
			"selection is not an open chain, found %d end stations", len(ends))
	}
	slices.Sort(ends)

	shared := append([]metro.LineID(nil), m.Edge(sel.Edges[0]).Lines()...)
	for _, eid := range sel.Edges[1:] {
		e := m.Edge(eid)
		shared = slices.DeleteFunc(shared, func(l metro.LineID) bool { return !e.HasLine(l) })
	}
	if len(shared) == 0 {
		return metro.LineSection{}, errors.New(errors.ErrCodeInvalidSelection,
			"selected edges do not follow a single line")
	}

	sec := metro.LineSection{Ends: [2]metro.StationID{ends[0], ends[1]}}
	used := make(map[metro.EdgeID]bool, len(sel.Edges))
	current := ends[0]
	for current != ends[1] {
		var next metro.EdgeID
		ok := false
		for _, eid := range adjacency[current] {
			if !used[eid] {
				next, ok = eid, true
				break
			}
		}
		if !ok {
			return metro.LineSection{}, errors.New(errors.ErrCodeInvalidSelection,
				"selection is not connected")
		}
		used[next] = true
		sec.Edges = append(sec.Edges, next)
		current, _ = m.Edge(next).Opposite(current)
		if current != ends[1] {
			sec.Middles = append(sec.Middles, current)
		}
	}
	if len(sec.Edges) != len(sel.Edges) {
		return metro.LineSection{}, errors.New(errors.ErrCodeInvalidSelection,
			"selection is not a simple chain")
	}
	return sec, nil
}

// deoccupySection releases every node claimed by the section so candidate
// runs can pass through the section's current footprint.
func deoccupySection(m *metro.Map, occ route.Occupied, sec metro.LineSection) {
	for _, sid := range sec.Stations() {
		delete(occ, m.Station(sid).Pos)
	}
	for _, eid := range sec.Edges {
		for _, n := range m.Edge(eid).Path() {
			delete(occ, n)
		}
	}
}

// overallDirection returns the majority heading over all unit steps of the
// section's edges, or DirNone when the section has no routed steps. Ties go
// to the lower direction constant so the result is deterministic.
func overallDirection(m *metro.Map, sec metro.LineSection) grid.Direction {
	counts := make(map[grid.Direction]int)
	for _, eid := range sec.Edges {
		e := m.Edge(eid)
		poly := make([]grid.Node, 0, len(e.Path())+2)
		poly = append(poly, m.Station(e.From).Pos)
		poly = append(poly, e.Path()...)
		poly = append(poly, m.Station(e.To).Pos)
		for i := 0; i+1 < len(poly); i++ {
			if d := grid.Heading(poly[i], poly[i+1]); d != grid.DirNone {
				counts[d]++
			}
		}
	}

	best := grid.DirNone
	for d := grid.DirUp; d <= grid.DirUpLeft; d++ {
		// Opposite headings describe the same run; fold them together.
		n := counts[d] + counts[opposite(d)]
		if n > counts[best]+counts[opposite(best)] {
			best = d
		}
	}
	return best
}

func opposite(d grid.Direction) grid.Direction {
	switch d {
	case grid.DirUp:
		return grid.DirDown
	case grid.DirDown:
		return grid.DirUp
	case grid.DirLeft:
		return grid.DirRight
	case grid.DirRight:
		return grid.DirLeft
	case grid.DirUpRight:
		return grid.DirDownLeft
	case grid.DirDownLeft:
		return grid.DirUpRight
	case grid.DirUpLeft:
		return grid.DirDownRight
	case grid.DirDownRight:
		return grid.DirUpLeft
	}
	return grid.DirNone
}

// candidatePairs enumerates start/end node pairs that admit a straight run
// in the given direction. For axis-aligned runs the pairs sweep the
// perpendicular offset between the two current end positions; diagonal
// runs get the three ways of splitting the skew between the ends. A locked
// end pins its candidates to its current position.
func candidatePairs(start, end *metro.Station, dir grid.Direction) [][2]grid.Node {
	var pairs [][2]grid.Node
	s, e := start.Pos, end.Pos

	switch dir {
	case grid.DirLeft, grid.DirRight:
		lo, hi := min(s.Y, e.Y), max(s.Y, e.Y)
		for y := lo; y <= hi; y++ {
			pairs = append(pairs, [2]grid.Node{grid.N(s.X, y), grid.N(e.X, y)})
		}
	case grid.DirUp, grid.DirDown:
		lo, hi := min(s.X, e.X), max(s.X, e.X)
		for x := lo; x <= hi; x++ {
			pairs = append(pairs, [2]grid.Node{grid.N(x, s.Y), grid.N(x, e.Y)})
		}
	default:
		pairs = diagonalPairs(s, e)
	}

	if start.Locked || end.Locked {
		pairs = slices.DeleteFunc(pairs, func(p [2]grid.Node) bool {
			return (start.Locked && p[0] != s) || (end.Locked && p[1] != e)
		})
	}
	return pairs
}

// diagonalPairs splits the skew between two ends that are not exactly
// diagonal to each other: all of it on the end, half and half, or all of
// it on the start.
func diagonalPairs(s, e grid.Node) [][2]grid.Node {
	hor := abs(s.X - e.X)
	vert := abs(s.Y - e.Y)
	adjust := abs(hor - vert)
	if adjust == 0 {
		return [][2]grid.Node{{s, e}}
	}
	if hor != abs(s.Y-(e.Y+adjust)) {
		adjust = -adjust
	}
	startAdjust := adjust / 2
	endAdjust := adjust - startAdjust

	return [][2]grid.Node{
		{s, grid.N(e.X, e.Y+adjust)},
		{grid.N(s.X, s.Y-startAdjust), grid.N(e.X, e.Y+endAdjust)},
		{grid.N(s.X, s.Y-adjust), e},
	}
}

// straightWalk returns the interior nodes of the straight run from start
// to end, or false when the two are not octilinearly aligned or the run is
// blocked by an occupied node or a crossing diagonal.
func straightWalk(m *metro.Map, occ route.Occupied, start, end grid.Node) ([]grid.Node, bool) {
	dir := grid.Heading(start, end)
	if dir == grid.DirNone {
		return nil, false
	}
	if _, taken := occ[start]; taken {
		return nil, false
	}
	if _, taken := occ[end]; taken {
		return nil, false
	}

	var interior []grid.Node
	step := dir.Delta()
	for current := start.Add(step); current != end; current = current.Add(step) {
		if _, taken := occ[current]; taken {
			return nil, false
		}
		if dir.IsDiagonal() && route.DiagonalOccupied(m, occ, current.Sub(step), current) {
			return nil, false
		}
		interior = append(interior, current)
	}
	if dir.IsDiagonal() && route.DiagonalOccupied(m, occ, end.Sub(step), end) {
		return nil, false
	}
	return interior, true
}

// attachStations places the section's interior stations on the run's
// interior nodes. Junction stations on the section snap to the free node
// nearest their current position; the pass-through stations between
// junctions spread evenly over the nodes in between. Returns false when
// the run is too short to hold every station.
func attachStations(m *metro.Map, sec metro.LineSection, interior []grid.Node) (map[metro.StationID]int, bool) {
	if len(sec.Middles) > len(interior) {
		return nil, false
	}

	at := make(map[metro.StationID]int, len(sec.Middles))
	var passThrough []metro.StationID
	base := 0

	for i, sid := range sec.Middles {
		s := m.Station(sid)
		if s.Degree() == 2 {
			passThrough = append(passThrough, sid)
			continue
		}

		// A junction needs room for the pass-throughs collected before it
		// and for every station still to come.
		after := len(sec.Middles) - i - 1
		idx := nearestIndex(s.Pos, interior)
		if lo := base + len(passThrough); idx < lo {
			idx = lo
		}
		if hi := len(interior) - 1 - after; idx > hi {
			idx = hi
		}
		if idx < base+len(passThrough) {
			return nil, false
		}

		for j, loc := range spreadEvenly(passThrough, base, idx) {
			at[passThrough[j]] = loc
		}
		at[sid] = idx
		passThrough = passThrough[:0]
		base = idx + 1
	}

	for j, loc := range spreadEvenly(passThrough, base, len(interior)) {
		at[passThrough[j]] = loc
	}
	return at, true
}

// nearestIndex returns the interior index closest to pos by diagonal
// distance.
func nearestIndex(pos grid.Node, interior []grid.Node) int {
	best, bestDist := 0, math.Inf(1)
	for i, n := range interior {
		if d := pos.DiagonalDistance(n); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// spreadEvenly returns strictly increasing indices in [lo, hi) that place
// the stations at equal spacing. The anchors bounding the range sit at
// lo-1 and hi, so the span between them is hi-lo+1 steps wide.
func spreadEvenly(stations []metro.StationID, lo, hi int) []int {
	step := float64(hi-lo+1) / float64(len(stations)+1)

	locs := make([]int, len(stations))
	prev := lo - 1
	for i := range stations {
		idx := lo + int(math.Round(float64(i+1)*step)) - 1
		if idx <= prev {
			idx = prev + 1
		}
		if limit := hi - len(stations) + i; idx > limit {
			idx = limit
		}
		locs[i] = idx
		prev = idx
	}
	return locs
}

// applyRun moves the section's stations onto the chosen run and replaces
// the section edges' paths with the matching run slices.
func applyRun(m *metro.Map, occ route.Occupied, sec metro.LineSection, c candidate) {
	for _, sid := range sec.Stations() {
		s := m.Station(sid)
		s.Pos = c.run[c.at[sid]]
		occ[s.Pos] = route.StationOccupant(sid)
	}

	for _, eid := range sec.Edges {
		e := m.Edge(eid)
		lo, hi := c.at[e.From], c.at[e.To]
		reversed := lo > hi
		if reversed {
			lo, hi = hi, lo
		}
		path := append([]grid.Node(nil), c.run[lo+1:hi]...)
		if reversed {
			slices.Reverse(path)
		}
		e.SetPath(path)
		for _, n := range path {
			occ[n] = route.EdgeOccupant(eid)
		}
	}
}

// rerouteAdjacent re-routes every edge that touches a moved station but is
// not part of the section itself, so connections into the rest of the map
// follow the stations to their new positions.
func rerouteAdjacent(m *metro.Map, occ route.Occupied, sec metro.LineSection, params route.Params) error {
	done := make(map[metro.EdgeID]bool, len(sec.Edges))
	for _, eid := range sec.Edges {
		done[eid] = true
	}

	for _, sid := range sec.Stations() {
		for _, eid := range m.Station(sid).Edges() {
			if done[eid] {
				continue
			}
			done[eid] = true

			e := m.Edge(eid)
			from, to := m.Station(e.From), m.Station(e.To)

			for _, n := range e.Path() {
				delete(occ, n)
			}
			delete(occ, from.Pos)
			delete(occ, to.Pos)

			start, path, end, _, err := route.EdgeDijkstra(params, m, e,
				[]route.WeightedNode{{Node: from.Pos}}, from,
				[]route.WeightedNode{{Node: to.Pos}}, to, occ)
			if err != nil {
				return errors.Wrap(errors.ErrCodeStraighten, err,
					"re-routing edge %d after straightening", eid)
			}

			for _, n := range path {
				occ[n] = route.EdgeOccupant(eid)
			}
			occ[start] = route.StationOccupant(e.From)
			occ[end] = route.StationOccupant(e.To)
			e.SetPath(path)
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
