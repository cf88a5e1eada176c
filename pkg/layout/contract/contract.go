// Package contract collapses pass-through stations into synthetic edges
// before layout and re-expands them afterwards. Working on the reduced
// graph keeps the router and local search focused on junctions and
// endpoints; the interior stations ride along inside their edge and come
// back once the geometry is final.
package contract

import (
	"math"
	"slices"

	"github.com/jbaarsen/metromap/pkg/errors"
	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// Saved is the part of a contracted station that must survive reduction.
type Saved struct {
	ID         metro.StationID
	Name       string
	Pos        grid.Node
	Checkpoint bool
}

// Restoration remembers the stations removed by Contract, keyed by id.
type Restoration map[metro.StationID]Saved

// Contract removes every unlocked degree-two station from the map,
// replacing its two edges with one synthetic edge between its neighbors.
// The synthetic edge records the collapsed stations and threads its path
// through their positions so an immediate Expand restores them exactly.
//
// A station is skipped when either of its edges is locked, when an edge
// already connects its neighbors, or when the neighbors are closer than
// twice the router's candidate radius, which would leave no room to
// reinsert the station afterwards.
func Contract(m *metro.Map, radius int) Restoration {
	restoration := make(Restoration)

	for _, s := range m.Stations() {
		if s.Locked || !m.IsDegreeTwo(s.ID) {
			continue
		}

		edges := s.Edges()
		e0, e1 := m.Edge(edges[0]), m.Edge(edges[1])
		if e0.Locked || e1.Locked {
			continue
		}

		start, _ := e0.Opposite(s.ID)
		end, _ := e1.Opposite(s.ID)
		if start == end {
			continue
		}
		if _, exists := m.EdgeBetween(start, end); exists {
			continue
		}

		ss, es := m.Station(start), m.Station(end)
		if ss.Pos.ManhattanDistance(es.Pos) <= radius*2+1 {
			continue
		}

		path := splicePath(m, s, e0, e1, start)
		contracted := append([]metro.StationID(nil), e0.ContractedStations()...)
		contracted = append(contracted, e1.ContractedStations()...)
		contracted = append(contracted, s.ID)

		lines := append([]metro.LineID(nil), e0.Lines()...)

		restoration[s.ID] = Saved{ID: s.ID, Name: s.Name, Pos: s.Pos, Checkpoint: s.Checkpoint}
		m.RemoveStation(s.ID)

		synth, err := m.AddEdge(start, end)
		if err != nil {
			// Both endpoints exist and differ; AddEdge cannot fail here.
			continue
		}
		for _, lid := range lines {
			synth.AddLine(lid)
			if l := m.Line(lid); l != nil {
				l.RemoveRun([]metro.StationID{s.ID})
			}
		}
		synth.SetPath(path)
		synth.ExtendContractedStations(contracted)
	}

	return restoration
}

// splicePath joins the two edge paths around the station into one path
// oriented from start to end, with the station's own position in between.
func splicePath(m *metro.Map, s *metro.Station, e0, e1 *metro.Edge, start metro.StationID) []grid.Node {
	seg0 := append([]grid.Node(nil), e0.Path()...)
	if e0.From != start {
		slices.Reverse(seg0)
	}
	seg1 := append([]grid.Node(nil), e1.Path()...)
	if e1.From != s.ID {
		slices.Reverse(seg1)
	}

	path := make([]grid.Node, 0, len(seg0)+len(seg1)+1)
	path = append(path, seg0...)
	path = append(path, s.Pos)
	path = append(path, seg1...)
	return path
}

// Expand reinserts every contracted station into the map. Stations of a
// synthetic edge that was never re-routed come back at their exact saved
// positions. Stations of a re-routed edge are spread equidistantly along
// the new route, each at the nearest feasible node with ties broken toward
// the path midpoint.
func Expand(m *metro.Map, restoration Restoration) error {
	for _, e := range m.Edges() {
		ids := e.ContractedStations()
		if len(ids) == 0 {
			continue
		}

		path := e.Path()
		if len(ids) > len(path) {
			return errors.New(errors.ErrCodeInternal,
				"edge %d has %d path nodes for %d contracted stations", e.ID, len(path), len(ids))
		}

		saved := make([]Saved, 0, len(ids))
		for _, id := range ids {
			sv, ok := restoration[id]
			if !ok {
				return errors.New(errors.ErrCodeStationNotFound,
					"contracted station %d of edge %d has no restoration entry", id, e.ID)
			}
			saved = append(saved, sv)
		}

		// Exact reinsertion only applies while the synthetic edge still
		// carries its spliced original path. Once a routing pass settles
		// the edge, stations are spread evenly over the new route even if
		// it happens to pass through their old positions.
		var locs []int
		exact := false
		if !e.IsSettled() {
			locs, exact = exactLocations(path, saved)
		}
		if !exact {
			from := m.Station(e.From)
			slices.SortStableFunc(saved, func(a, b Saved) int {
				da := a.Pos.DiagonalDistance(from.Pos)
				db := b.Pos.DiagonalDistance(from.Pos)
				switch {
				case da < db:
					return -1
				case da > db:
					return 1
				}
				return 0
			})
			locs = equidistantLocations(len(path), len(saved))
		}

		reinsert(m, e, saved, locs)
		m.RemoveEdge(e.ID)
	}
	return nil
}

// exactLocations finds each saved station's position in the path. It only
// succeeds when the path still threads through every saved position, which
// holds exactly when the synthetic edge was never re-routed.
func exactLocations(path []grid.Node, saved []Saved) ([]int, bool) {
	locs := make([]int, len(saved))
	for i, sv := range saved {
		idx := slices.Index(path, sv.Pos)
		if idx < 0 {
			return nil, false
		}
		locs[i] = idx
	}
	order := make([]int, len(locs))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return locs[a] - locs[b] })

	sortedLocs := make([]int, len(locs))
	sortedSaved := make([]Saved, len(saved))
	for i, o := range order {
		sortedLocs[i] = locs[o]
		sortedSaved[i] = saved[o]
	}
	for i := 1; i < len(sortedLocs); i++ {
		if sortedLocs[i] == sortedLocs[i-1] {
			return nil, false
		}
	}
	copy(saved, sortedSaved)
	return sortedLocs, true
}

// equidistantLocations spreads n stations over a path of the given length,
// rounding each ideal fractional index to the nearest node and breaking
// exact halves toward the path midpoint. Indices stay strictly increasing
// so no two stations land on the same node.
func equidistantLocations(pathLen, n int) []int {
	step := float64(pathLen) / float64(n+1)
	mid := float64(pathLen-1) / 2

	locs := make([]int, n)
	prev := -1
	for i := 0; i < n; i++ {
		ideal := float64(i+1) * step
		whole, frac := math.Modf(ideal)
		idx := int(whole)
		switch {
		case frac > 0.5:
			idx++
		case frac == 0.5 && ideal < mid:
			idx++
		}

		if idx <= prev {
			idx = prev + 1
		}
		if limit := pathLen - n + i; idx > limit {
			idx = limit
		}
		locs[i] = idx
		prev = idx
	}
	return locs
}

// reinsert adds the stations back at path[locs[i]], splits the synthetic
// edge's path into per-segment routes, and splices the stations back into
// their lines' sequences.
func reinsert(m *metro.Map, e *metro.Edge, saved []Saved, locs []int) {
	path := e.Path()

	seq := make([]metro.StationID, 0, len(saved)+2)
	seq = append(seq, e.From)
	for i, sv := range saved {
		s := metro.NewStation(path[locs[i]], sv.Name)
		s.ID = sv.ID
		s.Checkpoint = sv.Checkpoint
		m.AddStation(s)
		seq = append(seq, s.ID)
	}
	seq = append(seq, e.To)

	for _, lid := range e.Lines() {
		if l := m.Line(lid); l != nil {
			l.InsertBetween(e.From, e.To, seq[1:len(seq)-1])
		}
	}

	for i := 0; i+1 < len(seq); i++ {
		seg, err := m.AddEdge(seq[i], seq[i+1])
		if err != nil {
			continue
		}
		for _, lid := range e.Lines() {
			seg.AddLine(lid)
		}

		lo := 0
		if i > 0 {
			lo = locs[i-1] + 1
		}
		hi := len(path)
		if i < len(locs) {
			hi = locs[i]
		}
		seg.SetPath(append([]grid.Node(nil), path[lo:hi]...))
		if e.IsSettled() {
			seg.Settle()
		}
	}
}
