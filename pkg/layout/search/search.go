// Package search implements the local search pass that runs after routing.
// Each movable station tries a handful of neighboring grid nodes; a move is
// kept only when re-routing all of the station's edges from the new position
// strictly lowers the layout score, the same score the run reports as its
// cost metric.
package search

import (
	"context"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/layout/route"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// neighborhoodTake bounds how many candidate nodes are tried per station.
const neighborhoodTake = 4

// Movable decides whether the optimizer may move a station. A nil Movable
// allows every station.
type Movable func(*metro.Station) bool

// Weights configures Score. The zero value scores every layout as zero and
// is not useful; callers derive Weights from their cost settings.
type Weights struct {
	Bend     float64
	Spacing  float64
	Overhead float64
}

// Score rates a layout; lower is better. It sums weighted bend penalties,
// the spacing deviation of degree-two stations, and the length overhead of
// each route against the direct octilinear distance between its endpoints.
// Moves are judged by this score, so a layout the optimizer has converged on
// is a local minimum of the same metric the run reports.
func Score(m *metro.Map, w Weights) float64 {
	total := 0.0

	for _, e := range m.Edges() {
		line := polyline(m, e)
		for i := 2; i < len(line); i++ {
			c := grid.AngleCost(line[i-2], line[i-1], line[i])
			if c > 0 {
				total += c * w.Bend
			}
		}

		if len(line) >= 2 {
			direct := line[0].ChebyshevDistance(line[len(line)-1])
			overhead := len(line) - 1 - direct
			if overhead > 0 {
				total += float64(overhead) * w.Overhead
			}
		}
	}

	for _, st := range m.Stations() {
		if !m.IsDegreeTwo(st.ID) {
			continue
		}
		edges := st.Edges()
		a, b := neighborPos(m, st, edges[0]), neighborPos(m, st, edges[1])
		deviation := st.Pos.DiagonalDistance(a) - st.Pos.DiagonalDistance(b)
		if deviation < 0 {
			deviation = -deviation
		}
		total += deviation * w.Spacing
	}

	return total
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

func neighborPos(m *metro.Map, st *metro.Station, eid metro.EdgeID) grid.Node {
	e := m.Edge(eid)
	if e == nil {
		return st.Pos
	}
	opp, ok := e.Opposite(st.ID)
	if !ok {
		return st.Pos
	}
	if os := m.Station(opp); os != nil {
		return os.Pos
	}
	return st.Pos
}

// Optimizer runs local search passes over a routed map.
type Optimizer struct {
	params  route.Params
	weights Weights
	log     *log.Logger
}

// New creates an optimizer. A nil logger disables optimizer logging.
func New(params route.Params, weights Weights, logger *log.Logger) *Optimizer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Optimizer{params: params, weights: weights, log: logger}
}

// Run repeats passes until one completes without an accepted move, then
// reports the total number of moves. onPass, when non-nil, is called after
// every completed pass with that pass's move count, including the final
// zero-move pass. Cancellation is observed between passes; the map then
// holds the layout of the last completed pass and the context's error is
// returned alongside the moves so far.
func (o *Optimizer) Run(ctx context.Context, m *metro.Map, occ route.Occupied, movable Movable, onMove func(*metro.Map), onPass func(moves int)) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		moved := o.Pass(m, occ, movable, onMove)
		total += moved
		if onPass != nil {
			onPass(moved)
		}
		if moved == 0 {
			return total, nil
		}
	}
}

// Pass visits every movable station once and returns the number of accepted
// moves. The first candidate that strictly lowers the layout score wins; a
// station with no improving candidate stays put for this pass. onMove, when
// non-nil, is called after each accepted move with the map in its new state.
func (o *Optimizer) Pass(m *metro.Map, occ route.Occupied, movable Movable, onMove func(*metro.Map)) int {
	moves := 0
	current := Score(m, o.weights)
	for _, s := range m.Stations() {
		if s.Locked || s.Degree() == 0 {
			continue
		}
		if movable != nil && !movable(s) {
			continue
		}
		if hasLockedEdge(m, s) {
			continue
		}

		for _, cand := range o.candidates(m, s) {
			res, err := o.tryStationPos(m, s.ID, cand, occ)
			if err != nil {
				continue
			}
			if res.score >= current {
				continue
			}

			o.log.Debug("moving station",
				"station", s.ID, "from", s.Pos, "to", cand,
				"score", res.score, "was", current)
			apply(m, occ, res)
			current = res.score
			moves++
			if onMove != nil {
				onMove(m)
			}
			break
		}
	}
	return moves
}

// A locked edge freezes both of its endpoints, not just its own route.
func hasLockedEdge(m *metro.Map, s *metro.Station) bool {
	for _, eid := range s.Edges() {
		if e := m.Edge(eid); e != nil && e.Locked {
			return true
		}
	}
	return false
}

// candidates returns up to neighborhoodTake nodes adjacent to the station,
// closest-to-its-neighbors first, ties broken by smaller displacement.
func (o *Optimizer) candidates(m *metro.Map, s *metro.Station) []grid.Node {
	nodes := s.Pos.Neighbors()

	dist := func(n grid.Node) int {
		total := 0
		for _, eid := range s.Edges() {
			e := m.Edge(eid)
			if e == nil {
				continue
			}
			opp, ok := e.Opposite(s.ID)
			if !ok {
				continue
			}
			if os := m.Station(opp); os != nil {
				total += n.ManhattanDistance(os.Pos)
			}
		}
		return total
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		di, dj := dist(nodes[i]), dist(nodes[j])
		if di != dj {
			return di < dj
		}
		return nodes[i].ManhattanDistance(s.Pos) < nodes[j].ManhattanDistance(s.Pos)
	})

	if len(nodes) > neighborhoodTake {
		nodes = nodes[:neighborhoodTake]
	}
	return nodes
}

// moveResult captures everything needed to commit an accepted move.
type moveResult struct {
	station metro.StationID
	pos     grid.Node
	paths   map[metro.EdgeID][]grid.Node
	occ     route.Occupied
	cost    float64
	score   float64
}

// tryStationPos re-routes all of the station's edges with the station at
// pos, on cloned state, and scores the resulting layout. The per-station
// routing cost is kept alongside the score so the station's tracked cost
// stays in step with what routing would have recorded.
func (o *Optimizer) tryStationPos(m *metro.Map, id metro.StationID, pos grid.Node, occ route.Occupied) (*moveResult, error) {
	trial := m.Clone()
	trialOcc := occ.Clone()

	s := trial.Station(id)

	delete(trialOcc, s.Pos)
	s.Pos = pos
	trialOcc[pos] = route.StationOccupant(id)

	for _, eid := range s.Edges() {
		e := trial.Edge(eid)
		for _, n := range e.Path() {
			delete(trialOcc, n)
		}
		e.Unsettle()
	}

	total := 0.0
	paths := make(map[metro.EdgeID][]grid.Node, s.Degree())
	for _, eid := range s.Edges() {
		e := trial.Edge(eid)
		from, to := trial.Station(e.From), trial.Station(e.To)

		fromSet := []route.WeightedNode{{Node: from.Pos, Cost: 0}}
		toSet := []route.WeightedNode{{Node: to.Pos, Cost: 0}}

		_, path, _, cost, err := route.EdgeDijkstra(o.params, trial, e, fromSet, from, toSet, to, trialOcc)
		if err != nil {
			return nil, err
		}

		for _, n := range path {
			trialOcc[n] = route.EdgeOccupant(eid)
		}
		e.SetPath(path)
		paths[eid] = path
		total += cost
	}

	return &moveResult{
		station: id,
		pos:     pos,
		paths:   paths,
		occ:     trialOcc,
		cost:    total,
		score:   Score(trial, o.weights),
	}, nil
}

// apply commits an accepted move to the live map and occupancy.
func apply(m *metro.Map, occ route.Occupied, res *moveResult) {
	s := m.Station(res.station)
	s.Settle(res.pos)
	s.SetCost(res.cost)

	for eid, path := range res.paths {
		e := m.Edge(eid)
		e.SetPath(path)
		e.Settle()
	}

	clear(occ)
	for n, who := range res.occ {
		occ[n] = who
	}
}
