package route

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/jbaarsen/metromap/pkg/errors"
	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// Router routes the edges of a map under a fixed set of params.
type Router struct {
	params Params
	log    *log.Logger
}

// NewRouter creates a router. A nil logger disables router logging.
func NewRouter(params Params, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Router{params: params, log: logger}
}

// Params returns the router's params.
func (r *Router) Params() Params { return r.params }

// NodeSet returns the candidate nodes within the configured radius of the
// station, each priced by its diagonal distance to the station's original
// position. A settled station yields exactly its current position.
func NodeSet(p Params, station *metro.Station, occ Occupied) []WeightedNode {
	if station.IsSettled() {
		return []WeightedNode{{station.Pos, 0}}
	}

	radius := p.NodeSetRadius
	var nodes []WeightedNode
	for x := station.Pos.X - radius; x <= station.Pos.X+radius; x++ {
		for y := station.Pos.Y - radius; y <= station.Pos.Y+radius; y++ {
			n := grid.N(x, y)
			if _, taken := occ[n]; taken {
				continue
			}
			d := n.DiagonalDistance(station.OriginalPos())
			if int(math.Ceil(d)) <= radius {
				nodes = append(nodes, WeightedNode{n, d * p.MoveCost})
			}
		}
	}
	return nodes
}

func haveOverlap(left, right []WeightedNode) bool {
	for _, l := range left {
		for _, r := range right {
			if l.Node == r.Node {
				return true
			}
		}
	}
	return false
}

// splitOverlap divides shared candidates between the two sets by which
// station center they are closer to. The station centers themselves always
// stay with their own set.
func splitOverlap(fromSet []WeightedNode, from grid.Node, toSet []WeightedNode, to grid.Node) ([]WeightedNode, []WeightedNode) {
	inSet := func(set []WeightedNode, n grid.Node) bool {
		for _, wn := range set {
			if wn.Node == n {
				return true
			}
		}
		return false
	}
	remove := func(set []WeightedNode, n grid.Node) []WeightedNode {
		out := set[:0]
		for _, wn := range set {
			if wn.Node != n {
				out = append(out, wn)
			}
		}
		return out
	}

	for _, wn := range append([]WeightedNode(nil), fromSet...) {
		switch {
		case wn.Node == to:
			fromSet = remove(fromSet, wn.Node)
		case wn.Node == from:
			toSet = remove(toSet, wn.Node)
		case inSet(toSet, wn.Node):
			if wn.Node.DiagonalDistance(from) > wn.Node.DiagonalDistance(to) {
				fromSet = remove(fromSet, wn.Node)
			} else {
				toSet = remove(toSet, wn.Node)
			}
		}
	}
	return fromSet, toSet
}

// RouteEdges routes the given edges in order, settling stations and
// claiming grid nodes as it goes. The occupancy map is extended in place.
// Locked edges keep their frozen routes and are skipped. A routing failure
// on any edge aborts the pass; the caller retries with a different order.
func (r *Router) RouteEdges(m *metro.Map, order []metro.EdgeID, occ Occupied) error {
	for _, eid := range order {
		e := m.Edge(eid)
		if e == nil {
			return errors.New(errors.ErrCodeEdgeNotFound, "edge %d", eid)
		}
		if e.Locked {
			continue
		}

		from, to := m.Station(e.From), m.Station(e.To)
		if from == nil || to == nil {
			return errors.New(errors.ErrCodeStationNotFound, "endpoint of edge %d", eid)
		}

		fromSet := NodeSet(r.params, from, occ)
		toSet := NodeSet(r.params, to, occ)
		if haveOverlap(fromSet, toSet) {
			fromSet, toSet = splitOverlap(fromSet, from.Pos, toSet, to.Pos)
		}
		if len(fromSet) == 0 {
			fromSet = []WeightedNode{{from.Pos, 0}}
		}
		if len(toSet) == 0 {
			toSet = []WeightedNode{{to.Pos, 0}}
		}

		r.log.Debug("routing edge",
			"edge", eid, "from", e.From, "to", e.To,
			"from_candidates", len(fromSet), "to_candidates", len(toSet))

		start, path, end, cost, err := EdgeDijkstra(r.params, m, e, fromSet, from, toSet, to, occ)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRouting, err, "edge %d", eid)
		}

		for _, n := range path {
			occ[n] = EdgeOccupant(eid)
		}
		occ[start] = StationOccupant(e.From)
		occ[end] = StationOccupant(e.To)

		e.SetPath(path)
		e.Settle()
		from.Settle(start)
		to.Settle(end)
		from.SetCost(from.Cost() + cost)
		to.SetCost(to.Cost() + cost)
	}
	return nil
}
