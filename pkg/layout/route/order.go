package route

import (
	"container/heap"
	"sort"

	"github.com/jbaarsen/metromap/pkg/metro"
)

type rankedStation struct {
	station metro.StationID
	degree  int
}

// stationHeap is a max-heap on line degree, so the busiest junctions are
// processed first.
type stationHeap []rankedStation

func (h stationHeap) Len() int           { return len(h) }
func (h stationHeap) Less(i, j int) bool { return h[i].degree > h[j].degree }
func (h stationHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *stationHeap) Push(x any)        { *h = append(*h, x.(rankedStation)) }
func (h *stationHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// OrderEdges returns the map's edges ordered so the busiest junctions are
// routed first: stations are visited in descending line degree, and each
// station's untaken edges are emitted in descending degree of their far
// endpoint. Seeding the heap with every station keeps disconnected
// components covered.
func OrderEdges(m *metro.Map) []metro.EdgeID {
	degrees := make(map[metro.StationID]int)
	h := make(stationHeap, 0, m.StationCount())
	for _, s := range m.Stations() {
		d := m.LineDegree(s.ID)
		degrees[s.ID] = d
		h = append(h, rankedStation{s.ID, d})
	}
	heap.Init(&h)

	taken := make(map[metro.EdgeID]bool, m.EdgeCount())
	order := make([]metro.EdgeID, 0, m.EdgeCount())

	for h.Len() > 0 {
		rs := heap.Pop(&h).(rankedStation)
		s := m.Station(rs.station)
		if s == nil {
			continue
		}

		type rankedEdge struct {
			edge   metro.EdgeID
			degree int
		}
		var stationEdges []rankedEdge
		for _, eid := range s.Edges() {
			if taken[eid] {
				continue
			}
			e := m.Edge(eid)
			if e == nil {
				continue
			}
			opp, ok := e.Opposite(s.ID)
			if !ok {
				continue
			}
			taken[eid] = true
			stationEdges = append(stationEdges, rankedEdge{eid, degrees[opp]})
			heap.Push(&h, rankedStation{opp, degrees[opp]})
		}

		sort.SliceStable(stationEdges, func(i, j int) bool {
			return stationEdges[i].degree > stationEdges[j].degree
		})
		for _, se := range stationEdges {
			order = append(order, se.edge)
		}
	}
	return order
}
