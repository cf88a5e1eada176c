package route

import (
	"container/heap"

	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

type aStarState struct {
	node    grid.Node
	cost    float64
	length  float64
	parent  *aStarState
	index   int
}

type aStarHeap []*aStarState

func (h aStarHeap) Len() int { return len(h) }
func (h aStarHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].length < h[j].length
}
func (h aStarHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *aStarHeap) Push(x any)   { s := x.(*aStarState); s.index = len(*h); *h = append(*h, s) }
func (h *aStarHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}

// AStar returns the interior nodes of a short octilinear path from one node
// to another, ignoring occupancy. Both endpoints are excluded from the
// result; adjacent nodes yield an empty path.
func AStar(from, to grid.Node) []grid.Node {
	h := aStarHeap{{node: from}}
	heap.Init(&h)
	visited := make(map[grid.Node]bool)

	var goal *aStarState
	for h.Len() > 0 {
		cur := heap.Pop(&h).(*aStarState)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if cur.node == to {
			goal = cur
			break
		}

		for _, nb := range cur.node.Neighbors() {
			if visited[nb] {
				continue
			}
			heap.Push(&h, &aStarState{
				node:   nb,
				length: cur.length + 1,
				cost:   cur.length + nb.DiagonalDistance(to),
				parent: cur,
			})
		}
	}
	if goal == nil {
		return nil
	}

	var path []grid.Node
	for s := goal.parent; s != nil && s.parent != nil; s = s.parent {
		path = append(path, s.node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// SeedPaths gives every unlocked, still pathless edge a first approximation
// of its route, the direct octilinear path between its endpoints. The
// routing passes refine these, and the exit cost model reads them before an
// edge has been properly routed. Edges that already carry a path, such as
// synthetic edges threaded through contracted stations, keep it.
func SeedPaths(m *metro.Map) {
	for _, e := range m.Edges() {
		if e.Locked || len(e.Path()) > 0 {
			continue
		}
		from, to := m.Station(e.From), m.Station(e.To)
		if from == nil || to == nil {
			continue
		}
		e.SetPath(AStar(from.Pos, to.Pos))
	}
}
