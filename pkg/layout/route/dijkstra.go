package route

import (
	"container/heap"
	"math"

	"github.com/jbaarsen/metromap/pkg/errors"
	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// WeightedNode is a candidate start or goal position with an entry cost.
type WeightedNode struct {
	Node grid.Node
	Cost float64
}

type queueItem struct {
	node grid.Node
	// path holds the nodes walked before node, starting at the chosen
	// start candidate.
	path     []grid.Node
	cost     float64
	priority float64
	index    int
}

type queue []*queueItem

func (q queue) Len() int            { return len(q) }
func (q queue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *queue) Push(x any)         { item := x.(*queueItem); item.index = len(*q); *q = append(*q, item) }
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// EdgeDijkstra finds the cheapest octilinear path for edge between two
// candidate node sets. It returns the chosen start node (the from-station's
// final position), the interior path, the chosen end node and the path
// cost. All goal candidates are collected before picking the cheapest total
// so a slightly farther goal with a cheaper approach can win.
func EdgeDijkstra(p Params, m *metro.Map, edge *metro.Edge, from []WeightedNode, fromStation *metro.Station, to []WeightedNode, toStation *metro.Station, occ Occupied) (grid.Node, []grid.Node, grid.Node, float64, error) {
	q := make(queue, 0, len(from))
	for _, wn := range from {
		q = append(q, &queueItem{node: wn.Node, cost: wn.Cost, priority: wn.Cost})
	}
	heap.Init(&q)

	goals := make(map[grid.Node]float64, len(to))
	for _, wn := range to {
		goals[wn.Node] = wn.Cost
	}

	type arrival struct {
		item  *queueItem
		total float64
	}
	visited := make(map[grid.Node]bool)
	var arrivals []arrival

	for q.Len() > 0 {
		cur := heap.Pop(&q).(*queueItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if goalCost, isGoal := goals[cur.node]; isGoal {
			arrivals = append(arrivals, arrival{cur, cur.cost + goalCost})
			if len(arrivals) == len(goals) {
				break
			}
		}

		previous := []grid.Node{cur.node}
		if len(cur.path) > 0 {
			previous = []grid.Node{cur.path[len(cur.path)-1], cur.node}
		}

		for _, nb := range cur.node.Neighbors() {
			if visited[nb] {
				continue
			}
			step := NodeCost(p, m, edge, nb, previous, fromStation, toStation, occ)
			if math.IsInf(step, 1) {
				continue
			}

			child := &queueItem{
				node:     nb,
				cost:     cur.cost + step,
				priority: step + nb.DiagonalDistance(fromStation.Pos),
			}
			child.path = append(append([]grid.Node(nil), cur.path...), cur.node)
			heap.Push(&q, child)
		}
	}

	if len(arrivals) == 0 {
		return grid.Node{}, nil, grid.Node{}, 0, errors.New(errors.ErrCodeNoPath,
			"no path between stations %d and %d", fromStation.ID, toStation.ID)
	}

	best := arrivals[0]
	for _, a := range arrivals[1:] {
		if a.total < best.total {
			best = a
		}
	}

	if len(best.item.path) == 0 {
		return grid.Node{}, nil, grid.Node{}, 0, errors.New(errors.ErrCodeNoPath,
			"start and end coincide on edge %d between stations %d and %d",
			edge.ID, fromStation.ID, toStation.ID)
	}

	start := best.item.path[0]
	return start, best.item.path[1:], best.item.node, best.item.cost, nil
}
