package route

import (
	"math"
	"sort"

	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// Params bound the router's search space and weigh its cost model.
type Params struct {
	// Grid limits, inclusive on both ends.
	XMin, XMax int
	YMin, YMax int

	// MoveCost is the base cost of every unit step.
	MoveCost float64

	// BendWeight scales the angle penalty for direction changes.
	BendWeight float64

	// NodeSetRadius is the candidate radius around unsettled stations.
	NodeSetRadius int
}

// OutsideGrid reports whether the node falls outside the grid limits.
func (p Params) OutsideGrid(n grid.Node) bool {
	return n.X < p.XMin || n.X > p.XMax || n.Y < p.YMin || n.Y > p.YMax
}

// NodeCost prices a step onto node while routing edge between the two given
// stations. previous holds the last one or two nodes of the path so far,
// nearest last. A +Inf result marks the node unusable: outside the grid,
// occupied, crossing an occupied diagonal, or a full path reversal.
func NodeCost(p Params, m *metro.Map, edge *metro.Edge, node grid.Node, previous []grid.Node, from, to *metro.Station, occ Occupied) float64 {
	if p.OutsideGrid(node) {
		return math.Inf(1)
	}

	if to.IsSettled() && node == to.Pos {
		if !stationApproachAvailable(m, to, previous[len(previous)-1], edge.ID) {
			return math.Inf(1)
		}
	} else if _, taken := occ[node]; taken {
		return math.Inf(1)
	}

	// First step away from the station: no angle yet, price the exit
	// heading against the opposite edge instead.
	if len(previous) < 2 {
		if previous[0].X != node.X && previous[0].Y != node.Y &&
			DiagonalOccupied(m, occ, previous[0], node) {
			return math.Inf(1)
		}
		exit := stationExitCost(m, edge, from, node)
		if math.IsInf(exit, 1) {
			return exit
		}
		return exit*p.BendWeight + p.MoveCost
	}

	if previous[1].X != node.X && previous[1].Y != node.Y &&
		DiagonalOccupied(m, occ, previous[1], node) {
		return math.Inf(1)
	}

	bend := grid.AngleCost(previous[0], previous[1], node)
	if math.IsInf(bend, 1) {
		return bend
	}
	return bend*p.BendWeight + p.MoveCost
}

// approachClear reports whether an approach can still fit given the angle
// to the nearest settled edge and the number of unsettled edges that must
// squeeze in between.
func approachClear(angle float64, between int) bool {
	switch angle {
	case 315:
		return between < 7
	case 270:
		return between < 6
	case 225:
		return between < 5
	case 180:
		return between < 4
	case 135:
		return between < 3
	case 90:
		return between < 2
	case 45:
		return between < 1
	}
	return false
}

// stationApproachAvailable checks whether approaching the station from the
// given node leaves enough free neighbor slots, on both sides of the
// approach, for the station's not yet settled edges.
func stationApproachAvailable(m *metro.Map, station *metro.Station, from grid.Node, incoming metro.EdgeID) bool {
	type edgeAngle struct {
		settled bool
		angle   float64
	}
	var leftwards, rightwards []edgeAngle

	for _, eid := range station.Edges() {
		if eid == incoming {
			continue
		}
		e := m.Edge(eid)
		if e == nil {
			continue
		}
		for _, en := range e.Path() {
			if !station.Pos.IsNeighborOf(en) {
				continue
			}
			a := grid.Angle(from, station.Pos, en)
			leftwards = append(leftwards, edgeAngle{e.IsSettled(), a})
			rightwards = append(rightwards, edgeAngle{e.IsSettled(), math.Abs(a - 360)})
		}
	}

	sort.SliceStable(leftwards, func(i, j int) bool { return leftwards[i].angle < leftwards[j].angle })
	sort.SliceStable(rightwards, func(i, j int) bool { return rightwards[i].angle < rightwards[j].angle })

	fits := func(list []edgeAngle) bool {
		between := 0
		for _, ea := range list {
			if ea.settled {
				return approachClear(ea.angle, between)
			}
			between++
		}
		return true
	}
	return fits(leftwards) && fits(rightwards)
}

// roundedAngleCost is the angle penalty table with off-grid angles treated
// as free instead of impossible. Used for the exit-cost fallback where the
// opposite station may not be octilinearly aligned.
func roundedAngleCost(first, mid, third grid.Node) float64 {
	switch grid.Angle(first, mid, third) {
	case 180:
		return 0.0
	case 135, 225:
		return 1.0
	case 90, 270:
		return 1.5
	case 45, 315:
		return 2.0
	case 0:
		return math.Inf(1)
	}
	return 0.0
}

// stationExitCost prices leaving a settled station toward node. The exit
// heading is compared against the attached edge sharing the most lines with
// the edge being routed, so a line keeps flowing through the station
// instead of hooking around it.
func stationExitCost(m *metro.Map, edge *metro.Edge, station *metro.Station, node grid.Node) float64 {
	if !station.IsSettled() {
		return 0.0
	}

	var opposite *metro.Edge
	best := 0
	for _, eid := range station.Edges() {
		e := m.Edge(eid)
		if e == nil {
			continue
		}
		if ov := e.LineOverlap(edge); ov > best {
			best, opposite = ov, e
		}
	}
	if opposite == nil {
		return 0.0
	}

	if first, last, ok := opposite.PathEnds(); ok {
		for _, end := range [2]grid.Node{first, last} {
			if station.Pos.IsNeighborOf(end) {
				return grid.AngleCost(end, station.Pos, node)
			}
		}
	}

	// The opposite edge has no interior nodes next to the station, fall
	// back to the heading of its far endpoint.
	if oppID, ok := opposite.Opposite(station.ID); ok {
		if opp := m.Station(oppID); opp != nil {
			return roundedAngleCost(opp.Pos, station.Pos, node)
		}
	}
	return 0.0
}
